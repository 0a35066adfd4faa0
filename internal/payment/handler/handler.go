// Package handler exposes the HTTP surface the external gateway round trip
// needs: the intermediate handoff page and the success/failure return URLs.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/payment/gateway"
	"tradegate/internal/payment/models"
	"tradegate/internal/payment/reconcile"
	"tradegate/internal/payment/store"
	"tradegate/internal/transport/http/json"
	"tradegate/internal/transport/http/shared"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/sentinel"
)

// Handler delegates to the adapter and reconciler; no payment logic lives at
// the transport layer.
type Handler struct {
	intents    store.IntentStore
	adapter    *gateway.Adapter
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

func New(intents store.IntentStore, adapter *gateway.Adapter, reconciler *reconcile.Reconciler, logger *slog.Logger) *Handler {
	return &Handler{
		intents:    intents,
		adapter:    adapter,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Routes mounts the payment endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/payment/gateway", h.handleGatewayPage)
	r.Get("/payment/success", h.handleReturn)
	r.Get("/payment/failed", h.handleReturn)
}

type gatewayPageResponse struct {
	Success  bool                  `json:"success"`
	Redirect *gateway.RedirectForm `json:"redirect"`
}

// handleGatewayPage serves the intermediate page payload: the form the
// browser must POST to the gateway's domain for the pending payment.
func (h *Handler) handleGatewayPage(w http.ResponseWriter, r *http.Request) {
	intent, err := h.intents.LoadPending(r.Context())
	if errors.Is(err, sentinel.ErrNotFound) {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no payment in progress"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "loading pending payment", "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "loading pending payment"))
		return
	}

	json.WriteJSON(w, http.StatusOK, gatewayPageResponse{
		Success:  true,
		Redirect: h.adapter.BuildRedirectForm(intent),
	})
}

type outcomeResponse struct {
	Success       bool   `json:"success"`
	PaymentRefNo  string `json:"paymentRefNo"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// handleReturn is where the gateway lands the browser after the hosted page.
// Success and failure URLs run the same reconciliation; the outcome status
// is what distinguishes them, not the path the gateway happened to pick.
func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.reconciler.ResolveCallback(r.Context(), r.URL.Query())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, outcomeResponse{
		Success:       outcome.Status == models.StatusSuccess,
		PaymentRefNo:  outcome.ReferenceNumber,
		Status:        string(outcome.Status),
		TransactionID: outcome.TransactionID,
		ErrorCode:     outcome.ErrorCode,
		ErrorMessage:  outcome.ErrorMessage,
	})
}
