package reconcile

import (
	"net/url"

	"tradegate/internal/payment/models"
)

// Gateways disagree on parameter names; each value is looked up under the
// known aliases in priority order.
var (
	refParams     = []string{"paymentRefNo", "orderid", "merchantRef"}
	statusParams  = []string{"status", "result", "paymentStatus"}
	txnParams     = []string{"transactionId", "trackid", "paymentid"}
	errCodeParams = []string{"errorCode", "error"}
	errMsgParams  = []string{"errorMessage", "errorText"}
)

func firstOf(query url.Values, names []string) string {
	for _, name := range names {
		if v := query.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// ParseCallback normalizes a gateway return query. It returns nil when no
// recognizable reference is present; every other field is optional.
func ParseCallback(query url.Values) *models.Callback {
	ref := firstOf(query, refParams)
	if ref == "" {
		return nil
	}
	return &models.Callback{
		ReferenceNumber: ref,
		RawStatus:       firstOf(query, statusParams),
		TransactionID:   firstOf(query, txnParams),
		ErrorCode:       firstOf(query, errCodeParams),
		ErrorMessage:    firstOf(query, errMsgParams),
	}
}
