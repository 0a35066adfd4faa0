// Package service coordinates new-member registration: exhaustive draft
// validation, the captcha round, the payment disclaimer, and finally the
// handoff into payment initiation. The disclaimer gate is strict: no network
// side effect happens before explicit acceptance, and a dismissed disclaimer
// leaves no state behind.
package service

import (
	"context"
	"log/slog"
	"net/url"

	authmodels "tradegate/internal/auth/models"
	paymentmodels "tradegate/internal/payment/models"
	"tradegate/internal/registration/captcha"
	"tradegate/internal/registration/models"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/validation"
)

// PaymentInitiator starts the registration payment upstream.
type PaymentInitiator interface {
	InitiateRegistration(ctx context.Context, form url.Values, countryCode string) (*paymentmodels.Intent, error)
}

// EmailChecker answers whether an address is free to register.
type EmailChecker interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
}

// Authenticator logs the freshly registered member in after payment.
type Authenticator interface {
	Login(ctx context.Context, email, password, countryCode string) (*authmodels.AuthResult, error)
}

// Coordinator owns the registration flow up to payment initiation.
type Coordinator struct {
	initiator   PaymentInitiator
	emails      EmailChecker
	auth        Authenticator
	countryCode string
	logger      *slog.Logger
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEmailChecker enables the availability pre-check during validation.
func WithEmailChecker(checker EmailChecker) Option {
	return func(c *Coordinator) {
		c.emails = checker
	}
}

// WithAuthenticator enables post-payment login with the draft credentials.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Coordinator) {
		c.auth = auth
	}
}

// New constructs the coordinator.
func New(initiator PaymentInitiator, countryCode string, opts ...Option) *Coordinator {
	c := &Coordinator{
		initiator:   initiator,
		countryCode: countryCode,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateDraft checks every rule and reports every violation together, one
// message per field, so the caller can mark all invalid inputs at once. The
// captcha answer and attachment are included; when an email checker is
// configured a taken address is reported as a recoverable field error. A nil
// map means the draft is submittable.
func (c *Coordinator) ValidateDraft(ctx context.Context, draft *models.Draft, attachment *models.Attachment, challenge *captcha.Challenge) map[string]string {
	problems := validation.ValidateAll(draft)
	if problems == nil {
		problems = make(map[string]string)
	}

	if err := attachment.Validate(); err != nil {
		problems["attachment"] = err.Error()
	}

	if _, ok := problems["captcha_answer"]; !ok && !challenge.Match(draft.CaptchaAnswer) {
		problems["captcha_answer"] = "captcha answer does not match"
	}

	if _, ok := problems["email"]; !ok && c.emails != nil {
		available, err := c.emails.CheckEmail(ctx, draft.Email)
		switch {
		case err != nil:
			// Availability is advisory; the registration endpoint is the
			// authority and will reject a duplicate anyway.
			c.logger.WarnContext(ctx, "email availability check failed", "error", err)
		case !available:
			problems["email"] = "email is already registered"
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

// PendingSubmission is a validated draft waiting on the payment disclaimer.
// It holds the draft credentials so the member can be logged in once the
// payment settles.
type PendingSubmission struct {
	coordinator *Coordinator
	draft       models.Draft
	accepted    bool
}

// Prepare gates a draft behind the disclaimer. The draft and attachment are
// revalidated here: an invalid or captcha-failing submission never reaches
// payment initiation, whatever the caller did with ValidateDraft.
func (c *Coordinator) Prepare(draft *models.Draft, attachment *models.Attachment, challenge *captcha.Challenge) (*PendingSubmission, error) {
	if err := validation.Validate(draft); err != nil {
		return nil, err
	}
	if err := attachment.Validate(); err != nil {
		return nil, err
	}
	if !challenge.Match(draft.CaptchaAnswer) {
		return nil, dErrors.New(dErrors.CodeCaptchaMismatch, "captcha answer does not match")
	}
	return &PendingSubmission{coordinator: c, draft: *draft}, nil
}

// Accept records the disclaimer acceptance and initiates the payment. On
// failure no payment intent exists anywhere; the caller stays on the form
// with the reported error.
func (p *PendingSubmission) Accept(ctx context.Context) (*paymentmodels.Intent, error) {
	c := p.coordinator
	p.accepted = true

	intent, err := c.initiator.InitiateRegistration(ctx, p.draft.ToForm(), c.countryCode)
	if err != nil {
		c.logger.ErrorContext(ctx, "payment initiation failed", "error", err)
		if dErrors.HasCode(err, dErrors.CodeGatewayInitiation) || dErrors.HasCode(err, dErrors.CodeNetwork) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeGatewayInitiation, "payment could not be started")
	}

	// The gateway handoff needs the registrant's identity after this flow's
	// state is gone, so it rides on the intent.
	intent.CustomerName = p.draft.Name
	intent.CustomerEmail = p.draft.Email

	c.logger.InfoContext(ctx, "registration payment initiated",
		"reference", intent.ReferenceNumber, "gateway", intent.GatewayName)
	return intent, nil
}

// Dismiss abandons the submission before any network side effect. The user
// backs out of the disclaimer and the form state stays untouched.
func (p *PendingSubmission) Dismiss() {
	p.accepted = false
}

// Customer exposes the identity fields the gateway handoff needs.
func (p *PendingSubmission) Customer() (name, email string) {
	return p.draft.Name, p.draft.Email
}

// CompleteLogin signs the member in with the credentials captured in the
// draft. Called after the payment resolves successfully; a no-op error when
// no authenticator is configured.
func (p *PendingSubmission) CompleteLogin(ctx context.Context) (*authmodels.AuthResult, error) {
	c := p.coordinator
	if c.auth == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no authenticator configured")
	}
	return c.auth.Login(ctx, p.draft.Email, p.draft.Password, c.countryCode)
}
