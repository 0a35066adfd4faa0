// Package models defines the registration draft, its validation rules, and
// the mapping onto the legacy form-encoded wire vocabulary.
package models

import (
	"net/url"
	"strconv"

	dErrors "tradegate/pkg/domain-errors"
)

// MaxAttachmentBytes is the upper bound for a supporting document.
const MaxAttachmentBytes = 10 << 20

// allowedAttachmentTypes are the document content types the upstream accepts.
var allowedAttachmentTypes = map[string]struct{}{
	"application/pdf":    {},
	"image/jpeg":         {},
	"image/jpg":          {},
	"image/png":          {},
	"image/gif":          {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// userTypeCodes maps the public account kind onto its single-letter wire code.
var userTypeCodes = map[string]string{
	"Individual": "I",
	"Business":   "B",
}

// payModeCodes maps the displayed payment method onto its wire code.
var payModeCodes = map[string]string{
	"Credit Card":   "CC",
	"Debit Card":    "DC",
	"KNET":          "KNET",
	"Bank Transfer": "BT",
}

// Draft carries every field collected from a prospective member. Validation
// tags mirror the upstream form rules; ToForm performs the vocabulary
// translation the server expects.
type Draft struct {
	Name            string `json:"name" validate:"required,alphaspace,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,complexity"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required,numeric,min=8,max=15"`
	UserType        string `json:"userType" validate:"required,oneof=Individual Business"`
	AddressLine1    string `json:"addressLine1" validate:"required,max=200"`
	AddressLine2    string `json:"addressLine2" validate:"omitempty,max=200"`
	City            string `json:"city" validate:"required,alphaspace,max=50"`
	PostCode        string `json:"postCode" validate:"required,numeric,min=4,max=10"`
	CivilID         string `json:"civilId" validate:"required,alphanum,min=8,max=20"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,oneof='Credit Card' 'Debit Card' KNET 'Bank Transfer'"`
	CaptchaAnswer   string `json:"captchaAnswer" validate:"required,alphanum,len=6"`
	AgreeTerms      bool   `json:"agreeTerms" validate:"required"`
}

// Attachment is the metadata of the civil ID copy every registration must
// carry. The bytes themselves travel separately.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Validate rejects attachments the upstream would bounce. A missing
// attachment is itself a violation.
func (a *Attachment) Validate() error {
	if a == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "civil ID copy is required")
	}
	if _, ok := allowedAttachmentTypes[a.ContentType]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "attachment type "+a.ContentType+" is not accepted")
	}
	if a.Size > MaxAttachmentBytes {
		return dErrors.New(dErrors.CodeInvalidInput,
			"attachment exceeds "+strconv.Itoa(MaxAttachmentBytes>>20)+"MB limit")
	}
	return nil
}

// PayModeCode returns the wire code of the chosen payment method, defaulting
// to credit card for anything unmapped.
func (d *Draft) PayModeCode() string {
	if code, ok := payModeCodes[d.PaymentMethod]; ok {
		return code
	}
	return "CC"
}

// UserTypeCode returns the single-letter account kind the server expects.
func (d *Draft) UserTypeCode() string {
	if code, ok := userTypeCodes[d.UserType]; ok {
		return code
	}
	return "I"
}

// ToForm renders the draft in the legacy field vocabulary of the upstream
// registration endpoint. The password travels in both password fields; the
// terms checkbox is serialised as a literal "on".
func (d *Draft) ToForm() url.Values {
	form := url.Values{}
	form.Set("customername", d.Name)
	form.Set("email", d.Email)
	form.Set("password", d.Password)
	form.Set("reenter", d.ConfirmPassword)
	form.Set("phoneno", d.Phone)
	form.Set("usertype", d.UserTypeCode())
	form.Set("Address1", d.AddressLine1)
	form.Set("Address2", d.AddressLine2)
	form.Set("city", d.City)
	form.Set("pobox", d.PostCode)
	form.Set("civilid", d.CivilID)
	form.Set("payMode", d.PayModeCode())
	form.Set("pMode", d.PayModeCode())
	form.Set("captchaAnsReg", d.CaptchaAnswer)
	if d.AgreeTerms {
		form.Set("checkbox", "on")
	}
	return form
}
