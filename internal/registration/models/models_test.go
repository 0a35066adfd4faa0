package models

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"tradegate/pkg/validation"
)

type ModelsSuite struct {
	suite.Suite
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func validDraft() Draft {
	return Draft{
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		Password:        "Secret1@",
		ConfirmPassword: "Secret1@",
		Phone:           "97412345",
		UserType:        "Individual",
		AddressLine1:    "Building 4, Street 12",
		City:            "Doha",
		PostCode:        "2404",
		CivilID:         "28012345678",
		PaymentMethod:   "Credit Card",
		CaptchaAnswer:   "a1b2c3",
		AgreeTerms:      true,
	}
}

func (s *ModelsSuite) TestValidDraftPasses() {
	d := validDraft()
	s.Nil(validation.ValidateAll(&d))
}

func (s *ModelsSuite) TestFieldRules() {
	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"name with digits", func(d *Draft) { d.Name = "Jane 4" }, "name"},
		{"name too short", func(d *Draft) { d.Name = "J" }, "name"},
		{"bad email", func(d *Draft) { d.Email = "not-an-email" }, "email"},
		{"password too short", func(d *Draft) { d.Password, d.ConfirmPassword = "Ab1@", "Ab1@" }, "password"},
		{"password no symbol", func(d *Draft) { d.Password, d.ConfirmPassword = "Secret11", "Secret11" }, "password"},
		{"password mismatch", func(d *Draft) { d.ConfirmPassword = "Secret2@" }, "confirm_password"},
		{"phone letters", func(d *Draft) { d.Phone = "9741abcd" }, "phone"},
		{"phone too short", func(d *Draft) { d.Phone = "9741" }, "phone"},
		{"unknown user type", func(d *Draft) { d.UserType = "Partner" }, "user_type"},
		{"missing address", func(d *Draft) { d.AddressLine1 = "" }, "address_line1"},
		{"city with digits", func(d *Draft) { d.City = "Doha 1" }, "city"},
		{"missing city", func(d *Draft) { d.City = "" }, "city"},
		{"post code letters", func(d *Draft) { d.PostCode = "24A4" }, "post_code"},
		{"missing post code", func(d *Draft) { d.PostCode = "" }, "post_code"},
		{"civil id too short", func(d *Draft) { d.CivilID = "2801" }, "civil_id"},
		{"missing civil id", func(d *Draft) { d.CivilID = "" }, "civil_id"},
		{"unknown payment method", func(d *Draft) { d.PaymentMethod = "Cheque" }, "payment_method"},
		{"captcha wrong length", func(d *Draft) { d.CaptchaAnswer = "a1b2" }, "captcha_answer"},
		{"terms not accepted", func(d *Draft) { d.AgreeTerms = false }, "agree_terms"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			d := validDraft()
			tc.mutate(&d)
			problems := validation.ValidateAll(&d)
			s.Require().NotNil(problems)
			s.Contains(problems, tc.field)
		})
	}
}

func (s *ModelsSuite) TestToFormVocabulary() {
	d := validDraft()
	form := d.ToForm()

	s.Equal("Jane Doe", form.Get("customername"))
	s.Equal("jane@example.com", form.Get("email"))
	s.Equal("Secret1@", form.Get("password"))
	s.Equal("Secret1@", form.Get("reenter"))
	s.Equal("97412345", form.Get("phoneno"))
	s.Equal("I", form.Get("usertype"))
	s.Equal("Building 4, Street 12", form.Get("Address1"))
	s.Equal("Doha", form.Get("city"))
	s.Equal("2404", form.Get("pobox"))
	s.Equal("28012345678", form.Get("civilid"))
	s.Equal("CC", form.Get("payMode"))
	s.Equal("CC", form.Get("pMode"))
	s.Equal("a1b2c3", form.Get("captchaAnsReg"))
	s.Equal("on", form.Get("checkbox"))
}

func (s *ModelsSuite) TestToFormPayModeMapping() {
	cases := map[string]string{
		"Credit Card":   "CC",
		"Debit Card":    "DC",
		"KNET":          "KNET",
		"Bank Transfer": "BT",
		"Anything Else": "CC",
	}
	for method, want := range cases {
		d := validDraft()
		d.PaymentMethod = method
		s.Equal(want, d.ToForm().Get("payMode"), method)
	}
}

func (s *ModelsSuite) TestToFormBusinessUserType() {
	d := validDraft()
	d.UserType = "Business"
	s.Equal("B", d.ToForm().Get("usertype"))
}

func (s *ModelsSuite) TestToFormTermsOmittedWhenUnchecked() {
	d := validDraft()
	d.AgreeTerms = false
	_, present := d.ToForm()["checkbox"]
	s.False(present)
}

func (s *ModelsSuite) TestAttachmentValidation() {
	s.NoError((&Attachment{Filename: "id.pdf", ContentType: "application/pdf", Size: 1 << 20}).Validate())
	s.NoError((&Attachment{Filename: "id.gif", ContentType: "image/gif", Size: 100}).Validate())
	s.NoError((&Attachment{Filename: "id.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Size: 100}).Validate())

	s.Error((*Attachment)(nil).Validate())
	s.Error((&Attachment{Filename: "id.zip", ContentType: "application/zip", Size: 100}).Validate())
	s.Error((&Attachment{Filename: "id.pdf", ContentType: "application/pdf", Size: MaxAttachmentBytes + 1}).Validate())
}
