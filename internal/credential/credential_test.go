package credential

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "tradegate/pkg/domain-errors"
)

type CredentialSuite struct {
	suite.Suite
}

func TestCredentialSuite(t *testing.T) {
	suite.Run(t, new(CredentialSuite))
}

func (s *CredentialSuite) TestKnownVector() {
	// SHA1 of the UTF-8 string "Secret1!abc123".
	got, err := Hash("Secret1!", "abc123")
	s.Require().NoError(err)
	s.Equal("94a67f990c177c66a033b3eb3e8cd7ff8aa42d39", got)
	s.Len(got, 40)
}

func (s *CredentialSuite) TestDeterministic() {
	a, err := Hash("Secret1!", "abc123")
	s.Require().NoError(err)
	b, err := Hash("Secret1!", "abc123")
	s.Require().NoError(err)
	s.Equal(a, b)
}

func (s *CredentialSuite) TestDistinctNoncesDistinctCredentials() {
	a, err := Hash("Secret1!", "abc123")
	s.Require().NoError(err)
	b, err := Hash("Secret1!", "xyz789")
	s.Require().NoError(err)
	s.NotEqual(a, b)
	s.Equal("0417741074209607c967fbfcb698b04439f9e6aa", b)
}

func (s *CredentialSuite) TestMultiByteInput() {
	// Multi-byte characters must hash over their UTF-8 encoding, not any
	// UTF-16 intermediate, to agree with the server.
	got, err := Hash("pässwörd☃", "n0nce")
	s.Require().NoError(err)
	s.Equal("89f39b527536555bc2aef6958d31c8676bc4d2b2", got)
}

func (s *CredentialSuite) TestEmptyNonceAllowed() {
	got, err := Hash("Secret1!", "")
	s.Require().NoError(err)
	s.Equal("ce76c9af7fadca6168403e3e363878213b48ec27", got)
}

func (s *CredentialSuite) TestEmptyPasswordRejected() {
	_, err := Hash("", "abc123")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
