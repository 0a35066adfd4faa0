package models

import (
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/suite"

	dErrors "tradegate/pkg/domain-errors"
)

type ModelsSuite struct {
	suite.Suite
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func (s *ModelsSuite) TestCanonicalize() {
	cases := map[string]Status{
		"CAPTURED":  StatusSuccess,
		"captured":  StatusSuccess,
		"Approved":  StatusSuccess,
		"COMPLETED": StatusSuccess,
		"SUCCESS":   StatusSuccess,
		"FAILED":    StatusFailed,
		"declined":  StatusFailed,
		"ERROR":     StatusFailed,
		"CANCELLED": StatusCancelled,
		"pending":   StatusPending,
		" hold ":    Status("HOLD"),
		"":          StatusUnknown,
		"   ":       StatusUnknown,
	}
	for raw, want := range cases {
		s.Equal(want, Canonicalize(raw), "raw=%q", raw)
	}
}

func (s *ModelsSuite) TestTerminal() {
	s.True(StatusSuccess.Terminal())
	s.True(StatusFailed.Terminal())
	s.True(StatusCancelled.Terminal())
	s.True(StatusExpired.Terminal())
	s.False(StatusPending.Terminal())
	s.False(Status("HOLD").Terminal())
}

func (s *ModelsSuite) TestTransition() {
	intent := &Intent{
		ReferenceNumber: "REG-42",
		Status:          StatusPending,
		CreatedAt:       time.Now(),
	}

	s.Require().NoError(intent.Transition(StatusSuccess))
	s.Equal(StatusSuccess, intent.Status)

	// Duplicate delivery of the same terminal status is a no-op.
	s.NoError(intent.Transition(StatusSuccess))

	err := intent.Transition(StatusFailed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(StatusSuccess, intent.Status)
}

func (s *ModelsSuite) TestAmountParam() {
	s.Equal("12.50", (&Intent{Amount: money.New(1250, "USD")}).AmountParam())
	s.Equal("10.500", (&Intent{Amount: money.New(10500, "KWD")}).AmountParam())
	s.Equal("0.00", (&Intent{}).AmountParam())
}

func (s *ModelsSuite) TestCallbackStatus() {
	cb := &Callback{RawStatus: "captured"}
	s.Equal(StatusSuccess, cb.Status())
}
