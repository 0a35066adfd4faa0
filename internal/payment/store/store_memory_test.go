package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/suite"

	"tradegate/internal/payment/models"
	"tradegate/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryIntentStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryIntentStore()
}

func sampleIntent() *models.Intent {
	return &models.Intent{
		ReferenceNumber: "REG-77",
		Amount:          money.New(5050, "QAR"),
		GatewayName:     "QNB",
		Status:          models.StatusPending,
		CreatedAt:       time.Now(),
	}
}

func (s *MemoryStoreSuite) TestEmptySlots() {
	_, err := s.store.LoadPending(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	_, err = s.store.LoadActive(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestSlotsAreIndependent() {
	s.Require().NoError(s.store.SavePending(s.ctx, sampleIntent()))

	_, err := s.store.LoadActive(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	got, err := s.store.LoadPending(s.ctx)
	s.Require().NoError(err)
	s.Equal("REG-77", got.ReferenceNumber)
}

func (s *MemoryStoreSuite) TestLoadReturnsCopy() {
	s.Require().NoError(s.store.SaveActive(s.ctx, sampleIntent()))

	first, err := s.store.LoadActive(s.ctx)
	s.Require().NoError(err)
	first.Status = models.StatusFailed

	second, err := s.store.LoadActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, second.Status)
}

func (s *MemoryStoreSuite) TestClearEmptiesBothSlots() {
	s.Require().NoError(s.store.SavePending(s.ctx, sampleIntent()))
	s.Require().NoError(s.store.SaveActive(s.ctx, sampleIntent()))
	s.Require().NoError(s.store.Clear(s.ctx))

	_, err := s.store.LoadPending(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
	_, err = s.store.LoadActive(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestLastWriterWins() {
	s.Require().NoError(s.store.SaveActive(s.ctx, sampleIntent()))

	updated := sampleIntent()
	updated.Status = models.StatusSuccess
	s.Require().NoError(s.store.SaveActive(s.ctx, updated))

	got, err := s.store.LoadActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.StatusSuccess, got.Status)
}

func TestIntentRoundTrip(t *testing.T) {
	intent := sampleIntent()
	intent.GatewayTransactionID = "TX-4"
	intent.CustomerName = "Jane Doe"
	intent.CustomerEmail = "jane@example.com"

	raw, err := encodeIntent(intent)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeIntent(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.ReferenceNumber != intent.ReferenceNumber ||
		got.Amount.Amount() != intent.Amount.Amount() ||
		got.Amount.Currency().Code != "QAR" ||
		got.GatewayTransactionID != "TX-4" ||
		got.CustomerName != "Jane Doe" ||
		got.CustomerEmail != "jane@example.com" ||
		got.Status != intent.Status ||
		!got.CreatedAt.Equal(intent.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, intent)
	}
}

func TestRedisIntentTTLOutlivesTimeout(t *testing.T) {
	timeout := 15 * time.Minute
	s := NewRedisIntentStore(nil, "sess-1", timeout)
	if s.ttl <= timeout {
		t.Fatalf("ttl %v must outlive the payment timeout %v", s.ttl, timeout)
	}

	s = NewRedisIntentStore(nil, "sess-1", 0)
	if s.ttl != defaultIntentTTL {
		t.Fatalf("ttl %v, want default %v", s.ttl, defaultIntentTTL)
	}
}
