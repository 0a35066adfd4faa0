package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/suite"

	"tradegate/internal/payment/models"
	"tradegate/internal/payment/store"
	dErrors "tradegate/pkg/domain-errors"
)

func testRegistry() *Registry {
	return NewRegistry(Config{
		KNETMerchantID:      "knet-m1",
		OmanNetMerchantID:   "oman-m1",
		CCAvenueMerchantID:  "cca-m1",
		CyberSourceMerchant: "cs-m1",
		QNBMerchantID:       "qnb-m1",
		QNBSecretKey:        "qnb-secret",
	})
}

type GatewaySuite struct {
	suite.Suite
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) TestResolveCaseInsensitive() {
	r := testRegistry()
	s.Equal("KNET", r.Resolve("knet").Name)
	s.Equal("OmanNet", r.Resolve("OMANNET").Name)
}

func (s *GatewaySuite) TestResolveUnknownFallsBackToDefault() {
	r := testRegistry()
	s.Equal("QNB", r.Resolve("").Name)
	s.Equal("QNB", r.Resolve("NoSuchBank").Name)
}

func (s *GatewaySuite) TestCommonParams() {
	r := testRegistry()
	params := BuildRedirectParams(r.Resolve("CCAvenue"), "REG-5", "50.50", "QAR",
		"https://portal.example.com", Customer{})

	s.Equal("cca-m1", params.Get("merchant_id"))
	s.Equal("REG-5", params.Get("order_id"))
	s.Equal("50.50", params.Get("amount"))
	s.Equal("QAR", params.Get("currency"))
	s.Equal("https://portal.example.com/payment/success", params.Get("redirect_url"))
	s.Equal("https://portal.example.com/payment/failed", params.Get("cancel_url"))
	s.Equal("EN", params.Get("language"))
}

func (s *GatewaySuite) TestKNETExtras() {
	r := testRegistry()
	params := BuildRedirectParams(r.Resolve("KNET"), "REG-5", "10.500", "KWD",
		"https://portal.example.com", Customer{})

	s.Equal("REG-5", params.Get("paymentid"))
	s.Equal("REG-5", params.Get("trackid"))
	s.Equal("AUCTION_REGISTRATION", params.Get("udf1"))
}

func (s *GatewaySuite) TestQNBExtras() {
	r := testRegistry()
	customer := Customer{Name: "Jane Doe", Email: "jane@example.com"}
	params := BuildRedirectParams(r.Resolve("QNB"), "REG-5", "50.50", "QAR",
		"https://portal.example.com", customer)

	s.Equal("REG-5", params.Get("merchantRef"))
	s.Equal("jane@example.com", params.Get("customerEmail"))
	s.Equal("Jane Doe", params.Get("customerName"))
	s.Equal(Signature("qnb-m1REG-550.50", "qnb-secret"), params.Get("signature"))
}

func TestSignature(t *testing.T) {
	got := Signature("merchant1REF-9100.00", "topsecret")

	if len(got) == 0 || len(got) > 32 {
		t.Fatalf("unexpected signature length %d", len(got))
	}
	for i := 0; i < len(got); i++ {
		ch := got[i]
		alnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !alnum {
			t.Fatalf("non-alphanumeric byte %q in signature", ch)
		}
	}
	if got != Signature("merchant1REF-9100.00", "topsecret") {
		t.Fatal("signature is not deterministic")
	}
	if got == Signature("merchant1REF-9100.00", "otherkey") {
		t.Fatal("signature ignores the key")
	}
}

type fakeNavigator struct {
	form *RedirectForm
	err  error
}

func (f *fakeNavigator) Navigate(_ context.Context, form *RedirectForm) error {
	if f.err != nil {
		return f.err
	}
	f.form = form
	return nil
}

type AdapterSuite struct {
	suite.Suite
	ctx       context.Context
	intents   *store.InMemoryIntentStore
	navigator *fakeNavigator
	adapter   *Adapter
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterSuite))
}

func (s *AdapterSuite) SetupTest() {
	s.ctx = context.Background()
	s.intents = store.NewInMemoryIntentStore()
	s.navigator = &fakeNavigator{}
	s.adapter = NewAdapter(testRegistry(), s.intents, s.navigator, "https://portal.example.com")
}

func intentQNB() *models.Intent {
	return &models.Intent{
		ReferenceNumber: "REG-5",
		Amount:          money.New(5050, "QAR"),
		GatewayName:     "QNB",
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		Status:          models.StatusPending,
		CreatedAt:       time.Now(),
	}
}

func (s *AdapterSuite) TestBuildRedirectForm() {
	form := s.adapter.BuildRedirectForm(intentQNB())

	s.Equal(http.MethodPost, form.Method)
	s.Equal("https://paygate.qnb.com.qa/hosted/pay", form.URL)
	s.Equal("50.50", form.Fields.Get("amount"))
	s.Equal("QAR", form.Fields.Get("currency"))
}

func (s *AdapterSuite) TestRedirectPersistsBeforeNavigating() {
	form, err := s.adapter.Redirect(s.ctx, intentQNB())
	s.Require().NoError(err)
	s.Equal(form, s.navigator.form)

	pending, err := s.intents.LoadPending(s.ctx)
	s.Require().NoError(err)
	s.Equal("REG-5", pending.ReferenceNumber)

	active, err := s.intents.LoadActive(s.ctx)
	s.Require().NoError(err)
	s.Equal("REG-5", active.ReferenceNumber)
}

func (s *AdapterSuite) TestRedirectNavigationFailure() {
	s.navigator.err = errors.New("window gone")

	_, err := s.adapter.Redirect(s.ctx, intentQNB())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeGatewayInitiation))
}
