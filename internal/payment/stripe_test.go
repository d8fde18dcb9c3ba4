package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStripe struct {
	calls atomic.Int32
	form  url.Values
}

func (f *fakeStripe) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		_ = r.ParseForm()
		f.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func newTestGateway(t *testing.T, status int, body string) (*StripeGateway, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{}
	server := httptest.NewServer(fake.handler(status, body))
	t.Cleanup(server.Close)

	gw := NewStripeGateway(StripeConfig{
		SecretKey:  "sk_test_123",
		Currency:   "usd",
		SuccessURL: "https://t.me/shop_bot",
		CancelURL:  "https://t.me/shop_bot",
		MinAmount:  decimal.RequireFromString("0.50"),
		APIURL:     server.URL,
	}, server.Client(), zap.NewNop())

	return gw, fake
}

func TestCreatePaymentReturnsRedirectURL(t *testing.T) {
	gw, fake := newTestGateway(t, http.StatusOK,
		`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	orderID := uuid.New()

	p, err := gw.CreatePayment(context.Background(), decimal.RequireFromString("6500.00"), orderID)
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", p.RedirectURL)
	assert.Equal(t, "cs_test_1", p.ID)
	assert.Equal(t, int32(1), fake.calls.Load())
	assert.Equal(t, "650000", fake.form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, orderID.String(), fake.form.Get("metadata[order_id]"))
	assert.Equal(t, orderID.String(), fake.form.Get("client_reference_id"))
	assert.Equal(t, "payment", fake.form.Get("mode"))
}

func TestCreatePaymentDecline(t *testing.T) {
	gw, _ := newTestGateway(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error","code":"amount_too_large","message":"Amount too large"}}`)

	_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(10), uuid.New())

	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "amount_too_large", decline.Code)
	assert.Equal(t, "Amount too large", decline.Message)
}

// Feature: storefront, Property 50: Sub-minimum amounts never reach the processor
// Validates: create_payment minimum amount check
func TestProperty_BelowMinimumMakesNoCall(t *testing.T) {
	gw, fake := newTestGateway(t, http.StatusOK, `{"id":"cs","url":"https://x"}`)

	properties := gopter.NewProperties(nil)
	properties.Property("amounts under 0.50 fail with ErrAmountBelowMinimum", prop.ForAll(
		func(cents int64) bool {
			_, err := gw.CreatePayment(context.Background(), decimal.New(cents, -2), uuid.New())
			return assert.ErrorIs(t, err, ErrAmountBelowMinimum)
		},
		gen.Int64Range(-1000, 49),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))

	assert.Equal(t, int32(0), fake.calls.Load())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(650000), MinorUnits(decimal.RequireFromString("6500")))
	assert.Equal(t, int64(50), MinorUnits(decimal.RequireFromString("0.5")))
	assert.Equal(t, int64(1235), MinorUnits(decimal.RequireFromString("12.345")))
}
