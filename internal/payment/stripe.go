package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// MetadataOrderID is the checkout session metadata key carrying the order id
const MetadataOrderID = "order_id"

type StripeConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
	MinAmount  decimal.Decimal
	// APIURL overrides the Stripe API base URL. Empty means the public API.
	APIURL string
}

// StripeGateway creates Stripe Checkout Sessions in payment mode
type StripeGateway struct {
	api    *client.API
	cfg    StripeConfig
	logger *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, httpClient *http.Client, logger *zap.Logger) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeGateway{api: api, cfg: cfg, logger: logger}
}

func (g *StripeGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, orderID uuid.UUID) (*Payment, error) {
	if err := CheckMinimum(amount, g.cfg.MinAmount); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(orderID.String()),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order %s", orderID)),
					},
					UnitAmount: stripe.Int64(MinorUnits(amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderID, orderID.String())

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			g.logger.Warn("Stripe declined checkout session",
				zap.String("order_id", orderID.String()),
				zap.String("code", string(stripeErr.Code)),
				zap.Int("status", stripeErr.HTTPStatusCode),
			)
			return nil, &DeclineError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info("Checkout session created",
		zap.String("order_id", orderID.String()),
		zap.String("session_id", session.ID),
		zap.String("amount", amount.StringFixed(2)),
	)

	return &Payment{
		ID:          session.ID,
		OrderID:     orderID,
		Amount:      amount,
		RedirectURL: session.URL,
	}, nil
}

// MinorUnits converts a two-decimal currency amount to its smallest unit
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}
