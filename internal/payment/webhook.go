package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrIgnoredEvent     = errors.New("event type is not handled")
)

// Event is a verified payment outcome for one order
type Event struct {
	ID      string
	Type    string
	OrderID uuid.UUID
	Status  domain.OrderStatus
}

// WebhookVerifier checks Stripe-Signature headers and extracts order outcomes
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, tolerance: webhook.DefaultTolerance}
}

var eventStatuses = map[stripe.EventType]domain.OrderStatus{
	stripe.EventTypeCheckoutSessionCompleted:          domain.OrderStatusPaid,
	stripe.EventTypeCheckoutSessionAsyncPaymentFailed: domain.OrderStatusFailed,
	stripe.EventTypeCheckoutSessionExpired:            domain.OrderStatusFailed,
}

// Parse verifies the payload signature and maps it to an Event.
// Unhandled event types return ErrIgnoredEvent with Type set.
func (v *WebhookVerifier) Parse(payload []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	event := &Event{ID: stripeEvent.ID, Type: string(stripeEvent.Type)}

	status, handled := eventStatuses[stripeEvent.Type]
	if !handled {
		return event, ErrIgnoredEvent
	}
	event.Status = status

	if stripeEvent.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidPayload)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	rawID := session.Metadata[MetadataOrderID]
	if rawID == "" {
		rawID = session.ClientReferenceID
	}

	orderID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: order id %q", ErrInvalidPayload, rawID)
	}
	event.OrderID = orderID

	return event, nil
}
