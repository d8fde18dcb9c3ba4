package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/ledger"
	"storefront/internal/metrics"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome tells the caller what happened to an input
type Outcome string

const (
	OutcomeIgnored      Outcome = "ignored"
	OutcomePrompt       Outcome = "prompt"
	OutcomeEmptyCart    Outcome = "empty_cart"
	OutcomePaymentError Outcome = "payment_error"
	OutcomeSaveFailed   Outcome = "save_failed"
	OutcomeCompleted    Outcome = "completed"
)

const (
	PromptName        = "Please enter your name:"
	PromptAddress     = "Please enter your delivery address:"
	PromptPhone       = "Please enter your phone number:"
	MessageEmptyCart  = "Your cart is empty."
	MessageSaveFailed = "We could not save your order. Please try again later."
)

// Reply is the text to show the user, plus the order and payment link on completion
type Reply struct {
	Outcome    Outcome
	Text       string
	PaymentURL string
	Order      *domain.Order
}

// Carts is the cart access the conversation needs
type Carts interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type Conversation struct {
	carts    Carts
	sessions SessionStore
	gateway  payment.Gateway
	sink     ledger.Sink
	metrics  *metrics.BotMetrics
	logger   *zap.Logger
	newID    func() uuid.UUID
}

func NewConversation(
	carts Carts,
	sessions SessionStore,
	gateway payment.Gateway,
	sink ledger.Sink,
	m *metrics.BotMetrics,
	logger *zap.Logger,
) *Conversation {
	return &Conversation{
		carts:    carts,
		sessions: sessions,
		gateway:  gateway,
		sink:     sink,
		metrics:  m,
		logger:   logger,
		newID:    uuid.New,
	}
}

// ViewCart enters the conversation at the cart screen and returns the cart to render.
// Any checkout in progress is discarded.
func (c *Conversation) ViewCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := c.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, userID, &Session{State: StateViewingCart}); err != nil {
		return nil, err
	}
	return cart, nil
}

// Begin starts collecting delivery details. Only valid from the cart screen.
func (c *Conversation) Begin(ctx context.Context, userID int64) (*Reply, error) {
	session, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.State != StateViewingCart {
		return &Reply{Outcome: OutcomeIgnored}, nil
	}

	cart, err := c.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		c.count(OutcomeEmptyCart)
		return &Reply{Outcome: OutcomeEmptyCart, Text: MessageEmptyCart}, nil
	}

	if err := c.advance(ctx, userID, session); err != nil {
		return nil, err
	}
	return &Reply{Outcome: OutcomePrompt, Text: PromptName}, nil
}

// HandleText feeds a text message into the conversation. Input that does not
// belong to an awaiting state is ignored.
func (c *Conversation) HandleText(ctx context.Context, userID int64, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Reply{Outcome: OutcomeIgnored}, nil
	}

	session, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &Reply{Outcome: OutcomeIgnored}, nil
	}

	switch session.State {
	case StateAwaitingName:
		session.Name = text
		if err := c.advance(ctx, userID, session); err != nil {
			return nil, err
		}
		return &Reply{Outcome: OutcomePrompt, Text: PromptAddress}, nil

	case StateAwaitingAddress:
		session.Address = text
		if err := c.advance(ctx, userID, session); err != nil {
			return nil, err
		}
		return &Reply{Outcome: OutcomePrompt, Text: PromptPhone}, nil

	case StateAwaitingPhone:
		session.Phone = text
		return c.finalize(ctx, userID, session)
	}

	return &Reply{Outcome: OutcomeIgnored}, nil
}

// Cancel abandons the conversation and returns the user to catalog browsing
func (c *Conversation) Cancel(ctx context.Context, userID int64) error {
	return c.sessions.Delete(ctx, userID)
}

func (c *Conversation) advance(ctx context.Context, userID int64, session *Session) error {
	to, ok := next[session.State]
	if !ok {
		return fmt.Errorf("no state follows %s", session.State)
	}
	session.State = to
	return c.sessions.Save(ctx, userID, session)
}

func (c *Conversation) finalize(ctx context.Context, userID int64, session *Session) (*Reply, error) {
	cart, err := c.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		if err := c.sessions.Save(ctx, userID, &Session{State: StateViewingCart}); err != nil {
			return nil, err
		}
		c.count(OutcomeEmptyCart)
		return &Reply{Outcome: OutcomeEmptyCart, Text: MessageEmptyCart}, nil
	}

	// a retry of the same cart resubmits the same order id
	if key := cartKey(cart); session.OrderID == uuid.Nil || session.CartKey != key {
		session.OrderID = c.newID()
		session.CartKey = key
	}
	if err := c.sessions.Save(ctx, userID, session); err != nil {
		return nil, err
	}

	order := domain.NewOrderFromCart(session.OrderID, userID, cart, session.Name, session.Address, session.Phone)

	pay, err := c.gateway.CreatePayment(ctx, order.Total, order.ID)
	if err != nil {
		c.logger.Warn("Payment creation failed",
			zap.Int64("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.String("total", order.Total.StringFixed(2)),
			zap.Error(err),
		)
		c.count(OutcomePaymentError)
		return &Reply{Outcome: OutcomePaymentError, Text: paymentErrorText(err)}, nil
	}

	if err := c.sink.Save(ctx, order); err != nil {
		c.logger.Error("Failed to record order",
			zap.Int64("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		c.count(OutcomeSaveFailed)
		return &Reply{Outcome: OutcomeSaveFailed, Text: MessageSaveFailed}, nil
	}

	if err := c.carts.Clear(ctx, userID); err != nil {
		c.logger.Error("Failed to clear cart after checkout",
			zap.Int64("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
	if err := c.sessions.Delete(ctx, userID); err != nil {
		c.logger.Error("Failed to reset checkout session",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	c.logger.Info("Checkout completed",
		zap.Int64("user_id", userID),
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.StringFixed(2)),
	)
	c.count(OutcomeCompleted)

	return &Reply{
		Outcome:    OutcomeCompleted,
		Text:       fmt.Sprintf("Order %s created.\nTotal: %s\nFollow the link to pay.", order.ID, order.Total.StringFixed(2)),
		PaymentURL: pay.RedirectURL,
		Order:      order,
	}, nil
}

func (c *Conversation) count(outcome Outcome) {
	if c.metrics != nil {
		c.metrics.Checkouts.WithLabelValues(string(outcome)).Inc()
	}
}

// cartKey identifies the cart contents an order id was reserved for
func cartKey(cart *domain.Cart) string {
	var b strings.Builder
	for _, item := range cart.Items {
		fmt.Fprintf(&b, "%d:%d:%s;", item.Product.ID, item.Quantity, item.Product.Price.String())
	}
	return b.String()
}

func paymentErrorText(err error) string {
	var decline *payment.DeclineError
	switch {
	case errors.Is(err, payment.ErrAmountBelowMinimum):
		return "The order total is below the minimum payment amount."
	case errors.As(err, &decline):
		return "Payment error: " + decline.Message
	default:
		return "Payment service is unavailable. Please try again later."
	}
}
