// Package events wraps kafka-go for publishing and consuming JSON events.
package events

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrDisabled = errors.New("kafka disabled")

type Client struct {
	Brokers []string
}

func NewClient(brokers []string) *Client {
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter returns a writer hashing on the message key. An empty topic lets
// each message carry its own.
func (c *Client) NewWriter(topic string) (*kafka.Writer, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}, nil
}

func (c *Client) NewReader(topic, groupID string) (*kafka.Reader, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	}), nil
}

// Writer is the publishing side of *kafka.Writer
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Reader is the consumer group side of *kafka.Reader
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Handler processes one message. A returned error is logged and the message
// is still committed so a bad payload cannot stall the partition.
type Handler func(ctx context.Context, msg kafka.Message) error

// Consume fetches and handles messages until ctx is cancelled
func Consume(ctx context.Context, reader Reader, handle Handler, logger *zap.Logger) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := handle(ctx, msg); err != nil {
			logger.Error("Failed to handle event",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
