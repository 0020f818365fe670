// Package events publishes booking lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/models"
)

// Header keys carried on every message.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
)

const (
	TypeBookingConfirmed = "booking.confirmed"
	schemaVersion        = "1"
	source               = "matchapi"
)

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher announces committed bookings.
type Publisher interface {
	BookingConfirmed(ctx context.Context, b *models.Booking) error
	Close() error
}

// BookingLine is one reserved session inside a BookingConfirmedEvent.
type BookingLine struct {
	SessionID int64  `json:"session_id"`
	PricePaid string `json:"price_paid"`
}

// BookingConfirmedEvent is the JSON payload of a booking.confirmed message.
type BookingConfirmedEvent struct {
	EventID       string        `json:"event_id"`
	OccurredAt    time.Time     `json:"occurred_at"`
	BookingID     int64         `json:"booking_id"`
	BookingNumber string        `json:"booking_number"`
	CustomerEmail string        `json:"customer_email"`
	TotalAmount   string        `json:"total_amount"`
	Sessions      []BookingLine `json:"sessions"`
}

// NewBookingConfirmed builds the event for b.
func NewBookingConfirmed(b *models.Booking, at time.Time) BookingConfirmedEvent {
	lines := make([]BookingLine, 0, len(b.Sessions))
	for _, bs := range b.Sessions {
		lines = append(lines, BookingLine{
			SessionID: bs.SessionID,
			PricePaid: bs.PricePaid.StringFixed(2),
		})
	}
	return BookingConfirmedEvent{
		EventID:       uuid.NewString(),
		OccurredAt:    at.UTC(),
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		CustomerEmail: b.CustomerEmail,
		TotalAmount:   b.TotalAmount.StringFixed(2),
		Sessions:      lines,
	}
}

// Message encodes ev as a Kafka message keyed by booking number.
func (ev BookingConfirmedEvent) Message() (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", TypeBookingConfirmed, err)
	}
	return kafka.Message{
		Key:   []byte(ev.BookingNumber),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(ev.EventID)},
			{Key: HeaderEventType, Value: []byte(TypeBookingConfirmed)},
			{Key: HeaderSchemaVersion, Value: []byte(schemaVersion)},
			{Key: HeaderSource, Value: []byte(source)},
		},
	}, nil
}

// Kafka writes events to a single topic.
type Kafka struct {
	writer *kafka.Writer
	mu     sync.RWMutex
	closed bool
}

// NewKafka returns a publisher for topic on brokers.
func NewKafka(brokers []string, topic string, log *zap.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	sugar := log.Sugar()
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  compress.Snappy,
			MaxAttempts:  3,
			BatchTimeout: 10 * time.Millisecond,
			Logger:       kafka.LoggerFunc(func(string, ...any) {}),
			ErrorLogger:  kafka.LoggerFunc(sugar.Errorf),
		},
	}, nil
}

func (k *Kafka) BookingConfirmed(ctx context.Context, b *models.Booking) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrPublisherClosed
	}

	msg, err := NewBookingConfirmed(b, time.Now()).Message()
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish booking %s: %w", strconv.Quote(b.BookingNumber), err)
	}
	return nil
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.writer.Close()
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) BookingConfirmed(context.Context, *models.Booking) error { return nil }
func (Noop) Close() error                                            { return nil }
