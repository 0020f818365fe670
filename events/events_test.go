package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/models"
)

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:            42,
		BookingNumber: "BK-AB12CD34",
		CustomerEmail: "ana@example.com",
		TotalAmount:   decimal.RequireFromString("105.5"),
		Sessions: []*models.BookingSession{
			{SessionID: 1, PricePaid: decimal.RequireFromString("60")},
			{SessionID: 2, PricePaid: decimal.RequireFromString("45.5")},
		},
	}
}

func TestBookingConfirmedMessage(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ev := NewBookingConfirmed(sampleBooking(), at)

	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Fatalf("expected uuid event id, got %q", ev.EventID)
	}

	msg, err := ev.Message()
	if err != nil {
		t.Fatalf("Message error: %v", err)
	}
	if string(msg.Key) != "BK-AB12CD34" {
		t.Fatalf("expected booking number key, got %q", msg.Key)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderEventType] != TypeBookingConfirmed {
		t.Fatalf("unexpected event type header %q", headers[HeaderEventType])
	}
	if headers[HeaderEventID] != ev.EventID {
		t.Fatalf("event id header %q does not match payload %q", headers[HeaderEventID], ev.EventID)
	}

	var decoded BookingConfirmedEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.TotalAmount != "105.50" {
		t.Fatalf("expected total 105.50, got %q", decoded.TotalAmount)
	}
	if len(decoded.Sessions) != 2 || decoded.Sessions[0].PricePaid != "60.00" {
		t.Fatalf("unexpected sessions %+v", decoded.Sessions)
	}
}

func TestNewKafkaRequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewKafka(nil, "bookings.events", zap.NewNop()); err == nil {
		t.Fatal("expected error without brokers")
	}
	if _, err := NewKafka([]string{"localhost:9092"}, "", zap.NewNop()); err == nil {
		t.Fatal("expected error without topic")
	}
}

func TestKafkaRejectsAfterClose(t *testing.T) {
	k, err := NewKafka([]string{"localhost:9092"}, "bookings.events", zap.NewNop())
	if err != nil {
		t.Fatalf("NewKafka error: %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	err = k.BookingConfirmed(context.Background(), sampleBooking())
	if !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("expected ErrPublisherClosed, got %v", err)
	}
}
