package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a customer's reservation of one or more sessions.
// TotalAmount is fixed at creation and equals the sum of its links' PricePaid.
type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID               int64           `bun:"id,pk,autoincrement" json:"id"`
	BookingNumber    string          `bun:"booking_number,notnull,unique" json:"booking_number"`
	CustomerName     string          `bun:"customer_name,notnull" json:"customer_name"`
	CustomerEmail    string          `bun:"customer_email,notnull" json:"customer_email"`
	CustomerPhone    string          `bun:"customer_phone,notnull" json:"customer_phone"`
	SelectedSessions []int64         `bun:"selected_sessions,array,notnull" json:"selected_sessions"`
	TotalAmount      decimal.Decimal `bun:"total_amount,type:numeric(10,2),notnull" json:"total_amount"`
	Status           BookingStatus   `bun:"status,notnull" json:"status"`
	Notes            *string         `bun:"notes" json:"notes,omitempty"`
	TermsAccepted    bool            `bun:"terms_accepted,notnull,default:false" json:"terms_accepted"`
	CreatedAt        time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Sessions []*BookingSession `bun:"-" json:"sessions,omitempty"`
}

// BookingSession links a booking to one session and snapshots the price
// in effect when the booking was made.
type BookingSession struct {
	bun.BaseModel `bun:"table:booking_sessions,alias:bs"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	BookingID int64           `bun:"booking_id,notnull,unique:booking_sessions_pair" json:"booking_id"`
	SessionID int64           `bun:"session_id,notnull,unique:booking_sessions_pair" json:"session_id"`
	PricePaid decimal.Decimal `bun:"price_paid,type:numeric(8,2),notnull" json:"price_paid"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Session *Session `bun:"rel:belongs-to,join:session_id=id" json:"session,omitempty"`
}
