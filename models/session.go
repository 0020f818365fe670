package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// SessionType is the sport a session is for.
type SessionType string

const (
	SessionPadel   SessionType = "padel"
	SessionFitness SessionType = "fitness"
	SessionTennis  SessionType = "tennis"
)

// SessionTypes lists every bookable type in display order.
var SessionTypes = []SessionType{SessionPadel, SessionFitness, SessionTennis}

// ParseSessionType returns the type named by s, or false if s is not one of SessionTypes.
func ParseSessionType(s string) (SessionType, bool) {
	for _, t := range SessionTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionAvailable SessionStatus = "available"
	SessionBooked    SessionStatus = "booked"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is a trainer-led slot with a fixed capacity.
// CurrentParticipants never exceeds MaxParticipants and only grows.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                  int64           `bun:"id,pk,autoincrement" json:"id"`
	TrainerID           int64           `bun:"trainer_id,notnull" json:"trainer_id"`
	Type                SessionType     `bun:"type,notnull" json:"type"`
	StartTime           time.Time       `bun:"start_time,notnull" json:"start_time"`
	EndTime             time.Time       `bun:"end_time,notnull" json:"end_time"`
	DurationMinutes     int             `bun:"duration_minutes,notnull" json:"duration_minutes"`
	Price               decimal.Decimal `bun:"price,type:numeric(8,2),notnull" json:"price"`
	MaxParticipants     int             `bun:"max_participants,notnull,default:1" json:"max_participants"`
	CurrentParticipants int             `bun:"current_participants,notnull,default:0" json:"current_participants"`
	Status              SessionStatus   `bun:"status,notnull" json:"status"`
	Description         *string         `bun:"description" json:"description,omitempty"`
	CreatedAt           time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Trainer *Trainer `bun:"rel:belongs-to,join:trainer_id=id" json:"trainer,omitempty"`
}

// Eligible reports whether s can be offered or reserved at now:
// status available and start time strictly in the future.
func (s *Session) Eligible(now time.Time) bool {
	return s.Status == SessionAvailable && s.StartTime.After(now)
}

// Reserve takes one seat and moves the session to booked once full.
// It returns false, leaving s untouched, when no seat is left.
func (s *Session) Reserve() bool {
	if s.CurrentParticipants >= s.MaxParticipants {
		return false
	}
	s.CurrentParticipants++
	if s.CurrentParticipants == s.MaxParticipants {
		s.Status = SessionBooked
	}
	return true
}
