package handlers

import (
	"time"

	"github.com/padraicbc/matchapi/booking"
	"github.com/padraicbc/matchapi/catalog"
	"github.com/padraicbc/matchapi/models"
)

// Money is rendered as a fixed two-decimal string, e.g. "60.00".

type trainerView struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Specializations []string  `json:"specializations"`
	Bio             *string   `json:"bio"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newTrainerView(t *models.Trainer) *trainerView {
	if t == nil {
		return nil
	}
	return &trainerView{
		ID:              t.ID,
		Name:            t.Name,
		Email:           t.Email,
		Phone:           t.Phone,
		Specializations: nonNil(t.Specializations),
		Bio:             t.Bio,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type trainerSummary struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
}

type trainerProfile struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Bio             *string  `json:"bio"`
	Specializations []string `json:"specializations"`
}

type sessionView struct {
	ID                  int64        `json:"id"`
	TrainerID           int64        `json:"trainer_id"`
	Type                string       `json:"type"`
	StartTime           time.Time    `json:"start_time"`
	EndTime             time.Time    `json:"end_time"`
	DurationMinutes     int          `json:"duration_minutes"`
	Price               string       `json:"price"`
	MaxParticipants     int          `json:"max_participants"`
	CurrentParticipants int          `json:"current_participants"`
	Status              string       `json:"status"`
	Description         *string      `json:"description"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	Trainer             *trainerView `json:"trainer,omitempty"`
}

func newSessionView(s *models.Session) sessionView {
	return sessionView{
		ID:                  s.ID,
		TrainerID:           s.TrainerID,
		Type:                string(s.Type),
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		DurationMinutes:     s.DurationMinutes,
		Price:               s.Price.StringFixed(2),
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		Status:              string(s.Status),
		Description:         s.Description,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		Trainer:             newTrainerView(s.Trainer),
	}
}

// pageView mirrors a length-aware paginator. From and To are null on an
// empty page.
type pageView struct {
	CurrentPage int           `json:"current_page"`
	Data        []sessionView `json:"data"`
	PerPage     int           `json:"per_page"`
	Total       int           `json:"total"`
	LastPage    int           `json:"last_page"`
	From        *int          `json:"from"`
	To          *int          `json:"to"`
}

type filtersView struct {
	Types    []models.SessionType `json:"types"`
	Trainers []trainerSummary     `json:"trainers"`
}

type listingResponse struct {
	Success bool        `json:"success"`
	Data    pageView    `json:"data"`
	Filters filtersView `json:"filters"`
}

func newListingResponse(l *catalog.Listing) listingResponse {
	page := pageView{
		CurrentPage: l.Page,
		Data:        make([]sessionView, 0, len(l.Sessions)),
		PerPage:     l.PerPage,
		Total:       l.Total,
		LastPage:    l.LastPage(),
	}
	for i := range l.Sessions {
		page.Data = append(page.Data, newSessionView(&l.Sessions[i]))
	}
	if len(l.Sessions) > 0 {
		from, to := l.From(), l.To()
		page.From, page.To = &from, &to
	}

	trainers := make([]trainerSummary, 0, len(l.Trainers))
	for _, t := range l.Trainers {
		trainers = append(trainers, trainerSummary{ID: t.ID, Name: t.Name, Specializations: nonNil(t.Specializations)})
	}

	return listingResponse{
		Success: true,
		Data:    page,
		Filters: filtersView{Types: l.Types, Trainers: trainers},
	}
}

type bookedSessionView struct {
	sessionView
	PricePaid string `json:"price_paid"`
}

type bookingView struct {
	ID               int64               `json:"id"`
	BookingNumber    string              `json:"booking_number"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email"`
	CustomerPhone    string              `json:"customer_phone"`
	SelectedSessions []int64             `json:"selected_sessions"`
	TotalAmount      string              `json:"total_amount"`
	Status           string              `json:"status"`
	Notes            *string             `json:"notes"`
	TermsAccepted    bool                `json:"terms_accepted"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Sessions         []bookedSessionView `json:"sessions"`
}

func newBookingView(b *models.Booking) bookingView {
	v := bookingView{
		ID:               b.ID,
		BookingNumber:    b.BookingNumber,
		CustomerName:     b.CustomerName,
		CustomerEmail:    b.CustomerEmail,
		CustomerPhone:    b.CustomerPhone,
		SelectedSessions: nonNil(b.SelectedSessions),
		TotalAmount:      b.TotalAmount.StringFixed(2),
		Status:           string(b.Status),
		Notes:            b.Notes,
		TermsAccepted:    b.TermsAccepted,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		Sessions:         make([]bookedSessionView, 0, len(b.Sessions)),
	}
	for _, bs := range b.Sessions {
		if bs.Session == nil {
			continue
		}
		v.Sessions = append(v.Sessions, bookedSessionView{
			sessionView: newSessionView(bs.Session),
			PricePaid:   bs.PricePaid.StringFixed(2),
		})
	}
	return v
}

type quoteLineView struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	Trainer         string    `json:"trainer"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           string    `json:"price"`
}

type quoteView struct {
	Total        string          `json:"total"`
	Breakdown    []quoteLineView `json:"breakdown"`
	SessionCount int             `json:"session_count"`
}

func newQuoteView(q *booking.Quote) quoteView {
	v := quoteView{
		Total:        q.Total.StringFixed(2),
		Breakdown:    make([]quoteLineView, 0, len(q.Breakdown)),
		SessionCount: q.Count(),
	}
	for _, l := range q.Breakdown {
		v.Breakdown = append(v.Breakdown, quoteLineView{
			ID:              l.ID,
			Type:            string(l.Type),
			Trainer:         l.Trainer,
			StartTime:       l.StartTime,
			DurationMinutes: l.DurationMinutes,
			Price:           l.Price.StringFixed(2),
		})
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
