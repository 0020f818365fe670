package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/matchapi/booking"
	"github.com/padraicbc/matchapi/catalog"
	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
)

// Catalog is the read side used by the session routes.
type Catalog interface {
	ListAvailable(ctx context.Context, f store.SessionFilter, page int) (*catalog.Listing, error)
	Session(ctx context.Context, id int64) (*models.Session, error)
	Trainers(ctx context.Context, typ models.SessionType) ([]models.Trainer, error)
}

// Bookings is the write side used by the booking routes.
type Bookings interface {
	CreateBooking(ctx context.Context, req booking.Request) (*models.Booking, error)
	Quote(ctx context.Context, ids []int64) (*booking.Quote, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	catalog  Catalog
	bookings Bookings
	db       Pinger
}

// New creates a Handler.
func New(cat Catalog, bookings Bookings, db Pinger) *Handler {
	return &Handler{catalog: cat, bookings: bookings, db: db}
}

// Register mounts every route on e. The catalog and booking routes are also
// served under /api for clients of the previous backend.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		g.GET("/sessions", h.ListSessions)
		g.GET("/sessions/trainers", h.SessionTrainers)
		g.GET("/sessions/:id", h.GetSession)

		g.POST("/bookings", h.CreateBooking)
		g.POST("/bookings/calculate-total", h.CalculateTotal)
		g.GET("/bookings/:id", h.GetBooking)
	}
}
