package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/matchapi/booking"
)

// CreateBooking reserves the requested sessions for a customer.
func (h *Handler) CreateBooking(c echo.Context) error {
	var req booking.Request
	if err := bind(c, &req); err != nil {
		return err
	}

	b, err := h.bookings.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, newBookingView(b), "Booking created successfully")
}

// CalculateTotal prices the currently bookable subset of the requested sessions.
func (h *Handler) CalculateTotal(c echo.Context) error {
	var req booking.QuoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	q, err := h.bookings.Quote(c.Request().Context(), req.SessionIDs)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newQuoteView(q), "")
}

// GetBooking returns a booking with its sessions and prices paid.
func (h *Handler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "Booking")
	if err != nil {
		return err
	}

	b, err := h.bookings.GetBooking(c.Request().Context(), id)
	if err != nil {
		return notFoundAs(err, "Booking")
	}
	return ok(c, http.StatusOK, newBookingView(b), "")
}
