package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
	"github.com/padraicbc/matchapi/validation"
)

const dateLayout = "2006-01-02"

// ListSessions returns a page of bookable sessions with filter metadata.
func (h *Handler) ListSessions(c echo.Context) error {
	f, page, err := parseSessionFilter(c)
	if err != nil {
		return err
	}

	l, err := h.catalog.ListAvailable(c.Request().Context(), f, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListingResponse(l))
}

// GetSession returns one session with its trainer.
func (h *Handler) GetSession(c echo.Context) error {
	id, err := pathID(c, "Session")
	if err != nil {
		return err
	}

	s, err := h.catalog.Session(c.Request().Context(), id)
	if err != nil {
		return notFoundAs(err, "Session")
	}
	return ok(c, http.StatusOK, newSessionView(s), "")
}

// SessionTrainers lists active trainers teaching the required type parameter.
func (h *Handler) SessionTrainers(c echo.Context) error {
	raw := c.QueryParam("type")
	if raw == "" {
		return validation.Errors{"type": {"The type field is required."}}
	}
	typ, valid := models.ParseSessionType(raw)
	if !valid {
		return validation.Errors{"type": {"The selected type is invalid."}}
	}

	trainers, err := h.catalog.Trainers(c.Request().Context(), typ)
	if err != nil {
		return err
	}

	out := make([]trainerProfile, 0, len(trainers))
	for _, t := range trainers {
		out = append(out, trainerProfile{
			ID:              t.ID,
			Name:            t.Name,
			Bio:             t.Bio,
			Specializations: nonNil(t.Specializations),
		})
	}
	return ok(c, http.StatusOK, out, "")
}

// parseSessionFilter reads the listing query. Unknown session types are
// ignored; malformed ids, dates and prices are validation errors. An
// invalid page falls back to the first.
func parseSessionFilter(c echo.Context) (store.SessionFilter, int, error) {
	var f store.SessionFilter
	verrs := validation.Errors{}

	if typ, valid := models.ParseSessionType(c.QueryParam("type")); valid {
		f.Type = typ
	}

	if raw := c.QueryParam("trainer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			verrs.Add("trainer_id", "The trainer id field must be an integer.")
		}
		f.TrainerID = id
	}

	if raw := c.QueryParam("date_from"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			verrs.Add("date_from", "The date from field must be a valid date.")
		}
		f.From = d
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			verrs.Add("date_to", "The date to field must be a valid date.")
		} else {
			f.Until = d.AddDate(0, 0, 1)
		}
	}

	if raw := c.QueryParam("min_price"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			verrs.Add("min_price", "The min price field must be a number.")
		}
		f.MinPrice = &p
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			verrs.Add("max_price", "The max price field must be a number.")
		}
		f.MaxPrice = &p
	}

	if len(verrs) > 0 {
		return store.SessionFilter{}, 0, verrs
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return f, page, nil
}
