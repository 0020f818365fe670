package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/booking"
	"github.com/padraicbc/matchapi/store"
	"github.com/padraicbc/matchapi/validation"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func ok(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// ErrorHandler renders every error returned by a handler or the router
// in the response envelope. Causes of 5xx responses are logged, not sent.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func errorResponse(err error) (int, envelope) {
	var (
		verrs   validation.Errors
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, envelope{Message: "Validation failed", Errors: verrs}
	case errors.Is(err, booking.ErrSessionsUnavailable):
		return http.StatusBadRequest, envelope{Message: "One or more sessions are not available"}
	case errors.Is(err, booking.ErrCreateFailed):
		return http.StatusInternalServerError, envelope{Message: "Failed to create booking"}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, envelope{Message: "Resource not found"}
	case errors.As(err, &httpErr):
		msg, isString := httpErr.Message.(string)
		if !isString || httpErr.Code >= http.StatusInternalServerError {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, envelope{Message: msg}
	default:
		return http.StatusInternalServerError, envelope{Message: "Internal server error"}
	}
}

// bind decodes the JSON body into v and validates it. Values of the wrong
// JSON type become field errors; unparseable bodies are a 400.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			key := strings.ReplaceAll(typeErr.Field, "_", " ")
			return validation.Errors{
				typeErr.Field: {fmt.Sprintf("The %s field must be %s.", key, kindName(typeErr.Type))},
			}
		}
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
			return err
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON body").SetInternal(err)
	}
	return c.Validate(v)
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Bool:
		return "true or false"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "valid"
	}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, resource+" not found")
	}
	return id, nil
}

// notFoundAs replaces store.ErrNotFound with a 404 naming resource.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, resource+" not found")
	}
	return err
}
