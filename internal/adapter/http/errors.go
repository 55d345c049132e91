package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"loan-backoffice/internal/domain/apperr"
	"loan-backoffice/pkg/calendar"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the operator id set by the SSO gateway.
const HeaderUserID = "X-User-Id"

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrAlreadyMatched):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a usecase error to its HTTP status. Internal errors are
// logged and never echoed to the client.
func writeError(c echo.Context, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
		msg = "internal error"
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: apperr.Code(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

// bindValid binds and validates req. When it returns false the response has
// already been written and the returned error must be passed through.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    apperr.Code(apperr.ErrValidation),
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// actorID is the acting operator. Authentication happens upstream; the
// gateway forwards the user id in a header.
func actorID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	return id, id != ""
}

// optionalDate parses a YYYY-MM-DD value; blank yields the zero time.
func optionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return calendar.Parse(strings.TrimSpace(s))
}

// looseString accepts either a JSON string or a JSON number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = looseString(strings.TrimSpace(string(b)))
	return nil
}
