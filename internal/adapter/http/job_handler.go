package http

import (
	"net/http"
	"time"

	"loan-backoffice/internal/usecase/batch"
	"loan-backoffice/pkg/calendar"

	"github.com/labstack/echo/v4"
)

type JobHandler struct{ runner *batch.Runner }

func NewJobHandler(r *batch.Runner) *JobHandler { return &JobHandler{runner: r} }

func jobDate(c echo.Context) (time.Time, bool) {
	d, err := optionalDate(c.QueryParam("date"))
	if err != nil {
		return time.Time{}, false
	}
	if d.IsZero() {
		d = calendar.Today()
	}
	return d, true
}

// POST /jobs/accrue-interest?date=
func (h *JobHandler) AccrueInterest(c echo.Context) error {
	day, ok := jobDate(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	res, err := h.runner.Accrue(c.Request().Context(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// POST /jobs/mark-overdue?date=
func (h *JobHandler) MarkOverdue(c echo.Context) error {
	day, ok := jobDate(c)
	if !ok {
		return badRequest(c, "invalid date")
	}
	n, err := h.runner.MarkOverdue(c.Request().Context(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"date": calendar.Format(day), "overdue_marked": n})
}
