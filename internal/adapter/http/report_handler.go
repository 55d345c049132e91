package http

import (
	"net/http"

	"loan-backoffice/internal/usecase/reporting"
	"loan-backoffice/pkg/calendar"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct{ uc *reporting.Usecase }

func NewReportHandler(uc *reporting.Usecase) *ReportHandler { return &ReportHandler{uc: uc} }

// GET /reports/dashboard?as_of=
func (h *ReportHandler) Dashboard(c echo.Context) error {
	asOf, err := optionalDate(c.QueryParam("as_of"))
	if err != nil {
		return badRequest(c, "invalid as_of")
	}
	if asOf.IsZero() {
		asOf = calendar.Today()
	}
	d, err := h.uc.Dashboard(c.Request().Context(), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// GET /reports/aging?as_of=
func (h *ReportHandler) Aging(c echo.Context) error {
	asOf, err := optionalDate(c.QueryParam("as_of"))
	if err != nil {
		return badRequest(c, "invalid as_of")
	}
	if asOf.IsZero() {
		asOf = calendar.Today()
	}
	a, err := h.uc.Aging(c.Request().Context(), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// GET /reports/period?from=&to=
func (h *ReportHandler) Period(c echo.Context) error {
	from, err := calendar.Parse(c.QueryParam("from"))
	if err != nil {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	to, err := calendar.Parse(c.QueryParam("to"))
	if err != nil {
		return badRequest(c, "to must be YYYY-MM-DD")
	}
	p, err := h.uc.Period(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /reports/reconciliation
func (h *ReportHandler) Reconciliation(c echo.Context) error {
	s, err := h.uc.ReconciliationSummary(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
