package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health         *Handler
	Disbursements  *DisbursementHandler
	Notes          *NoteHandler
	Reconciliation *ReconciliationHandler
	Jobs           *JobHandler
	Reports        *ReportHandler
}

// Register mounts every route on e. mw wraps the mutating routes only.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	d := e.Group("/disbursements")
	d.POST("", h.Disbursements.Create, mw...)
	d.GET("", h.Disbursements.List)
	d.GET("/:id", h.Disbursements.Get)
	d.PATCH("/:id", h.Disbursements.Update, mw...)
	d.POST("/:id/approve", h.Disbursements.Approve, mw...)
	d.POST("/:id/cancel", h.Disbursements.Cancel, mw...)

	n := e.Group("/notes")
	n.POST("", h.Notes.Create, mw...)
	n.GET("", h.Notes.List)
	n.GET("/:id", h.Notes.Get)
	n.POST("/:id/settle", h.Notes.Settle, mw...)
	n.GET("/:id/accruals", h.Notes.Accruals)

	b := e.Group("/bank-transactions")
	b.POST("", h.Reconciliation.Create, mw...)
	b.POST("/import", h.Reconciliation.Import, mw...)
	b.GET("", h.Reconciliation.List)
	b.GET("/summary", h.Reconciliation.Summary)
	b.GET("/:id", h.Reconciliation.Get)
	b.GET("/:id/suggestions", h.Reconciliation.Suggestions)
	b.POST("/:id/match", h.Reconciliation.Match, mw...)
	b.POST("/:id/unmatch", h.Reconciliation.Unmatch, mw...)

	j := e.Group("/jobs")
	j.POST("/accrue-interest", h.Jobs.AccrueInterest)
	j.POST("/mark-overdue", h.Jobs.MarkOverdue)

	r := e.Group("/reports")
	r.GET("/dashboard", h.Reports.Dashboard)
	r.GET("/aging", h.Reports.Aging)
	r.GET("/period", h.Reports.Period)
	r.GET("/reconciliation", h.Reports.Reconciliation)
}
