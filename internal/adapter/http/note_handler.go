package http

import (
	"net/http"

	"loan-backoffice/internal/usecase/accrual"
	"loan-backoffice/internal/usecase/note"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type NoteHandler struct {
	uc       *note.Usecase
	accruals *accrual.Usecase
}

func NewNoteHandler(uc *note.Usecase, accruals *accrual.Usecase) *NoteHandler {
	return &NoteHandler{uc: uc, accruals: accruals}
}

type createNoteReq struct {
	DisbursementID     string       `json:"disbursement_id" validate:"required,hex32"`
	PrincipalAmount    *looseString `json:"principal_amount" validate:"omitempty,money"`
	InterestRateAnnual *looseString `json:"interest_rate_annual" validate:"omitempty,rate"`
	IssueDate          string       `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate            string       `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type settleNoteReq struct {
	Amount         looseString `json:"amount" validate:"required,money"`
	SettlementDate string      `json:"settlement_date" validate:"omitempty,datetime=2006-01-02"`
}

// POST /notes
func (h *NoteHandler) Create(c echo.Context) error {
	var req createNoteReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	actor, _ := actorID(c)
	in := note.CreateInput{DisbursementID: req.DisbursementID, CreatedBy: actor}

	if req.PrincipalAmount != nil {
		p, err := decimal.NewFromString(string(*req.PrincipalAmount))
		if err != nil {
			return badRequest(c, "invalid principal_amount")
		}
		in.Principal = p
	}
	if req.InterestRateAnnual != nil {
		r, err := decimal.NewFromString(string(*req.InterestRateAnnual))
		if err != nil {
			return badRequest(c, "invalid interest_rate_annual")
		}
		in.Rate = &r
	}
	var err error
	if in.IssueDate, err = optionalDate(req.IssueDate); err != nil {
		return badRequest(c, "invalid issue_date")
	}
	if in.DueDate, err = optionalDate(req.DueDate); err != nil {
		return badRequest(c, "invalid due_date")
	}

	n, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// GET /notes?status=
func (h *NoteHandler) List(c echo.Context) error {
	list, err := h.uc.List(c.Request().Context(), note.ListInput{Status: c.QueryParam("status")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

// GET /notes/:id
func (h *NoteHandler) Get(c echo.Context) error {
	n, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// POST /notes/:id/settle
func (h *NoteHandler) Settle(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing "+HeaderUserID)
	}
	var req settleNoteReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := decimal.NewFromString(string(req.Amount))
	if err != nil {
		return badRequest(c, "invalid amount")
	}
	date, err := optionalDate(req.SettlementDate)
	if err != nil {
		return badRequest(c, "invalid settlement_date")
	}

	n, err := h.uc.Settle(c.Request().Context(), c.Param("id"), note.SettleInput{Amount: amount, Date: date, Actor: actor})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// GET /notes/:id/accruals
func (h *NoteHandler) Accruals(c echo.Context) error {
	list, err := h.accruals.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list, "count": len(list)})
}
