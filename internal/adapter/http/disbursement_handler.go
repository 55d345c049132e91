package http

import (
	"net/http"
	"time"

	"loan-backoffice/internal/usecase/disbursement"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type DisbursementHandler struct{ uc *disbursement.Usecase }

func NewDisbursementHandler(uc *disbursement.Usecase) *DisbursementHandler {
	return &DisbursementHandler{uc: uc}
}

type createDisbursementReq struct {
	RequestedAmount looseString `json:"requested_amount" validate:"required,money"`
	RequestDate     string      `json:"request_date" validate:"omitempty,datetime=2006-01-02"`
	Description     string      `json:"description" validate:"max=1000"`
}

type updateDisbursementReq struct {
	RequestedAmount *looseString `json:"requested_amount" validate:"omitempty,money"`
	RequestDate     *string      `json:"request_date" validate:"omitempty,datetime=2006-01-02"`
	Description     *string      `json:"description" validate:"omitempty,max=1000"`
}

// POST /disbursements
func (h *DisbursementHandler) Create(c echo.Context) error {
	var req createDisbursementReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := decimal.NewFromString(string(req.RequestedAmount))
	if err != nil {
		return badRequest(c, "invalid requested_amount")
	}
	date, err := optionalDate(req.RequestDate)
	if err != nil {
		return badRequest(c, "invalid request_date")
	}
	actor, _ := actorID(c)

	d, err := h.uc.Create(c.Request().Context(), disbursement.CreateInput{
		RequestedAmount: amount,
		RequestDate:     date,
		Description:     req.Description,
		CreatedBy:       actor,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// GET /disbursements?status=&from=&to=
func (h *DisbursementHandler) List(c echo.Context) error {
	in := disbursement.ListInput{Status: c.QueryParam("status")}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &in.From}, {"to", &in.To}} {
		t, err := optionalDate(c.QueryParam(p.name))
		if err != nil {
			return badRequest(c, "invalid "+p.name)
		}
		if !t.IsZero() {
			*p.dst = &t
		}
	}
	list, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

// GET /disbursements/:id
func (h *DisbursementHandler) Get(c echo.Context) error {
	d, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// PATCH /disbursements/:id
func (h *DisbursementHandler) Update(c echo.Context) error {
	var req updateDisbursementReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	var in disbursement.UpdateInput
	if req.RequestedAmount != nil {
		amount, err := decimal.NewFromString(string(*req.RequestedAmount))
		if err != nil {
			return badRequest(c, "invalid requested_amount")
		}
		in.RequestedAmount = &amount
	}
	if req.RequestDate != nil {
		date, err := optionalDate(*req.RequestDate)
		if err != nil || date.IsZero() {
			return badRequest(c, "invalid request_date")
		}
		in.RequestDate = &date
	}
	in.Description = req.Description

	d, err := h.uc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// POST /disbursements/:id/approve
func (h *DisbursementHandler) Approve(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing "+HeaderUserID)
	}
	d, err := h.uc.Approve(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// POST /disbursements/:id/cancel
func (h *DisbursementHandler) Cancel(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing "+HeaderUserID)
	}
	d, err := h.uc.Cancel(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
