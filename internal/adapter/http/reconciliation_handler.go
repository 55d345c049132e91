package http

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"loan-backoffice/internal/usecase/reconciliation"

	"github.com/labstack/echo/v4"
)

// maxImportBytes bounds a single statement upload.
const maxImportBytes = 10 << 20

type ReconciliationHandler struct{ uc *reconciliation.Usecase }

func NewReconciliationHandler(uc *reconciliation.Usecase) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

type createTransactionReq struct {
	TransactionDate string      `json:"transaction_date" validate:"required"`
	Amount          looseString `json:"amount" validate:"required"`
	Description     string      `json:"description" validate:"max=1000"`
	Reference       string      `json:"reference" validate:"max=128"`
}

type importRowsReq struct {
	Rows []map[string]looseString `json:"rows" validate:"min=1"`
}

type matchReq struct {
	NoteID string `json:"promissory_note_id" validate:"required,hex32"`
}

// POST /bank-transactions
func (h *ReconciliationHandler) Create(c echo.Context) error {
	var req createTransactionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	tx, err := h.uc.ImportTransaction(c.Request().Context(), reconciliation.TransactionInput{
		Date:        req.TransactionDate,
		Amount:      string(req.Amount),
		Description: req.Description,
		Reference:   req.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

// POST /bank-transactions/import
//
// Accepts a multipart form with a "file" field, a raw text/csv body, or a
// JSON body {"rows": [...]}. Row failures are reported in the result and
// do not fail the request.
func (h *ReconciliationHandler) Import(c echo.Context) error {
	ctx := c.Request().Context()
	mt, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))

	var (
		res *reconciliation.ImportResult
		err error
	)
	switch mt {
	case echo.MIMEMultipartForm:
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			return badRequest(c, "missing file")
		}
		f, ferr := fh.Open()
		if ferr != nil {
			return badRequest(c, "unreadable file")
		}
		defer f.Close()
		res, err = h.uc.ImportCSV(ctx, io.LimitReader(f, maxImportBytes))
	case "text/csv", echo.MIMETextPlain:
		res, err = h.uc.ImportCSV(ctx, io.LimitReader(c.Request().Body, maxImportBytes))
	default:
		var req importRowsReq
		if ok, berr := bindValid(c, &req); !ok {
			return berr
		}
		rows := make([]reconciliation.Row, 0, len(req.Rows))
		for _, r := range req.Rows {
			row := make(reconciliation.Row, len(r))
			for k, v := range r {
				row[k] = string(v)
			}
			rows = append(rows, row)
		}
		res, err = h.uc.ImportBatch(ctx, rows)
	}
	if err != nil && res == nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GET /bank-transactions?matched=
func (h *ReconciliationHandler) List(c echo.Context) error {
	var in reconciliation.ListInput
	if raw := c.QueryParam("matched"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid matched")
		}
		in.Matched = &b
	}
	list, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

// GET /bank-transactions/summary
func (h *ReconciliationHandler) Summary(c echo.Context) error {
	s, err := h.uc.Summary(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// GET /bank-transactions/:id
func (h *ReconciliationHandler) Get(c echo.Context) error {
	tx, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// GET /bank-transactions/:id/suggestions
func (h *ReconciliationHandler) Suggestions(c echo.Context) error {
	list, err := h.uc.SuggestMatches(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

// POST /bank-transactions/:id/match
func (h *ReconciliationHandler) Match(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing "+HeaderUserID)
	}
	var req matchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	tx, err := h.uc.Match(c.Request().Context(), c.Param("id"), req.NoteID, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// POST /bank-transactions/:id/unmatch
func (h *ReconciliationHandler) Unmatch(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing "+HeaderUserID)
	}
	tx, err := h.uc.Unmatch(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}
