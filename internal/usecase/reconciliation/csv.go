package reconciliation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"loan-backoffice/internal/domain/apperr"
)

// ImportCSV reads a bank statement export with a header row and imports it
// through ImportBatch semantics. Unreadable lines become row errors.
func (u *Usecase) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv has no header row: %w", apperr.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %v: %w", err, apperr.ErrValidation)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var (
		rows    []numberedRow
		readErr []string
	)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			readErr = append(readErr, fmt.Sprintf("row %d: %v", line, pe.Err))
			continue
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, v := range rec {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, numberedRow{line: line, row: row})
	}

	res, err := u.importRows(ctx, rows, "csv")
	if err != nil {
		return nil, err
	}
	if len(readErr) > 0 {
		res.Errors = append(readErr, res.Errors...)
		res.Success = false
	}
	return res, nil
}
