// Package csvimport turns loosely structured bank and card CSV exports into
// ledger transactions.
//
// Normalization is a pure function of the CSV text and a core.ColumnMapping.
// Every row either yields a transaction or a Rejection; a bad row never
// aborts the rest of the batch.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"kakeibo/internal/core"
)

// RejectReason names why a row produced no transaction.
type RejectReason string

const (
	ReasonTooFewColumns    RejectReason = "too_few_columns"
	ReasonEmptyField       RejectReason = "empty_field"
	ReasonPlaceholderStore RejectReason = "placeholder_store"
	ReasonZeroPrice        RejectReason = "zero_price"
	ReasonPriceOutOfRange  RejectReason = "price_out_of_range"
	ReasonDateUnparseable  RejectReason = "unparseable_date"
	ReasonMalformedRow     RejectReason = "malformed_row"
)

var ErrRowRejected = errors.New("row rejected")

// Rejection describes one skipped row. Line is the 1-based physical line the
// record starts on, blank lines included.
type Rejection struct {
	Line   int
	Reason RejectReason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", r.Line, r.Reason, r.Detail)
}

// Is makes every Rejection match ErrRowRejected, and date failures also
// match ErrDateUnparseable.
func (r *Rejection) Is(target error) bool {
	switch target {
	case ErrRowRejected:
		return true
	case ErrDateUnparseable:
		return r.Reason == ReasonDateUnparseable
	}
	return false
}

// RowResult is the outcome of normalizing a single row: exactly one of
// Transaction or Rejection is set.
type RowResult struct {
	Transaction *core.Transaction
	Rejection   *Rejection
}

// Result holds the accepted transactions in input order together with the
// rejected rows.
type Result struct {
	Transactions []core.Transaction
	Rejections   []Rejection
}

// Normalize returns the transactions found in text. Rejected rows leave no
// trace.
func Normalize(text string, m core.ColumnMapping) []core.Transaction {
	return NormalizeDetailed(text, m).Transactions
}

// NormalizeDetailed is Normalize plus the list of rejected rows.
func NormalizeDetailed(text string, m core.ColumnMapping) Result {
	var res Result
	for _, rr := range Rows(text, m) {
		if rr.Rejection != nil {
			res.Rejections = append(res.Rejections, *rr.Rejection)
			continue
		}
		res.Transactions = append(res.Transactions, *rr.Transaction)
	}
	return res
}

// Rows normalizes every record of text and reports the per-row outcome.
// When m.HasHeader is set the first line is the header and is skipped
// unconditionally. A blank first line still counts as that header, so the
// record after it is data.
func Rows(text string, m core.ColumnMapping) []RowResult {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []RowResult
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				break
			}
			if perr.StartLine == 1 && m.HasHeader {
				continue
			}
			out = append(out, RowResult{Rejection: &Rejection{Line: perr.StartLine, Reason: ReasonMalformedRow, Detail: perr.Err.Error()}})
			continue
		}
		line, _ := r.FieldPos(0)
		if line == 1 && m.HasHeader {
			continue
		}
		tx, err := NormalizeRow(record, line, m)
		if err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				out = append(out, RowResult{Rejection: rej})
			}
			continue
		}
		out = append(out, RowResult{Transaction: &tx})
	}
	return out
}

// NormalizeRow validates a single record against m. The returned error is
// always a *Rejection.
func NormalizeRow(record []string, line int, m core.ColumnMapping) (core.Transaction, error) {
	if len(record) < m.MinColumns() {
		return core.Transaction{}, &Rejection{
			Line:   line,
			Reason: ReasonTooFewColumns,
			Detail: fmt.Sprintf("have %d, need %d", len(record), m.MinColumns()),
		}
	}

	date := strings.TrimSpace(record[m.DateColIndex])
	store := strings.TrimSpace(record[m.StoreColIndex])
	price := strings.TrimSpace(record[m.PriceColIndex])
	if date == "" || store == "" || price == "" {
		return core.Transaction{}, &Rejection{Line: line, Reason: ReasonEmptyField}
	}
	if store == core.PlaceholderStore {
		return core.Transaction{}, &Rejection{Line: line, Reason: ReasonPlaceholderStore}
	}

	amount, err := core.ScrubPrice(price)
	if errors.Is(err, core.ErrPriceOutOfRange) {
		return core.Transaction{}, &Rejection{Line: line, Reason: ReasonPriceOutOfRange, Detail: price}
	}
	if err != nil {
		return core.Transaction{}, &Rejection{Line: line, Reason: ReasonZeroPrice, Detail: price}
	}

	t, err := ParseDate(date)
	if err != nil {
		return core.Transaction{}, &Rejection{Line: line, Reason: ReasonDateUnparseable, Detail: date}
	}

	return core.Transaction{
		Date:  t.Format(core.DateLayout),
		Store: store,
		Price: amount,
	}, nil
}
