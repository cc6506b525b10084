package sheets

import (
	"context"
	"errors"
	"fmt"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

type (
	// Worksheet identifies one tab of the ledger spreadsheet.
	Worksheet struct {
		ID    int64
		Title string
	}

	ColumnWidth struct {
		Index  int
		Pixels int64
	}

	// Format is a batch of presentation changes applied to one worksheet.
	// SortByColumn < 0 disables sorting; rows before SortFromRow are left
	// in place.
	Format struct {
		FreezeRows   int64
		SortByColumn int
		SortFromRow  int64
		ColumnWidths []ColumnWidth
	}

	// Workbook is the worksheet store the ledger is persisted in.
	Workbook interface {
		// Worksheets lists every tab in spreadsheet order.
		Worksheets(ctx context.Context) ([]Worksheet, error)
		// Worksheet looks a tab up by exact title and returns
		// ErrWorksheetNotFound when it is absent.
		Worksheet(ctx context.Context, title string) (Worksheet, error)
		AddWorksheet(ctx context.Context, title string) (Worksheet, error)
		AppendRows(ctx context.Context, ws Worksheet, rows [][]any) error
		// Rows returns every non-empty row of the tab, header included.
		Rows(ctx context.Context, ws Worksheet) ([][]string, error)
		ApplyFormat(ctx context.Context, ws Worksheet, f Format) error
	}
)

// StoreError is a failed worksheet store call. Status carries the HTTP
// status reported by the store, or 0 for transport-level failures.
type StoreError struct {
	Op     string
	Sheet  string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("sheets %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sheets %s %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
