package ledger

import (
	"context"
	"errors"
	"fmt"

	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
)

const (
	storeColumn = 1
	itemColumn  = 2

	StoreColumnPixels int64 = 200
	ItemColumnPixels  int64 = 250
)

var ErrFormattingFailed = errors.New("formatting failed")

// Formatter is the presentation pass run after every append batch.
type Formatter struct {
	wb sheets.Workbook
}

func NewFormatter(wb sheets.Workbook) *Formatter {
	return &Formatter{wb: wb}
}

// Format freezes the header row, stable-sorts data rows by date and widens
// the text columns of ws in one batched update. Failures are logged and
// swallowed; the result reports whether the update went through.
func (f *Formatter) Format(ctx context.Context, ws sheets.Worksheet, hasItemColumn bool) bool {
	widths := []sheets.ColumnWidth{{Index: storeColumn, Pixels: StoreColumnPixels}}
	if hasItemColumn {
		widths = append(widths, sheets.ColumnWidth{Index: itemColumn, Pixels: ItemColumnPixels})
	}

	err := f.wb.ApplyFormat(ctx, ws, sheets.Format{
		FreezeRows:   1,
		SortByColumn: 0,
		SortFromRow:  1,
		ColumnWidths: widths,
	})
	if err != nil {
		logger := log.FromContext(ctx).WithComponent(log.ComponentLedger)
		logger.WarnContext(ctx, "Worksheet formatting skipped",
			log.NewFields().
				WithSheet(ws.Title, "").
				WithOperation(log.OpFormat).
				WithError(fmt.Errorf("%w: %w", ErrFormattingFailed, err)).
				ToSlice()...)
		return false
	}
	return true
}
