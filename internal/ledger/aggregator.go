package ledger

import (
	"context"
	"strings"

	"kakeibo/internal/sheets"
)

// AggregateHeader is the first line of every aggregate.
const AggregateHeader = "purchase_date,store_name,item_name,price"

// Aggregator flattens the itemized receipt sheets into one text blob used
// as question answering context. It never writes.
type Aggregator struct {
	wb sheets.Workbook
}

func NewAggregator(wb sheets.Workbook) *Aggregator {
	return &Aggregator{wb: wb}
}

// Aggregate joins every data row of every Receipt_ worksheet with commas,
// in worksheet order then row order. Log_ worksheets are skipped. The
// result always starts with AggregateHeader.
func (a *Aggregator) Aggregate(ctx context.Context) (string, error) {
	all, err := a.wb.Worksheets(ctx)
	if err != nil {
		return "", Classify(err)
	}

	lines := []string{AggregateHeader}
	for _, ws := range all {
		if !strings.HasPrefix(ws.Title, string(CategoryReceipt)+"_") {
			continue
		}
		rows, err := a.wb.Rows(ctx, ws)
		if err != nil {
			return "", Classify(err)
		}
		if len(rows) <= 1 {
			continue
		}
		for _, row := range rows[1:] {
			if len(row) == 0 {
				continue
			}
			lines = append(lines, strings.Join(row, ","))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// HasData reports whether an aggregate holds anything beyond its header.
func HasData(aggregate string) bool {
	for _, line := range strings.Split(strings.TrimSpace(aggregate), "\n")[1:] {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
