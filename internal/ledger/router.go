// Package ledger routes transactions into monthly worksheets, keeps them
// formatted and flattens them for question answering.
//
// Every month owns up to two worksheets: Receipt_YYYY-MM with one row per
// purchased item and Log_YYYY-MM with one row per whole transaction. Cash
// receipts are written to both; CSV imports only to the log.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
)

type Category string

const (
	CategoryReceipt Category = "Receipt"
	CategoryLog     Category = "Log"
)

// CSVPaymentMethod tags every row imported from a bank or card export.
const CSVPaymentMethod = core.PaymentCashless

var (
	receiptHeader = []any{"購入日", "店舗名", "商品名", "価格"}
	logHeader     = []any{"購入日", "店舗名", "金額", "支払い方法"}
)

// Header returns the fixed first row of a worksheet of category c.
func (c Category) Header() []any {
	if c == CategoryReceipt {
		return append([]any(nil), receiptHeader...)
	}
	return append([]any(nil), logHeader...)
}

func (c Category) hasItemColumn() bool { return c == CategoryReceipt }

// SheetName returns the worksheet holding rows of category c for the
// month of d, e.g. "Receipt_2024-03".
func SheetName(c Category, d core.Date) string {
	return fmt.Sprintf("%s_%s", c, d.MonthKey())
}

// Result counts the rows appended by one Record call.
type Result struct {
	ReceiptRows   int                `json:"receipt_rows"`
	LogRows       int                `json:"log_rows"`
	PaymentMethod core.PaymentMethod `json:"payment_method"`
	Sheets        []string           `json:"sheets"`
}

// Router owns the decision of which worksheet a row lands in. It holds no
// state between calls; create one per request.
type Router struct {
	wb        sheets.Workbook
	formatter *Formatter
}

func NewRouter(wb sheets.Workbook) *Router {
	return &Router{wb: wb, formatter: NewFormatter(wb)}
}

// Route returns the worksheet for category c and the month of d, creating
// it with its header and a frozen first row when the lookup reports it
// missing. Any other lookup failure is returned as is.
func (r *Router) Route(ctx context.Context, c Category, d core.Date) (sheets.Worksheet, error) {
	name := SheetName(c, d)
	ws, err := r.wb.Worksheet(ctx, name)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, sheets.ErrWorksheetNotFound) {
		return sheets.Worksheet{}, Classify(err)
	}

	ws, err = r.wb.AddWorksheet(ctx, name)
	if err != nil {
		return sheets.Worksheet{}, Classify(err)
	}
	if err := r.wb.AppendRows(ctx, ws, [][]any{c.Header()}); err != nil {
		return sheets.Worksheet{}, Classify(err)
	}
	if err := r.wb.ApplyFormat(ctx, ws, sheets.Format{FreezeRows: 1, SortByColumn: -1}); err != nil {
		return sheets.Worksheet{}, Classify(err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Worksheet provisioned",
		log.NewFields().WithSheet(name, string(c)).WithOperation(log.OpProvision).ToSlice()...)
	return ws, nil
}

// Append writes rows to ws and runs the formatter once for the batch.
func (r *Router) Append(ctx context.Context, ws sheets.Worksheet, c Category, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := r.wb.AppendRows(ctx, ws, rows); err != nil {
		return 0, Classify(err)
	}
	r.formatter.Format(ctx, ws, c.hasItemColumn())
	return len(rows), nil
}

// AppendToLog writes a single whole-transaction row to the log worksheet
// of the transaction's month.
func (r *Router) AppendToLog(ctx context.Context, tx core.Transaction) (sheets.Worksheet, error) {
	d, err := core.ParseDate(tx.Date)
	if err != nil {
		return sheets.Worksheet{}, err
	}
	ws, err := r.Route(ctx, CategoryLog, d)
	if err != nil {
		return sheets.Worksheet{}, err
	}
	if _, err := r.Append(ctx, ws, CategoryLog, [][]any{logRow(tx)}); err != nil {
		return sheets.Worksheet{}, err
	}
	return ws, nil
}

// RecordReceipt writes one row per item to the receipt worksheet and, for
// cash purchases, one total row to the log worksheet.
func (r *Router) RecordReceipt(ctx context.Context, rc core.Receipt) (Result, error) {
	d, err := core.ParseDate(rc.PurchaseDate)
	if err != nil {
		return Result{}, err
	}
	method := core.ParsePaymentMethod(string(rc.PaymentMethod))
	res := Result{PaymentMethod: method}

	ws, err := r.Route(ctx, CategoryReceipt, d)
	if err != nil {
		return Result{}, err
	}
	rows := make([][]any, 0, len(rc.Items))
	for _, it := range rc.Items {
		rows = append(rows, []any{d.String(), rc.StoreName, it.Name, it.Price})
	}
	if res.ReceiptRows, err = r.Append(ctx, ws, CategoryReceipt, rows); err != nil {
		return Result{}, err
	}
	res.Sheets = append(res.Sheets, ws.Title)
	logAppended(ctx, ws.Title, CategoryReceipt, res.ReceiptRows, method)

	if method != core.PaymentCash {
		return res, nil
	}
	logWS, err := r.AppendToLog(ctx, core.Transaction{
		Date:          d.String(),
		Store:         rc.StoreName,
		Price:         rc.Total(),
		PaymentMethod: core.PaymentCash,
	})
	if err != nil {
		return Result{}, err
	}
	res.LogRows = 1
	res.Sheets = append(res.Sheets, logWS.Title)
	logAppended(ctx, logWS.Title, CategoryLog, 1, method)
	return res, nil
}

// RecordTransactions writes imported transactions to the log worksheets,
// one provisioning, append and format cycle per month present in txs.
// Months are processed in order of first appearance.
func (r *Router) RecordTransactions(ctx context.Context, txs []core.Transaction) (Result, error) {
	res := Result{PaymentMethod: CSVPaymentMethod}

	type month struct {
		date core.Date
		rows [][]any
	}
	var order []string
	months := map[string]*month{}
	for _, tx := range txs {
		d, err := core.ParseDate(tx.Date)
		if err != nil {
			return Result{}, fmt.Errorf("transaction %s at %q: %w", tx.Date, tx.Store, err)
		}
		key := d.MonthKey()
		m, ok := months[key]
		if !ok {
			m = &month{date: d}
			months[key] = m
			order = append(order, key)
		}
		tx.PaymentMethod = CSVPaymentMethod
		m.rows = append(m.rows, logRow(tx))
	}

	for _, key := range order {
		m := months[key]
		ws, err := r.Route(ctx, CategoryLog, m.date)
		if err != nil {
			return Result{}, err
		}
		n, err := r.Append(ctx, ws, CategoryLog, m.rows)
		if err != nil {
			return Result{}, err
		}
		res.LogRows += n
		res.Sheets = append(res.Sheets, ws.Title)
		logAppended(ctx, ws.Title, CategoryLog, n, CSVPaymentMethod)
	}
	return res, nil
}

func logRow(tx core.Transaction) []any {
	return []any{tx.Date, tx.Store, tx.Price, tx.PaymentMethod.String()}
}

func logAppended(ctx context.Context, sheet string, c Category, rows int, method core.PaymentMethod) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogLedgerAppended(ctx, sheet, string(c), rows, method.String())
}
