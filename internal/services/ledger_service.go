package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/csvimport"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
)

// NoDataAnswer is returned by Search when the ledger holds no receipt rows.
const NoDataAnswer = "合致するレシートデータが存在しません。"

// MappingSampleLines is how many non-empty CSV lines are shown to the
// mapping oracle.
const MappingSampleLines = 5

var (
	// ErrInvalidInput wraps every caller mistake so the HTTP layer can
	// answer 4xx without inspecting the cause.
	ErrInvalidInput = errors.New("invalid input")

	ErrNoImages       = errors.New("no images")
	ErrEmptyCSV       = errors.New("empty csv")
	ErrNoTransactions = errors.New("no transactions")
	ErrEmptyQuestion  = errors.New("empty question")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// CSVAnalysis is the preview of a CSV import shown before it is saved.
type CSVAnalysis struct {
	Mapping      core.ColumnMapping    `json:"mapping"`
	Transactions []core.Transaction    `json:"transactions"`
	Rejected     int                   `json:"rejected_rows"`
	Rejections   []csvimport.Rejection `json:"-"`
}

// LedgerService orchestrates ingestion and querying of the ledger. The
// workbook is passed per call since every request may target a different
// spreadsheet.
type LedgerService struct {
	extractor ReceiptExtractor
	suggester MappingSuggester
	answerer  QuestionAnswerer
	events    EventPublisher
}

// NewLedgerService wires the oracles. events may be nil, in which case no
// ledger events are published.
func NewLedgerService(extractor ReceiptExtractor, suggester MappingSuggester, answerer QuestionAnswerer, events EventPublisher) *LedgerService {
	return &LedgerService{
		extractor: extractor,
		suggester: suggester,
		answerer:  answerer,
		events:    events,
	}
}

// AnalyzeReceipts extracts receipts from images without saving them.
func (s *LedgerService) AnalyzeReceipts(ctx context.Context, images []core.Image) ([]core.Receipt, error) {
	if len(images) == 0 {
		return nil, invalid(ErrNoImages)
	}
	receipts, err := s.extractor.ExtractReceipts(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("extract receipts: %w", err)
	}
	for i := range receipts {
		receipts[i].PaymentMethod = core.ParsePaymentMethod(string(receipts[i].PaymentMethod))
	}
	return receipts, nil
}

// SaveReceipt validates rc and records it in wb.
func (s *LedgerService) SaveReceipt(ctx context.Context, wb sheets.Workbook, rc core.Receipt) (ledger.Result, error) {
	if err := rc.Validate(); err != nil {
		return ledger.Result{}, invalid(err)
	}
	res, err := ledger.NewRouter(wb).RecordReceipt(ctx, rc)
	if err != nil {
		return ledger.Result{}, err
	}
	s.publish(ctx, amqp.SourceReceipt, res)
	return res, nil
}

// AnalyzeCSV normalizes text with mapping, asking the mapping oracle for
// one when mapping is nil.
func (s *LedgerService) AnalyzeCSV(ctx context.Context, text string, mapping *core.ColumnMapping) (CSVAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return CSVAnalysis{}, invalid(ErrEmptyCSV)
	}

	var m core.ColumnMapping
	if mapping != nil {
		m = *mapping
	} else {
		suggested, err := s.suggester.SuggestMapping(ctx, Sample(text, MappingSampleLines))
		if err != nil {
			return CSVAnalysis{}, fmt.Errorf("suggest mapping: %w", err)
		}
		m = suggested
	}
	if err := m.Validate(); err != nil {
		return CSVAnalysis{}, invalid(err)
	}

	res := csvimport.NormalizeDetailed(text, m)

	logger := log.FromContext(ctx).WithComponent(log.ComponentCSV)
	for _, r := range res.Rejections {
		logger.DebugContext(ctx, "CSV row rejected",
			log.FieldLine, r.Line,
			log.FieldReason, string(r.Reason))
	}
	logger.InfoContext(ctx, "CSV normalized",
		log.FieldOperation, log.OpNormalize,
		log.FieldRows, len(res.Transactions),
		log.FieldRejectedRows, len(res.Rejections))

	return CSVAnalysis{
		Mapping:      m,
		Transactions: res.Transactions,
		Rejected:     len(res.Rejections),
		Rejections:   res.Rejections,
	}, nil
}

// SaveCSV records previously analyzed transactions in wb.
func (s *LedgerService) SaveCSV(ctx context.Context, wb sheets.Workbook, txs []core.Transaction) (ledger.Result, error) {
	if len(txs) == 0 {
		return ledger.Result{}, invalid(ErrNoTransactions)
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return ledger.Result{}, invalid(fmt.Errorf("transaction %d: %w", i, err))
		}
	}
	res, err := ledger.NewRouter(wb).RecordTransactions(ctx, txs)
	if err != nil {
		return ledger.Result{}, err
	}
	s.publish(ctx, amqp.SourceCSV, res)
	return res, nil
}

// Search answers question from the receipt rows of wb. An empty ledger is
// answered with NoDataAnswer without asking the oracle.
func (s *LedgerService) Search(ctx context.Context, wb sheets.Workbook, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", invalid(ErrEmptyQuestion)
	}
	text, err := ledger.NewAggregator(wb).Aggregate(ctx)
	if err != nil {
		return "", err
	}
	if !ledger.HasData(text) {
		return NoDataAnswer, nil
	}
	answer, err := s.answerer.Answer(ctx, question, text)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return answer, nil
}

// publish announces res. Failures are logged only: the rows are already
// in the ledger.
func (s *LedgerService) publish(ctx context.Context, source string, res ledger.Result) {
	if s.events == nil {
		return
	}
	msg := amqp.NewLedgerAppendedMessage(source, res.Sheets, res.ReceiptRows, res.LogRows, res.PaymentMethod.String())
	if err := s.events.PublishLedgerAppended(ctx, msg); err != nil {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Failed to publish ledger event", err,
			log.ComponentAMQP, log.OpPublish, log.NewFields())
	}
}

// Sample returns the first n non-empty lines of text.
func Sample(text string, n int) string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}
