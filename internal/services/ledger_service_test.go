package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/services/mocks"
	"kakeibo/internal/sheets/memory"
)

type serviceMocks struct {
	extractor *mocks.MockReceiptExtractor
	suggester *mocks.MockMappingSuggester
	answerer  *mocks.MockQuestionAnswerer
	events    *mocks.MockEventPublisher
}

func newService(t *testing.T) (*LedgerService, serviceMocks) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		extractor: mocks.NewMockReceiptExtractor(ctrl),
		suggester: mocks.NewMockMappingSuggester(ctrl),
		answerer:  mocks.NewMockQuestionAnswerer(ctrl),
		events:    mocks.NewMockEventPublisher(ctrl),
	}
	return NewLedgerService(m.extractor, m.suggester, m.answerer, m.events), m
}

var cashReceipt = core.Receipt{
	PurchaseDate:  "2024-04-10",
	StoreName:     "Market",
	Items:         []core.ReceiptItem{{Name: "Milk", Price: 200}, {Name: "Bread", Price: 300}},
	TotalAmount:   500,
	PaymentMethod: core.PaymentCash,
}

func TestAnalyzeReceipts(t *testing.T) {
	svc, m := newService(t)
	images := []core.Image{{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}}

	m.extractor.EXPECT().ExtractReceipts(gomock.Any(), images).Return([]core.Receipt{
		{PurchaseDate: "2024-04-10", StoreName: "Market", PaymentMethod: "CASH"},
		{PurchaseDate: "2024-04-11", StoreName: "Cafe", PaymentMethod: "credit card"},
	}, nil)

	got, err := svc.AnalyzeReceipts(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.PaymentCash, got[0].PaymentMethod)
	assert.Equal(t, core.PaymentUnknown, got[1].PaymentMethod)
}

func TestAnalyzeReceiptsErrors(t *testing.T) {
	svc, m := newService(t)

	_, err := svc.AnalyzeReceipts(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, ErrNoImages))

	boom := errors.New("model overloaded")
	m.extractor.EXPECT().ExtractReceipts(gomock.Any(), gomock.Any()).Return(nil, boom)
	_, err = svc.AnalyzeReceipts(context.Background(), []core.Image{{Data: []byte{1}}})
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestSaveReceiptPublishesEvent(t *testing.T) {
	svc, m := newService(t)
	wb := memory.New()

	m.events.EXPECT().PublishLedgerAppended(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *amqp.LedgerAppendedMessage) error {
			assert.Equal(t, amqp.SourceReceipt, msg.Source)
			assert.Equal(t, 2, msg.ReceiptRows)
			assert.Equal(t, 1, msg.LogRows)
			assert.Equal(t, "cash", msg.PaymentMethod)
			return nil
		})

	res, err := svc.SaveReceipt(context.Background(), wb, cashReceipt)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ReceiptRows)
	assert.Equal(t, 1, res.LogRows)
}

func TestSaveReceiptPublishFailureIsNotFatal(t *testing.T) {
	svc, m := newService(t)
	m.events.EXPECT().PublishLedgerAppended(gomock.Any(), gomock.Any()).Return(errors.New("connection closed"))

	_, err := svc.SaveReceipt(context.Background(), memory.New(), cashReceipt)
	assert.NoError(t, err)
}

func TestSaveReceiptWithoutPublisher(t *testing.T) {
	svc := NewLedgerService(nil, nil, nil, nil)
	_, err := svc.SaveReceipt(context.Background(), memory.New(), cashReceipt)
	assert.NoError(t, err)
}

func TestSaveReceiptValidation(t *testing.T) {
	svc, _ := newService(t)
	bad := cashReceipt
	bad.Items = nil

	_, err := svc.SaveReceipt(context.Background(), memory.New(), bad)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, core.ErrNoItems))
}

func TestSaveReceiptRateLimited(t *testing.T) {
	svc, _ := newService(t)
	wb := memory.New()
	wb.FailOn("list", errors.New("googleapi: Error 429: Quota exceeded"))

	_, err := svc.SaveReceipt(context.Background(), wb, cashReceipt)
	assert.True(t, errors.Is(err, ledger.ErrRateLimited))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

const bankExport = "利用日,利用店名,利用金額\n" +
	"2024/03/05,Cafe,\"¥1,200\"\n" +
	"2024/03/06,-,300\n" +
	"\n" +
	"2024/04/01,Books,980\n"

func TestAnalyzeCSVAsksOracleForMapping(t *testing.T) {
	svc, m := newService(t)
	mapping := core.ColumnMapping{HasHeader: true, DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 2}
	m.suggester.EXPECT().
		SuggestMapping(gomock.Any(), "利用日,利用店名,利用金額\n2024/03/05,Cafe,\"¥1,200\"\n2024/03/06,-,300\n2024/04/01,Books,980").
		Return(mapping, nil)

	got, err := svc.AnalyzeCSV(context.Background(), bankExport, nil)
	require.NoError(t, err)
	assert.Equal(t, mapping, got.Mapping)
	assert.Equal(t, 1, got.Rejected)
	assert.Equal(t, []core.Transaction{
		{Date: "2024-03-05", Store: "Cafe", Price: 1200},
		{Date: "2024-04-01", Store: "Books", Price: 980},
	}, got.Transactions)
}

func TestAnalyzeCSVWithExplicitMapping(t *testing.T) {
	svc, _ := newService(t)
	mapping := &core.ColumnMapping{HasHeader: true, DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 2}

	got, err := svc.AnalyzeCSV(context.Background(), bankExport, mapping)
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 2)
}

func TestAnalyzeCSVRejectsBadMapping(t *testing.T) {
	svc, m := newService(t)
	m.suggester.EXPECT().SuggestMapping(gomock.Any(), gomock.Any()).
		Return(core.ColumnMapping{DateColIndex: -1}, nil)

	_, err := svc.AnalyzeCSV(context.Background(), bankExport, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, core.ErrInvalidMapping))

	_, err = svc.AnalyzeCSV(context.Background(), "  \n", nil)
	assert.True(t, errors.Is(err, ErrEmptyCSV))
}

func TestSaveCSV(t *testing.T) {
	svc, m := newService(t)
	wb := memory.New()
	m.events.EXPECT().PublishLedgerAppended(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *amqp.LedgerAppendedMessage) error {
			assert.Equal(t, amqp.SourceCSV, msg.Source)
			assert.Equal(t, []string{"Log_2024-03", "Log_2024-04"}, msg.Sheets)
			return nil
		})

	res, err := svc.SaveCSV(context.Background(), wb, []core.Transaction{
		{Date: "2024-03-05", Store: "Cafe", Price: 1200},
		{Date: "2024-04-01", Store: "Books", Price: 980},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.LogRows)
	assert.Equal(t, ledger.CSVPaymentMethod, res.PaymentMethod)
}

func TestSaveCSVValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.SaveCSV(context.Background(), memory.New(), nil)
	assert.True(t, errors.Is(err, ErrNoTransactions))

	_, err = svc.SaveCSV(context.Background(), memory.New(), []core.Transaction{{Date: "2024-03-05", Store: "-", Price: 1}})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, core.ErrPlaceholderRow))
}

func TestSearchShortCircuitsOnEmptyLedger(t *testing.T) {
	svc, _ := newService(t)
	wb := memory.New()
	// Log rows never reach the aggregate.
	_, err := ledger.NewRouter(wb).RecordTransactions(context.Background(), []core.Transaction{{Date: "2024-03-05", Store: "Cafe", Price: 1}})
	require.NoError(t, err)

	// The answerer mock has no expectations: any call fails the test.
	got, err := svc.Search(context.Background(), wb, "先月いくら使った？")
	require.NoError(t, err)
	assert.Equal(t, NoDataAnswer, got)
}

func TestSearchAsksOracle(t *testing.T) {
	svc, m := newService(t)
	wb := memory.New()
	_, err := ledger.NewRouter(wb).RecordReceipt(context.Background(), cashReceipt)
	require.NoError(t, err)

	m.answerer.EXPECT().
		Answer(gomock.Any(), "牛乳はいくら？", ledger.AggregateHeader+"\n2024-04-10,Market,Milk,200\n2024-04-10,Market,Bread,300").
		Return("200円です。", nil)

	got, err := svc.Search(context.Background(), wb, "  牛乳はいくら？ ")
	require.NoError(t, err)
	assert.Equal(t, "200円です。", got)
}

func TestSearchEmptyQuestion(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Search(context.Background(), memory.New(), " ")
	assert.True(t, errors.Is(err, ErrEmptyQuestion))
}

func TestSample(t *testing.T) {
	text := "a\r\n\r\nb\nc\n\nd\ne\nf\n"
	assert.Equal(t, "a\nb\nc\nd\ne", Sample(text, 5))
	assert.Equal(t, "a", Sample(text, 1))
	assert.Equal(t, "", Sample("", 5))
}
