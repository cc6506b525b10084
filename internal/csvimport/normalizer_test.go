package csvimport

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/core"
)

var cardMapping = core.ColumnMapping{HasHeader: true, DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 2}

func TestNormalize(t *testing.T) {
	text := "利用日,利用店名,金額\n" +
		"2024/3/5,\"Cafe, Tokyo\",\"¥1,200\"\n" +
		"2024/3/6,Bookstore,-980\n" +
		"2024/3/7,-,500\n" +
		"2024/3/8,Station,0\n" +
		"someday,Kiosk,120\n" +
		"2024/3/9,Short\n" +
		"2024/3/10,,300\n" +
		"2024/3/11,Bakery,430\n"

	got := Normalize(text, cardMapping)

	assert.Equal(t, []core.Transaction{
		{Date: "2024-03-05", Store: "Cafe, Tokyo", Price: 1200},
		{Date: "2024-03-06", Store: "Bookstore", Price: 980},
		{Date: "2024-03-11", Store: "Bakery", Price: 430},
	}, got)
}

func TestNormalizeDetailedReasons(t *testing.T) {
	text := "date,store,price\n" +
		"2024/3/7,-,500\n" +
		"2024/3/8,Station,0\n" +
		"someday,Kiosk,120\n" +
		"2024/3/9,Short\n" +
		"2024/3/10, ,300\n"

	res := NormalizeDetailed(text, cardMapping)

	assert.Empty(t, res.Transactions)
	require.Len(t, res.Rejections, 5)
	want := []RejectReason{ReasonPlaceholderStore, ReasonZeroPrice, ReasonDateUnparseable, ReasonTooFewColumns, ReasonEmptyField}
	for i, r := range res.Rejections {
		assert.Equal(t, want[i], r.Reason)
		assert.Equal(t, i+2, r.Line)
	}
	assert.True(t, errors.Is(&res.Rejections[2], ErrDateUnparseable))
	assert.True(t, errors.Is(&res.Rejections[0], ErrRowRejected))
	assert.False(t, errors.Is(&res.Rejections[0], ErrDateUnparseable))
}

func TestNormalizeHeaderAlwaysSkipped(t *testing.T) {
	// A header row that would itself be a valid transaction.
	text := "2024-01-01,Header Store,100\n2024-01-02,Shop,200\n"

	got := Normalize(text, cardMapping)
	require.Len(t, got, 1)
	assert.Equal(t, "Shop", got[0].Store)

	noHeader := cardMapping
	noHeader.HasHeader = false
	assert.Len(t, Normalize(text, noHeader), 2)
}

func TestNormalizeAliasedColumns(t *testing.T) {
	// Exports without a store column reuse the description column.
	m := core.ColumnMapping{DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 3}
	text := "20240401,AMAZON.CO.JP,ref123,\"3,480\"\n"

	got := Normalize(text, m)
	require.Len(t, got, 1)
	assert.Equal(t, core.Transaction{Date: "2024-04-01", Store: "AMAZON.CO.JP", Price: 3480}, got[0])

	m.StoreColIndex = 1
	m.PriceColIndex = 1
	assert.Empty(t, Normalize(text, m), "store text has no digits")
}

func TestNormalizeNeverEmitsNonPositivePrice(t *testing.T) {
	text := "2024-03-01,a,0\n2024-03-01,b,-0\n2024-03-01,c,¥0\n2024-03-01,d,円\n2024-03-01,e,0.00\n"
	m := core.ColumnMapping{DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 2}
	assert.Empty(t, Normalize(text, m))
}

func TestNormalizeDeterministicAndOrdered(t *testing.T) {
	text := "\ufeffdate,store,price\n2024-03-28,B,2\n2024-03-05,A,1\n2024-02-01,C,3\n"
	first := Normalize(text, cardMapping)
	second := Normalize(text, cardMapping)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{first[0].Store, first[1].Store, first[2].Store})
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize("", cardMapping))
	assert.Empty(t, Normalize("date,store,price\n", cardMapping))
}

func TestNormalizeRow(t *testing.T) {
	m := core.ColumnMapping{DateColIndex: 2, StoreColIndex: 0, PriceColIndex: 1}
	tx, err := NormalizeRow([]string{" Shop ", "1,000円", "2024年4月1日"}, 7, m)
	require.NoError(t, err)
	assert.Equal(t, core.Transaction{Date: "2024-04-01", Store: "Shop", Price: 1000}, tx)

	_, err = NormalizeRow([]string{"Shop"}, 9, m)
	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, 9, rej.Line)
	assert.Equal(t, ReasonTooFewColumns, rej.Reason)
	assert.Contains(t, rej.Error(), "line 9")
}

func TestNormalizeBlankFirstLineIsHeader(t *testing.T) {
	text := "\n2024-03-05,Lawson,480\n\n2024-03-06,FamilyMart,210\n"

	res := NormalizeDetailed(text, cardMapping)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "Lawson", res.Transactions[0].Store)
	assert.Equal(t, "FamilyMart", res.Transactions[1].Store)

	res = NormalizeDetailed("date,store,price\n\n2024-03-06,-,210\n", cardMapping)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 3, res.Rejections[0].Line)
}

func TestNormalizeYearlessDate(t *testing.T) {
	m := core.ColumnMapping{DateColIndex: 0, StoreColIndex: 1, PriceColIndex: 2}
	year := strconv.Itoa(time.Now().Year())

	got := Normalize("03/05,Lawson,480\n3月6日,Seven,120\n", m)
	require.Len(t, got, 2)
	assert.Equal(t, year+"-03-05", got[0].Date)
	assert.Equal(t, year+"-03-06", got[1].Date)
	for _, tx := range got {
		assert.NoError(t, tx.Validate())
	}
}

func TestNormalizePriceOutOfRange(t *testing.T) {
	text := "date,store,price\n2024-03-05,Bank,99999999999999999999999\n2024-03-05,Shop,0\n"

	res := NormalizeDetailed(text, cardMapping)
	assert.Empty(t, res.Transactions)
	require.Len(t, res.Rejections, 2)
	assert.Equal(t, ReasonPriceOutOfRange, res.Rejections[0].Reason)
	assert.Equal(t, ReasonZeroPrice, res.Rejections[1].Reason)
}
