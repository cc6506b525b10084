package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/core"
	"kakeibo/internal/sheets/memory"
)

func TestAggregateSkipsLogSheets(t *testing.T) {
	ctx := context.Background()
	wb := memory.New()
	r := NewRouter(wb)

	_, err := r.RecordReceipt(ctx, core.Receipt{
		PurchaseDate:  "2024-04-10",
		StoreName:     "Market",
		Items:         []core.ReceiptItem{{Name: "Milk", Price: 200}},
		PaymentMethod: core.PaymentCash,
	})
	require.NoError(t, err)
	_, err = r.RecordTransactions(ctx, []core.Transaction{{Date: "2024-04-11", Store: "Card Shop", Price: 900}})
	require.NoError(t, err)

	got, err := NewAggregator(wb).Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "purchase_date,store_name,item_name,price\n2024-04-10,Market,Milk,200", got)
	assert.True(t, HasData(got))
}

func TestAggregateWorksheetThenRowOrder(t *testing.T) {
	ctx := context.Background()
	wb := memory.New()
	r := NewRouter(wb)

	for _, rc := range []core.Receipt{
		{PurchaseDate: "2024-05-02", StoreName: "B", Items: []core.ReceiptItem{{Name: "b1", Price: 1}, {Name: "b2", Price: 2}}},
		{PurchaseDate: "2024-04-30", StoreName: "A", Items: []core.ReceiptItem{{Name: "a1", Price: 3}}},
	} {
		_, err := r.RecordReceipt(ctx, rc)
		require.NoError(t, err)
	}
	// Header-only receipt sheet.
	_, err := r.Route(ctx, CategoryReceipt, core.NewDate(2024, 6, 1))
	require.NoError(t, err)

	got, err := NewAggregator(wb).Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, AggregateHeader+"\n"+
		"2024-05-02,B,b1,1\n"+
		"2024-05-02,B,b2,2\n"+
		"2024-04-30,A,a1,3", got)
}

func TestAggregateEmptyLedger(t *testing.T) {
	got, err := NewAggregator(memory.New()).Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AggregateHeader, got)
	assert.False(t, HasData(got))
	assert.False(t, HasData(""))
	assert.False(t, HasData(AggregateHeader+"\n \n"))
}

func TestAggregateReadFailure(t *testing.T) {
	wb := memory.New()
	wb.FailOn("list", errors.New("googleapi: Error 503: unavailable"))
	_, err := NewAggregator(wb).Aggregate(context.Background())
	assert.True(t, errors.Is(err, ErrRateLimited))
}
