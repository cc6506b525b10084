package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"kakeibo/internal/core"
)

type fakeModels struct {
	mu      sync.Mutex
	calls   int
	configs []*genai.GenerateContentConfig
	reply   func(contents []*genai.Content) (string, error)
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.calls++
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()

	text, err := f.reply(contents)
	if err != nil {
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
	}, nil
}

func TestCleanModelJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n[1,2]\n```":               `[1,2]`,
		"Here you go: {\"a\":1} thanks": `{"a":1}`,
		"  [ {\"a\":1} ]  ":             `[ {"a":1} ]`,
		"no json at all":                "no json at all",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanModelJSON(in), "input %q", in)
	}
}

func TestDecodeReceipts(t *testing.T) {
	raw := "```json\n" + `{"receipts":[{"purchase_date":"2024-04-10","store_name":"Market",
"items":[{"item_name":"Milk","price":200},{"item_name":"Bread","price":300}],
"total_amount":500,"payment_method":"Cash"}]}` + "\n```"

	got, err := decodeReceipts(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Market", got[0].StoreName)
	assert.Equal(t, core.PaymentCash, got[0].PaymentMethod)
	assert.Equal(t, []core.ReceiptItem{{Name: "Milk", Price: 200}, {Name: "Bread", Price: 300}}, got[0].Items)
	assert.EqualValues(t, 500, got[0].TotalAmount)

	bare, err := decodeReceipts(`[{"purchase_date":"2024-04-10","store_name":"A","items":[],"total_amount":1,"payment_method":"paypay"}]`)
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, core.PaymentUnknown, bare[0].PaymentMethod)

	_, err = decodeReceipts("not json")
	assert.Error(t, err)
}

func TestExtractReceiptsKeepsImageOrder(t *testing.T) {
	fm := &fakeModels{reply: func(contents []*genai.Content) (string, error) {
		data := contents[0].Parts[0].InlineData.Data
		// Later images answer first.
		time.Sleep(time.Duration(5-int(data[0])) * time.Millisecond)
		return `{"receipts":[{"purchase_date":"2024-04-1` + string('0'+data[0]) + `","store_name":"S","items":[],"total_amount":1,"payment_method":"cash"}]}`, nil
	}}
	c := newClient(fm, "", 2)

	images := []core.Image{{Data: []byte{1}}, {Data: []byte{2}}, {Data: []byte{3}}, {Data: []byte{4}}}
	got, err := c.ExtractReceipts(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, rc := range got {
		assert.Equal(t, "2024-04-1"+string(rune('1'+i)), rc.PurchaseDate)
	}
	assert.Equal(t, 4, fm.calls)
	assert.Equal(t, "application/json", fm.configs[0].ResponseMIMEType)
	assert.Same(t, receiptsSchema, fm.configs[0].ResponseSchema)
}

func TestExtractReceiptsDefaultsMIMEType(t *testing.T) {
	var mime string
	fm := &fakeModels{reply: func(contents []*genai.Content) (string, error) {
		mime = contents[0].Parts[0].InlineData.MIMEType
		return `{"receipts":[]}`, nil
	}}
	_, err := newClient(fm, "", 1).ExtractReceipts(context.Background(), []core.Image{{Data: []byte{1}}})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestExtractReceiptsError(t *testing.T) {
	boom := errors.New("429 RESOURCE_EXHAUSTED")
	fm := &fakeModels{reply: func([]*genai.Content) (string, error) { return "", boom }}

	_, err := newClient(fm, "", 1).ExtractReceipts(context.Background(), []core.Image{{Data: []byte{1}}})
	assert.True(t, errors.Is(err, boom))
}

func TestSuggestMapping(t *testing.T) {
	var sample string
	fm := &fakeModels{reply: func(contents []*genai.Content) (string, error) {
		sample = contents[0].Parts[1].Text
		return `{"has_header":true,"date_col_index":0,"store_col_index":2,"price_col_index":3}`, nil
	}}

	got, err := newClient(fm, "", 1).SuggestMapping(context.Background(), "a,b,c,d")
	require.NoError(t, err)
	assert.Equal(t, core.ColumnMapping{HasHeader: true, DateColIndex: 0, StoreColIndex: 2, PriceColIndex: 3}, got)
	assert.Equal(t, "CSV Sample:\na,b,c,d", sample)
}

func TestAnswer(t *testing.T) {
	var prompt string
	fm := &fakeModels{reply: func(contents []*genai.Content) (string, error) {
		prompt = contents[0].Parts[0].Text
		return "  200円ですよ。\n", nil
	}}
	c := newClient(fm, "", 1)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	got, err := c.Answer(context.Background(), "牛乳はいくら？", "purchase_date,store_name,item_name,price\n2024-04-10,Market,Milk,200")
	require.NoError(t, err)
	assert.Equal(t, "200円ですよ。", got)
	assert.Contains(t, prompt, "今日は 2024-05-01 です。")
	assert.Contains(t, prompt, "2024-04-10,Market,Milk,200")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "牛乳はいくら？"))
	assert.Empty(t, fm.configs[0].ResponseMIMEType)
}

func TestEmptyResponse(t *testing.T) {
	fm := &fakeModels{reply: func([]*genai.Content) (string, error) { return " ", nil }}
	_, err := newClient(fm, "", 1).Answer(context.Background(), "q", "l")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0)
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c := newClient(&fakeModels{}, "", 0)
	assert.Equal(t, DefaultModelName, c.model)
	assert.Equal(t, DefaultConcurrency, c.concurrency)
}

func TestGenerateQuotaIsRateLimited(t *testing.T) {
	f := &fakeModels{reply: func([]*genai.Content) (string, error) {
		return "", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}
	}}
	_, err := newClient(f, "", 1).Answer(context.Background(), "q", "ledger")
	assert.True(t, errors.Is(err, ErrRateLimited))

	f.reply = func([]*genai.Content) (string, error) {
		return "", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}
	}
	_, err = newClient(f, "", 1).Answer(context.Background(), "q", "ledger")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
}
