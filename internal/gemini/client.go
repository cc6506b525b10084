// Package gemini implements the receipt extraction, column mapping and
// question answering oracles on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

const (
	DefaultModelName   = "gemini-2.5-flash"
	DefaultConcurrency = 4
)

var (
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrRateLimited marks a model call rejected for quota.
	ErrRateLimited = errors.New("model rate limited")
)

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models      generator
	model       string
	concurrency int
	now         func() time.Time
}

var (
	_ services.ReceiptExtractor = (*Client)(nil)
	_ services.MappingSuggester = (*Client)(nil)
	_ services.QuestionAnswerer = (*Client)(nil)
)

// NewClient creates a Gemini API client. An empty model selects
// DefaultModelName; concurrency bounds parallel image extraction.
func NewClient(ctx context.Context, apiKey, model string, concurrency int) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models, model, concurrency), nil
}

func newClient(models generator, model string, concurrency int) *Client {
	if model == "" {
		model = DefaultModelName
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Client{models: models, model: model, concurrency: concurrency, now: time.Now}
}

// ExtractReceipts sends each image to the model separately, at most
// c.concurrency at a time, and returns the receipts in image order.
func (c *Client) ExtractReceipts(ctx context.Context, images []core.Image) ([]core.Receipt, error) {
	perImage := make([][]core.Receipt, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, img := range images {
		g.Go(func() error {
			receipts, err := c.extractOne(gctx, img)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			perImage[i] = receipts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []core.Receipt
	for _, rs := range perImage {
		out = append(out, rs...)
	}
	return out, nil
}

func (c *Client) extractOne(ctx context.Context, img core.Image) ([]core.Receipt, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mime, Data: img.Data}},
			{Text: extractPrompt},
		},
	}}
	raw, err := c.generate(ctx, contents, jsonConfig(receiptsSchema))
	if err != nil {
		return nil, err
	}
	return decodeReceipts(raw)
}

// SuggestMapping asks the model which columns of sample hold the date,
// store and price, and whether the first line is a header.
func (c *Client) SuggestMapping(ctx context.Context, sample string) (core.ColumnMapping, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: mappingPrompt},
			{Text: "CSV Sample:\n" + sample},
		},
	}}
	raw, err := c.generate(ctx, contents, jsonConfig(mappingSchema))
	if err != nil {
		return core.ColumnMapping{}, err
	}
	return decodeMapping(raw)
}

// Answer asks the model to answer question citing only ledger.
func (c *Client) Answer(ctx context.Context, question, ledger string) (string, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: buildAnswerPrompt(c.now(), question, ledger)}},
	}}
	raw, err := c.generate(ctx, contents, &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	log.FromContext(ctx).WithComponent(log.ComponentOracle).DebugContext(ctx, "Model call finished",
		"model", c.model,
		log.FieldDuration, time.Since(start).Milliseconds(),
		log.FieldSuccess, err == nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			return "", fmt.Errorf("generate content: %w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyResponse
	}
	return raw, nil
}

func jsonConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
}

func decodeReceipts(raw string) ([]core.Receipt, error) {
	clean := cleanModelJSON(raw)

	var wrapped struct {
		Receipts []core.Receipt `json:"receipts"`
	}
	if strings.HasPrefix(clean, "[") {
		if err := json.Unmarshal([]byte(clean), &wrapped.Receipts); err != nil {
			return nil, fmt.Errorf("unmarshal receipts: %w", err)
		}
	} else if err := json.Unmarshal([]byte(clean), &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal receipts: %w", err)
	}

	for i := range wrapped.Receipts {
		wrapped.Receipts[i].PaymentMethod = core.ParsePaymentMethod(string(wrapped.Receipts[i].PaymentMethod))
	}
	return wrapped.Receipts, nil
}

func decodeMapping(raw string) (core.ColumnMapping, error) {
	var m core.ColumnMapping
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &m); err != nil {
		return core.ColumnMapping{}, fmt.Errorf("unmarshal mapping: %w", err)
	}
	return m, nil
}

// cleanModelJSON strips Markdown fences and any prose around the first
// JSON object or array in raw.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
