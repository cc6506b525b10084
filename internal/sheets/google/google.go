package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
)

// Client is a Workbook backed by one Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ sheets.Workbook = (*Client)(nil)

var ErrMissingCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")

// New wraps an already configured Sheets service.
func New(svc *gsheet.Service, spreadsheetID string) (*Client, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewWithServiceAccount opens spreadsheetID with service account credentials.
func NewWithServiceAccount(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID)
}

// NewWithToken opens spreadsheetID on behalf of a user who already holds an
// OAuth access token. The token is not refreshed.
func NewWithToken(ctx context.Context, accessToken, spreadsheetID string) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("missing access token")
	}
	base := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauth2.NewClient(base, ts)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID)
}

// LoadServiceAccount resolves service account credentials from inline JSON
// or a file path, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func LoadServiceAccount(ctx context.Context, inlineJSON, file string) ([]byte, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	if inlineJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inlineJSON != "":
		log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inlineJSON), nil
	case file != "":
		log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrMissingCredentials
	}
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) Worksheets(ctx context.Context) ([]sheets.Worksheet, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, storeError("list", "", err)
	}
	out := make([]sheets.Worksheet, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		out = append(out, sheets.Worksheet{ID: s.Properties.SheetId, Title: s.Properties.Title})
	}
	return out, nil
}

func (c *Client) Worksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	all, err := c.Worksheets(ctx)
	if err != nil {
		return sheets.Worksheet{}, err
	}
	for _, ws := range all {
		if ws.Title == title {
			return ws, nil
		}
	}
	return sheets.Worksheet{}, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
}

func (c *Client) AddWorksheet(ctx context.Context, title string) (sheets.Worksheet, error) {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return sheets.Worksheet{}, storeError("add", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return sheets.Worksheet{}, &sheets.StoreError{Op: "add", Sheet: title, Err: errors.New("empty add sheet reply")}
	}
	props := resp.Replies[0].AddSheet.Properties
	return sheets.Worksheet{ID: props.SheetId, Title: props.Title}, nil
}

// ValueInputRaw stores appended cells as given. Values starting with "=" or
// "+" stay text and dates stay canonical strings.
const ValueInputRaw = "RAW"

func (c *Client) AppendRows(ctx context.Context, ws sheets.Worksheet, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(ws.Title, "A1"), vr).
		ValueInputOption(ValueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return storeError("append", ws.Title, err)
	}
	return nil
}

func (c *Client) Rows(ctx context.Context, ws sheets.Worksheet) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(ws.Title, "A:D")).Context(ctx).Do()
	if err != nil {
		return nil, storeError("read", ws.Title, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out = append(out, toStrings(row))
	}
	return out, nil
}

func (c *Client) ApplyFormat(ctx context.Context, ws sheets.Worksheet, f sheets.Format) error {
	reqs := formatRequests(ws, f)
	if len(reqs) == 0 {
		return nil
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	if err != nil {
		return storeError("format", ws.Title, err)
	}
	return nil
}

// formatRequests translates f into one batched update. Requests run in
// order: freeze, sort, then column widths.
func formatRequests(ws sheets.Worksheet, f sheets.Format) []*gsheet.Request {
	var reqs []*gsheet.Request
	if f.FreezeRows > 0 {
		reqs = append(reqs, &gsheet.Request{
			UpdateSheetProperties: &gsheet.UpdateSheetPropertiesRequest{
				Properties: &gsheet.SheetProperties{
					SheetId:         ws.ID,
					GridProperties:  &gsheet.GridProperties{FrozenRowCount: f.FreezeRows},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		})
	}
	if f.SortByColumn >= 0 {
		reqs = append(reqs, &gsheet.Request{
			SortRange: &gsheet.SortRangeRequest{
				Range: &gsheet.GridRange{
					SheetId:         ws.ID,
					StartRowIndex:   f.SortFromRow,
					ForceSendFields: []string{"SheetId", "StartRowIndex"},
				},
				SortSpecs: []*gsheet.SortSpec{{
					DimensionIndex:  int64(f.SortByColumn),
					SortOrder:       "ASCENDING",
					ForceSendFields: []string{"DimensionIndex"},
				}},
			},
		})
	}
	for _, w := range f.ColumnWidths {
		reqs = append(reqs, &gsheet.Request{
			UpdateDimensionProperties: &gsheet.UpdateDimensionPropertiesRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         ws.ID,
					Dimension:       "COLUMNS",
					StartIndex:      int64(w.Index),
					EndIndex:        int64(w.Index) + 1,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
				Properties: &gsheet.DimensionProperties{PixelSize: w.Pixels},
				Fields:     "pixelSize",
			},
		})
	}
	return reqs
}

// storeError wraps a Sheets API failure, keeping the HTTP status when the
// API reported one.
func storeError(op, sheet string, err error) error {
	se := &sheets.StoreError{Op: op, Sheet: sheet, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		se.Status = gerr.Code
	}
	return se
}

// a1 quotes a sheet title for use in an A1 range.
func a1(title, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), rng)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
