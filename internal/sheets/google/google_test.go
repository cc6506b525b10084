package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kakeibo/internal/sheets"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, "id"); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestNewWithToken_MissingToken(t *testing.T) {
	_, err := NewWithToken(context.Background(), "  ", "sheet-id")
	if err == nil {
		t.Fatal("expected error for empty access token")
	}
}

func TestLoadServiceAccount(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()

	b, err := LoadServiceAccount(ctx, ` {"type":"service_account"} `, "")
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("inline json: got %q, %v", b, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err = LoadServiceAccount(ctx, "", path)
	if err != nil || string(b) != `{"from":"file"}` {
		t.Fatalf("file: got %q, %v", b, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	if _, err := LoadServiceAccount(ctx, "", ""); err != nil {
		t.Fatalf("adc fallback: %v", err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := LoadServiceAccount(ctx, "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	if _, err := LoadServiceAccount(ctx, "", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func TestFormatRequests(t *testing.T) {
	ws := sheets.Worksheet{ID: 42, Title: "Receipt_2024-03"}
	reqs := formatRequests(ws, sheets.Format{
		FreezeRows:   1,
		SortByColumn: 0,
		SortFromRow:  1,
		ColumnWidths: []sheets.ColumnWidth{{Index: 1, Pixels: 200}, {Index: 2, Pixels: 250}},
	})
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(reqs))
	}

	freeze := reqs[0].UpdateSheetProperties
	if freeze == nil || freeze.Properties.GridProperties.FrozenRowCount != 1 || freeze.Fields != "gridProperties.frozenRowCount" {
		t.Fatalf("unexpected freeze request: %+v", reqs[0])
	}
	sort := reqs[1].SortRange
	if sort == nil || sort.Range.SheetId != 42 || sort.Range.StartRowIndex != 1 {
		t.Fatalf("unexpected sort range: %+v", reqs[1])
	}
	if sort.SortSpecs[0].DimensionIndex != 0 || sort.SortSpecs[0].SortOrder != "ASCENDING" {
		t.Fatalf("unexpected sort spec: %+v", sort.SortSpecs[0])
	}
	width := reqs[3].UpdateDimensionProperties
	if width == nil || width.Range.StartIndex != 2 || width.Range.EndIndex != 3 || width.Properties.PixelSize != 250 {
		t.Fatalf("unexpected width request: %+v", reqs[3])
	}
}

func TestFormatRequests_NoSort(t *testing.T) {
	reqs := formatRequests(sheets.Worksheet{}, sheets.Format{SortByColumn: -1})
	if len(reqs) != 0 {
		t.Fatalf("expected no requests, got %d", len(reqs))
	}
}

func TestStoreError_KeepsStatus(t *testing.T) {
	api := &googleapi.Error{Code: 429, Message: "Quota exceeded for quota metric"}
	err := storeError("append", "Log_2024-03", fmt.Errorf("do: %w", api))

	var se *sheets.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %T", err)
	}
	if se.Status != 429 || se.Op != "append" || se.Sheet != "Log_2024-03" {
		t.Fatalf("unexpected store error: %+v", se)
	}
	if !errors.Is(err, api) {
		t.Fatal("store error should unwrap to the api error")
	}

	plain := storeError("list", "", errors.New("connection reset"))
	if !errors.As(plain, &se) || se.Status != 0 {
		t.Fatalf("transport errors carry no status: %+v", se)
	}
}

func TestA1(t *testing.T) {
	if got := a1("Receipt_2024-03", "A:D"); got != "'Receipt_2024-03'!A:D" {
		t.Fatalf("unexpected range %q", got)
	}
	if got := a1("Bob's", "A1"); got != "'Bob''s'!A1" {
		t.Fatalf("unexpected escaped range %q", got)
	}
}

func TestAppendRows_StoresRawValues(t *testing.T) {
	var (
		gotQuery url.Values
		gotPath  string
		gotBody  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sid"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	client, err := New(svc, "sid")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rows := [][]any{{"2024-03-05", `=IMPORTXML("http://x","//a")`, "+81 3 1234", 480}}
	if err := client.AppendRows(ctx, sheets.Worksheet{Title: "Log_2024-03"}, rows); err != nil {
		t.Fatalf("AppendRows: %v", err)
	}

	if got := gotQuery.Get("valueInputOption"); got != ValueInputRaw {
		t.Fatalf("valueInputOption = %q, want %q", got, ValueInputRaw)
	}
	if got := gotQuery.Get("insertDataOption"); got != "INSERT_ROWS" {
		t.Fatalf("insertDataOption = %q, want INSERT_ROWS", got)
	}
	if !strings.HasSuffix(gotPath, ":append") || !strings.Contains(gotPath, "Log_2024-03") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(gotBody.Values) != 1 || gotBody.Values[0][0] != "2024-03-05" || gotBody.Values[0][1] != `=IMPORTXML("http://x","//a")` {
		t.Fatalf("cells were not sent verbatim: %v", gotBody.Values)
	}
}
