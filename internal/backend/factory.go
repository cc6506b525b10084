package backend

import (
	"context"
	"fmt"

	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
	gsheet "kakeibo/internal/sheets/google"
	"kakeibo/internal/sheets/memory"
)

// TokenOpener opens a spreadsheet on behalf of a user.
type TokenOpener func(ctx context.Context, accessToken, spreadsheetID string) (sheets.Workbook, error)

// Factory is the Opener for both backends.
//
// The memory backend serves one shared in-process workbook and ignores
// request credentials. The sheets backend opens the user's spreadsheet when
// the request carries credentials and falls back to the service account
// spreadsheet otherwise.
type Factory struct {
	logger    *log.Logger
	kind      BackendType
	defaultWB sheets.Workbook
	openToken TokenOpener
}

var _ Opener = (*Factory)(nil)

func NewFactory(ctx context.Context, logger *log.Logger, cfg Config) (*Factory, error) {
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.WithComponent(log.ComponentBackend)
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	f := &Factory{logger: logger, kind: cfg.Type, openToken: openWithToken}
	switch cfg.Type {
	case MemoryBackend:
		logger.Info("Using in-memory workbook", "backend", cfg.Type)
		f.defaultWB = memory.New()
	case SheetsBackend:
		if cfg.GoogleSpreadsheetID == "" {
			logger.Info("No default spreadsheet, requests must carry credentials")
			break
		}
		creds, err := gsheet.LoadServiceAccount(ctx, cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, err
		}
		client, err := gsheet.NewWithServiceAccount(ctx, cfg.GoogleSpreadsheetID, creds)
		if err != nil {
			return nil, fmt.Errorf("open default spreadsheet: %w", err)
		}
		logger.Info("Using Google Sheets workbook", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		f.defaultWB = client
	}
	return f, nil
}

// NewFactoryWithWorkbook is a Factory around an existing default workbook.
// openToken may be nil, in which case request credentials are rejected.
func NewFactoryWithWorkbook(wb sheets.Workbook, openToken TokenOpener) *Factory {
	return &Factory{logger: log.FromContext(context.Background()).WithComponent(log.ComponentBackend), kind: SheetsBackend, defaultWB: wb, openToken: openToken}
}

func (f *Factory) Open(ctx context.Context, creds Credentials) (sheets.Workbook, error) {
	if f.kind == MemoryBackend || creds.Empty() {
		if f.defaultWB == nil {
			return nil, ErrNoWorkbook
		}
		return f.defaultWB, nil
	}
	if !creds.complete() || f.openToken == nil {
		return nil, ErrIncompleteCredentials
	}
	f.logger.DebugContext(ctx, "Opening request spreadsheet", "spreadsheet_id", creds.SpreadsheetID)
	return f.openToken(ctx, creds.AccessToken, creds.SpreadsheetID)
}

func (f *Factory) Ready(ctx context.Context) error {
	if f.defaultWB == nil {
		return nil
	}
	if _, err := f.defaultWB.Worksheets(ctx); err != nil {
		return fmt.Errorf("default workbook unreachable: %w", err)
	}
	return nil
}

func openWithToken(ctx context.Context, accessToken, spreadsheetID string) (sheets.Workbook, error) {
	return gsheet.NewWithToken(ctx, accessToken, spreadsheetID)
}
