// Package backend picks the workbook a request writes to.
package backend

import (
	"context"
	"errors"
	"strings"

	"kakeibo/internal/sheets"
)

var (
	// ErrNoWorkbook means no default spreadsheet is configured and the
	// request did not name one.
	ErrNoWorkbook = errors.New("no spreadsheet configured: send x-spreadsheet-id and x-access-token")
	// ErrIncompleteCredentials means only one of the two request headers
	// was sent.
	ErrIncompleteCredentials = errors.New("x-spreadsheet-id and x-access-token must be sent together")
)

// Credentials name a user's spreadsheet and the OAuth token to open it.
type Credentials struct {
	AccessToken   string
	SpreadsheetID string
}

// Empty reports whether the request carried no credentials at all.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.AccessToken) == "" && strings.TrimSpace(c.SpreadsheetID) == ""
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.AccessToken) != "" && strings.TrimSpace(c.SpreadsheetID) != ""
}

// Opener resolves the workbook for one request.
type Opener interface {
	Open(ctx context.Context, creds Credentials) (sheets.Workbook, error)
	// Ready checks that the default workbook, if any, is reachable.
	Ready(ctx context.Context) error
}

type BackendType string

const (
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
