package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kakeibo/internal/sheets"
)

// ErrRateLimited marks a worksheet store failure that is worth retrying
// later: throttling, quota exhaustion or a transient 5xx.
var ErrRateLimited = errors.New("worksheet store rate limited")

var (
	// Checked against the message only when the store reported no status.
	statusMarkers = []string{"429", "500", "503"}
	quotaMarkers  = []string{"Quota", "RATE_LIMIT_EXCEEDED"}
)

// Classify re-signals transient store failures as ErrRateLimited and
// returns every other error unchanged. A structured HTTP status on a
// sheets.StoreError wins over message inspection.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrRateLimited) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}

func isTransient(err error) bool {
	msg := err.Error()
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}

	var se *sheets.StoreError
	if errors.As(err, &se) && se.Status != 0 {
		switch se.Status {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	for _, m := range statusMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
