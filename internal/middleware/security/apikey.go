package security

import (
	"crypto/subtle"
	"net/http"

	"kakeibo/internal/log"
)

// HeaderAPIKey carries the shared secret.
const HeaderAPIKey = "x-api-key"

// APIKey rejects requests whose x-api-key does not match key. An empty key
// disables the check. Paths listed in open bypass it.
func APIKey(key string, open []string, onDenied func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(open))
	for _, p := range open {
		bypass[p] = true
	}
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] || validKey(r.Header.Get(HeaderAPIKey), key) {
				next.ServeHTTP(w, r)
				return
			}
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "API key rejected",
				log.FieldPath, r.URL.Path,
				log.FieldErrorType, log.ErrorTypeAuth)
			if onDenied != nil {
				onDenied(w, r)
				return
			}
			http.Error(w, "invalid api key", http.StatusUnauthorized)
		})
	}
}

func validKey(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
