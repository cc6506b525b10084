package security

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls which browser origins may call the JSON API.
// An AllowedOrigins entry of "*" admits every origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Access-Token", "X-Spreadsheet-Id", "X-Api-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         600,
	}
}

type CORSMiddleware struct {
	config   CORSConfig
	allowAll bool
	origins  map[string]struct{}
}

func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	c := &CORSMiddleware{config: config, origins: make(map[string]struct{}, len(config.AllowedOrigins))}
	for _, o := range config.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			c.allowAll = true
			continue
		}
		if o != "" {
			c.origins[strings.ToLower(o)] = struct{}{}
		}
	}
	return c
}

// Middleware answers preflight requests itself, so they never reach the
// API key check or the router. Requests without an Origin pass through.
func (c *CORSMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Add("Vary", "Origin")
		if !c.allowed(origin) {
			if preflight {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if c.allowAll {
			headers.Set("Access-Control-Allow-Origin", "*")
		} else {
			headers.Set("Access-Control-Allow-Origin", origin)
		}

		if !preflight {
			setIf(headers, "Access-Control-Expose-Headers", strings.Join(c.config.ExposedHeaders, ", "))
			next.ServeHTTP(w, r)
			return
		}

		headers.Add("Vary", "Access-Control-Request-Method")
		headers.Add("Vary", "Access-Control-Request-Headers")
		setIf(headers, "Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
		setIf(headers, "Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
		if c.config.MaxAge > 0 {
			headers.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (c *CORSMiddleware) allowed(origin string) bool {
	if c.allowAll {
		return true
	}
	_, ok := c.origins[strings.ToLower(strings.TrimRight(origin, "/"))]
	return ok
}

// Enabled reports whether any origin is admitted.
func (c *CORSMiddleware) Enabled() bool {
	return c.allowAll || len(c.origins) > 0
}
