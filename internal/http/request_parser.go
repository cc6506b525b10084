// Package http provides the JSON API of the ledger.
//
// This file holds request decoding: JSON bodies, multipart receipt images
// and the per-request spreadsheet credentials.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kakeibo/internal/backend"
	"kakeibo/internal/core"
)

const (
	HeaderAccessToken   = "x-access-token"
	HeaderSpreadsheetID = "x-spreadsheet-id"

	// MaxJSONBody bounds JSON bodies; CSV statements travel inside them.
	MaxJSONBody = 8 << 20
	// MaxUploadBody bounds a multipart receipt upload.
	MaxUploadBody = 32 << 20
	// MaxImages bounds how many receipt images one request may carry.
	MaxImages = 20
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNoFiles    = errors.New("no files uploaded")
)

type (
	searchRequest struct {
		Query string `json:"query"`
	}

	analyzeCSVRequest struct {
		CSVText string              `json:"csv_text"`
		Mapping *core.ColumnMapping `json:"mapping,omitempty"`
		Preset  string              `json:"preset,omitempty"`
	}

	saveCSVRequest struct {
		Transactions []core.Transaction `json:"transactions"`
	}

	presetRequest struct {
		Name    string              `json:"name"`
		Mapping *core.ColumnMapping `json:"mapping,omitempty"`
	}
)

// credentialsFromRequest reads the spreadsheet credentials headers.
func credentialsFromRequest(r *http.Request) backend.Credentials {
	return backend.Credentials{
		AccessToken:   strings.TrimSpace(r.Header.Get(HeaderAccessToken)),
		SpreadsheetID: strings.TrimSpace(r.Header.Get(HeaderSpreadsheetID)),
	}
}

// decodeJSON decodes a bounded JSON body into dst. Unknown fields are
// rejected so typos in mapping keys surface as 400s.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", ErrBadRequest)
	}
	return nil
}

// parseImages reads the "files" parts of a multipart upload.
func parseImages(w http.ResponseWriter, r *http.Request) ([]core.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBody)
	if err := r.ParseMultipartForm(MaxUploadBody); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, ErrNoFiles)
	}
	if len(files) > MaxImages {
		return nil, fmt.Errorf("%w: at most %d images per request", ErrBadRequest, MaxImages)
	}

	images := make([]core.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		mime := fh.Header.Get("Content-Type")
		if mime == "" || mime == "application/octet-stream" {
			mime = http.DetectContentType(data)
		}
		if !strings.HasPrefix(mime, "image/") {
			return nil, fmt.Errorf("%w: %s is not an image (%s)", ErrBadRequest, fh.Filename, mime)
		}
		images = append(images, core.Image{Data: data, MIMEType: mime})
	}
	return images, nil
}
