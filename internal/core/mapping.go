package core

import (
	"errors"
	"fmt"
)

// MaxColumnIndex bounds mapping indices; no real export is this wide.
const MaxColumnIndex = 255

var ErrInvalidMapping = errors.New("invalid column mapping")

// ColumnMapping tells the CSV normalizer which zero-based column holds each
// semantic field. Indices may alias when the export has no dedicated store
// column.
type ColumnMapping struct {
	HasHeader     bool `json:"has_header"`
	DateColIndex  int  `json:"date_col_index"`
	StoreColIndex int  `json:"store_col_index"`
	PriceColIndex int  `json:"price_col_index"`
}

func (m ColumnMapping) Validate() error {
	cols := []struct {
		name string
		idx  int
	}{
		{"date_col_index", m.DateColIndex},
		{"store_col_index", m.StoreColIndex},
		{"price_col_index", m.PriceColIndex},
	}
	for _, c := range cols {
		if c.idx < 0 || c.idx > MaxColumnIndex {
			return fmt.Errorf("%w: %s=%d out of range [0,%d]", ErrInvalidMapping, c.name, c.idx, MaxColumnIndex)
		}
	}
	return nil
}

// MinColumns is the number of cells a row needs before it can be consumed.
func (m ColumnMapping) MinColumns() int {
	return max(m.DateColIndex, m.StoreColIndex, m.PriceColIndex) + 1
}
