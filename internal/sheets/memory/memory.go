package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kakeibo/internal/sheets"
)

type tab struct {
	ws     sheets.Worksheet
	rows   [][]string
	frozen int64
	widths map[int]int64
}

// Store is an in-process Workbook. Worksheets keep creation order, like
// tabs in a spreadsheet.
type Store struct {
	mu     sync.Mutex
	nextID int64
	tabs   []*tab
	faults map[string]error
}

var _ sheets.Workbook = (*Store)(nil)

func New() *Store {
	return &Store{faults: map[string]error{}}
}

// FailOn makes every subsequent call of op ("list", "add", "append",
// "read", "format") fail with err. A nil err clears the fault.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op, sheet string) error {
	if err, ok := s.faults[op]; ok {
		return &sheets.StoreError{Op: op, Sheet: sheet, Err: err}
	}
	return nil
}

func (s *Store) Worksheets(_ context.Context) ([]sheets.Worksheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("list", ""); err != nil {
		return nil, err
	}
	out := make([]sheets.Worksheet, 0, len(s.tabs))
	for _, t := range s.tabs {
		out = append(out, t.ws)
	}
	return out, nil
}

func (s *Store) Worksheet(_ context.Context, title string) (sheets.Worksheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("list", title); err != nil {
		return sheets.Worksheet{}, err
	}
	if t := s.find(title); t != nil {
		return t.ws, nil
	}
	return sheets.Worksheet{}, fmt.Errorf("%w: %s", sheets.ErrWorksheetNotFound, title)
}

func (s *Store) AddWorksheet(_ context.Context, title string) (sheets.Worksheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("add", title); err != nil {
		return sheets.Worksheet{}, err
	}
	if strings.TrimSpace(title) == "" {
		return sheets.Worksheet{}, &sheets.StoreError{Op: "add", Err: fmt.Errorf("empty title")}
	}
	if s.find(title) != nil {
		return sheets.Worksheet{}, &sheets.StoreError{Op: "add", Sheet: title, Status: 400, Err: fmt.Errorf("a sheet with the name %q already exists", title)}
	}
	s.nextID++
	t := &tab{ws: sheets.Worksheet{ID: s.nextID, Title: title}, widths: map[int]int64{}}
	s.tabs = append(s.tabs, t)
	return t.ws, nil
}

func (s *Store) AppendRows(_ context.Context, ws sheets.Worksheet, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("append", ws.Title); err != nil {
		return err
	}
	t := s.find(ws.Title)
	if t == nil {
		return &sheets.StoreError{Op: "append", Sheet: ws.Title, Status: 400, Err: sheets.ErrWorksheetNotFound}
	}
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = strings.TrimSpace(fmt.Sprint(v))
		}
		t.rows = append(t.rows, cells)
	}
	return nil
}

func (s *Store) Rows(_ context.Context, ws sheets.Worksheet) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("read", ws.Title); err != nil {
		return nil, err
	}
	t := s.find(ws.Title)
	if t == nil {
		return nil, &sheets.StoreError{Op: "read", Sheet: ws.Title, Status: 400, Err: sheets.ErrWorksheetNotFound}
	}
	out := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		if len(r) == 0 {
			continue
		}
		out = append(out, append([]string(nil), r...))
	}
	return out, nil
}

func (s *Store) ApplyFormat(_ context.Context, ws sheets.Worksheet, f sheets.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("format", ws.Title); err != nil {
		return err
	}
	t := s.find(ws.Title)
	if t == nil {
		return &sheets.StoreError{Op: "format", Sheet: ws.Title, Status: 400, Err: sheets.ErrWorksheetNotFound}
	}
	if f.FreezeRows > 0 {
		t.frozen = f.FreezeRows
	}
	if f.SortByColumn >= 0 && int(f.SortFromRow) < len(t.rows) {
		data := t.rows[f.SortFromRow:]
		col := f.SortByColumn
		sort.SliceStable(data, func(i, j int) bool {
			return cell(data[i], col) < cell(data[j], col)
		})
	}
	for _, w := range f.ColumnWidths {
		t.widths[w.Index] = w.Pixels
	}
	return nil
}

// FrozenRows reports how many header rows are frozen in title.
func (s *Store) FrozenRows(title string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.find(title); t != nil {
		return t.frozen
	}
	return 0
}

// ColumnWidth reports the pixel width set for a column, or 0 when unset.
func (s *Store) ColumnWidth(title string, col int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.find(title); t != nil {
		return t.widths[col]
	}
	return 0
}

func (s *Store) find(title string) *tab {
	for _, t := range s.tabs {
		if t.ws.Title == title {
			return t
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
