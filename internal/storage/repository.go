package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
)

var (
	ErrPresetNotFound = errors.New("csv preset not found")
	ErrPresetExists   = errors.New("csv preset already exists")
	ErrInvalidName    = errors.New("invalid preset name")
)

// Preset is a named column mapping saved for a recurring CSV export.
type Preset struct {
	Name      string             `json:"name"`
	Mapping   core.ColumnMapping `json:"mapping"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SQLiteRepository stores CSV mapping presets.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.FromContext(context.Background()).WithComponent(log.ComponentStorage).Info("CSV preset store ready",
		"path", dbPath,
		"schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SavePreset creates or replaces the preset called name.
func (r *SQLiteRepository) SavePreset(ctx context.Context, name string, m core.ColumnMapping) (Preset, error) {
	name, err := cleanName(name)
	if err != nil {
		return Preset{}, err
	}
	if err := m.Validate(); err != nil {
		return Preset{}, err
	}

	row, err := r.queries.UpsertPreset(ctx, UpsertPresetParams{
		Name:          name,
		HasHeader:     boolToInt(m.HasHeader),
		DateColIndex:  int64(m.DateColIndex),
		StoreColIndex: int64(m.StoreColIndex),
		PriceColIndex: int64(m.PriceColIndex),
	})
	if err != nil {
		return Preset{}, fmt.Errorf("save preset: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentStorage).InfoContext(ctx, "CSV preset saved", log.FieldPreset, name)
	return toPreset(row), nil
}

func (r *SQLiteRepository) GetPreset(ctx context.Context, name string) (Preset, error) {
	row, err := r.queries.GetPreset(ctx, strings.TrimSpace(name))
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("get preset: %w", err)
	}
	return toPreset(row), nil
}

// ListPresets returns every preset ordered by name.
func (r *SQLiteRepository) ListPresets(ctx context.Context) ([]Preset, error) {
	rows, err := r.queries.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	out := make([]Preset, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPreset(row))
	}
	return out, nil
}

// RenamePreset renames oldName to newName. It fails with ErrPresetExists
// when newName is taken.
func (r *SQLiteRepository) RenamePreset(ctx context.Context, oldName, newName string) error {
	newName, err := cleanName(newName)
	if err != nil {
		return err
	}
	oldName = strings.TrimSpace(oldName)
	if oldName == newName {
		_, err := r.GetPreset(ctx, oldName)
		return err
	}
	if _, err := r.GetPreset(ctx, newName); err == nil {
		return fmt.Errorf("%w: %s", ErrPresetExists, newName)
	} else if !errors.Is(err, ErrPresetNotFound) {
		return err
	}

	n, err := r.queries.RenamePreset(ctx, RenamePresetParams{NewName: newName, Name: oldName})
	if err != nil {
		return fmt.Errorf("rename preset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, oldName)
	}
	return nil
}

func (r *SQLiteRepository) DeletePreset(ctx context.Context, name string) error {
	n, err := r.queries.DeletePreset(ctx, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func toPreset(row CsvPreset) Preset {
	return Preset{
		Name: row.Name,
		Mapping: core.ColumnMapping{
			HasHeader:     row.HasHeader != 0,
			DateColIndex:  int(row.DateColIndex),
			StoreColIndex: int(row.StoreColIndex),
			PriceColIndex: int(row.PriceColIndex),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
