package themestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/google/uuid"
)

const presetColumns = `id, name, description, category, configuration, created_at`

func scanPreset(sc rowScanner) (*theme.Preset, error) {
	var (
		p   theme.Preset
		raw string
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &raw, &p.CreatedAt); err != nil {
		return nil, err
	}
	cfg, err := theme.ParseConfiguration(raw)
	if err != nil {
		return &p, err
	}
	p.Configuration = cfg
	return &p, nil
}

// GetPreset returns a preset by ID. Its configuration may be partial.
func (s *Store) GetPreset(ctx context.Context, id string) (*theme.Preset, error) {
	p, err := scanPreset(s.db.QueryRowContext(ctx,
		`SELECT `+presetColumns+` FROM theme_presets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset %q: %w", id, err)
	}
	return p, nil
}

// ListPresets returns presets ordered by category then name. An empty
// category lists all of them.
func (s *Store) ListPresets(ctx context.Context, category string) ([]theme.Preset, error) {
	query := `SELECT ` + presetColumns + ` FROM theme_presets`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	presets := make([]theme.Preset, 0)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset row: %w", err)
		}
		presets = append(presets, *p)
	}
	return presets, rows.Err()
}

// CreatePreset inserts a new preset. Presets are never updated afterwards.
func (s *Store) CreatePreset(ctx context.Context, p *theme.Preset) error {
	if _, err := s.insertPreset(ctx, p, false); err != nil {
		return err
	}
	return nil
}

// EnsurePreset inserts p unless a preset with the same ID or name exists.
// It reports whether a row was written.
func (s *Store) EnsurePreset(ctx context.Context, p *theme.Preset) (bool, error) {
	return s.insertPreset(ctx, p, true)
}

func (s *Store) insertPreset(ctx context.Context, p *theme.Preset, ignoreExisting bool) (bool, error) {
	if p.Configuration == nil {
		return false, &theme.InvalidConfigurationError{Got: "null"}
	}
	cfg, err := encodeJSON(p.Configuration)
	if err != nil {
		return false, fmt.Errorf("encode preset configuration: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	verb := "INSERT"
	if ignoreExisting {
		verb = "INSERT OR IGNORE"
	}
	res, err := s.db.ExecContext(ctx,
		verb+` INTO theme_presets (`+presetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Category, cfg, p.CreatedAt)
	if isUniqueViolation(err) {
		return false, fmt.Errorf("preset %q: %w", p.Name, ErrConflict)
	}
	if err != nil {
		return false, fmt.Errorf("insert preset %q: %w", p.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert preset %q: %w", p.Name, err)
	}
	return n > 0, nil
}
