// Package themestore persists themes, presets, backups, page mappings and
// validation usage records, and adapts them into resolved themes.
package themestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with a unique key.
	ErrConflict = errors.New("conflict")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Store provides the theme tables on top of a migrated database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a Store over db. The schema must already be migrated.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Open migrates the theme tables in s and returns a Store over them.
func Open(ctx context.Context, s platform.Store, logger *zap.Logger) (*Store, error) {
	if err := s.Migrate(ctx, Component, migrations()); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", Component, err)
	}
	return NewStore(s.DB(), logger), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const themeColumns = `id, name, description, is_default, status, configuration, created_by, created_at, updated_at`

// scanTheme reads one themes row. A configuration that fails to parse is
// reported as an *theme.InvalidConfigurationError alongside the partly
// filled theme.
func scanTheme(sc rowScanner) (*theme.Theme, error) {
	var (
		t      theme.Theme
		status string
		raw    string
	)
	if err := sc.Scan(&t.ID, &t.Name, &t.Description, &t.IsDefault, &status, &raw,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = theme.Status(status).Normalize()

	cfg, err := decodeConfiguration(raw)
	if err != nil {
		return &t, err
	}
	t.Configuration = cfg
	return &t, nil
}

// decodeConfiguration parses a stored configuration. An object missing
// required keys is rejected like a malformed one.
func decodeConfiguration(raw string) (*theme.Configuration, error) {
	obj, err := theme.ParseConfiguration(raw)
	if err != nil {
		return nil, err
	}
	cfg, err := theme.Decode(obj)
	if err != nil {
		return nil, err
	}
	if err := theme.CheckSchema(cfg); err != nil {
		return nil, &theme.InvalidConfigurationError{Got: "incomplete object", Err: err}
	}
	return cfg, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetTheme returns a theme by ID. When the row exists but its configuration
// is unreadable, the theme is returned without a configuration together with
// the error.
func (s *Store) GetTheme(ctx context.Context, id string) (*theme.Theme, error) {
	t, err := scanTheme(s.db.QueryRowContext(ctx,
		`SELECT `+themeColumns+` FROM themes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("get theme %q: %w", id, err)
	}
	return t, nil
}

// GetThemeByName returns a theme by its unique name.
func (s *Store) GetThemeByName(ctx context.Context, name string) (*theme.Theme, error) {
	t, err := scanTheme(s.db.QueryRowContext(ctx,
		`SELECT `+themeColumns+` FROM themes WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme named %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get theme by name %q: %w", name, err)
	}
	return t, nil
}

// GetDefaultTheme returns the active theme flagged as default.
func (s *Store) GetDefaultTheme(ctx context.Context) (*theme.Theme, error) {
	t, err := scanTheme(s.db.QueryRowContext(ctx,
		`SELECT `+themeColumns+` FROM themes
		WHERE is_default = 1 AND status = ?
		ORDER BY updated_at DESC LIMIT 1`, string(theme.StatusActive)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("default theme: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get default theme: %w", err)
	}
	return t, nil
}

// ListThemes returns themes ordered by name, optionally filtered by status.
// Rows whose configuration cannot be decoded are returned without one.
func (s *Store) ListThemes(ctx context.Context, status theme.Status) ([]theme.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes`
	var args []any
	switch status {
	case "":
	case theme.StatusArchived, theme.StatusInactive:
		query += ` WHERE status IN (?, ?)`
		args = append(args, string(theme.StatusArchived), string(theme.StatusInactive))
	default:
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	themes := make([]theme.Theme, 0)
	for rows.Next() {
		t, err := scanTheme(rows)
		if t == nil {
			return nil, fmt.Errorf("scan theme row: %w", err)
		}
		if err != nil {
			s.logger.Warn("theme has unreadable configuration",
				zap.String("theme_id", t.ID),
				zap.Error(err),
			)
		}
		themes = append(themes, *t)
	}
	return themes, rows.Err()
}

// SaveTheme inserts t or updates the row with the same ID. An empty ID is
// assigned. Marking t as default clears the flag on every other theme.
func (s *Store) SaveTheme(ctx context.Context, t *theme.Theme) error {
	if t.Configuration == nil {
		return &theme.InvalidConfigurationError{Got: "null"}
	}
	cfg, err := encodeJSON(t.Configuration)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}

	now := s.now()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = theme.StatusDraft
	}
	t.Status = t.Status.Normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save theme: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if t.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE themes SET is_default = 0 WHERE id <> ? AND is_default = 1`, t.ID); err != nil {
			return fmt.Errorf("clear default flag: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO themes (`+themeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			is_default = excluded.is_default,
			status = excluded.status,
			configuration = excluded.configuration,
			updated_at = excluded.updated_at`,
		t.ID, t.Name, t.Description, t.IsDefault, string(t.Status), cfg,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("theme name %q: %w", t.Name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("save theme %q: %w", t.Name, err)
	}
	return tx.Commit()
}

// ArchiveTheme marks a theme archived and drops its default flag. Backups and
// page mappings are kept.
func (s *Store) ArchiveTheme(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE themes SET status = ?, is_default = 0, updated_at = ? WHERE id = ?`,
		string(theme.StatusArchived), s.now(), id)
	if err != nil {
		return fmt.Errorf("archive theme %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive theme %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("theme %q: %w", id, ErrNotFound)
	}
	return nil
}
