package themestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/google/uuid"
)

const backupColumns = `id, theme_id, version, note, configuration, created_by, created_at`

func scanBackup(sc rowScanner) (*theme.Backup, error) {
	var (
		b   theme.Backup
		raw string
	)
	if err := sc.Scan(&b.ID, &b.ThemeID, &b.Version, &b.Note, &raw, &b.CreatedBy, &b.CreatedAt); err != nil {
		return nil, err
	}
	cfg, err := theme.ParseConfiguration(raw)
	if err != nil {
		return &b, err
	}
	b.Configuration = cfg
	return &b, nil
}

// CreateBackup snapshots cfg as the next version of themeID's backups.
func (s *Store) CreateBackup(ctx context.Context, themeID string, cfg theme.RawConfig, note, createdBy string) (*theme.Backup, error) {
	if cfg == nil {
		return nil, &theme.InvalidConfigurationError{Got: "null"}
	}
	data, err := encodeJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode backup configuration: %w", err)
	}
	b := &theme.Backup{
		ID:            uuid.New().String(),
		ThemeID:       themeID,
		Note:          note,
		Configuration: cfg,
		CreatedBy:     createdBy,
		CreatedAt:     s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin backup: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM themes WHERE id = ?`, themeID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check theme %q: %w", themeID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("theme %q: %w", themeID, ErrNotFound)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM theme_backups WHERE theme_id = ?`, themeID,
	).Scan(&b.Version); err != nil {
		return nil, fmt.Errorf("next backup version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO theme_backups (`+backupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ThemeID, b.Version, b.Note, data, b.CreatedBy, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit backup: %w", err)
	}
	return b, nil
}

// GetBackup returns a backup by ID.
func (s *Store) GetBackup(ctx context.Context, id string) (*theme.Backup, error) {
	b, err := scanBackup(s.db.QueryRowContext(ctx,
		`SELECT `+backupColumns+` FROM theme_backups WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backup %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %q: %w", id, err)
	}
	return b, nil
}

// ListBackups returns a theme's backups, newest version first.
func (s *Store) ListBackups(ctx context.Context, themeID string) ([]theme.Backup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+backupColumns+` FROM theme_backups WHERE theme_id = ? ORDER BY version DESC`, themeID)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	backups := make([]theme.Backup, 0)
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup row: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

// SetPageTheme maps path to themeID, replacing any previous mapping.
func (s *Store) SetPageTheme(ctx context.Context, path, themeID string) (*theme.PageTheme, error) {
	pt := &theme.PageTheme{Path: path, ThemeID: themeID, UpdatedAt: s.now()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_themes (path, theme_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			theme_id = excluded.theme_id,
			updated_at = excluded.updated_at`,
		pt.Path, pt.ThemeID, pt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("set page theme %q: %w", path, err)
	}
	return pt, nil
}

// ThemeForPath returns the theme mapped to path.
func (s *Store) ThemeForPath(ctx context.Context, path string) (*theme.Theme, error) {
	t, err := scanTheme(s.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.description, t.is_default, t.status, t.configuration,
			t.created_by, t.created_at, t.updated_at
		FROM page_themes p JOIN themes t ON t.id = p.theme_id
		WHERE p.path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page theme %q: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("theme for path %q: %w", path, err)
	}
	return t, nil
}

// ListPageThemes returns every mapping ordered by path.
func (s *Store) ListPageThemes(ctx context.Context) ([]theme.PageTheme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, theme_id, updated_at FROM page_themes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list page themes: %w", err)
	}
	defer rows.Close()

	out := make([]theme.PageTheme, 0)
	for rows.Next() {
		var pt theme.PageTheme
		if err := rows.Scan(&pt.Path, &pt.ThemeID, &pt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page theme row: %w", err)
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// DeletePageTheme removes the mapping for path.
func (s *Store) DeletePageTheme(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM page_themes WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete page theme %q: %w", path, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("page theme %q: %w", path, ErrNotFound)
	}
	return nil
}
