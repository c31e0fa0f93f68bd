package themestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/google/uuid"
)

var _ theme.UsageRecorder = (*Store)(nil)

// RecordUsage persists one validation run.
func (s *Store) RecordUsage(ctx context.Context, rec theme.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	violations := rec.Violations
	if violations == nil {
		violations = []theme.Violation{}
	}
	data, err := encodeJSON(violations)
	if err != nil {
		return fmt.Errorf("encode violations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO theme_usage_logs (id, theme_id, user_id, valid, violations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ThemeID, rec.UserID, rec.Valid, data, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// ListUsage returns the most recent usage records, newest first. An empty
// themeID lists records for every theme; limit <= 0 means 50.
func (s *Store) ListUsage(ctx context.Context, themeID string, limit int) ([]theme.UsageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, theme_id, user_id, valid, violations, created_at FROM theme_usage_logs`
	var args []any
	if themeID != "" {
		query += ` WHERE theme_id = ?`
		args = append(args, themeID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	out := make([]theme.UsageRecord, 0)
	for rows.Next() {
		var (
			rec theme.UsageRecord
			raw string
		)
		if err := rows.Scan(&rec.ID, &rec.ThemeID, &rec.UserID, &rec.Valid, &raw, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &rec.Violations); err != nil {
			return nil, fmt.Errorf("decode violations for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
