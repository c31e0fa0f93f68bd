package themestore

import (
	"context"
	"database/sql"

	"github.com/HerbHall/themeforge/pkg/platform"
)

// Component is the migration namespace for theme tables.
const Component = "themestore"

func migrations() []platform.Migration {
	return []platform.Migration{
		{
			Version:     1,
			Description: "create themes, presets, backups and page mappings",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS themes (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL UNIQUE,
						description TEXT NOT NULL DEFAULT '',
						is_default INTEGER NOT NULL DEFAULT 0,
						status TEXT NOT NULL DEFAULT 'draft',
						configuration TEXT NOT NULL DEFAULT '{}',
						created_by TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_themes_status ON themes(status)`,
					`CREATE TABLE IF NOT EXISTS theme_presets (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL UNIQUE,
						description TEXT NOT NULL DEFAULT '',
						category TEXT NOT NULL DEFAULT '',
						configuration TEXT NOT NULL DEFAULT '{}',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_theme_presets_category ON theme_presets(category)`,
					`CREATE TABLE IF NOT EXISTS theme_backups (
						id TEXT PRIMARY KEY,
						theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
						version INTEGER NOT NULL,
						note TEXT NOT NULL DEFAULT '',
						configuration TEXT NOT NULL,
						created_by TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						UNIQUE (theme_id, version)
					)`,
					`CREATE TABLE IF NOT EXISTS page_themes (
						path TEXT PRIMARY KEY,
						theme_id TEXT NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     2,
			Description: "create theme usage log",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS theme_usage_logs (
						id TEXT PRIMARY KEY,
						theme_id TEXT NOT NULL DEFAULT '',
						user_id TEXT NOT NULL,
						valid INTEGER NOT NULL,
						violations TEXT NOT NULL DEFAULT '[]',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_theme_usage_theme ON theme_usage_logs(theme_id, created_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
