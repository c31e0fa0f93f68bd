package themestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/HerbHall/themeforge/internal/theme"
	"go.uber.org/zap"
)

// Adapter turns stored rows into resolved themes. Loads never fail: any
// store error or unreadable configuration is logged once and the fallback
// theme is returned instead. There are no retries.
type Adapter struct {
	store    *Store
	logger   *zap.Logger
	fallback func() *theme.Theme
}

// NewAdapter creates an Adapter over store.
func NewAdapter(store *Store, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: store, logger: logger, fallback: theme.Default}
}

// Store returns the underlying store.
func (a *Adapter) Store() *Store {
	return a.store
}

func (a *Adapter) fallbackFor(op, key string, err error) *theme.Theme {
	level := a.logger.Error
	if errors.Is(err, ErrNotFound) {
		level = a.logger.Warn
	}
	level("theme load failed, using built-in default",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return a.fallback()
}

// DefaultTheme returns the stored default theme, or the built-in one when no
// usable default is stored.
func (a *Adapter) DefaultTheme(ctx context.Context) *theme.Theme {
	t, err := a.store.GetDefaultTheme(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.fallback()
		}
		return a.fallbackFor("default", "", err)
	}
	return t
}

// LoadThemeByID returns the theme with id.
func (a *Adapter) LoadThemeByID(ctx context.Context, id string) *theme.Theme {
	t, err := a.store.GetTheme(ctx, id)
	if err != nil {
		return a.fallbackFor("by_id", id, err)
	}
	return t
}

// LoadThemeByName returns the theme named name.
func (a *Adapter) LoadThemeByName(ctx context.Context, name string) *theme.Theme {
	t, err := a.store.GetThemeByName(ctx, name)
	if err != nil {
		return a.fallbackFor("by_name", name, err)
	}
	return t
}

// LoadPresetByID returns the preset applied to the built-in default, named
// after the preset.
func (a *Adapter) LoadPresetByID(ctx context.Context, id string) *theme.Theme {
	t, err := a.ResolvePreset(ctx, a.fallback(), id)
	if err != nil {
		return a.fallbackFor("preset", id, err)
	}
	return t
}

// ResolvePreset merges preset id onto base. base is not modified.
func (a *Adapter) ResolvePreset(ctx context.Context, base *theme.Theme, id string) (*theme.Theme, error) {
	p, err := a.store.GetPreset(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := theme.Merge(base, p.Override())
	if err != nil {
		return nil, fmt.Errorf("apply preset %q: %w", id, err)
	}
	merged.ID = p.ID
	merged.Name = p.Name
	merged.Description = p.Description
	merged.IsDefault = false
	return merged, nil
}

// LoadThemeForPath resolves the theme for a route. Without a mapping the
// global default is returned as is; with one, the mapped theme is merged onto
// the global default.
func (a *Adapter) LoadThemeForPath(ctx context.Context, path string) *theme.Theme {
	def := a.DefaultTheme(ctx)

	page, err := a.store.ThemeForPath(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		a.logger.Error("page theme load failed, using default",
			zap.String("path", path),
			zap.Error(err),
		)
		return def
	}

	override, err := theme.PartialOf(page)
	if err != nil {
		a.logger.Error("page theme encode failed, using default",
			zap.String("path", path),
			zap.Error(err),
		)
		return def
	}
	merged, err := theme.Merge(def, override)
	if err != nil {
		a.logger.Error("page theme merge failed, using default",
			zap.String("path", path),
			zap.Error(err),
		)
		return def
	}
	return merged
}

// SaveTheme checks t's configuration against the schema and persists it.
func (a *Adapter) SaveTheme(ctx context.Context, t *theme.Theme) error {
	if t == nil {
		return errors.New("save theme: nil theme")
	}
	if err := theme.CheckSchema(t.Configuration); err != nil {
		return err
	}
	if err := a.store.SaveTheme(ctx, t); err != nil {
		return err
	}
	a.logger.Info("theme saved",
		zap.String("theme_id", t.ID),
		zap.String("theme_name", t.Name),
		zap.String("status", string(t.Status)),
	)
	return nil
}

// CreateBackup snapshots cfg for themeID with an optional note.
func (a *Adapter) CreateBackup(ctx context.Context, themeID string, cfg *theme.Configuration, note, createdBy string) (*theme.Backup, error) {
	raw, err := theme.Encode(cfg)
	if err != nil {
		return nil, err
	}
	b, err := a.store.CreateBackup(ctx, themeID, raw, note, createdBy)
	if err != nil {
		return nil, err
	}
	a.logger.Info("theme backup created",
		zap.String("theme_id", themeID),
		zap.Int("version", b.Version),
	)
	return b, nil
}

// RestoreBackup copies a backup's configuration forward into its theme. The
// theme's current configuration is backed up first so the restore itself can
// be undone.
func (a *Adapter) RestoreBackup(ctx context.Context, backupID, restoredBy string) (*theme.Theme, error) {
	b, err := a.store.GetBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}
	cfg, err := theme.Decode(b.Configuration)
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", backupID, err)
	}
	if err := theme.CheckSchema(cfg); err != nil {
		return nil, fmt.Errorf("backup %s: %w", backupID, err)
	}

	current, err := a.store.GetTheme(ctx, b.ThemeID)
	var invalid *theme.InvalidConfigurationError
	switch {
	case err == nil:
		note := fmt.Sprintf("before restore of v%d", b.Version)
		if _, err := a.CreateBackup(ctx, current.ID, current.Configuration, note, restoredBy); err != nil {
			return nil, fmt.Errorf("snapshot before restore: %w", err)
		}
	case errors.As(err, &invalid) && current != nil:
		a.logger.Warn("restoring over unreadable configuration",
			zap.String("theme_id", b.ThemeID),
			zap.Error(err),
		)
	default:
		return nil, err
	}

	current.Configuration = cfg
	if err := a.store.SaveTheme(ctx, current); err != nil {
		return nil, err
	}
	a.logger.Info("theme backup restored",
		zap.String("theme_id", current.ID),
		zap.Int("version", b.Version),
	)
	return current, nil
}
