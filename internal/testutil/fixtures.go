// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/HerbHall/themeforge/internal/store"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/google/uuid"
)

// NewStore opens a private in-memory SQLite store closed at test cleanup.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewTheme returns a complete, schema-valid active theme built from the
// built-in default. Override fields with the option funcs.
func NewTheme(opts ...func(*theme.Theme)) *theme.Theme {
	now := time.Now().UTC().Truncate(time.Second)
	th := theme.Default()
	th.ID = uuid.New().String()
	th.Name = "test-theme-" + th.ID[:8]
	th.Description = "fixture"
	th.IsDefault = false
	th.Status = theme.StatusActive
	th.CreatedAt = now
	th.UpdatedAt = now
	for _, opt := range opts {
		opt(th)
	}
	return th
}

// WithID sets the theme ID.
func WithID(id string) func(*theme.Theme) {
	return func(t *theme.Theme) { t.ID = id }
}

// WithName sets the theme name.
func WithName(name string) func(*theme.Theme) {
	return func(t *theme.Theme) { t.Name = name }
}

// WithStatus sets the lifecycle status.
func WithStatus(s theme.Status) func(*theme.Theme) {
	return func(t *theme.Theme) { t.Status = s }
}

// AsDefault flags the theme as the global default.
func AsDefault() func(*theme.Theme) {
	return func(t *theme.Theme) { t.IsDefault = true }
}

// WithPink sets the pink DEFAULT and hover variants.
func WithPink(def, hover theme.Color) func(*theme.Theme) {
	return func(t *theme.Theme) {
		t.Configuration.Colors.Cyber.Pink = theme.ColorPair{
			theme.VariantDefault: def,
			"hover":              hover,
		}
	}
}

// WithHoverScale sets the hover scale.
func WithHoverScale(scale float64) func(*theme.Theme) {
	return func(t *theme.Theme) { t.Configuration.Effects.Hover.Scale = scale }
}

// WithTiming sets one animation timing.
func WithTiming(name string, d theme.Duration) func(*theme.Theme) {
	return func(t *theme.Theme) {
		if t.Configuration.Effects.Animations.Timing == nil {
			t.Configuration.Effects.Animations.Timing = map[string]theme.Duration{}
		}
		t.Configuration.Effects.Animations.Timing[name] = d
	}
}

// NewPreset returns a preset overriding only the configuration leaves in raw.
func NewPreset(name, category string, raw theme.RawConfig) *theme.Preset {
	return &theme.Preset{
		ID:            uuid.New().String(),
		Name:          name,
		Category:      category,
		Configuration: raw,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}
