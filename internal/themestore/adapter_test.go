package themestore

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/themeforge/internal/testutil"
	"github.com/HerbHall/themeforge/internal/theme"
	"go.uber.org/zap"
)

func testAdapter(t *testing.T) *Adapter {
	t.Helper()
	return NewAdapter(testStore(t), zap.NewNop())
}

func TestAdapter_LoadFallsBackToDefault(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()
	insertRawTheme(t, a.store, "broken", "active", `"not an object"`)
	insertRawTheme(t, a.store, "mistyped", "active", `{"effects":{"hover":{"scale":"big"}}}`)
	insertRawTheme(t, a.store, "empty", "active", `{}`)
	insertRawTheme(t, a.store, "colorsonly", "active", `{"colors":{"cyber":{"dark":"#000"}}}`)

	tests := []struct {
		name string
		load func() *theme.Theme
	}{
		{"missing id", func() *theme.Theme { return a.LoadThemeByID(ctx, "missing") }},
		{"malformed configuration", func() *theme.Theme { return a.LoadThemeByID(ctx, "broken") }},
		{"mistyped configuration", func() *theme.Theme { return a.LoadThemeByID(ctx, "mistyped") }},
		{"empty configuration", func() *theme.Theme { return a.LoadThemeByID(ctx, "empty") }},
		{"colors only", func() *theme.Theme { return a.LoadThemeByID(ctx, "colorsonly") }},
		{"missing name", func() *theme.Theme { return a.LoadThemeByName(ctx, "nope") }},
		{"missing preset", func() *theme.Theme { return a.LoadPresetByID(ctx, "nope") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.load()
			if got == nil {
				t.Fatal("load returned nil")
			}
			if got.ID != theme.DefaultThemeID {
				t.Errorf("ID = %q, want built-in default", got.ID)
			}
			if got.Configuration == nil {
				t.Error("fallback has no configuration")
			}
		})
	}
}

func TestAdapter_LoadThemeByID(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()
	th := testutil.NewTheme(testutil.WithPink("#010101", "#020202"))
	if err := a.SaveTheme(ctx, th); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}

	got := a.LoadThemeByID(ctx, th.ID)
	if got.ID != th.ID {
		t.Fatalf("ID = %q, want %q", got.ID, th.ID)
	}
	if c := got.Configuration.Colors.Cyber.Pink[theme.VariantDefault]; c != "#010101" {
		t.Errorf("pink = %q, want #010101", c)
	}
	if byName := a.LoadThemeByName(ctx, th.Name); byName.ID != th.ID {
		t.Errorf("LoadThemeByName ID = %q, want %q", byName.ID, th.ID)
	}
}

func TestAdapter_SaveTheme_RejectsPartial(t *testing.T) {
	a := testAdapter(t)
	th := testutil.NewTheme()
	th.Configuration.Colors.Cyber.Pink = theme.ColorPair{theme.VariantDefault: "#fff"}

	err := a.SaveTheme(context.Background(), th)
	var schemaErr *theme.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if _, err := a.store.GetTheme(context.Background(), th.ID); !errors.Is(err, ErrNotFound) {
		t.Error("invalid theme was persisted")
	}
}

func TestAdapter_DefaultTheme(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()

	if got := a.DefaultTheme(ctx); got.ID != theme.DefaultThemeID {
		t.Errorf("empty store default = %q, want built-in", got.ID)
	}

	stored := testutil.NewTheme(testutil.AsDefault())
	if err := a.SaveTheme(ctx, stored); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	if got := a.DefaultTheme(ctx); got.ID != stored.ID {
		t.Errorf("default = %q, want stored %q", got.ID, stored.ID)
	}
}

func TestAdapter_LoadThemeForPath(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()

	def := testutil.NewTheme(testutil.AsDefault(), testutil.WithName("global"))
	page := testutil.NewTheme(testutil.WithName("blog"), testutil.WithPink("#00ff00", "#00ee00"))
	for _, th := range []*theme.Theme{def, page} {
		if err := a.SaveTheme(ctx, th); err != nil {
			t.Fatalf("SaveTheme: %v", err)
		}
	}
	if _, err := a.store.SetPageTheme(ctx, "/blog", page.ID); err != nil {
		t.Fatalf("SetPageTheme: %v", err)
	}

	unmapped := a.LoadThemeForPath(ctx, "/about")
	if unmapped.ID != def.ID || unmapped.Name != "global" {
		t.Errorf("unmapped path resolved to %q/%q, want the global default", unmapped.ID, unmapped.Name)
	}

	mapped := a.LoadThemeForPath(ctx, "/blog")
	if mapped.ID != page.ID {
		t.Errorf("mapped path ID = %q, want %q", mapped.ID, page.ID)
	}
	if c := mapped.Configuration.Colors.Cyber.Pink[theme.VariantDefault]; c != "#00ff00" {
		t.Errorf("pink = %q, want page override", c)
	}
	if mapped.Configuration.Effects.Glass.Blur == "" {
		t.Error("default leaves lost in merge")
	}
}

func TestAdapter_LoadThemeForPath_BrokenPageTheme(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()
	insertRawTheme(t, a.store, "broken", "active", `null`)
	if _, err := a.store.SetPageTheme(ctx, "/x", "broken"); err != nil {
		t.Fatalf("SetPageTheme: %v", err)
	}

	if got := a.LoadThemeForPath(ctx, "/x"); got.ID != theme.DefaultThemeID {
		t.Errorf("ID = %q, want built-in default", got.ID)
	}
}

func TestAdapter_Presets(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()
	p := testutil.NewPreset("hover-only", "custom", theme.RawConfig{
		"colors": map[string]any{"cyber": map[string]any{"pink": map[string]any{"hover": "#123456"}}},
	})
	if err := a.store.CreatePreset(ctx, p); err != nil {
		t.Fatalf("CreatePreset: %v", err)
	}

	got := a.LoadPresetByID(ctx, p.ID)
	if got.ID != p.ID || got.Name != "hover-only" {
		t.Errorf("preset theme identity = %q/%q", got.ID, got.Name)
	}
	pink := got.Configuration.Colors.Cyber.Pink
	if pink["hover"] != "#123456" || pink[theme.VariantDefault] != "#ff007f" {
		t.Errorf("pink = %v, want hover overridden and DEFAULT kept", pink)
	}

	base := testutil.NewTheme(testutil.WithPink("#aaaaaa", "#bbbbbb"))
	resolved, err := a.ResolvePreset(ctx, base, p.ID)
	if err != nil {
		t.Fatalf("ResolvePreset: %v", err)
	}
	if resolved.Configuration.Colors.Cyber.Pink[theme.VariantDefault] != "#aaaaaa" {
		t.Error("ResolvePreset did not keep the base DEFAULT")
	}
	if base.Configuration.Colors.Cyber.Pink["hover"] != "#bbbbbb" {
		t.Error("ResolvePreset modified its base")
	}
}

func TestAdapter_BackupAndRestore(t *testing.T) {
	a := testAdapter(t)
	ctx := context.Background()
	th := testutil.NewTheme(testutil.WithPink("#111111", "#222222"))
	if err := a.SaveTheme(ctx, th); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}

	b, err := a.CreateBackup(ctx, th.ID, th.Configuration, "before edit", "admin-1")
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if b.Version != 1 || b.Note != "before edit" {
		t.Errorf("backup = v%d %q", b.Version, b.Note)
	}

	th.Configuration.Colors.Cyber.Pink[theme.VariantDefault] = "#999999"
	if err := a.SaveTheme(ctx, th); err != nil {
		t.Fatalf("SaveTheme edit: %v", err)
	}

	restored, err := a.RestoreBackup(ctx, b.ID, "admin-1")
	if err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}
	if c := restored.Configuration.Colors.Cyber.Pink[theme.VariantDefault]; c != "#111111" {
		t.Errorf("restored pink = %q, want #111111", c)
	}
	if c := a.LoadThemeByID(ctx, th.ID).Configuration.Colors.Cyber.Pink[theme.VariantDefault]; c != "#111111" {
		t.Errorf("persisted pink = %q, want #111111", c)
	}

	backups, _ := a.store.ListBackups(ctx, th.ID)
	if len(backups) != 2 {
		t.Fatalf("backups = %d, want 2 (original + pre-restore)", len(backups))
	}
	pre, _ := theme.Decode(backups[0].Configuration)
	if c := pre.Colors.Cyber.Pink[theme.VariantDefault]; c != "#999999" {
		t.Errorf("pre-restore snapshot pink = %q, want #999999", c)
	}

	if _, err := a.RestoreBackup(ctx, "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore missing err = %v, want ErrNotFound", err)
	}
}
