package seed

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/HerbHall/themeforge/internal/testutil"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themestore"
	"go.uber.org/zap"
)

func TestPresets_EmbeddedFilesAreValid(t *testing.T) {
	presets, err := Presets()
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if len(presets) < 4 {
		t.Fatalf("got %d presets, want at least 4", len(presets))
	}
	seen := make(map[string]bool)
	for _, p := range presets {
		if seen[p.ID] {
			t.Errorf("duplicate preset id %s", p.ID)
		}
		seen[p.ID] = true
		if p.Category == "" {
			t.Errorf("preset %s has no category", p.ID)
		}
	}
}

func TestParsePresets(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{
			name: "partial override",
			file: "id = \"p\"\nname = \"P\"\n[configuration.effects.hover]\nscale = 1.2\n",
		},
		{
			name: "no configuration",
			file: "id = \"p\"\nname = \"P\"\n",
		},
		{
			name:    "missing name",
			file:    "id = \"p\"\n",
			wantErr: true,
		},
		{
			name:    "unknown top-level key",
			file:    "id = \"p\"\nname = \"P\"\ncolour = \"red\"\n",
			wantErr: true,
		},
		{
			name:    "mistyped field",
			file:    "id = \"p\"\nname = \"P\"\n[configuration.effects.hover]\nscale = \"huge\"\n",
			wantErr: true,
		},
		{
			name:    "breaks schema",
			file:    "id = \"p\"\nname = \"P\"\n[configuration.typography.fonts]\nsans = []\n",
			wantErr: true,
		},
		{
			name:    "not toml",
			file:    "id = = p",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"presets/a.toml": {Data: []byte(tt.file)},
				"presets/README": {Data: []byte("ignored")},
			}
			presets, err := parsePresets(fsys, "presets")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(presets) != 1 {
				t.Fatalf("got %d presets, want 1", len(presets))
			}
		})
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := themestore.Open(ctx, testutil.NewStore(t), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	presets, _ := Presets()
	n, err := Run(ctx, store, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != len(presets) {
		t.Errorf("first run wrote %d, want %d", n, len(presets))
	}

	n, err = Run(ctx, store, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Errorf("second run wrote %d, want 0", n)
	}

	stored, err := store.ListPresets(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != len(presets) {
		t.Errorf("stored %d presets, want %d", len(stored), len(presets))
	}

	adapter := themestore.NewAdapter(store, zap.NewNop())
	resolved, err := adapter.ResolvePreset(ctx, theme.Default(), "preset-synthwave")
	if err != nil {
		t.Fatalf("ResolvePreset: %v", err)
	}
	if got := resolved.Configuration.Colors.Cyber.Pink[theme.VariantDefault]; got != "#ff2975" {
		t.Errorf("pink = %q, want #ff2975", got)
	}
}
