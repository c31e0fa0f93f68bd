// Package seed loads the built-in theme presets into the store.
package seed

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themestore"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

//go:embed presets/*.toml
var presetFiles embed.FS

type presetFile struct {
	ID            string         `toml:"id"`
	Name          string         `toml:"name"`
	Description   string         `toml:"description"`
	Category      string         `toml:"category"`
	Configuration map[string]any `toml:"configuration"`
}

// Presets parses the embedded preset files in file name order. Every preset
// is checked by merging it onto the built-in default theme.
func Presets() ([]theme.Preset, error) {
	return parsePresets(presetFiles, "presets")
}

func parsePresets(fsys fs.FS, dir string) ([]theme.Preset, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read preset dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	presets := make([]theme.Preset, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".toml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		p, err := parsePreset(data)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", e.Name(), err)
		}
		presets = append(presets, *p)
	}
	return presets, nil
}

func parsePreset(data []byte) (*theme.Preset, error) {
	var f presetFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if f.ID == "" || f.Name == "" {
		return nil, fmt.Errorf("id and name are required")
	}
	if f.Configuration == nil {
		f.Configuration = map[string]any{}
	}

	p := &theme.Preset{
		ID:            f.ID,
		Name:          f.Name,
		Description:   f.Description,
		Category:      f.Category,
		Configuration: theme.RawConfig(f.Configuration),
	}
	merged, err := theme.Merge(theme.Default(), p.Override())
	if err != nil {
		return nil, err
	}
	if err := theme.CheckSchema(merged.Configuration); err != nil {
		return nil, err
	}
	return p, nil
}

// Run inserts every embedded preset that is not stored yet and returns how
// many were written. Existing presets are left untouched.
func Run(ctx context.Context, store *themestore.Store, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	presets, err := Presets()
	if err != nil {
		return 0, err
	}

	written := 0
	for i := range presets {
		ok, err := store.EnsurePreset(ctx, &presets[i])
		if err != nil {
			return written, fmt.Errorf("seed preset %s: %w", presets[i].ID, err)
		}
		if ok {
			written++
			logger.Debug("preset seeded",
				zap.String("preset_id", presets[i].ID),
				zap.String("category", presets[i].Category),
			)
		}
	}
	logger.Info("presets seeded", zap.Int("written", written), zap.Int("total", len(presets)))
	return written, nil
}
