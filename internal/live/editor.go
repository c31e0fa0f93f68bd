package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themestore"
	"github.com/HerbHall/themeforge/pkg/platform"
	"go.uber.org/zap"
)

// ErrNothingStaged is returned by Save when there are no staged edits.
var ErrNothingStaged = errors.New("no staged edits")

// BlockedError is returned by Save when the edited theme has error-severity
// violations. Warnings never block a save.
type BlockedError struct {
	Result theme.ValidationResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("save blocked by %d violation(s)", len(e.Result.Violations))
}

type edit struct {
	path  []string
	value any
}

// Editor stages token edits against a controller's active theme and commits
// them on Save.
type Editor struct {
	mu      sync.Mutex
	edits   []edit
	ctrl    *Controller
	themes  *themestore.Adapter
	service *theme.Service
	pub     platform.Publisher
	channel string
	source  string
	logger  *zap.Logger
}

// EditorConfig wires an Editor.
type EditorConfig struct {
	Controller *Controller
	Themes     *themestore.Adapter
	Service    *theme.Service
	Publisher  platform.Publisher // optional; saves are not broadcast without it
	Channel    string
	Source     string
	Logger     *zap.Logger
}

// NewEditor creates an Editor.
func NewEditor(cfg EditorConfig) *Editor {
	if cfg.Channel == "" {
		cfg.Channel = realtime.DefaultChannel
	}
	if cfg.Source == "" {
		cfg.Source = "editor"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Service == nil {
		cfg.Service = theme.NewService(nil, nil, nil, cfg.Logger)
	}
	return &Editor{
		ctrl:    cfg.Controller,
		themes:  cfg.Themes,
		service: cfg.Service,
		pub:     cfg.Publisher,
		channel: cfg.Channel,
		source:  cfg.Source,
		logger:  cfg.Logger,
	}
}

// Stage records an edit of the configuration leaf at path. Later edits to the
// same path win.
func (e *Editor) Stage(path []string, value any) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	p := make([]string, len(path))
	copy(p, path)

	e.mu.Lock()
	e.edits = append(e.edits, edit{path: p, value: value})
	e.mu.Unlock()
	return nil
}

// IsDirty reports whether any edits are staged.
func (e *Editor) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.edits) > 0
}

// Discard drops every staged edit.
func (e *Editor) Discard() {
	e.mu.Lock()
	e.edits = nil
	e.mu.Unlock()
}

// Preview merges the staged edits onto the active theme and validates the
// result. Neither the active theme nor the staged edits change.
func (e *Editor) Preview(ctx context.Context) (*theme.Theme, theme.ValidationResult, error) {
	e.mu.Lock()
	edits := make([]edit, len(e.edits))
	copy(edits, e.edits)
	e.mu.Unlock()

	t := e.ctrl.Current()
	for _, ed := range edits {
		next, err := theme.Merge(t, theme.PartialAt(ed.path, ed.value))
		if err != nil {
			return nil, theme.ValidationResult{}, fmt.Errorf("apply edit at %v: %w", ed.path, err)
		}
		t = next
	}
	if err := theme.CheckSchema(t.Configuration); err != nil {
		return t, theme.ValidationResult{}, err
	}
	return t, e.service.ValidateTheme(ctx, t, theme.EffectsOf(t)), nil
}

// Save commits the staged edits: the previous configuration is backed up,
// the edited theme persisted and activated, and a theme update broadcast.
// Staging is cleared only when every step succeeds.
func (e *Editor) Save(ctx context.Context, savedBy string) (*theme.Theme, error) {
	if !e.IsDirty() {
		return nil, ErrNothingStaged
	}
	previous := e.ctrl.Current()
	next, result, err := e.Preview(ctx)
	if err != nil {
		return nil, err
	}
	if result.HasErrors() {
		return nil, &BlockedError{Result: result}
	}

	if _, err := e.themes.Store().GetTheme(ctx, previous.ID); err == nil {
		if _, err := e.themes.CreateBackup(ctx, previous.ID, previous.Configuration, "before editor save", savedBy); err != nil {
			return nil, fmt.Errorf("backup before save: %w", err)
		}
	} else if !errors.Is(err, themestore.ErrNotFound) {
		return nil, fmt.Errorf("load theme before save: %w", err)
	}

	if next.CreatedBy == "" {
		next.CreatedBy = savedBy
	}
	if err := e.themes.SaveTheme(ctx, next); err != nil {
		return nil, err
	}
	e.ctrl.Activate(next)
	e.Discard()

	e.broadcast(ctx, next)
	return next, nil
}

func (e *Editor) broadcast(ctx context.Context, t *theme.Theme) {
	if e.pub == nil {
		return
	}
	u, err := realtime.NewUpdate(realtime.UpdateTheme, nil, t.Configuration, e.source)
	if err != nil {
		e.logger.Error("encode theme update", zap.String("theme_id", t.ID), zap.Error(err))
		return
	}
	if err := realtime.Publish(ctx, e.pub, e.channel, u); err != nil {
		e.logger.Error("publish theme update", zap.String("theme_id", t.ID), zap.Error(err))
	}
}
