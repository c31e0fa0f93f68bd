// Package live keeps the active theme in sync with realtime updates and
// stages editor changes before they are saved.
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/HerbHall/themeforge/internal/projector"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/theme"
	"go.uber.org/zap"
)

// ErrEmptyPath is returned for token and effect updates without a path.
var ErrEmptyPath = errors.New("update path is empty")

// UnknownUpdateError is returned for update types the controller does not handle.
type UnknownUpdateError struct {
	Type realtime.UpdateType
}

func (e *UnknownUpdateError) Error() string {
	return fmt.Sprintf("unknown update type %q", e.Type)
}

// Controller owns the active theme of one scope. Every change goes through
// merge, schema check, validation and projection, in that order. Concurrent
// updates are applied last write wins.
type Controller struct {
	mu        sync.RWMutex
	current   *theme.Theme
	result    theme.ValidationResult
	projector *projector.Projector
	validator *theme.Validator
	logger    *zap.Logger
}

// NewController creates a controller and activates initial.
func NewController(initial *theme.Theme, p *projector.Projector, v *theme.Validator, logger *zap.Logger) *Controller {
	if v == nil {
		v = theme.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial == nil {
		initial = theme.Default()
	}
	c := &Controller{projector: p, validator: v, logger: logger}
	c.Activate(initial)
	return c
}

// Activate makes t the active theme, validates it and projects it.
func (c *Controller) Activate(t *theme.Theme) theme.ValidationResult {
	result := c.validator.Validate(t, theme.EffectsOf(t))
	c.logViolations(t, result)

	c.mu.Lock()
	c.current = t
	c.result = result
	c.mu.Unlock()

	if c.projector != nil {
		c.projector.Apply(t)
	}
	return result
}

// Current returns a copy of the active theme.
func (c *Controller) Current() *theme.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, err := theme.Merge(c.current, nil)
	if err != nil {
		return c.current
	}
	return out
}

// LastResult returns the validation result of the active theme.
func (c *Controller) LastResult() theme.ValidationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// Apply folds one realtime update into the active theme. A theme update
// replaces the whole configuration; token and effect updates set the leaf at
// path. Updates that would leave the configuration structurally incomplete
// are rejected and the active theme is kept.
func (c *Controller) Apply(u realtime.Update) (theme.ValidationResult, error) {
	next, err := c.resolve(u)
	if err != nil {
		return theme.ValidationResult{}, err
	}
	if err := theme.CheckSchema(next.Configuration); err != nil {
		return theme.ValidationResult{}, fmt.Errorf("%s update rejected: %w", u.Type, err)
	}
	result := c.Activate(next)
	c.logger.Debug("realtime update applied",
		zap.String("type", string(u.Type)),
		zap.Strings("path", u.Path),
		zap.String("source", u.Source),
		zap.Bool("valid", result.Valid),
	)
	return result, nil
}

func (c *Controller) resolve(u realtime.Update) (*theme.Theme, error) {
	current := c.Current()

	switch u.Type {
	case realtime.UpdateTheme:
		raw, err := theme.ParseConfiguration(u.Value)
		if err != nil {
			return nil, err
		}
		cfg, err := theme.Decode(raw)
		if err != nil {
			return nil, err
		}
		current.Configuration = cfg
		return current, nil

	case realtime.UpdateToken, realtime.UpdateEffect:
		path := ConfigPath(u.Type, u.Path)
		if len(path) == 0 {
			return nil, ErrEmptyPath
		}
		var value any
		if err := json.Unmarshal(u.Value, &value); err != nil {
			return nil, fmt.Errorf("decode %s value at %v: %w", u.Type, u.Path, err)
		}
		return theme.Merge(current, theme.PartialAt(path, value))

	default:
		return nil, &UnknownUpdateError{Type: u.Type}
	}
}

// ConfigPath returns the configuration-relative path an update addresses.
// Effect paths may omit the leading "effects" segment.
func ConfigPath(typ realtime.UpdateType, path []string) []string {
	if typ == realtime.UpdateEffect && len(path) > 0 && path[0] != "effects" {
		return append([]string{"effects"}, path...)
	}
	return path
}

// Attach registers the controller as a listener on m. Rejected updates are
// logged. The returned func detaches it.
func (c *Controller) Attach(m *realtime.Manager) (detach func()) {
	return m.OnUpdate(func(u realtime.Update) {
		if _, err := c.Apply(u); err != nil {
			c.logger.Warn("realtime update rejected",
				zap.String("type", string(u.Type)),
				zap.Strings("path", u.Path),
				zap.String("source", u.Source),
				zap.Error(err),
			)
		}
	})
}

func (c *Controller) logViolations(t *theme.Theme, result theme.ValidationResult) {
	for _, v := range result.Violations {
		c.logger.Warn("theme rule violated",
			zap.String("theme_id", t.ID),
			zap.String("rule", v.RuleID),
			zap.String("severity", string(v.Severity)),
			zap.String("message", v.Message),
		)
	}
}
