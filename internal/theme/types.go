// Package theme defines the theme configuration model and the pure parts of the
// pipeline: conversion from persisted JSON, schema checks, rule validation and
// merge resolution.
package theme

import "time"

// Color is any CSS color expression ("#ff007f", "rgba(0,0,0,.4)").
type Color string

// Duration is a CSS time value such as "150ms".
type Duration string

// Easing is a CSS timing function such as "cubic-bezier(0.4, 0, 0.2, 1)".
type Easing string

// CSSLength is a CSS length such as "12px" or "0.5rem".
type CSSLength string

// Opacity is expected in [0,1]. The range is not enforced.
type Opacity float64

// Status is the lifecycle state of a Theme.
type Status string

const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
	// StatusInactive is the legacy spelling of archived found in older rows.
	StatusInactive Status = "inactive"
)

// ValidStatuses lists the statuses accepted on write.
var ValidStatuses = map[Status]bool{
	StatusActive:   true,
	StatusDraft:    true,
	StatusArchived: true,
}

// Normalize maps legacy statuses onto their current spelling.
func (s Status) Normalize() Status {
	if s == StatusInactive {
		return StatusArchived
	}
	return s
}

// Source says where an effect group's values came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceFallback Source = "fallback"
	SourceHybrid   Source = "hybrid"
)

// Provenance is carried by every effect group.
type Provenance struct {
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
	Source   Source `json:"source" validate:"omitempty,oneof=database fallback hybrid"`
}

// Theme is a named bundle of colors, typography and effect tokens.
type Theme struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	IsDefault     bool           `json:"is_default"`
	Status        Status         `json:"status"`
	Configuration *Configuration `json:"configuration,omitempty"`
	CreatedBy     string         `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Configuration is the typed form of the persisted configuration payload.
type Configuration struct {
	Colors     Colors     `json:"colors"`
	Typography Typography `json:"typography"`
	Effects    Effects    `json:"effects"`
}

// Colors groups palettes. Only the cyber palette exists today.
type Colors struct {
	Cyber CyberPalette `json:"cyber"`
}

// CyberPalette has two flat colors and four two-tone colors.
type CyberPalette struct {
	Dark   Color     `json:"dark" validate:"required"`
	Purple Color     `json:"purple" validate:"required"`
	Pink   ColorPair `json:"pink" validate:"required,colorpair"`
	Cyan   ColorPair `json:"cyan" validate:"required,colorpair"`
	Green  ColorPair `json:"green" validate:"required,colorpair"`
	Yellow ColorPair `json:"yellow" validate:"required,colorpair"`
}

// VariantDefault is the variant key that collapses onto the bare color name.
const VariantDefault = "DEFAULT"

// ColorPair maps variant names ("DEFAULT", "hover", ...) to colors.
type ColorPair map[string]Color

// Typography holds named font stacks.
type Typography struct {
	Fonts Fonts `json:"fonts"`
}

// Fonts are ordered font-family lists.
type Fonts struct {
	Sans  []string `json:"sans" validate:"required,min=1,dive,required"`
	Cyber []string `json:"cyber" validate:"required,min=1,dive,required"`
}

// Effects is the record of named effect groups. The last three are optional.
type Effects struct {
	Glass               GlassEffect          `json:"glass"`
	Hover               HoverEffect          `json:"hover"`
	Animations          Animations           `json:"animations"`
	InteractionTokens   *InteractionTokens   `json:"interaction_tokens,omitempty" validate:"omitempty"`
	SpecialEffectTokens *SpecialEffectTokens `json:"special_effect_tokens,omitempty" validate:"omitempty"`
	MotionTokens        *MotionTokens        `json:"motion_tokens,omitempty" validate:"omitempty"`
}

// GlassEffect composes a frosted-glass surface.
type GlassEffect struct {
	Provenance
	Background Color     `json:"background" validate:"required"`
	Blur       CSSLength `json:"blur" validate:"required"`
	Border     Color     `json:"border" validate:"required"`
	Shadow     string    `json:"shadow" validate:"required"`
}

// HoverEffect is the scale/lift/glow/shadow set applied on hover.
type HoverEffect struct {
	Provenance
	Scale        float64   `json:"scale" validate:"required,gt=0"`
	Lift         CSSLength `json:"lift" validate:"required"`
	Glow         Color     `json:"glow" validate:"required"`
	GlowOpacity  Opacity   `json:"glow_opacity" validate:"gte=0"`
	ShadowNormal string    `json:"shadow_normal" validate:"required"`
	ShadowHover  string    `json:"shadow_hover" validate:"required"`
}

// Animations pairs named durations with named easing curves.
type Animations struct {
	Provenance
	Timing map[string]Duration `json:"timing" validate:"required,min=1,dive,required"`
	Curves map[string]Easing   `json:"curves" validate:"required,min=1,dive,required"`
}

// InteractionTokens covers focus and press feedback. Persisted and merged but
// not projected.
type InteractionTokens struct {
	Provenance
	FocusRingWidth CSSLength `json:"focus_ring_width,omitempty"`
	FocusRingColor Color     `json:"focus_ring_color,omitempty"`
	PressScale     float64   `json:"press_scale,omitempty"`
	RippleDuration Duration  `json:"ripple_duration,omitempty"`
}

// SpecialEffectTokens hold the neon, glitch and matrix effects.
type SpecialEffectTokens struct {
	Provenance
	Neon   *NeonTokens   `json:"neon,omitempty"`
	Glitch *GlitchTokens `json:"glitch,omitempty"`
	Matrix *MatrixTokens `json:"matrix,omitempty"`
}

type NeonTokens struct {
	GlowSizes     []CSSLength `json:"glow_sizes,omitempty"`
	FlickerSpeeds []Duration  `json:"flicker_speeds,omitempty"`
}

type GlitchTokens struct {
	Intensity []float64 `json:"intensity,omitempty"`
	Frequency Duration  `json:"frequency,omitempty"`
}

type MatrixTokens struct {
	Speed   Duration `json:"speed,omitempty"`
	Density float64  `json:"density,omitempty"`
}

// MotionTokens describe path curves and scroll-triggered animation.
type MotionTokens struct {
	Provenance
	Paths          *MotionPaths    `json:"paths,omitempty"`
	ScrollTriggers *ScrollTriggers `json:"scroll_triggers,omitempty"`
}

type MotionPaths struct {
	EaseCurves  []Easing `json:"ease_curves,omitempty"`
	PresetPaths []string `json:"preset_paths,omitempty"`
}

type ScrollTriggers struct {
	Thresholds     []float64   `json:"thresholds,omitempty"`
	AnimationTypes []string    `json:"animation_types,omitempty"`
	Directions     []string    `json:"directions,omitempty"`
	Distances      []CSSLength `json:"distances,omitempty"`
}

// Preset is an immutable configuration template. Its configuration may be partial.
type Preset struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Configuration RawConfig `json:"configuration"`
	CreatedAt     time.Time `json:"created_at"`
}

// Override returns the preset as a merge override.
func (p *Preset) Override() Partial {
	return ConfigurationPartial(p.Configuration)
}

// Backup is an immutable, versioned snapshot of a theme configuration.
type Backup struct {
	ID            string    `json:"id"`
	ThemeID       string    `json:"theme_id"`
	Version       int       `json:"version"`
	Note          string    `json:"note,omitempty"`
	Configuration RawConfig `json:"configuration"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PageTheme assigns a theme to a route path.
type PageTheme struct {
	Path      string    `json:"path"`
	ThemeID   string    `json:"theme_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
