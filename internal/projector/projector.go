package projector

import (
	"strconv"
	"strings"

	"github.com/HerbHall/themeforge/internal/theme"
	"go.uber.org/zap"
)

// Property name prefixes.
const (
	prefixColors   = "--theme-colors-cyber-"
	prefixGlass    = "--glass-"
	prefixGlassAlt = "--theme-glass-"
	prefixHover    = "--hover-"
	prefixTiming   = "--animation-timing-"
	prefixCurve    = "--animation-curve-"
	listSeparator  = ","
)

// Projector writes theme leaves onto a StyleSink. Every Apply re-derives each
// property it owns from the theme alone and never reads prior sink state.
type Projector struct {
	sink       StyleSink
	glassAlias bool
	logger     *zap.Logger
}

// Option configures a Projector.
type Option func(*Projector)

// WithThemeGlassAlias also writes glass tokens under --theme-glass-<key>.
func WithThemeGlassAlias() Option {
	return func(p *Projector) { p.glassAlias = true }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Projector) { p.logger = logger }
}

// New creates a Projector writing to sink.
func New(sink StyleSink, opts ...Option) *Projector {
	p := &Projector{sink: sink, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sink returns the sink the projector writes to.
func (p *Projector) Sink() StyleSink {
	return p.sink
}

// Apply projects t. A nil theme or a theme without configuration is a no-op.
// Missing optional groups are skipped so partial themes apply what they have.
func (p *Projector) Apply(t *theme.Theme) {
	if t == nil || t.Configuration == nil {
		return
	}
	cfg := t.Configuration

	p.applyColors(&cfg.Colors)
	p.applyGlass(&cfg.Effects.Glass)
	p.applyHover(&cfg.Effects.Hover)
	p.applyAnimations(&cfg.Effects.Animations)
	p.applySpecialEffects(cfg.Effects.SpecialEffectTokens)
	p.applyMotion(cfg.Effects.MotionTokens)

	p.logger.Debug("theme projected",
		zap.String("theme_id", t.ID),
		zap.String("theme_name", t.Name),
	)
}

func (p *Projector) set(name, value string) {
	p.sink.SetProperty(name, value)
}

func (p *Projector) applyColors(c *theme.Colors) {
	cyber := &c.Cyber
	if cyber.Dark != "" {
		p.set(prefixColors+"dark", string(cyber.Dark))
	}
	if cyber.Purple != "" {
		p.set(prefixColors+"purple", string(cyber.Purple))
	}

	pairs := []struct {
		name string
		pair theme.ColorPair
	}{
		{"pink", cyber.Pink},
		{"cyan", cyber.Cyan},
		{"green", cyber.Green},
		{"yellow", cyber.Yellow},
	}
	for _, cp := range pairs {
		for _, variant := range theme.SortedKeys(cp.pair) {
			value := string(cp.pair[variant])
			if variant == theme.VariantDefault {
				p.set(prefixColors+cp.name, value)
				continue
			}
			p.set(prefixColors+cp.name+"-"+strings.ToLower(variant), value)
		}
	}
}

func (p *Projector) applyGlass(g *theme.GlassEffect) {
	values := []struct {
		key   string
		value string
	}{
		{"background", string(g.Background)},
		{"blur", string(g.Blur)},
		{"border", string(g.Border)},
		{"shadow", g.Shadow},
	}
	for _, v := range values {
		if v.value == "" {
			continue
		}
		p.set(prefixGlass+v.key, v.value)
		if p.glassAlias {
			p.set(prefixGlassAlt+v.key, v.value)
		}
	}
}

// hoverMissing reports whether no hover leaf is set. A zero glow opacity is
// only written alongside other hover values.
func hoverMissing(h *theme.HoverEffect) bool {
	return h.Scale == 0 && h.Lift == "" && h.Glow == "" && h.GlowOpacity == 0 &&
		h.ShadowNormal == "" && h.ShadowHover == ""
}

func (p *Projector) applyHover(h *theme.HoverEffect) {
	if hoverMissing(h) {
		return
	}
	if h.Scale != 0 {
		p.set(prefixHover+"scale", formatFloat(h.Scale))
	}
	setIf(p, prefixHover+"lift", string(h.Lift))
	setIf(p, prefixHover+"glow", string(h.Glow))
	p.set(prefixHover+"glow-opacity", formatFloat(float64(h.GlowOpacity)))
	setIf(p, prefixHover+"shadow-normal", h.ShadowNormal)
	setIf(p, prefixHover+"shadow-hover", h.ShadowHover)
}

func (p *Projector) applyAnimations(a *theme.Animations) {
	for _, key := range theme.SortedKeys(a.Timing) {
		p.set(prefixTiming+cssKey(key), string(a.Timing[key]))
	}
	for _, key := range theme.SortedKeys(a.Curves) {
		p.set(prefixCurve+cssKey(key), string(a.Curves[key]))
	}
}

func (p *Projector) applySpecialEffects(s *theme.SpecialEffectTokens) {
	if s == nil {
		return
	}
	if n := s.Neon; n != nil {
		setList(p, "--neon-glow-sizes", n.GlowSizes)
		setList(p, "--neon-flicker-speeds", n.FlickerSpeeds)
	}
	if g := s.Glitch; g != nil {
		if len(g.Intensity) > 0 {
			p.set("--glitch-intensity", joinFloats(g.Intensity))
		}
		if g.Frequency != "" {
			p.set("--glitch-frequency", string(g.Frequency))
		}
	}
	if m := s.Matrix; m != nil {
		if m.Speed != "" {
			p.set("--matrix-speed", string(m.Speed))
		}
		if m.Density != 0 {
			p.set("--matrix-density", formatFloat(m.Density))
		}
	}
}

func (p *Projector) applyMotion(m *theme.MotionTokens) {
	if m == nil {
		return
	}
	if paths := m.Paths; paths != nil {
		setList(p, "--motion-ease-curves", paths.EaseCurves)
		setList(p, "--motion-preset-paths", paths.PresetPaths)
	}
	if st := m.ScrollTriggers; st != nil {
		if len(st.Thresholds) > 0 {
			p.set("--scroll-thresholds", joinFloats(st.Thresholds))
		}
		setList(p, "--scroll-animation-types", st.AnimationTypes)
		setList(p, "--scroll-directions", st.Directions)
		setList(p, "--scroll-distances", st.Distances)
	}
}

// setIf writes value unless it is empty.
func setIf(p *Projector, name, value string) {
	if value != "" {
		p.set(name, value)
	}
}

// setList writes values joined with a comma; empty lists are skipped.
func setList[T ~string](p *Projector, name string, values []T) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	p.set(name, strings.Join(parts, listSeparator))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, listSeparator)
}

// cssKey converts a JSON key to property-name form.
func cssKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
