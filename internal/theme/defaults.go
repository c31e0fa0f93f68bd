package theme

import "time"

// DefaultThemeID identifies the hardcoded fallback theme.
const DefaultThemeID = "builtin-cyber-default"

// Default returns the hardcoded cyber theme. It is what callers render when the
// store is unreachable or returns a malformed configuration. Each call returns a
// fresh copy.
func Default() *Theme {
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &Theme{
		ID:            DefaultThemeID,
		Name:          "Cyber Default",
		Description:   "Built-in neon-on-dark theme.",
		IsDefault:     true,
		Status:        StatusActive,
		Configuration: DefaultConfiguration(),
		CreatedBy:     "system",
		CreatedAt:     epoch,
		UpdatedAt:     epoch,
	}
}

// DefaultConfiguration returns the fallback configuration. Every effect group
// is marked as coming from the fallback source.
func DefaultConfiguration() *Configuration {
	fallback := Provenance{Enabled: true, Priority: 1, Source: SourceFallback}
	return &Configuration{
		Colors: Colors{
			Cyber: CyberPalette{
				Dark:   "#0a0a0f",
				Purple: "#9d4edd",
				Pink:   ColorPair{VariantDefault: "#ff007f", "hover": "#ff1a8c"},
				Cyan:   ColorPair{VariantDefault: "#00fff5", "hover": "#33fff7"},
				Green:  ColorPair{VariantDefault: "#00ff9f", "hover": "#33ffb2"},
				Yellow: ColorPair{VariantDefault: "#ffe600", "hover": "#ffeb33"},
			},
		},
		Typography: Typography{
			Fonts: Fonts{
				Sans:  []string{"Inter", "system-ui", "sans-serif"},
				Cyber: []string{"Orbitron", "Rajdhani", "monospace"},
			},
		},
		Effects: Effects{
			Glass: GlassEffect{
				Provenance: fallback,
				Background: "rgba(10, 10, 15, 0.6)",
				Blur:       "12px",
				Border:     "rgba(255, 255, 255, 0.1)",
				Shadow:     "0 8px 32px rgba(0, 0, 0, 0.37)",
			},
			Hover: HoverEffect{
				Provenance:   fallback,
				Scale:        1.05,
				Lift:         "-2px",
				Glow:         "#ff007f",
				GlowOpacity:  0.5,
				ShadowNormal: "0 4px 12px rgba(0, 0, 0, 0.25)",
				ShadowHover:  "0 8px 24px rgba(255, 0, 127, 0.35)",
			},
			Animations: Animations{
				Provenance: fallback,
				Timing: map[string]Duration{
					"fast":   "150ms",
					"normal": "300ms",
					"slow":   "500ms",
				},
				Curves: map[string]Easing{
					"smooth": "cubic-bezier(0.4, 0, 0.2, 1)",
					"bounce": "cubic-bezier(0.68, -0.55, 0.265, 1.55)",
					"sharp":  "cubic-bezier(0.4, 0, 0.6, 1)",
				},
			},
			SpecialEffectTokens: &SpecialEffectTokens{
				Provenance: fallback,
				Neon: &NeonTokens{
					GlowSizes:     []CSSLength{"4px", "8px", "16px"},
					FlickerSpeeds: []Duration{"1.5s", "3s"},
				},
				Glitch: &GlitchTokens{
					Intensity: []float64{0.2, 0.5, 0.8},
					Frequency: "4s",
				},
				Matrix: &MatrixTokens{
					Speed:   "50ms",
					Density: 0.6,
				},
			},
			MotionTokens: &MotionTokens{
				Provenance: fallback,
				Paths: &MotionPaths{
					EaseCurves:  []Easing{"ease-in-out", "cubic-bezier(0.25, 0.1, 0.25, 1)"},
					PresetPaths: []string{"fade-up", "slide-left", "zoom-in"},
				},
				ScrollTriggers: &ScrollTriggers{
					Thresholds:     []float64{0.1, 0.5, 0.9},
					AnimationTypes: []string{"fade", "slide"},
					Directions:     []string{"up", "down"},
					Distances:      []CSSLength{"20px", "40px"},
				},
			},
		},
	}
}
