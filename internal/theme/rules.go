package theme

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Severity grades a rule violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule IDs.
const (
	RuleGlassHoverConflict   = "glass-hover-conflict"
	RuleAnimationPerformance = "animation-performance"
)

// Rule is a single semantic check. Check returns true when the theme passes.
type Rule struct {
	ID       string
	Name     string
	Message  string
	Severity Severity
	Check    func(t *Theme, fx *Effects) bool
}

// Violation records a failed rule.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	RuleName string   `json:"rule_name"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the outcome of running every rule. Valid is false when
// any violation was recorded, whatever its severity.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any violation has error severity.
func (r ValidationResult) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Animation durations outside this window (in ms) are flagged.
const (
	minAnimationMillis = 100
	maxAnimationMillis = 1000
	maxGlassHoverScale = 1.1
)

// DefaultRules returns the built-in rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       RuleGlassHoverConflict,
			Name:     "Glass/hover conflict",
			Message:  "Glass effect combined with a hover scale above 1.1 causes blur artifacts",
			Severity: SeverityError,
			Check: func(_ *Theme, fx *Effects) bool {
				if fx == nil {
					return true
				}
				return !(fx.Glass.Enabled && fx.Hover.Enabled && fx.Hover.Scale > maxGlassHoverScale)
			},
		},
		{
			ID:       RuleAnimationPerformance,
			Name:     "Animation performance",
			Message:  "Animation durations should be between 100ms and 1000ms",
			Severity: SeverityWarning,
			Check: func(_ *Theme, fx *Effects) bool {
				if fx == nil {
					return true
				}
				for _, d := range fx.Animations.Timing {
					ms, ok := leadingInt(string(d))
					if !ok {
						continue
					}
					if ms < minAnimationMillis || ms > maxAnimationMillis {
						return false
					}
				}
				return true
			},
		},
	}
}

// Validator runs an ordered rule list.
type Validator struct {
	rules []Rule
}

// NewValidator creates a Validator. With no rules it uses DefaultRules.
func NewValidator(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// Validate runs every rule; evaluation never short-circuits.
func (v *Validator) Validate(t *Theme, fx *Effects) ValidationResult {
	violations := make([]Violation, 0)
	for _, r := range v.rules {
		if r.Check(t, fx) {
			continue
		}
		violations = append(violations, Violation{
			RuleID:   r.ID,
			RuleName: r.Name,
			Message:  r.Message,
			Severity: r.Severity,
		})
	}
	return ValidationResult{Valid: len(violations) == 0, Violations: violations}
}

// Rules returns the rule IDs in evaluation order.
func (v *Validator) Rules() []string {
	ids := make([]string, len(v.rules))
	for i, r := range v.rules {
		ids[i] = r.ID
	}
	return ids
}

// Validate runs DefaultRules against a theme and its effects bundle.
func Validate(t *Theme, fx *Effects) ValidationResult {
	return NewValidator().Validate(t, fx)
}

// EffectsOf returns the theme's effects bundle, or nil.
func EffectsOf(t *Theme) *Effects {
	if t == nil || t.Configuration == nil {
		return nil
	}
	return &t.Configuration.Effects
}

// leadingInt parses the integer prefix of s ("150ms" -> 150). Leading
// whitespace and a sign are accepted; ok is false when no digit follows.
// Values beyond the int range clamp to math.MaxInt or math.MinInt.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortedKeys returns the map keys in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
