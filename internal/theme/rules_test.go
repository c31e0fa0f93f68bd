package theme

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func effectsWith(opts ...func(*Effects)) *Effects {
	fx := Default().Configuration.Effects
	for _, opt := range opts {
		opt(&fx)
	}
	return &fx
}

func hasRule(r ValidationResult, id string) bool {
	for _, v := range r.Violations {
		if v.RuleID == id {
			return true
		}
	}
	return false
}

func TestValidate_DefaultThemeIsValid(t *testing.T) {
	th := Default()
	r := Validate(th, EffectsOf(th))
	if !r.Valid {
		t.Errorf("default theme invalid: %+v", r.Violations)
	}
	if r.Violations == nil {
		t.Error("Violations should be an empty slice, not nil")
	}
}

func TestValidate_GlassHoverConflict(t *testing.T) {
	tests := []struct {
		name         string
		glassEnabled bool
		hoverEnabled bool
		scale        float64
		wantConflict bool
	}{
		{"scale above limit", true, true, 1.2, true},
		{"scale exactly at limit", true, true, 1.1, false},
		{"scale just above limit", true, true, 1.1000001, true},
		{"glass disabled", false, true, 1.5, false},
		{"hover disabled", true, false, 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := effectsWith(func(fx *Effects) {
				fx.Glass.Enabled = tt.glassEnabled
				fx.Hover.Enabled = tt.hoverEnabled
				fx.Hover.Scale = tt.scale
			})
			r := Validate(Default(), fx)
			if got := hasRule(r, RuleGlassHoverConflict); got != tt.wantConflict {
				t.Errorf("conflict = %v, want %v (violations %+v)", got, tt.wantConflict, r.Violations)
			}
			if tt.wantConflict && r.Valid {
				t.Error("Valid = true with a conflict")
			}
		})
	}
}

func TestValidate_AnimationBoundaries(t *testing.T) {
	tests := []struct {
		timing   Duration
		wantWarn bool
	}{
		{"100ms", false},
		{"1000ms", false},
		{"99ms", true},
		{"1001ms", true},
		{"300ms", false},
		{"0.3s", true},
		{"fast", false},
		{" 150ms", false},
		{"99999999999999999999ms", true},
		{"-99999999999999999999ms", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.timing), func(t *testing.T) {
			fx := effectsWith(func(fx *Effects) {
				fx.Animations.Timing = map[string]Duration{"only": tt.timing}
			})
			r := Validate(Default(), fx)
			if got := hasRule(r, RuleAnimationPerformance); got != tt.wantWarn {
				t.Errorf("warning = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestValidate_WarningsStillInvalidate(t *testing.T) {
	fx := effectsWith(func(fx *Effects) {
		fx.Animations.Timing["fast"] = "50ms"
	})
	r := Validate(Default(), fx)
	if r.Valid {
		t.Error("Valid = true with a warning violation")
	}
	if r.HasErrors() {
		t.Error("HasErrors = true for warning-only result")
	}
	if r.Violations[0].Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning", r.Violations[0].Severity)
	}
}

func TestValidate_AllRulesRun(t *testing.T) {
	fx := effectsWith(func(fx *Effects) {
		fx.Hover.Scale = 1.5
		fx.Animations.Timing["slow"] = "5000ms"
	})
	r := Validate(Default(), fx)
	if len(r.Violations) != 2 {
		t.Fatalf("violations = %d, want 2: %+v", len(r.Violations), r.Violations)
	}
	if r.Violations[0].RuleID != RuleGlassHoverConflict || r.Violations[1].RuleID != RuleAnimationPerformance {
		t.Errorf("violation order = %s, %s", r.Violations[0].RuleID, r.Violations[1].RuleID)
	}
}

func TestValidate_NilEffects(t *testing.T) {
	r := Validate(nil, nil)
	if !r.Valid {
		t.Errorf("Validate(nil, nil) = %+v, want valid", r)
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"150ms", 150, true},
		{"-5ms", -5, true},
		{"1.5s", 1, true},
		{"ms", 0, false},
		{"", 0, false},
		{"99999999999999999999ms", math.MaxInt, true},
		{"-99999999999999999999ms", math.MinInt, true},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("leadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

type recorderFunc func(ctx context.Context, rec UsageRecord) error

func (f recorderFunc) RecordUsage(ctx context.Context, rec UsageRecord) error { return f(ctx, rec) }

func TestService_LogsOnlyForAdmins(t *testing.T) {
	tests := []struct {
		name     string
		identity IdentityResolver
		want     int
	}{
		{"admin", func(context.Context) (Identity, bool) { return Identity{UserID: "u1", Role: RoleAdmin}, true }, 1},
		{"viewer", func(context.Context) (Identity, bool) { return Identity{UserID: "u2", Role: "viewer"}, true }, 0},
		{"anonymous", func(context.Context) (Identity, bool) { return Identity{}, false }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			var records []UsageRecord
			rec := recorderFunc(func(_ context.Context, r UsageRecord) error {
				mu.Lock()
				defer mu.Unlock()
				records = append(records, r)
				return nil
			})
			svc := NewService(nil, rec, tt.identity, zap.NewNop())
			th := Default()
			svc.ValidateTheme(context.Background(), th, EffectsOf(th))
			svc.Wait()

			mu.Lock()
			defer mu.Unlock()
			if len(records) != tt.want {
				t.Fatalf("records = %d, want %d", len(records), tt.want)
			}
			if tt.want == 1 && (records[0].ThemeID != th.ID || !records[0].Valid || records[0].ID == "") {
				t.Errorf("unexpected record %+v", records[0])
			}
		})
	}
}

func TestService_RecorderFailureDoesNotAffectResult(t *testing.T) {
	rec := recorderFunc(func(context.Context, UsageRecord) error { return errors.New("db down") })
	admin := func(context.Context) (Identity, bool) { return Identity{UserID: "u1", Role: RoleAdmin}, true }
	svc := NewService(nil, rec, admin, zap.NewNop())

	th := Default()
	r := svc.ValidateTheme(context.Background(), th, EffectsOf(th))
	svc.Wait()
	if !r.Valid {
		t.Errorf("result changed by recorder failure: %+v", r)
	}
}

func TestService_NilLogger(t *testing.T) {
	var calls int
	rec := recorderFunc(func(context.Context, UsageRecord) error {
		calls++
		return errors.New("db down")
	})
	admin := func(context.Context) (Identity, bool) { return Identity{UserID: "u1", Role: RoleAdmin}, true }
	svc := NewService(nil, rec, admin, nil)

	th := Default()
	svc.ValidateTheme(context.Background(), th, EffectsOf(th))
	svc.Wait()
	svc.LogThemeUsage(context.Background(), th, ValidationResult{Valid: true})
	if calls != 2 {
		t.Errorf("recorder calls = %d, want 2", calls)
	}
}
