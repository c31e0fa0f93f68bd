package theme

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleAdmin is the only role whose validations are recorded.
const RoleAdmin = "admin"

// Identity is the caller a validation runs on behalf of.
type Identity struct {
	UserID string
	Role   string
}

// IdentityResolver extracts the caller from a request context.
type IdentityResolver func(ctx context.Context) (Identity, bool)

// UsageRecord is one persisted validation run.
type UsageRecord struct {
	ID         string      `json:"id"`
	ThemeID    string      `json:"theme_id"`
	UserID     string      `json:"user_id"`
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
	CreatedAt  time.Time   `json:"created_at"`
}

// UsageRecorder persists usage records.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, rec UsageRecord) error
}

// Service validates themes and records admin validation runs as telemetry.
type Service struct {
	validator *Validator
	recorder  UsageRecorder
	identity  IdentityResolver
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewService creates a validation Service. recorder and identity may be nil,
// which disables usage logging.
func NewService(v *Validator, recorder UsageRecorder, identity IdentityResolver, logger *zap.Logger) *Service {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		validator: v,
		recorder:  recorder,
		identity:  identity,
		logger:    logger,
	}
}

// ValidateTheme validates t against fx and logs usage in the background. The
// result never depends on whether logging succeeds.
func (s *Service) ValidateTheme(ctx context.Context, t *Theme, fx *Effects) ValidationResult {
	result := s.validator.Validate(t, fx)
	if s.recorder != nil && s.identity != nil {
		bg := context.WithoutCancel(ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.LogThemeUsage(bg, t, result)
		}()
	}
	return result
}

// LogThemeUsage records a validation run when the caller is an admin. Other
// callers, and persistence failures, are only logged.
func (s *Service) LogThemeUsage(ctx context.Context, t *Theme, result ValidationResult) {
	if s.recorder == nil || s.identity == nil {
		return
	}
	id, ok := s.identity(ctx)
	if !ok {
		s.logger.Debug("skipping theme usage log: unauthenticated caller")
		return
	}
	if id.Role != RoleAdmin {
		s.logger.Debug("skipping theme usage log: caller is not admin",
			zap.String("user_id", id.UserID),
			zap.String("role", id.Role),
		)
		return
	}

	themeID := ""
	if t != nil {
		themeID = t.ID
	}
	rec := UsageRecord{
		ID:         uuid.New().String(),
		ThemeID:    themeID,
		UserID:     id.UserID,
		Valid:      result.Valid,
		Violations: result.Violations,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.recorder.RecordUsage(ctx, rec); err != nil {
		s.logger.Error("failed to record theme usage",
			zap.String("theme_id", themeID),
			zap.Error(err),
		)
	}
}

// Wait blocks until background usage logging has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
