// Package themeapi exposes themes, presets, backups, page mappings and live
// editing over HTTP.
package themeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/HerbHall/themeforge/internal/auth"
	"github.com/HerbHall/themeforge/internal/live"
	"github.com/HerbHall/themeforge/internal/projector"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themestore"
	"github.com/HerbHall/themeforge/pkg/platform"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Config wires a Handler. Live, Editor and Publisher are optional; the
// endpoints depending on them answer 503 when unset.
type Config struct {
	Themes    *themestore.Adapter
	Service   *theme.Service
	Live      *live.Controller
	Editor    *live.Editor
	Publisher platform.Publisher
	Channel   string
	// EnforceRoles gates writes behind auth roles. Leave false when the
	// server runs without authentication.
	EnforceRoles bool
	GlassAlias   bool
	Logger       *zap.Logger
}

// Handler serves the theme API.
type Handler struct {
	themes       *themestore.Adapter
	store        *themestore.Store
	service      *theme.Service
	live         *live.Controller
	editor       *live.Editor
	pub          platform.Publisher
	channel      string
	enforceRoles bool
	glassAlias   bool
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	channel := cfg.Channel
	if channel == "" {
		channel = realtime.DefaultChannel
	}
	service := cfg.Service
	if service == nil {
		service = theme.NewService(nil, nil, nil, logger)
	}
	return &Handler{
		themes:       cfg.Themes,
		store:        cfg.Themes.Store(),
		service:      service,
		live:         cfg.Live,
		editor:       cfg.Editor,
		pub:          cfg.Publisher,
		channel:      channel,
		enforceRoles: cfg.EnforceRoles,
		glassAlias:   cfg.GlassAlias,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
	}
}

// RegisterRoutes mounts the API on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Literal paths before wildcards.
	mux.HandleFunc("GET /api/v1/themes", h.handleListThemes)
	mux.HandleFunc("POST /api/v1/themes", h.gate(auth.RoleEditor, h.handleCreateTheme))
	mux.HandleFunc("GET /api/v1/themes/default", h.handleDefaultTheme)
	mux.HandleFunc("GET /api/v1/themes/resolve", h.handleResolve)
	mux.HandleFunc("POST /api/v1/themes/validate", h.handleValidateBody)
	mux.HandleFunc("GET /api/v1/themes/{id}", h.handleGetTheme)
	mux.HandleFunc("PUT /api/v1/themes/{id}", h.gate(auth.RoleEditor, h.handleUpdateTheme))
	mux.HandleFunc("DELETE /api/v1/themes/{id}", h.gate(auth.RoleEditor, h.handleArchiveTheme))
	mux.HandleFunc("POST /api/v1/themes/{id}/validate", h.handleValidateTheme)
	mux.HandleFunc("GET /api/v1/themes/{id}/usage", h.gate(auth.RoleAdmin, h.handleListUsage))
	mux.HandleFunc("GET /api/v1/themes/{id}/backups", h.handleListBackups)
	mux.HandleFunc("POST /api/v1/themes/{id}/backups", h.gate(auth.RoleEditor, h.handleCreateBackup))
	mux.HandleFunc("POST /api/v1/backups/{id}/restore", h.gate(auth.RoleEditor, h.handleRestoreBackup))

	mux.HandleFunc("GET /api/v1/presets", h.handleListPresets)
	mux.HandleFunc("POST /api/v1/presets", h.gate(auth.RoleAdmin, h.handleCreatePreset))
	mux.HandleFunc("GET /api/v1/presets/{id}", h.handleGetPreset)
	mux.HandleFunc("POST /api/v1/presets/{id}/apply", h.gate(auth.RoleEditor, h.handleApplyPreset))

	mux.HandleFunc("GET /api/v1/page-themes", h.handleListPageThemes)
	mux.HandleFunc("PUT /api/v1/page-themes", h.gate(auth.RoleEditor, h.handleSetPageTheme))
	mux.HandleFunc("DELETE /api/v1/page-themes", h.gate(auth.RoleEditor, h.handleDeletePageTheme))

	mux.HandleFunc("GET /api/v1/live", h.handleLiveTheme)
	mux.HandleFunc("PATCH /api/v1/live/tokens", h.gate(auth.RoleEditor, h.handlePatchTokens))
	mux.HandleFunc("GET /api/v1/editor", h.handleEditorPreview)
	mux.HandleFunc("POST /api/v1/editor/edits", h.gate(auth.RoleEditor, h.handleEditorStage))
	mux.HandleFunc("DELETE /api/v1/editor/edits", h.gate(auth.RoleEditor, h.handleEditorDiscard))
	mux.HandleFunc("POST /api/v1/editor/save", h.gate(auth.RoleEditor, h.handleEditorSave))
}

// gate wraps fn with a role check when roles are enforced.
func (h *Handler) gate(min auth.Role, fn http.HandlerFunc) http.HandlerFunc {
	if !h.enforceRoles {
		return fn
	}
	return auth.RequireRole(min, fn)
}

// actor names the caller for created_by columns.
func actor(r *http.Request) string {
	if c := auth.UserFromContext(r.Context()); c != nil {
		if c.Username != "" {
			return c.Username
		}
		return c.UserID
	}
	return ""
}

// decode reads a JSON body into dst and runs struct validation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		server.BadRequest(w, "invalid request body: "+err.Error(), r.URL.Path)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		server.BadRequest(w, describeValidation(err), r.URL.Path)
		return false
	}
	return true
}

func describeValidation(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// writeError maps domain errors onto problem responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *theme.InvalidConfigurationError
		schema  *theme.SchemaError
		blocked *live.BlockedError
		unknown *live.UnknownUpdateError
	)
	switch {
	case errors.Is(err, themestore.ErrNotFound):
		server.NotFound(w, err.Error(), r.URL.Path)
	case errors.Is(err, themestore.ErrConflict):
		server.Conflict(w, err.Error(), r.URL.Path)
	case errors.As(err, &schema):
		server.InvalidTheme(w, "configuration failed schema check", r.URL.Path, schema.Fields)
	case errors.As(err, &blocked):
		server.InvalidTheme(w, err.Error(), r.URL.Path, blocked.Result.Violations)
	case errors.As(err, &invalid), errors.As(err, &unknown),
		errors.Is(err, live.ErrEmptyPath), errors.Is(err, live.ErrNothingStaged):
		server.BadRequest(w, err.Error(), r.URL.Path)
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		server.InternalError(w, "internal error", r.URL.Path)
	}
}

// renderCSS projects t onto a fresh sink and renders it under selector.
func (h *Handler) renderCSS(t *theme.Theme, selector string) string {
	var opts []projector.Option
	if h.glassAlias {
		opts = append(opts, projector.WithThemeGlassAlias())
	}
	sink := projector.NewMemorySink()
	projector.New(sink, opts...).Apply(t)
	return projector.RenderCSS(sink, selector)
}

// wantsCSS reports whether the caller asked for a stylesheet.
func wantsCSS(r *http.Request) bool {
	if r.URL.Query().Get("format") == "css" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/css")
}

func (h *Handler) writeTheme(w http.ResponseWriter, r *http.Request, status int, t *theme.Theme) {
	if wantsCSS(r) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, h.renderCSS(t, r.URL.Query().Get("selector")))
		return
	}
	server.WriteJSON(w, status, t)
}
