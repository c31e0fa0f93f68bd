package themeapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/theme"
	"go.uber.org/zap"
)

// ThemeRequest is the body for creating or replacing a theme.
// @Description Theme metadata plus a full configuration object.
type ThemeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100" example:"neon-night"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=active draft archived" example:"active"`
	IsDefault   bool   `json:"is_default"`
	// Configuration defaults to the built-in configuration when omitted.
	Configuration json.RawMessage `json:"configuration" swaggertype:"object"`
}

// configuration decodes the request configuration, falling back to the
// built-in one when absent.
func (req *ThemeRequest) configuration() (*theme.Configuration, error) {
	if len(req.Configuration) == 0 || string(req.Configuration) == "null" {
		return theme.DefaultConfiguration(), nil
	}
	raw, err := theme.ParseConfiguration(req.Configuration)
	if err != nil {
		return nil, err
	}
	return theme.Decode(raw)
}

// handleListThemes lists stored themes.
//
//	@Summary		List themes
//	@Tags			themes
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(active, draft, archived)
//	@Success		200		{array}		theme.Theme
//	@Failure		400		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes [get]
func (h *Handler) handleListThemes(w http.ResponseWriter, r *http.Request) {
	status := theme.Status(r.URL.Query().Get("status"))
	if status != "" && !theme.ValidStatuses[status.Normalize()] {
		server.BadRequest(w, "unknown status "+strconv.Quote(string(status)), r.URL.Path)
		return
	}
	themes, err := h.store.ListThemes(r.Context(), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, themes)
}

// handleGetTheme returns one theme.
//
//	@Summary		Get theme
//	@Tags			themes
//	@Produce		json
//	@Produce		text/css
//	@Param			id		path		string	true	"Theme ID"
//	@Param			format	query		string	false	"css renders a stylesheet"
//	@Success		200		{object}	theme.Theme
//	@Failure		404		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/{id} [get]
func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTheme(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTheme(w, r, http.StatusOK, t)
}

// handleDefaultTheme returns the global default, or the built-in theme when
// none is stored.
//
//	@Summary		Default theme
//	@Tags			themes
//	@Produce		json
//	@Produce		text/css
//	@Success		200	{object}	theme.Theme
//	@Security		BearerAuth
//	@Router			/themes/default [get]
func (h *Handler) handleDefaultTheme(w http.ResponseWriter, r *http.Request) {
	h.writeTheme(w, r, http.StatusOK, h.themes.DefaultTheme(r.Context()))
}

// handleResolve returns the theme in effect for a route path.
//
//	@Summary		Resolve theme for path
//	@Tags			themes
//	@Produce		json
//	@Produce		text/css
//	@Param			path		query		string	true	"Route path"
//	@Param			format		query		string	false	"css renders a stylesheet"
//	@Param			selector	query		string	false	"CSS selector, :root by default"
//	@Success		200			{object}	theme.Theme
//	@Failure		400			{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/resolve [get]
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		server.BadRequest(w, "path query parameter is required", r.URL.Path)
		return
	}
	h.writeTheme(w, r, http.StatusOK, h.themes.LoadThemeForPath(r.Context(), path))
}

// handleCreateTheme stores a new theme.
//
//	@Summary		Create theme
//	@Tags			themes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ThemeRequest	true	"Theme"
//	@Success		201		{object}	theme.Theme
//	@Failure		400		{object}	server.Problem
//	@Failure		409		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes [post]
func (h *Handler) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg, err := req.configuration()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t := &theme.Theme{
		Name:          req.Name,
		Description:   req.Description,
		Status:        theme.Status(req.Status),
		IsDefault:     req.IsDefault,
		Configuration: cfg,
		CreatedBy:     actor(r),
	}
	if err := h.themes.SaveTheme(r.Context(), t); err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, t)
}

// handleUpdateTheme replaces a theme's metadata and configuration.
//
//	@Summary		Update theme
//	@Tags			themes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Theme ID"
//	@Param			request	body		ThemeRequest	true	"Theme"
//	@Success		200		{object}	theme.Theme
//	@Failure		404		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/{id} [put]
func (h *Handler) handleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	existing, err := h.store.GetTheme(r.Context(), r.PathValue("id"))
	if existing == nil {
		h.writeError(w, r, err)
		return
	}
	if err != nil {
		// An unreadable configuration can still be overwritten.
		h.logger.Warn("replacing unreadable configuration",
			zap.String("theme_id", existing.ID), zap.Error(err))
	}

	var req ThemeRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg := existing.Configuration
	if len(req.Configuration) > 0 || cfg == nil {
		if cfg, err = req.configuration(); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.IsDefault = req.IsDefault
	if req.Status != "" {
		existing.Status = theme.Status(req.Status)
	}
	existing.Configuration = cfg
	if err := h.themes.SaveTheme(r.Context(), existing); err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, existing)
}

// handleArchiveTheme archives a theme. Themes are never hard deleted.
//
//	@Summary		Archive theme
//	@Tags			themes
//	@Param			id	path	string	true	"Theme ID"
//	@Success		204
//	@Failure		404	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/{id} [delete]
func (h *Handler) handleArchiveTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ArchiveTheme(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateRequest is the body for validating an unsaved configuration.
type ValidateRequest struct {
	Configuration json.RawMessage `json:"configuration" validate:"required" swaggertype:"object"`
}

// handleValidateBody validates a configuration without storing it.
//
//	@Summary		Validate configuration
//	@Tags			themes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ValidateRequest	true	"Configuration"
//	@Success		200		{object}	theme.ValidationResult
//	@Failure		400		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/validate [post]
func (h *Handler) handleValidateBody(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := theme.ParseConfiguration(req.Configuration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg, err := theme.Decode(raw)
	if err == nil {
		err = theme.CheckSchema(cfg)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t := &theme.Theme{Name: "unsaved", Configuration: cfg}
	server.WriteJSON(w, http.StatusOK, h.service.ValidateTheme(r.Context(), t, theme.EffectsOf(t)))
}

// handleValidateTheme runs the semantic rules against a stored theme.
//
//	@Summary		Validate theme
//	@Tags			themes
//	@Produce		json
//	@Param			id	path		string	true	"Theme ID"
//	@Success		200	{object}	theme.ValidationResult
//	@Failure		404	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/{id}/validate [post]
func (h *Handler) handleValidateTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTheme(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h.service.ValidateTheme(r.Context(), t, theme.EffectsOf(t)))
}

// handleListUsage lists recorded validation runs for a theme.
//
//	@Summary		Theme validation usage
//	@Tags			themes
//	@Produce		json
//	@Param			id		path		string	true	"Theme ID"
//	@Param			limit	query		int		false	"Maximum records"	default(50)
//	@Success		200		{array}		theme.UsageRecord
//	@Security		BearerAuth
//	@Router			/themes/{id}/usage [get]
func (h *Handler) handleListUsage(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			server.BadRequest(w, "limit must be a non-negative integer", r.URL.Path)
			return
		}
		limit = n
	}
	recs, err := h.store.ListUsage(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, recs)
}
