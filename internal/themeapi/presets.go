package themeapi

import (
	"encoding/json"
	"net/http"

	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/theme"
)

// PresetRequest is the body for creating a preset. The configuration may be
// partial.
type PresetRequest struct {
	Name          string          `json:"name" validate:"required,max=100" example:"synthwave"`
	Description   string          `json:"description" validate:"max=500"`
	Category      string          `json:"category" validate:"required,max=50" example:"retro"`
	Configuration json.RawMessage `json:"configuration" validate:"required" swaggertype:"object"`
}

// ApplyPresetRequest selects the base a preset is merged onto and whether the
// result is stored as a new theme.
type ApplyPresetRequest struct {
	// BaseThemeID defaults to the global default theme.
	BaseThemeID string `json:"base_theme_id"`
	// SaveAs stores the result under this name when set.
	SaveAs string `json:"save_as" validate:"omitempty,max=100"`
	Status string `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// handleListPresets lists presets, optionally by category.
//
//	@Summary		List presets
//	@Tags			presets
//	@Produce		json
//	@Param			category	query	string	false	"Category filter"
//	@Success		200			{array}	theme.Preset
//	@Security		BearerAuth
//	@Router			/presets [get]
func (h *Handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.ListPresets(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, presets)
}

// handleGetPreset returns one preset.
//
//	@Summary		Get preset
//	@Tags			presets
//	@Produce		json
//	@Param			id	path		string	true	"Preset ID"
//	@Success		200	{object}	theme.Preset
//	@Failure		404	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/presets/{id} [get]
func (h *Handler) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPreset(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, p)
}

// handleCreatePreset stores a new preset. The configuration must merge
// cleanly onto the built-in default.
//
//	@Summary		Create preset
//	@Tags			presets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PresetRequest	true	"Preset"
//	@Success		201		{object}	theme.Preset
//	@Failure		400		{object}	server.Problem
//	@Failure		409		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/presets [post]
func (h *Handler) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if !h.decode(w, r, &req) {
		return
	}
	raw, err := theme.ParseConfiguration(req.Configuration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	merged, err := theme.Merge(theme.Default(), theme.ConfigurationPartial(raw))
	if err == nil {
		err = theme.CheckSchema(merged.Configuration)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p := &theme.Preset{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Configuration: raw,
	}
	if err := h.store.CreatePreset(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, p)
}

// handleApplyPreset merges a preset onto a base theme.
//
//	@Summary		Apply preset
//	@Description	Merges the preset onto the base theme. With save_as the result is stored as a new theme.
//	@Tags			presets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Preset ID"
//	@Param			request	body		ApplyPresetRequest	false	"Options"
//	@Success		200		{object}	theme.Theme
//	@Success		201		{object}	theme.Theme
//	@Failure		404		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/presets/{id}/apply [post]
func (h *Handler) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req ApplyPresetRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	base := h.themes.DefaultTheme(r.Context())
	if req.BaseThemeID != "" {
		b, err := h.store.GetTheme(r.Context(), req.BaseThemeID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		base = b
	}

	t, err := h.themes.ResolvePreset(r.Context(), base, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SaveAs == "" {
		h.writeTheme(w, r, http.StatusOK, t)
		return
	}

	t.ID = ""
	t.Name = req.SaveAs
	t.Status = theme.Status(req.Status)
	t.CreatedBy = actor(r)
	if err := h.themes.SaveTheme(r.Context(), t); err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, t)
}
