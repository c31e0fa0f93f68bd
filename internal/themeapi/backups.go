package themeapi

import (
	"net/http"

	"github.com/HerbHall/themeforge/internal/server"
)

// BackupRequest is the optional body for creating a backup.
type BackupRequest struct {
	Note string `json:"note" validate:"max=200" example:"before holiday palette"`
}

// PageThemeRequest maps a route path to a theme.
type PageThemeRequest struct {
	Path    string `json:"path" validate:"required,startswith=/,max=500" example:"/blog"`
	ThemeID string `json:"theme_id" validate:"required"`
}

// handleCreateBackup snapshots a theme's current configuration.
//
//	@Summary		Create backup
//	@Tags			backups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Theme ID"
//	@Param			request	body		BackupRequest	false	"Note"
//	@Success		201		{object}	theme.Backup
//	@Failure		404		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/themes/{id}/backups [post]
func (h *Handler) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req BackupRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	t, err := h.store.GetTheme(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.themes.CreateBackup(r.Context(), t.ID, t.Configuration, req.Note, actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, b)
}

// handleListBackups lists a theme's backups, newest first.
//
//	@Summary		List backups
//	@Tags			backups
//	@Produce		json
//	@Param			id	path	string	true	"Theme ID"
//	@Success		200	{array}	theme.Backup
//	@Security		BearerAuth
//	@Router			/themes/{id}/backups [get]
func (h *Handler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.store.ListBackups(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, backups)
}

// handleRestoreBackup copies a backup forward into its theme.
//
//	@Summary		Restore backup
//	@Tags			backups
//	@Produce		json
//	@Param			id	path		string	true	"Backup ID"
//	@Success		200	{object}	theme.Theme
//	@Failure		404	{object}	server.Problem
//	@Failure		422	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/backups/{id}/restore [post]
func (h *Handler) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	t, err := h.themes.RestoreBackup(r.Context(), r.PathValue("id"), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, t)
}

// handleListPageThemes lists route mappings.
//
//	@Summary		List page themes
//	@Tags			page-themes
//	@Produce		json
//	@Success		200	{array}	theme.PageTheme
//	@Security		BearerAuth
//	@Router			/page-themes [get]
func (h *Handler) handleListPageThemes(w http.ResponseWriter, r *http.Request) {
	pages, err := h.store.ListPageThemes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, pages)
}

// handleSetPageTheme creates or replaces a route mapping.
//
//	@Summary		Set page theme
//	@Tags			page-themes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PageThemeRequest	true	"Mapping"
//	@Success		200		{object}	theme.PageTheme
//	@Failure		404		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/page-themes [put]
func (h *Handler) handleSetPageTheme(w http.ResponseWriter, r *http.Request) {
	var req PageThemeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.store.GetTheme(r.Context(), req.ThemeID); err != nil {
		h.writeError(w, r, err)
		return
	}
	pt, err := h.store.SetPageTheme(r.Context(), req.Path, req.ThemeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, pt)
}

// handleDeletePageTheme removes the mapping for ?path=.
//
//	@Summary		Delete page theme
//	@Tags			page-themes
//	@Param			path	query	string	true	"Route path"
//	@Success		204
//	@Failure		404	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/page-themes [delete]
func (h *Handler) handleDeletePageTheme(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		server.BadRequest(w, "path query parameter is required", r.URL.Path)
		return
	}
	if err := h.store.DeletePageTheme(r.Context(), path); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
