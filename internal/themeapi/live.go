package themeapi

import (
	"encoding/json"
	"net/http"

	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/theme"
)

// TokenPatchRequest describes one live change to broadcast.
type TokenPatchRequest struct {
	Type  string          `json:"type" validate:"required,oneof=theme token effect" example:"token"`
	Path  []string        `json:"path" validate:"required_unless=Type theme,dive,required"`
	Value json.RawMessage `json:"value" validate:"required" swaggertype:"object"`
}

// StageRequest stages one editor change.
type StageRequest struct {
	Path  []string        `json:"path" validate:"required,min=1,dive,required" example:"colors,cyber,pink,DEFAULT"`
	Value json.RawMessage `json:"value" validate:"required" swaggertype:"object"`
}

// PreviewResponse is the editor state with staged changes applied.
type PreviewResponse struct {
	Dirty  bool                   `json:"dirty"`
	Theme  *theme.Theme           `json:"theme"`
	Result theme.ValidationResult `json:"result"`
}

// LiveResponse is the theme currently active in this process.
type LiveResponse struct {
	Theme  *theme.Theme           `json:"theme"`
	Result theme.ValidationResult `json:"result"`
}

func unavailable(w http.ResponseWriter, r *http.Request, what string) {
	server.WriteProblem(w, server.Problem{
		Type:     server.ProblemTypeInternal,
		Title:    http.StatusText(http.StatusServiceUnavailable),
		Status:   http.StatusServiceUnavailable,
		Detail:   what + " is not enabled",
		Instance: r.URL.Path,
	})
}

// handleLiveTheme returns the live theme and its last validation result.
//
//	@Summary		Live theme
//	@Tags			live
//	@Produce		json
//	@Produce		text/css
//	@Success		200	{object}	LiveResponse
//	@Failure		503	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/live [get]
func (h *Handler) handleLiveTheme(w http.ResponseWriter, r *http.Request) {
	if h.live == nil {
		unavailable(w, r, "live theme")
		return
	}
	t := h.live.Current()
	if wantsCSS(r) {
		h.writeTheme(w, r, http.StatusOK, t)
		return
	}
	server.WriteJSON(w, http.StatusOK, LiveResponse{Theme: t, Result: h.live.LastResult()})
}

// handlePatchTokens publishes a change on the broadcast channel. Every
// subscriber, this process included, applies it on receipt.
//
//	@Summary		Broadcast token change
//	@Tags			live
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TokenPatchRequest	true	"Change"
//	@Success		202		{object}	realtime.Update
//	@Failure		400		{object}	server.Problem
//	@Failure		503		{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/live/tokens [patch]
func (h *Handler) handlePatchTokens(w http.ResponseWriter, r *http.Request) {
	if h.pub == nil {
		unavailable(w, r, "broadcast")
		return
	}
	var req TokenPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := realtime.NewUpdate(realtime.UpdateType(req.Type), req.Path, req.Value, "api:"+actor(r))
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	if err := realtime.Publish(r.Context(), h.pub, h.channel, u); err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusAccepted, u)
}

// handleEditorPreview shows the live theme with staged edits applied.
//
//	@Summary		Editor preview
//	@Tags			editor
//	@Produce		json
//	@Success		200	{object}	PreviewResponse
//	@Failure		422	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/editor [get]
func (h *Handler) handleEditorPreview(w http.ResponseWriter, r *http.Request) {
	if h.editor == nil {
		unavailable(w, r, "editor")
		return
	}
	t, result, err := h.editor.Preview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, PreviewResponse{Dirty: h.editor.IsDirty(), Theme: t, Result: result})
}

// handleEditorStage stages one edit.
//
//	@Summary		Stage edit
//	@Tags			editor
//	@Accept			json
//	@Param			request	body	StageRequest	true	"Edit"
//	@Success		204
//	@Failure		400	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/editor/edits [post]
func (h *Handler) handleEditorStage(w http.ResponseWriter, r *http.Request) {
	if h.editor == nil {
		unavailable(w, r, "editor")
		return
	}
	var req StageRequest
	if !h.decode(w, r, &req) {
		return
	}
	var value any
	if err := json.Unmarshal(req.Value, &value); err != nil {
		server.BadRequest(w, "value: "+err.Error(), r.URL.Path)
		return
	}
	if err := h.editor.Stage(req.Path, value); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEditorDiscard drops every staged edit.
//
//	@Summary		Discard edits
//	@Tags			editor
//	@Success		204
//	@Security		BearerAuth
//	@Router			/editor/edits [delete]
func (h *Handler) handleEditorDiscard(w http.ResponseWriter, r *http.Request) {
	if h.editor == nil {
		unavailable(w, r, "editor")
		return
	}
	h.editor.Discard()
	w.WriteHeader(http.StatusNoContent)
}

// handleEditorSave commits staged edits.
//
//	@Summary		Save edits
//	@Description	Backs up the previous configuration, stores the edited theme, activates it and broadcasts it. Error-severity violations block the save.
//	@Tags			editor
//	@Produce		json
//	@Success		200	{object}	theme.Theme
//	@Failure		400	{object}	server.Problem
//	@Failure		422	{object}	server.Problem
//	@Security		BearerAuth
//	@Router			/editor/save [post]
func (h *Handler) handleEditorSave(w http.ResponseWriter, r *http.Request) {
	if h.editor == nil {
		unavailable(w, r, "editor")
		return
	}
	t, err := h.editor.Save(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, t)
}
