package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cinelanka/catalog-service/internal/models"
	"github.com/cinelanka/catalog-service/internal/normalize"
)

// AdminHandler handles the authenticated catalog write endpoints
type AdminHandler struct {
	BaseHandler
	catalog CatalogService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalog CatalogService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger},
		catalog:     catalog,
	}
}

// RegisterRoutes registers the admin routes; the caller mounts them
// behind the Basic auth middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tmdb_fetch", h.TMDBFetch)
	r.Post("/media", h.CreateMedia)
	r.Put("/media/{id}", h.UpdateMedia)
	r.Delete("/media/{id}", h.DeleteMedia)
	r.Post("/media/{id}/episode", h.AddEpisode)
	r.Put("/media/{id}/subtitles", h.UpdateSubtitles)
	r.Put("/media/{id}/episode/{episode_number}/subtitles", h.UpdateEpisodeSubtitles)
}

// TMDBFetch handles POST /api/admin/tmdb_fetch
func (h *AdminHandler) TMDBFetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TMDBID    models.FlexInt `json:"tmdb_id"`
		MediaType string         `json:"media_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TMDBID.Int() == 0 || req.MediaType == "" {
		h.RespondError(w, http.StatusBadRequest, "TMDB ID and media type are required")
		return
	}

	record, err := h.catalog.FetchFromProvider(r.Context(), req.TMDBID.Int(), models.MediaType(req.MediaType))
	if err != nil {
		h.Logger.Info("provider fetch failed",
			zap.Int("tmdb_id", req.TMDBID.Int()),
			zap.String("media_type", req.MediaType),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusNotFound, "Failed to fetch data from TMDB")
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// CreateMedia handles POST /api/admin/media
func (h *AdminHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	if normalize.CleanString(data["title"]) == nil {
		h.RespondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	id, err := h.catalog.Create(r.Context(), data)
	if err != nil {
		h.Logger.Error("failed to create media", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "Error adding media: "+err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Media added successfully",
		"id":      id,
	})
}

// UpdateMedia handles PUT /api/admin/media/{id}
func (h *AdminHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	data, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	if normalize.CleanString(data["title"]) == nil {
		h.RespondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	if err := h.catalog.Update(r.Context(), id, data); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "Media not found")
			return
		}
		h.Logger.Error("failed to update media", zap.Error(err), zap.Int64("id", id))
		h.RespondError(w, http.StatusBadRequest, "Error updating media: "+err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Media updated successfully"})
}

// DeleteMedia handles DELETE /api/admin/media/{id}
func (h *AdminHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "Media not found")
			return
		}
		h.Logger.Error("failed to delete media", zap.Error(err), zap.Int64("id", id))
		h.RespondError(w, http.StatusBadRequest, "Error deleting media: "+err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Media deleted successfully"})
}

// AddEpisode handles POST /api/admin/media/{id}/episode
func (h *AdminHandler) AddEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	data, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	if len(data) == 0 {
		h.RespondError(w, http.StatusBadRequest, "Episode data is required")
		return
	}

	if err := h.catalog.AddEpisode(r.Context(), id, data); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "TV series not found")
			return
		}
		h.Logger.Error("failed to add episode", zap.Error(err), zap.Int64("id", id))
		h.RespondError(w, http.StatusBadRequest, "Error adding episode: "+err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Episode added successfully"})
}

// UpdateSubtitles handles PUT /api/admin/media/{id}/subtitles; the scope
// is record-level unless the body carries season and episode numbers
func (h *AdminHandler) UpdateSubtitles(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	data, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	seasonNumber := normalize.ParseInt(data["season_number"])
	episodeNumber := normalize.ParseInt(data["episode_number"])
	h.replaceSubtitles(w, r, id, seasonNumber, episodeNumber, data)
}

// UpdateEpisodeSubtitles handles
// PUT /api/admin/media/{id}/episode/{episode_number}/subtitles?season_number=N
func (h *AdminHandler) UpdateEpisodeSubtitles(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	episodeNumber, err := strconv.Atoi(chi.URLParam(r, "episode_number"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid episode number")
		return
	}
	seasonNumber, err := strconv.Atoi(r.URL.Query().Get("season_number"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "season_number query parameter is required")
		return
	}
	data, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	h.replaceSubtitles(w, r, id, &seasonNumber, &episodeNumber, data)
}

func (h *AdminHandler) replaceSubtitles(w http.ResponseWriter, r *http.Request, id int64, seasonNumber, episodeNumber *int, data map[string]any) {
	if err := h.catalog.ReplaceSubtitles(r.Context(), id, seasonNumber, episodeNumber, data); err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to update subtitles", zap.Error(err), zap.Int64("id", id))
		h.RespondError(w, http.StatusBadRequest, "Error updating subtitles: "+err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Subtitles updated successfully"})
}

// decodePayload reads a JSON object body, responding 400 on failure
func (h *AdminHandler) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return data, true
}
