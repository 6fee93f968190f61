package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cinelanka/catalog-service/internal/models"
)

// Cache hints for the public read endpoints; advisory only
const (
	listCacheControl   = "public, max-age=300"
	recordCacheControl = "public, max-age=3600"
	genreCacheControl  = "public, max-age=86400"
)

// CatalogService defines the interface for catalog operations used by the
// HTTP handlers
type CatalogService interface {
	// List returns all catalog records, newest first.
	List(ctx context.Context) ([]*models.MediaRecord, error)
	// Get returns one record, or an error containing "not found".
	Get(ctx context.Context, id int64) (*models.MediaRecord, error)
	// Create normalizes and persists a raw admin payload, returning the
	// new record id.
	Create(ctx context.Context, data map[string]any) (int64, error)
	// Update normalizes a raw admin payload and overwrites the record.
	Update(ctx context.Context, id int64, data map[string]any) error
	// Delete removes one record.
	Delete(ctx context.Context, id int64) error
	// AddEpisode appends one episode to a TV record's seasons map.
	AddEpisode(ctx context.Context, mediaID int64, data map[string]any) error
	// ReplaceSubtitles replaces subtitles at record scope, or at episode
	// scope when both numbers are given.
	ReplaceSubtitles(ctx context.Context, mediaID int64, seasonNumber, episodeNumber *int, data map[string]any) error
	// FetchFromProvider returns a provider-sourced partial record.
	FetchFromProvider(ctx context.Context, tmdbID int, mediaType models.MediaType) (*models.MediaRecord, error)
	// Genres returns the sorted union of provider genre names.
	Genres(ctx context.Context) []string
}

// MediaHandler handles the public catalog endpoints
type MediaHandler struct {
	BaseHandler
	catalog CatalogService
}

// NewMediaHandler creates a new public media handler
func NewMediaHandler(catalog CatalogService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler: BaseHandler{Logger: logger},
		catalog:     catalog,
	}
}

// RegisterRoutes registers the public routes
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/media", h.ListMedia)
	r.Get("/media/{id}", h.GetMedia)
	r.Get("/genres", h.GetGenres)
}

// ListMedia handles GET /api/media
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to list media", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	w.Header().Set("Cache-Control", listCacheControl)
	h.RespondJSON(w, http.StatusOK, records)
}

// GetMedia handles GET /api/media/{id}
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	record, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "Media not found")
			return
		}
		h.Logger.Error("failed to get media", zap.Error(err), zap.Int64("id", id))
		h.RespondError(w, http.StatusInternalServerError, "failed to get media")
		return
	}

	w.Header().Set("Cache-Control", recordCacheControl)
	h.RespondJSON(w, http.StatusOK, record)
}

// GetGenres handles GET /api/genres
func (h *MediaHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres := h.catalog.Genres(r.Context())

	w.Header().Set("Cache-Control", genreCacheControl)
	h.RespondJSON(w, http.StatusOK, genres)
}

// mediaID parses the {id} route parameter
func mediaID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
