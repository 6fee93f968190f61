package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/cinelanka/catalog-service/internal/models"
	"github.com/cinelanka/catalog-service/internal/normalize"
	"github.com/cinelanka/catalog-service/internal/tmdb"
)

// MediaRepository defines the interface for media persistence
type MediaRepository interface {
	List(ctx context.Context) ([]*models.MediaRecord, error)
	GetByID(ctx context.Context, id int64) (*models.MediaRecord, error)
	Create(ctx context.Context, rec *models.MediaRecord) (int64, error)
	Update(ctx context.Context, id int64, rec *models.MediaRecord) error
	Delete(ctx context.Context, id int64) error
	AppendEpisode(ctx context.Context, mediaID int64, seasonNumber int, episode *models.Episode) error
	ReplaceSubtitles(ctx context.Context, mediaID int64, subtitles models.SubtitleMap) error
	ReplaceEpisodeSubtitles(ctx context.Context, mediaID int64, seasonNumber, episodeNumber int, subtitles models.SubtitleMap) error
}

// MetadataProvider defines the interface for third-party title metadata
type MetadataProvider interface {
	// Fetch returns a partial media record for the given provider id, or
	// an error on any lookup failure; results may be served from cache.
	Fetch(ctx context.Context, tmdbID int, mediaType models.MediaType) (*models.MediaRecord, error)
	// GenreList returns the provider's genre list for one media type.
	GenreList(ctx context.Context, mediaType models.MediaType) ([]tmdb.Genre, error)
}

// CatalogService handles business logic for catalog operations
type CatalogService struct {
	repo     MediaRepository
	provider MetadataProvider
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo MediaRepository, provider MetadataProvider) *CatalogService {
	return &CatalogService{
		repo:     repo,
		provider: provider,
	}
}

// List returns all catalog records, newest first
func (s *CatalogService) List(ctx context.Context) ([]*models.MediaRecord, error) {
	return s.repo.List(ctx)
}

// Get returns one catalog record by id
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.MediaRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Create normalizes a raw admin payload and persists it, returning the
// new record id
func (s *CatalogService) Create(ctx context.Context, data map[string]any) (int64, error) {
	rec := normalize.PrepareMediaData(data)
	return s.repo.Create(ctx, rec)
}

// Update normalizes a raw admin payload and overwrites the record
func (s *CatalogService) Update(ctx context.Context, id int64, data map[string]any) error {
	rec := normalize.PrepareMediaData(data)
	return s.repo.Update(ctx, id, rec)
}

// Delete removes one record by id
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddEpisode appends one episode to a TV record's seasons map
func (s *CatalogService) AddEpisode(ctx context.Context, mediaID int64, data map[string]any) error {
	seasonNumber := normalize.ParseInt(data["season_number"])
	if seasonNumber == nil {
		return fmt.Errorf("season_number is required")
	}

	episode := normalize.EpisodeFromPayload(data)
	return s.repo.AppendEpisode(ctx, mediaID, *seasonNumber, episode)
}

// ReplaceSubtitles replaces the subtitles map at record scope, or at
// episode scope when both season and episode numbers are given
func (s *CatalogService) ReplaceSubtitles(ctx context.Context, mediaID int64, seasonNumber, episodeNumber *int, data map[string]any) error {
	subtitles := normalize.Subtitles(data)

	if seasonNumber != nil && episodeNumber != nil {
		return s.repo.ReplaceEpisodeSubtitles(ctx, mediaID, *seasonNumber, *episodeNumber, subtitles)
	}
	if seasonNumber != nil || episodeNumber != nil {
		return fmt.Errorf("season_number and episode_number must be given together")
	}
	return s.repo.ReplaceSubtitles(ctx, mediaID, subtitles)
}

// FetchFromProvider returns a provider-sourced partial record for the
// admin panel to complete
func (s *CatalogService) FetchFromProvider(ctx context.Context, tmdbID int, mediaType models.MediaType) (*models.MediaRecord, error) {
	return s.provider.Fetch(ctx, tmdbID, mediaType)
}

// Genres returns the sorted union of provider genre names across movie
// and TV; a failed provider call for one type degrades to the other
func (s *CatalogService) Genres(ctx context.Context) []string {
	seen := map[string]bool{}
	for _, mediaType := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeTV} {
		genres, err := s.provider.GenreList(ctx, mediaType)
		if err != nil {
			continue
		}
		for _, g := range genres {
			seen[g.Name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
