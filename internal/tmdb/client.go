// Package tmdb is a minimal client for The Movie Database used to
// pre-fill catalog entries during admin data entry. Lookups are memoized
// in bounded in-process caches with no expiry: callers must treat results
// as possibly stale.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cinelanka/catalog-service/internal/models"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/original"

	maxCastMembers = 10

	lookupCacheSize = 256
	genreCacheSize  = 10
)

// Genre is one provider genre entry
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type lookupKey struct {
	ID        int
	MediaType models.MediaType
}

// Client fetches and reshapes title metadata from TMDB
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	lookups *lru.Cache[lookupKey, *models.MediaRecord]
	genres  *lru.Cache[models.MediaType, []Genre]
}

// NewClient creates a TMDB client with its bounded memo caches
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tmdb: api key is required")
	}
	lookups, err := lru.New[lookupKey, *models.MediaRecord](lookupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("tmdb: create lookup cache: %w", err)
	}
	genres, err := lru.New[models.MediaType, []Genre](genreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("tmdb: create genre cache: %w", err)
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		lookups: lookups,
		genres:  genres,
	}, nil
}

// titleResponse covers both movie and TV detail payloads; the client
// picks the populated fields by media type
type titleResponse struct {
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	Genres           []Genre `json:"genres"`
	Credits          struct {
		Cast []struct {
			Name        string `json:"name"`
			Character   string `json:"character"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
	} `json:"credits"`
}

// Fetch looks up one title (with credits) and reshapes it into a partial
// media record for the admin panel to complete. Results are memoized per
// (id, media type).
func (c *Client) Fetch(ctx context.Context, tmdbID int, mediaType models.MediaType) (*models.MediaRecord, error) {
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		return nil, fmt.Errorf("tmdb: unsupported media type %q", mediaType)
	}

	key := lookupKey{ID: tmdbID, MediaType: mediaType}
	if rec, ok := c.lookups.Get(key); ok {
		return rec, nil
	}

	path := fmt.Sprintf("/%s/%d?api_key=%s&append_to_response=credits", mediaType, tmdbID, c.apiKey)
	var resp titleResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	rec := c.reshape(&resp, mediaType)
	c.lookups.Add(key, rec)
	return rec, nil
}

// GenreList returns the provider's genre list for one media type,
// memoized separately from title lookups
func (c *Client) GenreList(ctx context.Context, mediaType models.MediaType) ([]Genre, error) {
	if cached, ok := c.genres.Get(mediaType); ok {
		return cached, nil
	}

	path := fmt.Sprintf("/genre/%s/list?api_key=%s", mediaType, c.apiKey)
	var resp struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	c.genres.Add(mediaType, resp.Genres)
	return resp.Genres, nil
}

// reshape converts a provider payload into the catalog's record shape,
// with empty link and subtitle structures for the admin to fill in
func (c *Client) reshape(resp *titleResponse, mediaType models.MediaType) *models.MediaRecord {
	cast := make([]models.CastMember, 0, maxCastMembers)
	for i, member := range resp.Credits.Cast {
		if i == maxCastMembers {
			break
		}
		cast = append(cast, models.CastMember{
			Name:      member.Name,
			Character: member.Character,
			Image:     imageURL(member.ProfilePath),
		})
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Name)
	}

	title := resp.Title
	releaseDate := resp.ReleaseDate
	var totalSeasons *int
	if mediaType == models.MediaTypeTV {
		title = resp.Name
		releaseDate = resp.FirstAirDate
		seasons := resp.NumberOfSeasons
		totalSeasons = &seasons
	}

	rating := resp.VoteAverage
	overview := resp.Overview
	language := resp.OriginalLanguage

	subtitles := models.SubtitleMap{}
	subtitles.EnsureLanguages()

	return &models.MediaRecord{
		Type:        mediaType,
		Title:       title,
		Description: &overview,
		Thumbnail:   imageURL(resp.PosterPath),
		Backdrop:    imageURL(resp.BackdropPath),
		ReleaseDate: &releaseDate,
		Language:    &language,
		Rating:      &rating,
		CastMembers: cast,
		VideoLinks: map[string]string{
			"video_720p":  "",
			"video_1080p": "",
			"video_2160p": "",
		},
		DownloadLinks:      map[string]models.DownloadLink{},
		TelegramLinks:      map[string]string{},
		TorrentLinks:       map[string]string{},
		TotalSeasons:       totalSeasons,
		Genres:             genres,
		FileType:           models.DefaultFileType,
		SourceType:         models.DefaultSourceType,
		YoutubeTrailer:     "",
		Screenshots720p:    []string{},
		Screenshots1080p:   []string{},
		Screenshots2160p:   []string{},
		ScreenshotsTrailer: []string{},
		Subtitles:          subtitles,
	}
}

// get performs a GET request against the TMDB API and decodes the JSON body
func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("tmdb: decode response: %w", err)
	}
	return nil
}

func imageURL(path string) *string {
	if path == "" {
		return nil
	}
	url := imageBaseURL + path
	return &url
}
