package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MediaType represents the kind of catalog entry
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Defaults applied when a record carries no (or an invalid) enum value
const (
	DefaultFileType   = "webrip"
	DefaultSourceType = "original"
)

// SubtitleLanguages is the fixed set of languages every subtitles map carries
var SubtitleLanguages = []string{"english", "sinhala"}

// releaseFileTypes is the allow-list shared by source_type and file_type
var releaseFileTypes = []string{
	"original", "camcopy", "bluray", "webrip", "webdl", "hdtv", "dvdrip", "brrip",
}

// IsValidSourceType reports whether the value is in the source type allow-list
func IsValidSourceType(v string) bool {
	return isReleaseFileType(v)
}

// IsValidFileType reports whether the value is in the file type allow-list
func IsValidFileType(v string) bool {
	return isReleaseFileType(v)
}

func isReleaseFileType(v string) bool {
	for _, t := range releaseFileTypes {
		if v == t {
			return true
		}
	}
	return false
}

// SeasonKey builds the canonical key for a season inside the seasons map
func SeasonKey(seasonNumber int) string {
	return fmt.Sprintf("season_%d", seasonNumber)
}

// MediaRecord is one movie or TV catalog entry
type MediaRecord struct {
	ID                 int64                   `json:"id"`
	Type               MediaType               `json:"type"`
	Title              string                  `json:"title"`
	Description        *string                 `json:"description"`
	Thumbnail          *string                 `json:"thumbnail"`
	Backdrop           *string                 `json:"backdrop"`
	ReleaseDate        *string                 `json:"release_date"`
	Language           *string                 `json:"language"`
	Rating             *float64                `json:"rating"`
	Status             *string                 `json:"status"`
	CastMembers        []CastMember            `json:"cast_members"`
	VideoLinks         map[string]string       `json:"video_links"`
	DownloadLinks      map[string]DownloadLink `json:"download_links"`
	TelegramLinks      map[string]string       `json:"telegram_links"`
	TorrentLinks       map[string]string       `json:"torrent_links"`
	TotalSeasons       *int                    `json:"total_seasons"`
	Seasons            map[string]*Season      `json:"seasons"`
	Genres             []string                `json:"genres"`
	FileType           string                  `json:"file_type"`
	SourceType         string                  `json:"source_type"`
	YoutubeTrailer     string                  `json:"youtube_trailer"`
	Screenshots720p    []string                `json:"screenshots_720p"`
	Screenshots1080p   []string                `json:"screenshots_1080p"`
	Screenshots2160p   []string                `json:"screenshots_2160p"`
	ScreenshotsTrailer []string                `json:"screenshots_trailer"`
	Subtitles          SubtitleMap             `json:"subtitles"`
}

// CastMember is one credited cast entry
type CastMember struct {
	Name      string  `json:"name"`
	Character string  `json:"character"`
	Image     *string `json:"image"`
}

// DownloadLink is a record-level download entry carrying the release file type
type DownloadLink struct {
	URL      string `json:"url"`
	FileType string `json:"file_type"`
}

// Season groups episodes under a "season_<n>" key of the seasons map
type Season struct {
	SeasonNumber  FlexInt    `json:"season_number"`
	TotalEpisodes int        `json:"total_episodes"`
	Episodes      []*Episode `json:"episodes"`
}

// Episode is a single TV episode nested inside a season
type Episode struct {
	EpisodeNumber FlexInt           `json:"episode_number"`
	EpisodeName   string            `json:"episode_name"`
	VideoLinks    map[string]string `json:"video_links"`
	DownloadLinks map[string]string `json:"download_links"`
	TelegramLinks map[string]string `json:"telegram_links"`
	TorrentLinks  map[string]string `json:"torrent_links"`
	Subtitles     SubtitleMap       `json:"subtitles"`
}

// SubtitleMap maps a language key to its subtitle URL list
type SubtitleMap map[string][]string

// EnsureLanguages back-fills every fixed language key with an empty list
// so no episode or record ships without both entries
func (m *SubtitleMap) EnsureLanguages() {
	if *m == nil {
		*m = SubtitleMap{}
	}
	for _, lang := range SubtitleLanguages {
		if (*m)[lang] == nil {
			(*m)[lang] = []string{}
		}
	}
}

// UnmarshalJSON accepts either url lists or bare/comma-joined url strings
// per language, so admin-panel input of both shapes decodes the same way
func (m *SubtitleMap) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := SubtitleMap{}
	for lang, v := range raw {
		var urls []string
		if err := json.Unmarshal(v, &urls); err == nil {
			out[lang] = urls
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("subtitles[%s]: expected list or string", lang)
		}
		urls = []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				urls = append(urls, part)
			}
		}
		out[lang] = urls
	}
	*m = out
	return nil
}

// FlexInt decodes JSON numbers and numeric strings alike; admin clients
// submit season and episode numbers in both shapes
type FlexInt int

// UnmarshalJSON implements lenient integer decoding; empty or malformed
// input decodes to zero rather than failing the enclosing structure
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexInt(int(v))
	return nil
}

// Int returns the plain integer value
func (n FlexInt) Int() int {
	return int(n)
}
