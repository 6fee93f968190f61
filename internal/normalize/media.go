package normalize

import (
	"encoding/json"
	"strings"

	"github.com/cinelanka/catalog-service/internal/models"
)

var linkQualities = []string{"720p", "1080p", "2160p"}

// PrepareMediaData assembles one canonical media record from a raw
// client-submitted payload, ready for column-wise persistence
func PrepareMediaData(data map[string]any) *models.MediaRecord {
	fileType := stringValue(data["file_type"])
	if !models.IsValidFileType(fileType) {
		fileType = models.DefaultFileType
	}
	sourceType := stringValue(data["source_type"])
	if !models.IsValidSourceType(sourceType) {
		sourceType = models.DefaultSourceType
	}

	youtubeTrailer := ""
	if trailer := CleanString(data["youtube_trailer"]); trailer != nil {
		if id := ExtractYoutubeID(*trailer); id != "" {
			youtubeTrailer = "https://www.youtube.com/embed/" + id
		}
	}

	title := ""
	if t := CleanString(data["title"]); t != nil {
		title = *t
	}

	rec := &models.MediaRecord{
		Type:               models.MediaType(stringValue(data["type"])),
		Title:              title,
		Description:        CleanString(data["description"]),
		Thumbnail:          CleanString(data["thumbnail"]),
		Backdrop:           CleanString(data["backdrop"]),
		ReleaseDate:        ToDateInputFormat(Clean(data["release_date"])),
		Language:           CleanString(data["language"]),
		Rating:             ParseFloat(data["rating"]),
		Status:             CleanString(data["status"]),
		CastMembers:        castMembers(data["cast_members"]),
		VideoLinks:         stringLinkMap(data, "video", "tv_video"),
		DownloadLinks:      downloadLinkMap(data, fileType),
		TelegramLinks:      stringLinkMap(data, "telegram"),
		TorrentLinks:       stringLinkMap(data, "torrent"),
		TotalSeasons:       ParseInt(data["total_seasons"]),
		Seasons:            Seasons(data["seasons"]),
		Genres:             genres(data["genres"]),
		FileType:           fileType,
		SourceType:         sourceType,
		YoutubeTrailer:     youtubeTrailer,
		Screenshots720p:    StringList(data["screenshots_720p"]),
		Screenshots1080p:   StringList(data["screenshots_1080p"]),
		Screenshots2160p:   StringList(data["screenshots_2160p"]),
		ScreenshotsTrailer: StringList(data["screenshots_trailer"]),
		Subtitles:          Subtitles(data),
	}
	return rec
}

// EpisodeFromPayload builds one canonical episode from a raw add-episode
// payload; link maps accept nested objects or flat per-quality fields and
// the subtitles map is always complete
func EpisodeFromPayload(data map[string]any) *models.Episode {
	number := 0
	if n := ParseInt(data["episode_number"]); n != nil {
		number = *n
	}
	name := ""
	if s := CleanString(data["episode_name"]); s != nil {
		name = *s
	}
	return &models.Episode{
		EpisodeNumber: models.FlexInt(number),
		EpisodeName:   name,
		VideoLinks:    stringLinkMap(data, "video"),
		DownloadLinks: stringLinkMap(data, "download"),
		TelegramLinks: stringLinkMap(data, "telegram"),
		TorrentLinks:  stringLinkMap(data, "torrent"),
		Subtitles:     Subtitles(data),
	}
}

// Subtitles builds the record or episode subtitles map: a pre-built
// canonical object wins, otherwise per-language fields are list-shaped
// individually; both language keys are always present
func Subtitles(data map[string]any) models.SubtitleMap {
	out := models.SubtitleMap{}
	if raw, ok := data["subtitles"]; ok && truthy(raw) {
		out = decodeSubtitleMap(raw)
	} else {
		for _, lang := range models.SubtitleLanguages {
			if v, ok := data["sub_"+lang]; ok {
				out[lang] = StringList(v)
			}
		}
	}
	out.EnsureLanguages()
	return out
}

// Seasons decodes the seasons mapping (native object or JSON string) and
// back-fills every episode's subtitles map; unparseable input yields nil
func Seasons(value any) map[string]*models.Season {
	b := rawJSON(value)
	if b == nil {
		return nil
	}
	var seasons map[string]*models.Season
	if err := json.Unmarshal(b, &seasons); err != nil {
		return nil
	}
	for _, season := range seasons {
		if season == nil {
			continue
		}
		for _, ep := range season.Episodes {
			if ep != nil {
				ep.Subtitles.EnsureLanguages()
			}
		}
	}
	return seasons
}

// stringLinkMap normalizes one link-map family: a pre-built object under
// the canonical "<kind>_links" key is used as-is, otherwise the map is
// synthesized from individual per-quality fields (with optional fallback
// prefixes such as the tv_video_* form fields)
func stringLinkMap(data map[string]any, kind string, fallbackPrefixes ...string) map[string]string {
	if raw, ok := data[kind+"_links"]; ok && truthy(raw) {
		out := map[string]string{}
		for k, v := range jsonObject(raw) {
			out[k] = stringValue(v)
		}
		return out
	}
	out := map[string]string{}
	for _, q := range linkQualities {
		key := kind + "_" + q
		val := CleanString(data[key])
		for _, prefix := range fallbackPrefixes {
			if val != nil {
				break
			}
			val = CleanString(data[prefix+"_"+q])
		}
		if val != nil {
			out[key] = *val
		}
	}
	return out
}

// downloadLinkMap is the download-link variant: entries carry the
// record's file type alongside the url
func downloadLinkMap(data map[string]any, fileType string) map[string]models.DownloadLink {
	out := map[string]models.DownloadLink{}
	if raw, ok := data["download_links"]; ok && truthy(raw) {
		for k, v := range jsonObject(raw) {
			if obj, isObj := v.(map[string]any); isObj {
				link := models.DownloadLink{
					URL:      stringValue(obj["url"]),
					FileType: stringValue(obj["file_type"]),
				}
				if link.FileType == "" {
					link.FileType = fileType
				}
				out[k] = link
				continue
			}
			out[k] = models.DownloadLink{URL: stringValue(v), FileType: fileType}
		}
		return out
	}
	for _, q := range linkQualities {
		key := "download_" + q
		if val := CleanString(data[key]); val != nil {
			out[key] = models.DownloadLink{URL: *val, FileType: fileType}
		}
	}
	return out
}

func decodeSubtitleMap(value any) models.SubtitleMap {
	b := rawJSON(value)
	if b == nil {
		return models.SubtitleMap{}
	}
	var out models.SubtitleMap
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return models.SubtitleMap{}
	}
	return out
}

func castMembers(value any) []models.CastMember {
	b := rawJSON(value)
	if b == nil {
		return []models.CastMember{}
	}
	var out []models.CastMember
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return []models.CastMember{}
	}
	return out
}

// genres splits comma-joined string input and passes lists through
func genres(value any) []string {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			out = append(out, strings.TrimSpace(part))
		}
		return out
	case nil:
		return []string{}
	default:
		return StringList(v)
	}
}

// rawJSON renders map-or-string JSON input to bytes for typed decoding
func rawJSON(value any) []byte {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	}
}

// truthy mirrors the looseness of the admin form payloads: empty strings
// and empty containers count as absent
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
