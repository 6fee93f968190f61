package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cinelanka/catalog-service/internal/models"
	"github.com/cinelanka/catalog-service/internal/normalize"
)

// mediaColumns is the full column list in scan order
const mediaColumns = `id, type, title, description, thumbnail, backdrop, release_date, language,
		rating, status, cast_members, video_links, download_links, telegram_links, torrent_links,
		total_seasons, seasons, genres, file_type, source_type, youtube_trailer,
		screenshots_720p, screenshots_1080p, screenshots_2160p, screenshots_trailer, subtitles`

// mediaRepository implements media persistence over the media relation
type mediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *sql.DB) *mediaRepository {
	return &mediaRepository{
		db: db,
	}
}

// List retrieves all media records, newest first
func (r *mediaRepository) List(ctx context.Context) ([]*models.MediaRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM media ORDER BY id DESC`, mediaColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	records := []*models.MediaRecord{}
	for rows.Next() {
		rec, err := scanMediaRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media rows: %w", err)
	}

	return records, nil
}

// GetByID retrieves one media record by id
func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*models.MediaRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM media WHERE id = $1`, mediaColumns)

	rec, err := scanMediaRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media by id: %w", err)
	}

	return rec, nil
}

// Create inserts a new media record and returns the assigned id
func (r *mediaRepository) Create(ctx context.Context, rec *models.MediaRecord) (int64, error) {
	query := `
		INSERT INTO media (
			type, title, description, thumbnail, backdrop, release_date, language, rating, status,
			cast_members, video_links, download_links, telegram_links, torrent_links,
			total_seasons, seasons, genres, file_type, source_type, youtube_trailer,
			screenshots_720p, screenshots_1080p, screenshots_2160p, screenshots_trailer, subtitles
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, writeArgs(rec)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create media: %w", err)
	}

	return id, nil
}

// Update overwrites all columns of one media record
func (r *mediaRepository) Update(ctx context.Context, id int64, rec *models.MediaRecord) error {
	query := `
		UPDATE media SET
			type = $1, title = $2, description = $3, thumbnail = $4, backdrop = $5,
			release_date = $6, language = $7, rating = $8, status = $9, cast_members = $10,
			video_links = $11, download_links = $12, telegram_links = $13, torrent_links = $14,
			total_seasons = $15, seasons = $16, genres = $17, file_type = $18, source_type = $19,
			youtube_trailer = $20, screenshots_720p = $21, screenshots_1080p = $22,
			screenshots_2160p = $23, screenshots_trailer = $24, subtitles = $25
		WHERE id = $26
	`

	args := append(writeArgs(rec), id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update media: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("media not found")
	}

	return nil
}

// Delete removes one media record by id
func (r *mediaRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM media WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("media not found")
	}

	return nil
}

// AppendEpisode adds one episode to the target season bucket of a TV
// record, creating the bucket on first use and recounting total_episodes.
//
// The read and the write are two statements without a transaction or row
// lock, so two concurrent appends to the same record can lose an update.
func (r *mediaRepository) AppendEpisode(ctx context.Context, mediaID int64, seasonNumber int, episode *models.Episode) error {
	query := `SELECT seasons FROM media WHERE id = $1 AND type = 'tv'`

	var rawSeasons []byte
	err := r.db.QueryRowContext(ctx, query, mediaID).Scan(&rawSeasons)
	if err == sql.ErrNoRows {
		return fmt.Errorf("tv series not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load seasons: %w", err)
	}

	seasons := decodeSeasons(rawSeasons)
	key := models.SeasonKey(seasonNumber)
	season, ok := seasons[key]
	if !ok || season == nil {
		season = &models.Season{
			SeasonNumber: models.FlexInt(seasonNumber),
			Episodes:     []*models.Episode{},
		}
		seasons[key] = season
	}

	episode.Subtitles.EnsureLanguages()
	season.Episodes = append(season.Episodes, episode)
	season.TotalEpisodes = len(season.Episodes)

	return r.writeSeasons(ctx, mediaID, seasons)
}

// ReplaceSubtitles overwrites the record-level subtitles map
func (r *mediaRepository) ReplaceSubtitles(ctx context.Context, mediaID int64, subtitles models.SubtitleMap) error {
	subtitles.EnsureLanguages()

	query := `UPDATE media SET subtitles = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, encodeJSON(subtitles), mediaID)
	if err != nil {
		return fmt.Errorf("failed to update subtitles: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("media not found")
	}

	return nil
}

// ReplaceEpisodeSubtitles overwrites the subtitles map of one episode
// inside the seasons column. Same read-modify-write caveat as
// AppendEpisode.
func (r *mediaRepository) ReplaceEpisodeSubtitles(ctx context.Context, mediaID int64, seasonNumber, episodeNumber int, subtitles models.SubtitleMap) error {
	query := `SELECT seasons FROM media WHERE id = $1 AND type = 'tv'`

	var rawSeasons []byte
	err := r.db.QueryRowContext(ctx, query, mediaID).Scan(&rawSeasons)
	if err == sql.ErrNoRows {
		return fmt.Errorf("tv series not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load seasons: %w", err)
	}

	seasons := decodeSeasons(rawSeasons)
	season, ok := seasons[models.SeasonKey(seasonNumber)]
	if !ok || season == nil {
		return fmt.Errorf("season not found")
	}

	subtitles.EnsureLanguages()
	for _, episode := range season.Episodes {
		if episode != nil && episode.EpisodeNumber.Int() == episodeNumber {
			episode.Subtitles = subtitles
			return r.writeSeasons(ctx, mediaID, seasons)
		}
	}

	return fmt.Errorf("episode not found")
}

// writeSeasons persists the whole seasons map back in one statement
func (r *mediaRepository) writeSeasons(ctx context.Context, mediaID int64, seasons map[string]*models.Season) error {
	query := `UPDATE media SET seasons = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, encodeJSON(seasons), mediaID)
	if err != nil {
		return fmt.Errorf("failed to update seasons: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("media not found")
	}

	return nil
}

// writeArgs serializes a record into the insert/update argument list;
// JSON-valued columns are individually encoded
func writeArgs(rec *models.MediaRecord) []any {
	return []any{
		rec.Type,
		rec.Title,
		rec.Description,
		rec.Thumbnail,
		rec.Backdrop,
		rec.ReleaseDate,
		rec.Language,
		rec.Rating,
		rec.Status,
		encodeJSON(rec.CastMembers),
		encodeJSON(rec.VideoLinks),
		encodeJSON(rec.DownloadLinks),
		encodeJSON(rec.TelegramLinks),
		encodeJSON(rec.TorrentLinks),
		rec.TotalSeasons,
		encodeJSON(rec.Seasons),
		encodeJSON(rec.Genres),
		rec.FileType,
		rec.SourceType,
		rec.YoutubeTrailer,
		encodeJSON(rec.Screenshots720p),
		encodeJSON(rec.Screenshots1080p),
		encodeJSON(rec.Screenshots2160p),
		encodeJSON(rec.ScreenshotsTrailer),
		encodeJSON(rec.Subtitles),
	}
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMediaRecord shapes one row into a media record; JSON columns are
// decoded leniently so a corrupt column degrades to a typed empty value
// instead of failing the read
func scanMediaRecord(row rowScanner) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	var description, thumbnail, backdrop, releaseDate, language sql.NullString
	var status, fileType, sourceType, youtubeTrailer sql.NullString
	var rating sql.NullFloat64
	var totalSeasons sql.NullInt64
	var castMembers, videoLinks, downloadLinks, telegram, torrent []byte
	var seasons, genres, shots720, shots1080, shots2160, shotsTrailer []byte
	var subtitles []byte

	err := row.Scan(
		&rec.ID, &rec.Type, &rec.Title, &description, &thumbnail, &backdrop, &releaseDate, &language,
		&rating, &status, &castMembers, &videoLinks, &downloadLinks, &telegram, &torrent,
		&totalSeasons, &seasons, &genres, &fileType, &sourceType, &youtubeTrailer,
		&shots720, &shots1080, &shots2160, &shotsTrailer, &subtitles,
	)
	if err != nil {
		return nil, err
	}

	rec.Description = nullString(description)
	rec.Thumbnail = nullString(thumbnail)
	rec.Backdrop = nullString(backdrop)
	rec.Language = nullString(language)
	rec.Status = nullString(status)
	if releaseDate.Valid {
		rec.ReleaseDate = normalize.ToDateInputFormat(releaseDate.String)
	}
	if rating.Valid {
		rec.Rating = &rating.Float64
	}
	if totalSeasons.Valid {
		n := int(totalSeasons.Int64)
		rec.TotalSeasons = &n
	}
	rec.FileType = fileType.String
	rec.SourceType = sourceType.String
	rec.YoutubeTrailer = youtubeTrailer.String

	rec.CastMembers = decodeCastMembers(castMembers)
	rec.VideoLinks = decodeStringMap(videoLinks)
	rec.DownloadLinks = decodeDownloadLinks(downloadLinks)
	rec.TelegramLinks = decodeStringMap(telegram)
	rec.TorrentLinks = decodeStringMap(torrent)
	rec.Seasons = decodeSeasonsColumn(seasons)
	rec.Genres = decodeStringList(genres)
	rec.Screenshots720p = decodeStringList(shots720)
	rec.Screenshots1080p = decodeStringList(shots1080)
	rec.Screenshots2160p = decodeStringList(shots2160)
	rec.ScreenshotsTrailer = decodeStringList(shotsTrailer)
	rec.Subtitles = decodeSubtitles(subtitles)

	return &rec, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func encodeJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func decodeStringMap(b []byte) map[string]string {
	out := map[string]string{}
	if len(b) == 0 {
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return map[string]string{}
	}
	return out
}

func decodeDownloadLinks(b []byte) map[string]models.DownloadLink {
	out := map[string]models.DownloadLink{}
	if len(b) == 0 {
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return map[string]models.DownloadLink{}
	}
	return out
}

func decodeStringList(b []byte) []string {
	out := []string{}
	if len(b) == 0 {
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func decodeCastMembers(b []byte) []models.CastMember {
	out := []models.CastMember{}
	if len(b) == 0 {
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return []models.CastMember{}
	}
	return out
}

// decodeSeasons always yields a usable map for read-modify-write paths
func decodeSeasons(b []byte) map[string]*models.Season {
	out := decodeSeasonsColumn(b)
	if out == nil {
		return map[string]*models.Season{}
	}
	return out
}

// decodeSeasonsColumn keeps nil for movies (no seasons column content)
func decodeSeasonsColumn(b []byte) map[string]*models.Season {
	if len(b) == 0 {
		return nil
	}
	var out map[string]*models.Season
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

func decodeSubtitles(b []byte) models.SubtitleMap {
	out := models.SubtitleMap{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil || out == nil {
			out = models.SubtitleMap{}
		}
	}
	out.EnsureLanguages()
	return out
}
