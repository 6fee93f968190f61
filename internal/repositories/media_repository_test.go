package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelanka/catalog-service/internal/models"
)

// setupTestRepository creates a repository with a mock database
func setupTestRepository(t *testing.T) (*mediaRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewMediaRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var mediaRowColumns = []string{
	"id", "type", "title", "description", "thumbnail", "backdrop", "release_date", "language",
	"rating", "status", "cast_members", "video_links", "download_links", "telegram_links", "torrent_links",
	"total_seasons", "seasons", "genres", "file_type", "source_type", "youtube_trailer",
	"screenshots_720p", "screenshots_1080p", "screenshots_2160p", "screenshots_trailer", "subtitles",
}

// movieRowValues is a full scan-order row for a movie record
func movieRowValues(id int64, title string) []driver.Value {
	return []driver.Value{
		id, "movie", title, "A film.", "https://img.example/t.jpg", nil, "2024-05-01T00:00:00", "English",
		7.5, "Released",
		[]byte(`[{"name":"Ana","character":"Lead","image":null}]`),
		[]byte(`{"video_720p":"https://v.example/720"}`),
		[]byte(`{"download_720p":{"url":"https://d.example/720","file_type":"bluray"}}`),
		[]byte(`{}`), []byte(`{}`),
		nil, nil, []byte(`["Action","Drama"]`), "bluray", "original", "",
		[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`),
		[]byte(`{"english":["https://s.example/en.srt"]}`),
	}
}

func TestNewMediaRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMediaRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMediaRepository_List(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success two records",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(mediaRowColumns).
					AddRow(movieRowValues(2, "Second")...).
					AddRow(movieRowValues(1, "First")...)
				mock.ExpectQuery(`SELECT (.+) FROM media ORDER BY id DESC`).
					WillReturnRows(rows)
			},
			expectedError: false,
			expectedCount: 2,
		},
		{
			name: "empty table",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM media ORDER BY id DESC`).
					WillReturnRows(sqlmock.NewRows(mediaRowColumns))
			},
			expectedError: false,
			expectedCount: 0,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM media ORDER BY id DESC`).
					WillReturnError(errors.New("connection lost"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			records, err := repo.List(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, records, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMediaRepository_GetByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(mediaRowColumns).AddRow(movieRowValues(7, "The Test")...)
		mock.ExpectQuery(`SELECT (.+) FROM media WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		rec, err := repo.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), rec.ID)
		assert.Equal(t, models.MediaTypeMovie, rec.Type)
		assert.Equal(t, "The Test", rec.Title)
		require.NotNil(t, rec.ReleaseDate)
		assert.Equal(t, "2024-05-01", *rec.ReleaseDate)
		require.NotNil(t, rec.Rating)
		assert.Equal(t, 7.5, *rec.Rating)
		require.Len(t, rec.CastMembers, 1)
		assert.Equal(t, "Ana", rec.CastMembers[0].Name)
		assert.Equal(t, map[string]string{"video_720p": "https://v.example/720"}, rec.VideoLinks)
		assert.Equal(t, models.DownloadLink{URL: "https://d.example/720", FileType: "bluray"},
			rec.DownloadLinks["download_720p"])
		assert.Equal(t, []string{"Action", "Drama"}, rec.Genres)
		assert.Nil(t, rec.Seasons)
		assert.Equal(t, []string{"https://s.example/en.srt"}, rec.Subtitles["english"])
		assert.Equal(t, []string{}, rec.Subtitles["sinhala"])

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM media WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		rec, err := repo.GetByID(context.Background(), 99)

		assert.Nil(t, rec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt json column degrades to empty value", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		values := movieRowValues(3, "Broken")
		values[11] = []byte(`{broken`) // video_links
		rows := sqlmock.NewRows(mediaRowColumns).AddRow(values...)
		mock.ExpectQuery(`SELECT (.+) FROM media WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(rows)

		rec, err := repo.GetByID(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{}, rec.VideoLinks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMediaRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`INSERT INTO media`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		rec := &models.MediaRecord{Type: models.MediaTypeMovie, Title: "New"}
		id, err := repo.Create(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`INSERT INTO media`).
			WillReturnError(errors.New("constraint violation"))

		id, err := repo.Create(context.Background(), &models.MediaRecord{Title: "New"})

		assert.Error(t, err)
		assert.Zero(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMediaRepository_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE media SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 7, &models.MediaRecord{Title: "Renamed"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE media SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), 99, &models.MediaRecord{Title: "Renamed"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMediaRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM media WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM media WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 99)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// seasonsArg decodes the seasons JSON argument and runs structural checks
type seasonsArg struct {
	t     *testing.T
	check func(t *testing.T, seasons map[string]*models.Season)
}

func (a seasonsArg) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if !ok {
		return false
	}
	var seasons map[string]*models.Season
	if err := json.Unmarshal(b, &seasons); err != nil {
		return false
	}
	a.check(a.t, seasons)
	return true
}

func TestMediaRepository_AppendEpisode(t *testing.T) {
	selectSeasons := `SELECT seasons FROM media WHERE id = \$1 AND type = 'tv'`
	updateSeasons := `UPDATE media SET seasons = \$1 WHERE id = \$2`

	t.Run("creates season bucket on first episode", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"seasons"}).AddRow(nil))

		matcher := seasonsArg{t: t, check: func(t *testing.T, seasons map[string]*models.Season) {
			season := seasons["season_1"]
			require.NotNil(t, season)
			assert.Equal(t, 1, season.SeasonNumber.Int())
			assert.Equal(t, 1, season.TotalEpisodes)
			require.Len(t, season.Episodes, 1)
			assert.Equal(t, "Pilot", season.Episodes[0].EpisodeName)
			assert.Equal(t, []string{}, season.Episodes[0].Subtitles["english"])
		}}
		mock.ExpectExec(updateSeasons).
			WithArgs(matcher, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		episode := &models.Episode{EpisodeNumber: 1, EpisodeName: "Pilot"}
		err := repo.AppendEpisode(context.Background(), 5, 1, episode)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("appends to existing bucket and recounts", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		existing := `{"season_1": {"season_number": 1, "total_episodes": 1, "episodes": [{"episode_number": 1, "episode_name": "Pilot"}]}}`
		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"seasons"}).AddRow([]byte(existing)))

		matcher := seasonsArg{t: t, check: func(t *testing.T, seasons map[string]*models.Season) {
			season := seasons["season_1"]
			require.NotNil(t, season)
			assert.Equal(t, 2, season.TotalEpisodes)
			require.Len(t, season.Episodes, 2)
			assert.Equal(t, 2, season.Episodes[1].EpisodeNumber.Int())
		}}
		mock.ExpectExec(updateSeasons).
			WithArgs(matcher, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		episode := &models.Episode{EpisodeNumber: 2, EpisodeName: "Two"}
		err := repo.AppendEpisode(context.Background(), 5, 1, episode)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tv series not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(8)).
			WillReturnError(sql.ErrNoRows)

		err := repo.AppendEpisode(context.Background(), 8, 1, &models.Episode{EpisodeNumber: 1})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tv series not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMediaRepository_ReplaceSubtitles(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE media SET subtitles = \$1 WHERE id = \$2`).
			WithArgs([]byte(`{"english":["https://s.example/en.srt"],"sinhala":[]}`), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		subs := models.SubtitleMap{"english": []string{"https://s.example/en.srt"}}
		err := repo.ReplaceSubtitles(context.Background(), 7, subs)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE media SET subtitles = \$1 WHERE id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReplaceSubtitles(context.Background(), 99, models.SubtitleMap{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMediaRepository_ReplaceEpisodeSubtitles(t *testing.T) {
	selectSeasons := `SELECT seasons FROM media WHERE id = \$1 AND type = 'tv'`
	existing := `{"season_1": {"season_number": 1, "total_episodes": 2, "episodes": [{"episode_number": 1, "episode_name": "Pilot"}, {"episode_number": 2, "episode_name": "Two"}]}}`

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"seasons"}).AddRow([]byte(existing)))

		matcher := seasonsArg{t: t, check: func(t *testing.T, seasons map[string]*models.Season) {
			season := seasons["season_1"]
			require.NotNil(t, season)
			require.Len(t, season.Episodes, 2)
			assert.Equal(t, []string{"https://s.example/si.srt"}, season.Episodes[1].Subtitles["sinhala"])
			assert.Equal(t, []string{}, season.Episodes[1].Subtitles["english"])
		}}
		mock.ExpectExec(`UPDATE media SET seasons = \$1 WHERE id = \$2`).
			WithArgs(matcher, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		subs := models.SubtitleMap{"sinhala": []string{"https://s.example/si.srt"}}
		err := repo.ReplaceEpisodeSubtitles(context.Background(), 5, 1, 2, subs)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("season not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"seasons"}).AddRow([]byte(`{}`)))

		err := repo.ReplaceEpisodeSubtitles(context.Background(), 5, 3, 1, models.SubtitleMap{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "season not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("episode not found", func(t *testing.T) {
		repo, mock, cleanup := setupTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(selectSeasons).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"seasons"}).AddRow([]byte(existing)))

		err := repo.ReplaceEpisodeSubtitles(context.Background(), 5, 1, 9, models.SubtitleMap{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "episode not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
