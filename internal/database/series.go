package database

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"reelkeep/models"
)

// AddSeries inserts a series with all its seasons and episodes in one
// transaction, so a failure partway leaves no orphaned child rows.
func (r *Repository) AddSeries(s *models.Series) error {
	seasons, err := s.Seasons()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO series (
		activate_notification, add_date, backdrop_path, color, created_by,
		episodes_number, genres, id, in_production, last_air_date,
		last_episode_number, manual, next_air_date, new_release,
		original_language, original_title, overview, poster_path,
		recent_change, release_date, seasons_number, soon_release, status,
		tagline, title, watched, notes
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		s.ActivateNotification, s.AddDate, s.BackdropPath, s.Color,
		s.JoinedCreatedBy(), s.EpisodesNumber, s.JoinedGenres(), s.ID,
		s.InProduction, s.LastAirDate, s.LastEpisodeNumber, s.Manual,
		s.NextAirDate, s.NewRelease, s.LanguageCode(), s.OriginalTitle,
		s.Overview, s.PosterPath, s.RecentChange, s.ReleaseDate,
		s.SeasonsNumber, s.SoonRelease, s.Status, s.Tagline, s.Title,
		s.Watched, s.Notes)
	if err != nil {
		return wrapInsertErr(err, "series", s.ID)
	}

	for _, season := range seasons {
		_, err = tx.Exec(`INSERT INTO seasons VALUES (?,?,?,?,?,?,?);`,
			season.EpisodesNumber, season.ID, season.Number, season.Overview,
			season.PosterPath, season.Title, season.ShowID)
		if err != nil {
			return wrapInsertErr(err, "seasons", season.ID)
		}

		episodes, err := season.Episodes()
		if err != nil {
			return err
		}
		for _, ep := range episodes {
			_, err = tx.Exec(`INSERT INTO episodes VALUES (?,?,?,?,?,?,?,?,?);`,
				ep.ID, ep.Number, ep.Overview, ep.Runtime, ep.SeasonNumber,
				ep.ShowID, ep.StillPath, ep.Title, ep.Watched)
			if err != nil {
				return wrapInsertErr(err, "episodes", ep.ID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.log.Debug("database.series.added", "id", s.ID, "title", s.Title)
	return nil
}

// GetSeriesByID retrieves a series. Its seasons stay unloaded until asked
// for. A missing id returns (nil, nil).
func (r *Repository) GetSeriesByID(id string) (*models.Series, error) {
	row, err := r.queryMap(`SELECT * FROM series WHERE id = ?;`, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		r.log.Error("database.series.missing", "id", id)
		return nil, nil
	}
	lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
	if err != nil {
		return nil, err
	}
	return models.NewSeriesFromRow(row, lang, r), nil
}

// GetAllSeries returns every series as a full model, seasons unloaded.
func (r *Repository) GetAllSeries() ([]*models.Series, error) {
	rows, err := r.queryMaps(`SELECT * FROM series;`)
	if err != nil {
		return nil, err
	}
	series := make([]*models.Series, 0, len(rows))
	for _, row := range rows {
		lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
		if err != nil {
			return nil, err
		}
		series = append(series, models.NewSeriesFromRow(row, lang, r))
	}
	return series, nil
}

// AllSeriesRaw returns every series row as a plain column map.
func (r *Repository) AllSeriesRaw() ([]map[string]any, error) {
	return r.queryMaps(`SELECT * FROM series;`)
}

// SeasonsRaw returns the season rows of a show as plain column maps.
func (r *Repository) SeasonsRaw(showID string) ([]map[string]any, error) {
	return r.queryMaps(
		`SELECT * FROM seasons WHERE show_id = ? ORDER BY number;`, showID)
}

// EpisodesRaw returns the episode rows of one season as plain column maps.
func (r *Repository) EpisodesRaw(showID string, seasonNumber int) ([]map[string]any, error) {
	return r.queryMaps(
		`SELECT * FROM episodes WHERE show_id = ? AND season_number = ? ORDER BY number;`,
		showID, seasonNumber)
}

// DeleteSeriesRow removes a series row and its cascaded children without
// touching image files. Archive import uses this for overwrite-by-id.
func (r *Repository) DeleteSeriesRow(id string) error {
	_, err := r.db.Exec(`DELETE FROM series WHERE id = ?;`, id)
	return err
}

// DeleteMovieRow removes a movie row without touching image files.
func (r *Repository) DeleteMovieRow(id string) error {
	_, err := r.db.Exec(`DELETE FROM movies WHERE id = ?;`, id)
	return err
}

// RecentSeriesRaw returns the limit most recently inserted series rows,
// newest first by rowid.
func (r *Repository) RecentSeriesRaw(limit int) ([]map[string]any, error) {
	return r.queryMaps(`SELECT * FROM series ORDER BY rowid DESC LIMIT ?;`, limit)
}

// SeriesCount returns the number of series in the table.
func (r *Repository) SeriesCount() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM series;`).Scan(&n)
	return n, err
}

// SeriesOnNotificationList returns every series with notifications enabled.
func (r *Repository) SeriesOnNotificationList() ([]*models.Series, error) {
	rows, err := r.queryMaps(`SELECT * FROM series WHERE activate_notification = 1;`)
	if err != nil {
		return nil, err
	}
	series := make([]*models.Series, 0, len(rows))
	for _, row := range rows {
		lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
		if err != nil {
			return nil, err
		}
		series = append(series, models.NewSeriesFromRow(row, lang, r))
	}
	return series, nil
}

// SeriesSeasons returns the seasons of a show ordered by season number,
// each with its episode list unloaded. Implements models.SeasonSource.
func (r *Repository) SeriesSeasons(showID string) ([]*models.Season, error) {
	rows, err := r.queryMaps(
		`SELECT * FROM seasons WHERE show_id = ? ORDER BY number;`, showID)
	if err != nil {
		return nil, err
	}
	seasons := make([]*models.Season, 0, len(rows))
	for _, row := range rows {
		seasons = append(seasons, models.NewSeasonFromRow(row, r))
	}
	return seasons, nil
}

// SeasonEpisodes returns the episodes of one season ordered by episode
// number. Implements models.EpisodeSource.
func (r *Repository) SeasonEpisodes(showID string, seasonNumber int) ([]*models.Episode, error) {
	rows, err := r.queryMaps(
		`SELECT * FROM episodes WHERE show_id = ? AND season_number = ? ORDER BY number;`,
		showID, seasonNumber)
	if err != nil {
		return nil, err
	}
	episodes := make([]*models.Episode, 0, len(rows))
	for _, row := range rows {
		episodes = append(episodes, models.NewEpisodeFromRow(row))
	}
	return episodes, nil
}

// GetEpisodeByID retrieves an episode. A missing id returns (nil, nil).
func (r *Repository) GetEpisodeByID(id string) (*models.Episode, error) {
	row, err := r.queryMap(`SELECT * FROM episodes WHERE id = ?;`, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		r.log.Error("database.episode.missing", "id", id)
		return nil, nil
	}
	return models.NewEpisodeFromRow(row), nil
}

// MarkEpisodeWatched sets the watched flag on one episode. The series-level
// flag is not derived here; callers decide when the whole show counts as
// watched.
func (r *Repository) MarkEpisodeWatched(id string, watched bool) error {
	_, err := r.db.Exec(`UPDATE episodes SET watched = ? WHERE id = ?;`, watched, id)
	if err == nil {
		r.log.Debug("database.episode.watched", "id", id, "watched", watched)
	}
	return err
}

// MarkSeriesWatched sets the watched flag on the series row. Marking
// watched also clears the new-release and soon-release flags.
func (r *Repository) MarkSeriesWatched(id string, watched bool) error {
	if watched {
		if err := r.SetNewReleaseStatus(KindSeries, id, false); err != nil {
			return err
		}
		if err := r.SetSoonReleaseStatus(KindSeries, id, false); err != nil {
			return err
		}
	}
	_, err := r.db.Exec(`UPDATE series SET watched = ? WHERE id = ?;`, watched, id)
	if err == nil {
		r.log.Debug("database.series.watched", "id", id, "watched", watched)
	}
	return err
}

// UpdateSeries replaces a series with freshly fetched data while keeping the
// user's state. Watched marks are captured per episode id before the old
// rows go away and restored onto matching episodes of the new data; an
// episode id with no prior mark is a new episode, which also resets the
// series-level watched flag. User-owned fields carry over from old.
func (r *Repository) UpdateSeries(old, updated *models.Series) error {
	watchedIDs := make(map[string]bool)
	oldSeasons, err := old.Seasons()
	if err != nil {
		return err
	}
	for _, season := range oldSeasons {
		episodes, err := season.Episodes()
		if err != nil {
			return err
		}
		for _, ep := range episodes {
			if ep.Watched {
				watchedIDs[ep.ID] = true
			}
		}
	}

	// The cascade removes seasons and episodes with the series row.
	// Image files stay: the new data reuses the same locators.
	if _, err := r.db.Exec(`DELETE FROM series WHERE id = ?;`, old.ID); err != nil {
		return err
	}

	updated.ActivateNotification = old.ActivateNotification
	updated.AddDate = old.AddDate
	updated.NewRelease = old.NewRelease
	updated.RecentChange = old.RecentChange
	updated.Watched = old.Watched
	updated.Notes = old.Notes

	newSeasons, err := updated.Seasons()
	if err != nil {
		return err
	}
	for _, season := range newSeasons {
		episodes, err := season.Episodes()
		if err != nil {
			return err
		}
		for _, ep := range episodes {
			if watchedIDs[ep.ID] {
				ep.Watched = true
			} else {
				ep.Watched = false
				// an unseen episode id means the show gained content
				updated.Watched = false
			}
		}
	}

	if err := r.AddSeries(updated); err != nil {
		return err
	}
	r.log.Debug("database.series.refreshed", "id", old.ID)
	return nil
}

// UpdateSeriesNotes saves the notes field alone.
func (r *Repository) UpdateSeriesNotes(id, notes string) error {
	_, err := r.db.Exec(`UPDATE series SET notes = ? WHERE id = ?;`, notes, id)
	return err
}

// DeleteSeries removes the series row (seasons and episodes cascade) along
// with its record-owned image files and per-show image directory. File
// removal is best effort.
func (r *Repository) DeleteSeries(id string) error {
	series, err := r.GetSeriesByID(id)
	if err != nil {
		return err
	}
	if series == nil {
		return ErrNotFound
	}

	r.removeLocalFile(series.BackdropPath)
	r.removeLocalFile(series.PosterPath)

	showDir := filepath.Join(r.dataDir, "series", id)
	if ok, _ := afero.DirExists(r.fs, showDir); ok {
		if err := r.fs.RemoveAll(showDir); err != nil {
			r.log.Warn("database.series.dir_remove_failed", "id", id, "error", err)
		}
	}

	_, err = r.db.Exec(`DELETE FROM series WHERE id = ?;`, id)
	if err == nil {
		r.log.Debug("database.series.deleted", "id", id)
	}
	return err
}

// removeLocalFile deletes the file behind a file:// locator. Non-file
// locators and missing files are ignored.
func (r *Repository) removeLocalFile(locator string) {
	if !strings.HasPrefix(locator, "file://") {
		return
	}
	path := strings.TrimPrefix(locator, "file://")
	if err := r.fs.Remove(path); err != nil {
		r.log.Debug("database.file.remove_skipped", "path", path, "error", err)
	}
}
