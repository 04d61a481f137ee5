package database

import (
	"reelkeep/models"
)

// AddMovie inserts a movie. Inserting an id already in the table returns a
// DuplicateKeyError.
func (r *Repository) AddMovie(m *models.Movie) error {
	_, err := r.db.Exec(`INSERT INTO movies (
		activate_notification, add_date, backdrop_path, budget, color, genres,
		id, manual, new_release, original_language, original_title, overview,
		poster_path, recent_change, release_date, revenue, runtime,
		soon_release, status, tagline, title, watched, notes
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		m.ActivateNotification, m.AddDate, m.BackdropPath, m.Budget, m.Color,
		m.JoinedGenres(), m.ID, m.Manual, m.NewRelease, m.LanguageCode(),
		m.OriginalTitle, m.Overview, m.PosterPath, m.RecentChange,
		m.ReleaseDate, m.Revenue, m.Runtime, m.SoonRelease, m.Status,
		m.Tagline, m.Title, m.Watched, m.Notes)
	if err != nil {
		return wrapInsertErr(err, "movies", m.ID)
	}
	r.log.Debug("database.movie.added", "id", m.ID, "title", m.Title)
	return nil
}

// GetMovieByID retrieves a movie. A missing id is not an error: it returns
// (nil, nil) and logs the miss.
func (r *Repository) GetMovieByID(id string) (*models.Movie, error) {
	row, err := r.queryMap(`SELECT * FROM movies WHERE id = ?;`, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		r.log.Error("database.movie.missing", "id", id)
		return nil, nil
	}
	lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
	if err != nil {
		return nil, err
	}
	return models.NewMovieFromRow(row, lang), nil
}

// GetAllMovies returns every movie as a full model.
func (r *Repository) GetAllMovies() ([]*models.Movie, error) {
	rows, err := r.queryMaps(`SELECT * FROM movies;`)
	if err != nil {
		return nil, err
	}
	movies := make([]*models.Movie, 0, len(rows))
	for _, row := range rows {
		lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
		if err != nil {
			return nil, err
		}
		movies = append(movies, models.NewMovieFromRow(row, lang))
	}
	return movies, nil
}

// AllMoviesRaw returns every movie row as a plain column map, skipping model
// construction. List views build their cells straight from these.
func (r *Repository) AllMoviesRaw() ([]map[string]any, error) {
	return r.queryMaps(`SELECT * FROM movies;`)
}

// RecentMoviesRaw returns the limit most recently inserted movie rows.
// Ordered by rowid so ties on add_date still come back newest first.
func (r *Repository) RecentMoviesRaw(limit int) ([]map[string]any, error) {
	return r.queryMaps(`SELECT * FROM movies ORDER BY rowid DESC LIMIT ?;`, limit)
}

// MovieCount returns the number of movies in the table.
func (r *Repository) MovieCount() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM movies;`).Scan(&n)
	return n, err
}

// MoviesOnNotificationList returns every movie with notifications enabled.
func (r *Repository) MoviesOnNotificationList() ([]*models.Movie, error) {
	rows, err := r.queryMaps(`SELECT * FROM movies WHERE activate_notification = 1;`)
	if err != nil {
		return nil, err
	}
	movies := make([]*models.Movie, 0, len(rows))
	for _, row := range rows {
		lang, err := r.GetLanguageByCode(models.RowString(row, "original_language"))
		if err != nil {
			return nil, err
		}
		movies = append(movies, models.NewMovieFromRow(row, lang))
	}
	return movies, nil
}

// MarkMovieWatched sets the watched flag. Marking watched also clears the
// new-release and soon-release flags so the badges disappear together.
func (r *Repository) MarkMovieWatched(id string, watched bool) error {
	if watched {
		if err := r.SetNewReleaseStatus(KindMovie, id, false); err != nil {
			return err
		}
		if err := r.SetSoonReleaseStatus(KindMovie, id, false); err != nil {
			return err
		}
	}
	_, err := r.db.Exec(`UPDATE movies SET watched = ? WHERE id = ?;`, watched, id)
	if err == nil {
		r.log.Debug("database.movie.watched", "id", id, "watched", watched)
	}
	return err
}

// UpdateMovie overwrites old's metadata columns with new's values. The
// user-owned fields (notes, watched state, add date) keep old's values; the
// row id never changes.
func (r *Repository) UpdateMovie(old, updated *models.Movie) error {
	_, err := r.db.Exec(`UPDATE movies SET
		backdrop_path = ?, budget = ?, color = ?, genres = ?, manual = ?,
		original_language = ?, original_title = ?, overview = ?,
		poster_path = ?, release_date = ?, revenue = ?, runtime = ?,
		status = ?, tagline = ?, title = ?, notes = ?
		WHERE id = ?;`,
		updated.BackdropPath, updated.Budget, updated.Color,
		updated.JoinedGenres(), updated.Manual, updated.LanguageCode(),
		updated.OriginalTitle, updated.Overview, updated.PosterPath,
		updated.ReleaseDate, updated.Revenue, updated.Runtime,
		updated.Status, updated.Tagline, updated.Title,
		old.Notes, old.ID)
	if err == nil {
		r.log.Debug("database.movie.updated", "id", old.ID)
	}
	return err
}

// UpdateMovieNotes saves the notes field alone.
func (r *Repository) UpdateMovieNotes(id, notes string) error {
	_, err := r.db.Exec(`UPDATE movies SET notes = ? WHERE id = ?;`, notes, id)
	return err
}

// DeleteMovie removes the movie row and any record-owned image files. File
// removal is best effort; a locator pointing at a missing file does not
// block the delete.
func (r *Repository) DeleteMovie(id string) error {
	movie, err := r.GetMovieByID(id)
	if err != nil {
		return err
	}
	if movie == nil {
		return ErrNotFound
	}

	r.removeLocalFile(movie.BackdropPath)
	r.removeLocalFile(movie.PosterPath)

	_, err = r.db.Exec(`DELETE FROM movies WHERE id = ?;`, id)
	if err == nil {
		r.log.Debug("database.movie.deleted", "id", id)
	}
	return err
}
