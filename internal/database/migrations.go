package database

import (
	"fmt"
	"strings"
	"time"

	"reelkeep/internal/badge"
	"reelkeep/models"
)

// Migrations are additive only: columns are added with ALTER TABLE when
// missing, never dropped or retyped. Presence is detected per column via
// PRAGMA table_info, so a database from any prior release converges to the
// current layout in one pass.

type columnMigration struct {
	name string
	ddl  string // type and DEFAULT clause
}

var seriesMigrations = []columnMigration{
	{"notes", "TEXT DEFAULT ''"},
	{"last_air_date", "TEXT DEFAULT ''"},
	{"color", "BOOLEAN DEFAULT (0)"},
	{"new_release", "BOOLEAN DEFAULT (0)"},
	{"recent_change", "BOOLEAN DEFAULT (0)"},
	{"next_air_date", "TEXT DEFAULT ''"},
	{"soon_release", "BOOLEAN DEFAULT (0)"},
	{"activate_notification", "BOOLEAN DEFAULT (0)"},
	{"last_episode_number", "TEXT DEFAULT ('')"},
}

var movieMigrations = []columnMigration{
	{"notes", "TEXT DEFAULT ''"},
	{"color", "BOOLEAN DEFAULT (0)"},
	{"recent_change", "BOOLEAN DEFAULT (0)"},
	{"activate_notification", "BOOLEAN DEFAULT (0)"},
	{"new_release", "BOOLEAN DEFAULT (0)"},
	{"soon_release", "BOOLEAN DEFAULT (0)"},
}

// ApplyMigrations brings both tables up to the current column set. The
// backfill pass only runs when at least one column was actually added, so a
// second call on an up-to-date database is a no-op.
func (r *Repository) ApplyMigrations() error {
	added, err := r.migrateTable("series", seriesMigrations)
	if err != nil {
		return err
	}
	if len(added) > 0 {
		r.log.Info("database.migration.series", "columns", strings.Join(added, ","))
		if err := r.backfillSeries(); err != nil {
			return err
		}
	}

	added, err = r.migrateTable("movies", movieMigrations)
	if err != nil {
		return err
	}
	if len(added) > 0 {
		r.log.Info("database.migration.movies", "columns", strings.Join(added, ","))
		if err := r.backfillMovies(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) migrateTable(table string, migrations []columnMigration) ([]string, error) {
	cols, err := r.tableColumns(table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}

	var added []string
	for _, m := range migrations {
		if have[m.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD %s %s;", table, m.name, m.ddl)
		if _, err := r.db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("add column %s.%s: %w", table, m.name, err)
		}
		added = append(added, m.name)
	}
	return added, nil
}

// backfillSeries recomputes the derived fields the new columns carry:
// the badge color from the stored poster, the series watched flag from its
// episodes, and the notification opt-in from the production status.
func (r *Repository) backfillSeries() error {
	rows, err := r.queryMaps("SELECT * FROM series;")
	if err != nil {
		return err
	}
	for _, row := range rows {
		id := models.RowString(row, "id")
		poster := models.RowString(row, "poster_path")

		color := false
		if strings.HasPrefix(poster, "file://") {
			color = badge.ColorFile(r.fs, poster)
		}

		watched, err := r.allEpisodesWatched(id)
		if err != nil {
			return err
		}

		activate := models.RowBool(row, "in_production")

		_, err = r.db.Exec(
			`UPDATE series SET activate_notification = ?, color = ?, watched = ? WHERE id = ?;`,
			activate, color, watched, id)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) backfillMovies() error {
	rows, err := r.queryMaps("SELECT * FROM movies;")
	if err != nil {
		return err
	}
	now := time.Now()
	for _, row := range rows {
		id := models.RowString(row, "id")
		poster := models.RowString(row, "poster_path")

		color := false
		if strings.HasPrefix(poster, "file://") {
			color = badge.ColorFile(r.fs, poster)
		}

		activate := false
		if rd := models.RowString(row, "release_date"); rd != "" {
			if t, err := time.Parse("2006-01-02", rd); err == nil {
				activate = t.After(now)
			}
		}

		_, err = r.db.Exec(
			`UPDATE movies SET activate_notification = ?, color = ? WHERE id = ?;`,
			activate, color, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// allEpisodesWatched reports whether every episode of the show is watched.
// A show with no episodes counts as watched, matching the AND over an empty
// set.
func (r *Repository) allEpisodesWatched(showID string) (bool, error) {
	var unwatched int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM episodes WHERE show_id = ? AND (watched IS NULL OR watched = 0);`,
		showID).Scan(&unwatched)
	if err != nil {
		return false, err
	}
	return unwatched == 0, nil
}
