package models

import (
	"strconv"
	"time"
)

// Movie is an aggregate media record without child collections.
type Movie struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	OriginalTitle        string    `json:"original_title"`
	Overview             string    `json:"overview"`
	Language             *Language `json:"original_language"`
	Genres               []string  `json:"genres"` // stored comma-joined
	Status               string    `json:"status"`
	Tagline              string    `json:"tagline"`
	ReleaseDate          string    `json:"release_date"`
	Budget               int       `json:"budget"`
	Revenue              int       `json:"revenue"`
	Runtime              int       `json:"runtime"`
	PosterPath           string    `json:"poster_path"`
	BackdropPath         string    `json:"backdrop_path"`
	Color                bool      `json:"color"`
	AddDate              string    `json:"add_date"`
	Manual               bool      `json:"manual"`
	Notes                string    `json:"notes"`
	Watched              bool      `json:"watched"`
	NewRelease           bool      `json:"new_release"`
	SoonRelease          bool      `json:"soon_release"`
	RecentChange         bool      `json:"recent_change"`
	ActivateNotification bool      `json:"activate_notification"`
}

// NewMovieFromPayload builds a Movie from a catalog record. soonDays is the
// look-ahead window for the soon_release flag on unreleased movies.
func NewMovieFromPayload(p *MoviePayload, lang *Language, art Art, soonDays int, now time.Time) (*Movie, error) {
	if p.ID == 0 {
		return nil, missingField("movie", "id")
	}
	if p.Title == "" {
		return nil, missingField("movie", "title")
	}

	m := &Movie{
		ID:            strconv.Itoa(p.ID),
		Title:         p.Title,
		OriginalTitle: p.OriginalTitle,
		Overview:      collapseSpaces(p.Overview),
		Language:      lang,
		Genres:        namedRefNames(p.Genres),
		Status:        p.Status,
		Tagline:       p.Tagline,
		ReleaseDate:   p.ReleaseDate,
		Budget:        p.Budget,
		Revenue:       p.Revenue,
		Runtime:       p.Runtime,
		PosterPath:    art.PosterPath,
		BackdropPath:  art.BackdropPath,
		Color:         art.Color,
		AddDate:       now.Format(time.RFC3339),
	}
	if m.ReleaseDate != "" {
		if release, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil && release.After(now) {
			// Unreleased movies go on the notification list; soon_release
			// raises once the date enters the look-ahead window.
			m.ActivateNotification = true
			m.SoonRelease = release.Before(now.AddDate(0, 0, soonDays))
		}
	}
	return m, nil
}

// NewMovieFromRow builds a Movie from a persisted row. Columns added by later
// schema versions may be absent and default.
func NewMovieFromRow(row map[string]any, lang *Language) *Movie {
	return &Movie{
		ID:                   rowString(row, "id"),
		Title:                rowString(row, "title"),
		OriginalTitle:        rowString(row, "original_title"),
		Overview:             rowString(row, "overview"),
		Language:             lang,
		Genres:               splitList(rowString(row, "genres")),
		Status:               rowString(row, "status"),
		Tagline:              rowString(row, "tagline"),
		ReleaseDate:          rowString(row, "release_date"),
		Budget:               rowInt(row, "budget"),
		Revenue:              rowInt(row, "revenue"),
		Runtime:              rowInt(row, "runtime"),
		PosterPath:           rowString(row, "poster_path"),
		BackdropPath:         rowString(row, "backdrop_path"),
		Color:                rowBool(row, "color"),
		AddDate:              rowString(row, "add_date"),
		Manual:               rowBool(row, "manual"),
		Notes:                rowString(row, "notes"),
		Watched:              rowBool(row, "watched"),
		NewRelease:           rowBool(row, "new_release"),
		SoonRelease:          rowBool(row, "soon_release"),
		RecentChange:         rowBool(row, "recent_change"),
		ActivateNotification: rowBool(row, "activate_notification"),
	}
}

// LanguageCode returns the ISO code of the original language, or empty.
func (m *Movie) LanguageCode() string {
	if m.Language == nil {
		return ""
	}
	return m.Language.Code
}

// JoinedGenres returns the comma-joined storage form of the genre list.
func (m *Movie) JoinedGenres() string { return joinList(m.Genres) }
