package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeasonSource resolves the ordered season list of a series from storage.
// Implemented by the persistence layer.
type SeasonSource interface {
	SeriesSeasons(showID string) ([]*Season, error)
}

// Series is an aggregate media record. Scalar metadata plus derived status
// flags, owning a lazily-loaded ordered list of seasons with the same
// remote-vs-storage population rules as Season and its episodes.
type Series struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	OriginalTitle        string    `json:"original_title"`
	Overview             string    `json:"overview"`
	Language             *Language `json:"original_language"`
	Genres               []string  `json:"genres"`     // stored comma-joined
	CreatedBy            []string  `json:"created_by"` // stored comma-joined
	Status               string    `json:"status"`
	Tagline              string    `json:"tagline"`
	ReleaseDate          string    `json:"release_date"` // first air date
	LastAirDate          string    `json:"last_air_date"`
	NextAirDate          string    `json:"next_air_date"`
	LastEpisodeNumber    string    `json:"last_episode_number"` // "<season>.<episode>"
	InProduction         bool      `json:"in_production"`
	EpisodesNumber       int       `json:"episodes_number"`
	SeasonsNumber        int       `json:"seasons_number"`
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

	seasons Lazy[[]*Season]
	src     SeasonSource
}

// NewSeriesFromPayload builds a Series from a catalog record. The season list
// (already constructed, episodes included) is attached as authoritative
// remote data. soonDays is the look-ahead window for the soon_release flag.
func NewSeriesFromPayload(p *SeriesPayload, lang *Language, art Art, seasons []*Season, soonDays int, now time.Time) (*Series, error) {
	if p.ID == 0 {
		return nil, missingField("series", "id")
	}
	if p.Name == "" {
		return nil, missingField("series", "name")
	}

	s := &Series{
		ID:             strconv.Itoa(p.ID),
		Title:          p.Name,
		OriginalTitle:  p.OriginalName,
		Overview:       collapseSpaces(p.Overview),
		Language:       lang,
		Genres:         namedRefNames(p.Genres),
		CreatedBy:      namedRefNames(p.CreatedBy),
		Status:         p.Status,
		Tagline:        p.Tagline,
		ReleaseDate:    p.FirstAirDate,
		LastAirDate:    p.LastAirDate,
		InProduction:   p.InProduction,
		EpisodesNumber: p.NumberOfEpisodes,
		SeasonsNumber:  p.NumberOfSeasons,
		PosterPath:     art.PosterPath,
		BackdropPath:   art.BackdropPath,
		Color:          art.Color,
		AddDate:        now.Format(time.RFC3339),
	}
	if p.LastEpisodeToAir != nil {
		s.LastEpisodeNumber = fmt.Sprintf("%d.%d", p.LastEpisodeToAir.SeasonNumber, p.LastEpisodeToAir.EpisodeNumber)
	}
	if p.NextEpisodeToAir != nil {
		s.NextAirDate = p.NextEpisodeToAir.AirDate
	}
	// A series still in production goes on the notification list; an upcoming
	// episode inside the look-ahead window raises soon_release.
	s.ActivateNotification = p.InProduction
	if s.NextAirDate != "" {
		if next, err := time.Parse("2006-01-02", s.NextAirDate); err == nil {
			s.SoonRelease = next.Before(now.AddDate(0, 0, soonDays))
		}
	}
	s.seasons.SetRemote(seasons)
	return s, nil
}

// NewSeriesFromRow builds a Series from a persisted row; seasons load lazily
// through src on first access. Columns added by later schema versions may be
// absent and default.
func NewSeriesFromRow(row map[string]any, lang *Language, src SeasonSource) *Series {
	return &Series{
		ID:                   rowString(row, "id"),
		Title:                rowString(row, "title"),
		OriginalTitle:        rowString(row, "original_title"),
		Overview:             rowString(row, "overview"),
		Language:             lang,
		Genres:               splitList(rowString(row, "genres")),
		CreatedBy:            splitList(rowString(row, "created_by")),
		Status:               rowString(row, "status"),
		Tagline:              rowString(row, "tagline"),
		ReleaseDate:          rowString(row, "release_date"),
		LastAirDate:          rowString(row, "last_air_date"),
		NextAirDate:          rowString(row, "next_air_date"),
		LastEpisodeNumber:    rowString(row, "last_episode_number"),
		InProduction:         rowBool(row, "in_production"),
		EpisodesNumber:       rowInt(row, "episodes_number"),
		SeasonsNumber:        rowInt(row, "seasons_number"),
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
		src:                  src,
	}
}

// Seasons returns the season list, fetching it from storage on first access
// for storage-sourced series. Ordered by season number.
func (s *Series) Seasons() ([]*Season, error) {
	return s.seasons.Resolve(func() ([]*Season, error) {
		if s.src == nil {
			return nil, nil
		}
		return s.src.SeriesSeasons(s.ID)
	})
}

// SetSeasons pre-seeds the season cache.
func (s *Series) SetSeasons(seasons []*Season) {
	s.seasons.Set(seasons)
}

// InvalidateSeasons clears a storage-sourced season cache. Remote-sourced
// lists are unaffected.
func (s *Series) InvalidateSeasons() {
	s.seasons.Invalidate()
}

// SeasonsLoaded reports whether the season list is resolved.
func (s *Series) SeasonsLoaded() bool { return s.seasons.Loaded() }

// SeasonsFromRemote reports whether the season list came from the catalog.
func (s *Series) SeasonsFromRemote() bool { return s.seasons.FromRemote() }

// LanguageCode returns the ISO code of the original language, or empty.
func (s *Series) LanguageCode() string {
	if s.Language == nil {
		return ""
	}
	return s.Language.Code
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

// JoinedGenres returns the comma-joined storage form of the genre list.
func (s *Series) JoinedGenres() string { return joinList(s.Genres) }

// JoinedCreatedBy returns the comma-joined storage form of the creator list.
func (s *Series) JoinedCreatedBy() string { return joinList(s.CreatedBy) }
