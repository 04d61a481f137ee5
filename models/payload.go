package models

import "regexp"

// Remote catalog payloads. These mirror the documented wire shape of the
// catalog's "get record by id" and "get season episodes" responses; the
// constructors in this package validate the required-field contract of each.

// NamedRef is a reference object carrying only a display name (genres,
// creators).
type NamedRef struct {
	Name string `json:"name"`
}

// EpisodeRef points at an aired or upcoming episode of a series.
type EpisodeRef struct {
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// MoviePayload is the catalog record for a movie.
type MoviePayload struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	OriginalTitle    string     `json:"original_title"`
	OriginalLanguage string     `json:"original_language"`
	Overview         string     `json:"overview"`
	ReleaseDate      string     `json:"release_date"` // YYYY-MM-DD
	Status           string     `json:"status"`
	Tagline          string     `json:"tagline"`
	Budget           int        `json:"budget"`
	Revenue          int        `json:"revenue"`
	Runtime          int        `json:"runtime"`
	Genres           []NamedRef `json:"genres"`
	PosterPath       string     `json:"poster_path"`
	BackdropPath     string     `json:"backdrop_path"`
}

// SeriesPayload is the catalog record for a TV series, including its season
// summaries. Episodes are fetched per season via a separate call.
type SeriesPayload struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	OriginalLanguage string          `json:"original_language"`
	Overview         string          `json:"overview"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	Status           string          `json:"status"`
	Tagline          string          `json:"tagline"`
	InProduction     bool            `json:"in_production"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	Genres           []NamedRef      `json:"genres"`
	CreatedBy        []NamedRef      `json:"created_by"`
	LastEpisodeToAir *EpisodeRef     `json:"last_episode_to_air"`
	NextEpisodeToAir *EpisodeRef     `json:"next_episode_to_air"`
	Seasons          []SeasonPayload `json:"seasons"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
}

// SeasonPayload is the per-season summary embedded in a SeriesPayload.
type SeasonPayload struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
}

// EpisodePayload is one entry of a season's episode list.
type EpisodePayload struct {
	ID            int    `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	Runtime       int    `json:"runtime"`
	StillPath     string `json:"still_path"`
}

// LanguagePayload is one entry of the catalog's language configuration.
type LanguagePayload struct {
	Code        string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// SearchResult is one entry of a multi-search response. MediaType
// discriminates: "movie" entries carry Title, "tv" entries carry Name.
type SearchResult struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title,omitempty"`
	Name         string `json:"name,omitempty"`
	ReleaseDate  string `json:"release_date,omitempty"`
	FirstAirDate string `json:"first_air_date,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	Overview     string `json:"overview,omitempty"`
}

// DisplayTitle returns the title field appropriate to the media type.
func (r SearchResult) DisplayTitle() string {
	if r.MediaType == "movie" {
		return r.Title
	}
	return r.Name
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// collapseSpaces squashes runs of whitespace in catalog overview text.
func collapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}

func namedRefNames(refs []NamedRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}
