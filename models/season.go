package models

import "strconv"

// EpisodeSource resolves the ordered episode list of one season from storage.
// Implemented by the persistence layer.
type EpisodeSource interface {
	SeasonEpisodes(showID string, seasonNumber int) ([]*Episode, error)
}

// Season owns a lazily-loaded ordered list of episodes. Constructed from a
// catalog payload the list is attached eagerly and never re-queried; from a
// persisted row it stays unloaded until the first Episodes call.
type Season struct {
	ID             string `json:"id"`
	Number         int    `json:"number"`
	Title          string `json:"title"`
	Overview       string `json:"overview"`
	EpisodesNumber int    `json:"episodes_number"`
	PosterPath     string `json:"poster_path"` // locator or bundled placeholder
	ShowID         string `json:"show_id"`

	episodes Lazy[[]*Episode]
	src      EpisodeSource
}

// NewSeasonFromPayload builds a Season with its episode list attached as
// authoritative remote data.
func NewSeasonFromPayload(p *SeasonPayload, showID, posterLocator string, episodes []*Episode) (*Season, error) {
	if p.ID == 0 {
		return nil, missingField("season", "id")
	}
	s := &Season{
		ID:             strconv.Itoa(p.ID),
		Number:         p.SeasonNumber,
		Title:          p.Name,
		Overview:       collapseSpaces(p.Overview),
		EpisodesNumber: p.EpisodeCount,
		PosterPath:     posterLocator,
		ShowID:         showID,
	}
	s.episodes.SetRemote(episodes)
	return s, nil
}

// NewSeasonFromRow builds a Season from a persisted row; episodes load
// lazily through src on first access.
func NewSeasonFromRow(row map[string]any, src EpisodeSource) *Season {
	return &Season{
		ID:             rowString(row, "id"),
		Number:         rowInt(row, "number"),
		Title:          rowString(row, "title"),
		Overview:       rowString(row, "overview"),
		EpisodesNumber: rowInt(row, "episodes_number"),
		PosterPath:     rowString(row, "poster_path"),
		ShowID:         rowString(row, "show_id"),
		src:            src,
	}
}

// Episodes returns the episode list, fetching it from storage on first access
// for storage-sourced seasons. The list is ordered by episode number.
func (s *Season) Episodes() ([]*Episode, error) {
	return s.episodes.Resolve(func() ([]*Episode, error) {
		if s.src == nil {
			return nil, nil
		}
		return s.src.SeasonEpisodes(s.ShowID, s.Number)
	})
}

// SetEpisodes pre-seeds the episode cache.
func (s *Season) SetEpisodes(eps []*Episode) {
	s.episodes.Set(eps)
}

// InvalidateEpisodes clears a storage-sourced episode cache so the next
// access re-queries. Remote-sourced lists are unaffected.
func (s *Season) InvalidateEpisodes() {
	s.episodes.Invalidate()
}

// EpisodesLoaded reports whether the episode list is resolved.
func (s *Season) EpisodesLoaded() bool { return s.episodes.Loaded() }

// EpisodesFromRemote reports whether the episode list came from the catalog.
func (s *Season) EpisodesFromRemote() bool { return s.episodes.FromRemote() }

// Equal compares the scalar fields of two seasons. Episode lists are
// excluded on purpose: equality must not force a lazy load.
func (s *Season) Equal(other *Season) bool {
	if other == nil {
		return false
	}
	return s.ID == other.ID &&
		s.Number == other.Number &&
		s.Title == other.Title &&
		s.Overview == other.Overview &&
		s.EpisodesNumber == other.EpisodesNumber &&
		s.PosterPath == other.PosterPath &&
		s.ShowID == other.ShowID
}
