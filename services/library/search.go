package library

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mozillazg/go-unidecode"

	"reelkeep/models"
)

// LocalMatch is one hit from a library search.
type LocalMatch struct {
	ID        string
	Title     string
	MediaType string // "movie" or "series"
	Rank      int    // lower ranks first
}

// SearchLocal fuzzy-matches the query against every stored title, original
// title included. Titles are transliterated to ASCII first so accented
// originals match unaccented queries.
func (s *Service) SearchLocal(query string) ([]LocalMatch, error) {
	query = normalizeTitle(query)
	if query == "" {
		return nil, nil
	}

	var matches []LocalMatch
	collect := func(rows []map[string]any, mediaType string) {
		for _, row := range rows {
			title := models.RowString(row, "title")
			rank := bestRank(query, title, models.RowString(row, "original_title"))
			if rank < 0 {
				continue
			}
			matches = append(matches, LocalMatch{
				ID:        models.RowString(row, "id"),
				Title:     title,
				MediaType: mediaType,
				Rank:      rank,
			})
		}
	}

	movies, err := s.repo.AllMoviesRaw()
	if err != nil {
		return nil, err
	}
	collect(movies, "movie")

	series, err := s.repo.AllSeriesRaw()
	if err != nil {
		return nil, err
	}
	collect(series, "series")

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Rank < matches[j].Rank })
	return matches, nil
}

// SearchRemote queries the catalog's multi-search.
func (s *Service) SearchRemote(ctx context.Context, query string) ([]models.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	return s.catalog.SearchMulti(ctx, query)
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// bestRank returns the lowest fuzzy rank of the query against the given
// titles, or -1 when none match.
func bestRank(query string, titles ...string) int {
	best := -1
	for _, t := range titles {
		if t == "" {
			continue
		}
		rank := fuzzy.RankMatch(query, normalizeTitle(t))
		if rank >= 0 && (best < 0 || rank < best) {
			best = rank
		}
	}
	return best
}
