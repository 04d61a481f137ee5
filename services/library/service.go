// Package library orchestrates the catalog, the image store and the
// persistence layer: ingesting records, refreshing them against the remote
// source without losing user state, manual entries and local search.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"reelkeep/internal/badge"
	"reelkeep/internal/database"
	"reelkeep/models"
	"reelkeep/services/catalog"
	"reelkeep/services/images"
)

// ArtStore downloads catalog art into the managed data tree.
type ArtStore interface {
	Poster(ctx context.Context, url string) string
	Backdrop(ctx context.Context, url string) string
	SeasonArt(ctx context.Context, url, showID string, seasonNumber int) string
}

// Config tunes ingestion behavior.
type Config struct {
	// ImageBaseURL prefixes the relative art paths the catalog returns.
	ImageBaseURL string
	// SoonDaysMovies and SoonDaysSeries bound the "releasing soon" windows.
	SoonDaysMovies int
	SoonDaysSeries int
	FetchTimeout   time.Duration
}

// Service is the library orchestrator.
type Service struct {
	repo    *database.Repository
	catalog catalog.Provider
	store   ArtStore
	cfg     Config
	log     *slog.Logger

	now func() time.Time
}

// New builds a library service.
func New(repo *database.Repository, provider catalog.Provider, store ArtStore, cfg Config, logger *slog.Logger) *Service {
	if cfg.SoonDaysMovies <= 0 {
		cfg.SoonDaysMovies = 30
	}
	if cfg.SoonDaysSeries <= 0 {
		cfg.SoonDaysSeries = 7
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		catalog: provider,
		store:   store,
		cfg:     cfg,
		log:     logger,
		now:     time.Now,
	}
}

func (s *Service) imageURL(path string) string {
	if path == "" {
		return ""
	}
	return s.cfg.ImageBaseURL + path
}

// language resolves a catalog code against the lookup table, inserting it on
// the fly for codes the seed pass missed.
func (s *Service) language(code string) (*models.Language, error) {
	lang, err := s.repo.GetLanguageByCode(code)
	if err != nil {
		return nil, err
	}
	if lang != nil {
		return lang, nil
	}
	lang, err = models.NewLanguage(code, code)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLanguage(lang); err != nil {
		return nil, err
	}
	return lang, nil
}

// SeedLanguages fills the language lookup table from the catalog. Safe to
// run on every startup; existing codes are kept.
func (s *Service) SeedLanguages(ctx context.Context) error {
	payloads, err := s.catalog.Languages(ctx)
	if err != nil {
		return err
	}
	for _, p := range payloads {
		name := p.EnglishName
		if name == "" {
			name = p.Name
		}
		lang, err := models.NewLanguage(p.Code, name)
		if err != nil {
			s.log.Warn("library.language.skipped", "code", p.Code, "error", err)
			continue
		}
		if err := s.repo.AddLanguage(lang); err != nil {
			return err
		}
	}
	s.log.Info("library.languages.seeded", "count", len(payloads))
	return nil
}

// AddMovie fetches a movie from the catalog, downloads its art and persists
// it. The poster's badge color is computed once here.
func (s *Service) AddMovie(ctx context.Context, id int) (*models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	p, err := s.catalog.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	lang, err := s.language(p.OriginalLanguage)
	if err != nil {
		return nil, err
	}

	art := s.downloadArt(ctx, p.PosterPath, p.BackdropPath)
	movie, err := models.NewMovieFromPayload(p, lang, art, s.cfg.SoonDaysMovies, s.now())
	if err != nil {
		return nil, err
	}
	movie.AddDate = s.now().Format(time.RFC3339)

	if err := s.repo.AddMovie(movie); err != nil {
		return nil, err
	}
	s.log.Info("library.movie.added", "id", movie.ID, "title", movie.Title)
	return movie, nil
}

// AddSeries fetches a series with all its seasons and episodes and persists
// the whole tree. Season posters land in the per-show directory; episode
// stills keep their remote locators and stream on demand.
func (s *Service) AddSeries(ctx context.Context, id int) (*models.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	series, err := s.buildSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	series.AddDate = s.now().Format(time.RFC3339)

	if err := s.repo.AddSeries(series); err != nil {
		return nil, err
	}
	s.log.Info("library.series.added", "id", series.ID, "title", series.Title)
	return series, nil
}

// buildSeries assembles a full Series model from the catalog.
func (s *Service) buildSeries(ctx context.Context, id int) (*models.Series, error) {
	p, err := s.catalog.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	lang, err := s.language(p.OriginalLanguage)
	if err != nil {
		return nil, err
	}

	showID := strconv.Itoa(p.ID)
	seasons := make([]*models.Season, 0, len(p.Seasons))
	for i := range p.Seasons {
		sp := &p.Seasons[i]
		eps, err := s.catalog.SeasonEpisodes(ctx, p.ID, sp.SeasonNumber)
		if err != nil {
			return nil, err
		}
		episodes := make([]*models.Episode, 0, len(eps))
		for j := range eps {
			ep, err := models.NewEpisodeFromPayload(&eps[j], showID, sp.SeasonNumber, s.imageURL(eps[j].StillPath))
			if err != nil {
				return nil, err
			}
			episodes = append(episodes, ep)
		}

		poster := images.PlaceholderLocator
		if sp.PosterPath != "" {
			poster = s.store.SeasonArt(ctx, s.imageURL(sp.PosterPath), showID, sp.SeasonNumber)
		}
		season, err := models.NewSeasonFromPayload(sp, showID, poster, episodes)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, season)
	}

	art := s.downloadArt(ctx, p.PosterPath, p.BackdropPath)
	return models.NewSeriesFromPayload(p, lang, art, seasons, s.cfg.SoonDaysSeries, s.now())
}

// downloadArt fetches poster and backdrop and classifies the poster corner
// for the badge overlay.
func (s *Service) downloadArt(ctx context.Context, posterPath, backdropPath string) models.Art {
	poster := s.store.Poster(ctx, s.imageURL(posterPath))
	backdrop := s.store.Backdrop(ctx, s.imageURL(backdropPath))
	return models.Art{
		PosterPath:   poster,
		BackdropPath: backdrop,
		Color:        badge.ColorFile(s.repo.FS(), poster),
	}
}

// RefreshMovie re-fetches a movie's metadata, keeping the stored art and
// the user-owned fields.
func (s *Service) RefreshMovie(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	old, err := s.repo.GetMovieByID(id)
	if err != nil {
		return err
	}
	if old == nil {
		return database.ErrNotFound
	}
	catalogID, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("movie %s is not a catalog record", id)
	}

	p, err := s.catalog.GetMovie(ctx, catalogID)
	if err != nil {
		return err
	}
	lang, err := s.language(p.OriginalLanguage)
	if err != nil {
		return err
	}

	art := models.Art{
		PosterPath:   old.PosterPath,
		BackdropPath: old.BackdropPath,
		Color:        old.Color,
	}
	updated, err := models.NewMovieFromPayload(p, lang, art, s.cfg.SoonDaysMovies, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.UpdateMovie(old, updated); err != nil {
		return err
	}
	s.log.Info("library.movie.refreshed", "id", id)
	return nil
}

// RefreshSeries re-fetches a series, keeping watched marks and user fields
// across the replace.
func (s *Service) RefreshSeries(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	old, err := s.repo.GetSeriesByID(id)
	if err != nil {
		return err
	}
	if old == nil {
		return database.ErrNotFound
	}
	catalogID, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("series %s is not a catalog record", id)
	}

	updated, err := s.buildSeries(ctx, catalogID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSeries(old, updated); err != nil {
		return err
	}
	s.log.Info("library.series.refreshed", "id", id)
	return nil
}

// AddManualMovie persists a user-created movie under a fresh manual id.
func (s *Service) AddManualMovie(movie *models.Movie) error {
	id, err := s.repo.NextManualID(database.ManualMovies)
	if err != nil {
		return err
	}
	movie.ID = id
	movie.Manual = true
	movie.AddDate = s.now().Format(time.RFC3339)
	if movie.PosterPath == "" {
		movie.PosterPath = images.PlaceholderLocator
	}
	if err := s.repo.AddMovie(movie); err != nil {
		return err
	}
	s.log.Info("library.movie.manual_added", "id", id, "title", movie.Title)
	return nil
}

// AddManualSeries persists a user-created series, allocating manual ids for
// the series and each season and episode.
func (s *Service) AddManualSeries(series *models.Series) error {
	id, err := s.repo.NextManualID(database.ManualSeries)
	if err != nil {
		return err
	}
	series.ID = id
	series.Manual = true
	series.AddDate = s.now().Format(time.RFC3339)
	if series.PosterPath == "" {
		series.PosterPath = images.PlaceholderLocator
	}

	seasons, err := series.Seasons()
	if err != nil {
		return err
	}
	for _, season := range seasons {
		sid, err := s.repo.NextManualID(database.ManualSeasons)
		if err != nil {
			return err
		}
		season.ID = sid
		season.ShowID = id
		episodes, err := season.Episodes()
		if err != nil {
			return err
		}
		for _, ep := range episodes {
			eid, err := s.repo.NextManualID(database.ManualEpisodes)
			if err != nil {
				return err
			}
			ep.ID = eid
			ep.ShowID = id
		}
	}

	if err := s.repo.AddSeries(series); err != nil {
		return err
	}
	s.log.Info("library.series.manual_added", "id", id, "title", series.Title)
	return nil
}
