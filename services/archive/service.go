// Package archive exports the whole library to a portable zip and imports
// it back: one data.json enumerating every record with nested seasons and
// episodes, plus an images/ tree mirroring each locally stored image.
package archive

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"reelkeep/internal/database"
	"reelkeep/models"
)

// ErrCorrupt reports an archive whose document is missing or malformed.
var ErrCorrupt = errors.New("corrupt archive")

// document is the shape of data.json.
type document struct {
	Movies []map[string]any `json:"movies"`
	Series []map[string]any `json:"series"`
}

// Service exports and imports library archives.
type Service struct {
	repo    *database.Repository
	fs      afero.Fs
	dataDir string
	log     *slog.Logger
}

// New builds an archive service over the repository's data root.
func New(repo *database.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		fs:      repo.FS(),
		dataDir: repo.DataDir(),
		log:     logger,
	}
}

// Export writes the archive to exportPath. The zip is assembled in a temp
// file and renamed into place, so a failed export never leaves a truncated
// archive at the destination.
func (s *Service) Export(exportPath string) error {
	tmpPath := exportPath + ".tmp"
	zipFile, err := s.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	if err := s.writeArchive(zipFile); err != nil {
		zipFile.Close()
		s.fs.Remove(tmpPath)
		return err
	}
	if err := zipFile.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("close archive file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, exportPath); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("finalize archive: %w", err)
	}
	s.log.Info("archive.exported", "path", exportPath)
	return nil
}

func (s *Service) writeArchive(w io.Writer) error {
	zw := zip.NewWriter(w)

	doc := document{Movies: []map[string]any{}, Series: []map[string]any{}}

	movies, err := s.repo.AllMoviesRaw()
	if err != nil {
		return err
	}
	for _, row := range movies {
		s.embedImage(zw, models.RowString(row, "poster_path"))
		s.embedImage(zw, models.RowString(row, "backdrop_path"))
		doc.Movies = append(doc.Movies, row)
	}

	series, err := s.repo.AllSeriesRaw()
	if err != nil {
		return err
	}
	for _, row := range series {
		showID := models.RowString(row, "id")
		s.embedImage(zw, models.RowString(row, "poster_path"))
		s.embedImage(zw, models.RowString(row, "backdrop_path"))

		seasons, err := s.repo.SeasonsRaw(showID)
		if err != nil {
			return err
		}
		seasonDocs := make([]map[string]any, 0, len(seasons))
		for _, season := range seasons {
			number := models.RowInt(season, "number")
			s.embedSeasonImage(zw, models.RowString(season, "poster_path"), showID, number)

			episodes, err := s.repo.EpisodesRaw(showID, number)
			if err != nil {
				return err
			}
			for _, ep := range episodes {
				s.embedSeasonImage(zw, models.RowString(ep, "still_path"), showID, number)
			}
			season["episodes"] = episodes
			seasonDocs = append(seasonDocs, season)
		}
		row["seasons"] = seasonDocs
		doc.Series = append(doc.Series, row)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	dw, err := zw.Create("data.json")
	if err != nil {
		return fmt.Errorf("create document entry: %w", err)
	}
	if _, err := dw.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return zw.Close()
}

// embedImage copies a locally stored image into the archive at
// images/<path-relative-to-data-root>. Non-local locators and files outside
// the data root are skipped.
func (s *Service) embedImage(zw *zip.Writer, locator string) {
	if !strings.HasPrefix(locator, "file://") {
		return
	}
	src := strings.TrimPrefix(locator, "file://")
	rel, err := filepath.Rel(s.dataDir, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	s.copyIntoZip(zw, src, path.Join("images", filepath.ToSlash(rel)))
}

// embedSeasonImage stores season art under the per-show logical path
// images/series/<show-id>/<season-number>/<filename>, the layout import
// reconstructs.
func (s *Service) embedSeasonImage(zw *zip.Writer, locator, showID string, seasonNumber int) {
	if !strings.HasPrefix(locator, "file://") {
		return
	}
	src := strings.TrimPrefix(locator, "file://")
	name := filepath.Base(src)
	s.copyIntoZip(zw, src, fmt.Sprintf("images/series/%s/%d/%s", showID, seasonNumber, name))
}

func (s *Service) copyIntoZip(zw *zip.Writer, src, dst string) {
	f, err := s.fs.Open(src)
	if err != nil {
		s.log.Warn("archive.image.skipped", "path", src, "error", err)
		return
	}
	defer f.Close()
	w, err := zw.Create(dst)
	if err != nil {
		s.log.Warn("archive.image.skipped", "path", src, "error", err)
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		s.log.Warn("archive.image.skipped", "path", src, "error", err)
	}
}
