package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"reelkeep/internal/database"
	"reelkeep/models"
)

// manualPrefix marks user-created records whose ids must be reallocated on
// import so they cannot collide with the host's own manual entries.
const manualPrefix = "M-"

// Import reads an archive back into the library. Per record id the import
// is last-write-wins: an existing record is deleted (children cascading)
// before the archived one is inserted. Embedded images are extracted under
// the data root; any entry trying to escape it is rejected.
func (s *Service) Import(importPath string) error {
	f, err := s.fs.Open(importPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	zr, err := zip.NewReader(f, stat.Size())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	doc, err := readDocument(zr)
	if err != nil {
		return err
	}

	for _, movie := range doc.Movies {
		if err := s.importMovie(zr, movie); err != nil {
			return err
		}
	}
	for _, series := range doc.Series {
		if err := s.importSeries(zr, series); err != nil {
			return err
		}
	}
	s.log.Info("archive.imported",
		"path", importPath, "movies", len(doc.Movies), "series", len(doc.Series))
	return nil
}

func readDocument(zr *zip.Reader) (*document, error) {
	f, err := zr.Open("data.json")
	if err != nil {
		return nil, fmt.Errorf("%w: missing data.json", ErrCorrupt)
	}
	defer f.Close()
	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Movies == nil && doc.Series == nil {
		return nil, fmt.Errorf("%w: document has no records", ErrCorrupt)
	}
	return &doc, nil
}

func (s *Service) importMovie(zr *zip.Reader, row map[string]any) error {
	if err := s.restoreImage(zr, row, "poster_path"); err != nil {
		return err
	}
	if err := s.restoreImage(zr, row, "backdrop_path"); err != nil {
		return err
	}

	if err := s.ensureLanguage(models.RowString(row, "original_language")); err != nil {
		return err
	}
	id := models.RowString(row, "id")
	if err := s.repo.DeleteMovieRow(id); err != nil {
		return err
	}
	if strings.HasPrefix(id, manualPrefix) {
		fresh, err := s.repo.NextManualID(database.ManualMovies)
		if err != nil {
			return err
		}
		row["id"] = fresh
	}
	return s.repo.InsertRow("movies", row)
}

func (s *Service) importSeries(zr *zip.Reader, row map[string]any) error {
	seasons, _ := row["seasons"].([]any)
	delete(row, "seasons")

	if err := s.restoreImage(zr, row, "poster_path"); err != nil {
		return err
	}
	if err := s.restoreImage(zr, row, "backdrop_path"); err != nil {
		return err
	}

	if err := s.ensureLanguage(models.RowString(row, "original_language")); err != nil {
		return err
	}
	originalID := models.RowString(row, "id")
	if err := s.repo.DeleteSeriesRow(originalID); err != nil {
		return err
	}
	showID := originalID
	if strings.HasPrefix(originalID, manualPrefix) {
		fresh, err := s.repo.NextManualID(database.ManualSeries)
		if err != nil {
			return err
		}
		row["id"] = fresh
		showID = fresh
	}
	if err := s.repo.InsertRow("series", row); err != nil {
		return err
	}

	for _, raw := range seasons {
		season, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: malformed season entry", ErrCorrupt)
		}
		if err := s.importSeason(zr, season, originalID, showID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) importSeason(zr *zip.Reader, season map[string]any, originalID, showID string) error {
	episodes, _ := season["episodes"].([]any)
	delete(season, "episodes")

	number := models.RowInt(season, "number")
	if err := s.restoreSeasonImage(zr, season, "poster_path", originalID, showID, number); err != nil {
		return err
	}

	season["show_id"] = showID
	if strings.HasPrefix(models.RowString(season, "id"), manualPrefix) {
		fresh, err := s.repo.NextManualID(database.ManualSeasons)
		if err != nil {
			return err
		}
		season["id"] = fresh
	}
	if err := s.repo.InsertRow("seasons", season); err != nil {
		return err
	}

	for _, raw := range episodes {
		episode, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: malformed episode entry", ErrCorrupt)
		}
		if err := s.restoreSeasonImage(zr, episode, "still_path", originalID, showID, number); err != nil {
			return err
		}
		episode["show_id"] = showID
		if strings.HasPrefix(models.RowString(episode, "id"), manualPrefix) {
			fresh, err := s.repo.NextManualID(database.ManualEpisodes)
			if err != nil {
				return err
			}
			episode["id"] = fresh
		}
		if err := s.repo.InsertRow("episodes", episode); err != nil {
			return err
		}
	}
	return nil
}

// restoreImage extracts a movie or series image whose archived path is its
// path relative to the data root, recognized by the poster/ or background/
// marker segment, and rewrites the row's locator to the restored file.
func (s *Service) restoreImage(zr *zip.Reader, row map[string]any, column string) error {
	locator := models.RowString(row, column)
	if !strings.HasPrefix(locator, "file://") {
		return nil
	}
	raw := strings.TrimPrefix(locator, "file://")

	var rel string
	switch {
	case strings.Contains(raw, "poster/"):
		rel = "poster/" + lastSegmentAfter(raw, "poster/")
	case strings.Contains(raw, "background/"):
		rel = "background/" + lastSegmentAfter(raw, "background/")
	default:
		rel = filepath.Base(raw)
	}
	if !safeRelPath(rel) {
		return fmt.Errorf("%w: unsafe image path %q", ErrCorrupt, rel)
	}

	target := filepath.Join(s.dataDir, filepath.FromSlash(rel))
	if err := s.extract(zr, "images/"+rel, target); err != nil {
		s.log.Warn("archive.image.missing", "entry", rel, "error", err)
		return nil
	}
	row[column] = "file://" + target
	return nil
}

// restoreSeasonImage extracts season art from the archive's per-show tree
// (keyed by the show's original id) into the host's tree (keyed by the
// possibly reallocated id) and rewrites the locator.
func (s *Service) restoreSeasonImage(zr *zip.Reader, row map[string]any, column, originalID, showID string, seasonNumber int) error {
	locator := models.RowString(row, column)
	if !strings.HasPrefix(locator, "file://") {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(locator, "file://"))
	if !safeRelPath(name) {
		return fmt.Errorf("%w: unsafe image path %q", ErrCorrupt, name)
	}

	entry := fmt.Sprintf("images/series/%s/%d/%s", originalID, seasonNumber, name)
	target := filepath.Join(s.dataDir, "series", showID, fmt.Sprintf("%d", seasonNumber), name)
	if err := s.extract(zr, entry, target); err != nil {
		s.log.Warn("archive.image.missing", "entry", entry, "error", err)
		return nil
	}
	row[column] = "file://" + target
	return nil
}

// ensureLanguage makes sure the referenced language row exists on the
// importing store. Archives carry only the code, so an entry created here
// uses the code as its display name until a catalog sync fills it in.
func (s *Service) ensureLanguage(code string) error {
	if code == "" {
		return nil
	}
	known, err := s.repo.GetLanguageByCode(code)
	if err != nil {
		return err
	}
	if known != nil {
		return nil
	}
	return s.repo.AddLanguage(&models.Language{Code: code, Name: code})
}

// lastSegmentAfter returns everything after the last occurrence of marker.
func lastSegmentAfter(s, marker string) string {
	idx := strings.LastIndex(s, marker)
	return s[idx+len(marker):]
}

// safeRelPath rejects traversal segments and absolute paths. The archive is
// untrusted input; nothing it names may resolve outside the data root.
func safeRelPath(rel string) bool {
	if rel == "" || strings.HasPrefix(rel, "/") {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

func (s *Service) extract(zr *zip.Reader, entry, target string) error {
	src, err := zr.Open(entry)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	dst, err := s.fs.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
