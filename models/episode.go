package models

import "strconv"

// Episode is a single episode of a season. It is created either from a
// catalog payload or from a persisted row, and mutated only via the watched
// flag. Deleting the owning series cascades over its episodes.
type Episode struct {
	ID           string `json:"id"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	Runtime      int    `json:"runtime"`
	StillPath    string `json:"still_path"` // locator or empty
	SeasonNumber int    `json:"season_number"`
	ShowID       string `json:"show_id"`
	Watched      bool   `json:"watched"`
}

// NewEpisodeFromPayload builds an Episode from a catalog season-episode entry.
func NewEpisodeFromPayload(p *EpisodePayload, showID string, seasonNumber int, stillLocator string) (*Episode, error) {
	if p.ID == 0 {
		return nil, missingField("episode", "id")
	}
	if p.Name == "" {
		return nil, missingField("episode", "name")
	}
	return &Episode{
		ID:           strconv.Itoa(p.ID),
		Number:       p.EpisodeNumber,
		Title:        p.Name,
		Overview:     collapseSpaces(p.Overview),
		Runtime:      p.Runtime,
		StillPath:    stillLocator,
		SeasonNumber: seasonNumber,
		ShowID:       showID,
		Watched:      false,
	}, nil
}

// NewEpisodeFromRow builds an Episode from a persisted row. Absent columns
// fall back to zero values.
func NewEpisodeFromRow(row map[string]any) *Episode {
	return &Episode{
		ID:           rowString(row, "id"),
		Number:       rowInt(row, "number"),
		Title:        rowString(row, "title"),
		Overview:     rowString(row, "overview"),
		Runtime:      rowInt(row, "runtime"),
		StillPath:    rowString(row, "still_path"),
		SeasonNumber: rowInt(row, "season_number"),
		ShowID:       rowString(row, "show_id"),
		Watched:      rowBool(row, "watched"),
	}
}
