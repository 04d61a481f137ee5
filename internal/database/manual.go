package database

import (
	"fmt"
	"strconv"
	"strings"
)

// ManualTable names a table that can hold manually created records.
type ManualTable string

const (
	ManualMovies   ManualTable = "movies"
	ManualSeries   ManualTable = "series"
	ManualSeasons  ManualTable = "seasons"
	ManualEpisodes ManualTable = "episodes"
)

// NextManualID allocates the next free manual id for a table: "M-1" on an
// empty table, otherwise M-<n+1> where n is the highest numeric suffix in
// use. The suffix comparison is numeric, so M-10 follows M-9 instead of
// colliding with the lexicographic order. The scan and the caller's insert
// race only against other allocations, which the mutex serializes.
func (r *Repository) NextManualID(table ManualTable) (string, error) {
	r.manualMu.Lock()
	defer r.manualMu.Unlock()

	stmt := fmt.Sprintf("SELECT id FROM %s WHERE id LIKE 'M-%%';", string(table))
	rows, err := r.db.Query(stmt)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, "M-"))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("M-%d", max+1), nil
}
