package database

import "fmt"

// Kind selects which content table a status operation targets.
type Kind int

const (
	KindMovie Kind = iota
	KindSeries
)

func (k Kind) table() string {
	if k == KindMovie {
		return "movies"
	}
	return "series"
}

func (k Kind) String() string {
	if k == KindMovie {
		return "movie"
	}
	return "series"
}

func (r *Repository) setFlag(kind Kind, column, id string, value bool) error {
	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?;", kind.table(), column)
	_, err := r.db.Exec(stmt, value, id)
	if err == nil {
		r.log.Debug("database.flag.set",
			"kind", kind.String(), "flag", column, "id", id, "value", value)
	}
	return err
}

func (r *Repository) getFlag(kind Kind, column, id string) (bool, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?;", column, kind.table())
	var value bool
	if err := r.db.QueryRow(stmt, id).Scan(&value); err != nil {
		return false, err
	}
	return value, nil
}

// SetNotificationListStatus flips the notification opt-in on one record.
func (r *Repository) SetNotificationListStatus(kind Kind, id string, value bool) error {
	return r.setFlag(kind, "activate_notification", id, value)
}

// GetNotificationListStatus reads the notification opt-in of one record.
func (r *Repository) GetNotificationListStatus(kind Kind, id string) (bool, error) {
	return r.getFlag(kind, "activate_notification", id)
}

// SetNewReleaseStatus flips the new-release flag on one record.
func (r *Repository) SetNewReleaseStatus(kind Kind, id string, value bool) error {
	return r.setFlag(kind, "new_release", id, value)
}

// GetNewReleaseStatus reads the new-release flag of one record.
func (r *Repository) GetNewReleaseStatus(kind Kind, id string) (bool, error) {
	return r.getFlag(kind, "new_release", id)
}

// SetSoonReleaseStatus flips the soon-release flag on one record.
func (r *Repository) SetSoonReleaseStatus(kind Kind, id string, value bool) error {
	return r.setFlag(kind, "soon_release", id, value)
}

// GetSoonReleaseStatus reads the soon-release flag of one record.
func (r *Repository) GetSoonReleaseStatus(kind Kind, id string) (bool, error) {
	return r.getFlag(kind, "soon_release", id)
}

// SetRecentChangeStatus flips the recent-change flag on one record.
func (r *Repository) SetRecentChangeStatus(kind Kind, id string, value bool) error {
	return r.setFlag(kind, "recent_change", id, value)
}

// GetRecentChangeStatus reads the recent-change flag of one record.
func (r *Repository) GetRecentChangeStatus(kind Kind, id string) (bool, error) {
	return r.getFlag(kind, "recent_change", id)
}

// ResetRecentChange clears the recent-change flag on all content. Called on
// shutdown so the next session starts with a clean slate.
func (r *Repository) ResetRecentChange() error {
	if _, err := r.db.Exec(`UPDATE series SET recent_change = 0;`); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE movies SET recent_change = 0;`)
	return err
}

// ResetActivateNotification clears the notification opt-in on all content.
func (r *Repository) ResetActivateNotification() error {
	if _, err := r.db.Exec(`UPDATE series SET activate_notification = 0;`); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE movies SET activate_notification = 0;`)
	return err
}
