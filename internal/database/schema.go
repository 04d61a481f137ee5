package database

// Schema creation is idempotent: every statement is CREATE TABLE IF NOT
// EXISTS, so NewDB can run it on every startup. New columns are never added
// here; they go through ApplyMigrations so databases created by older
// releases pick them up too.

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		activate_notification BOOLEAN,
		add_date TEXT,
		backdrop_path TEXT,
		budget INTEGER,
		color BOOLEAN,
		genres TEXT,
		id TEXT PRIMARY KEY,
		manual BOOLEAN,
		notes TEXT,
		new_release BOOLEAN,
		original_language TEXT,
		original_title TEXT,
		overview TEXT,
		poster_path TEXT,
		recent_change BOOLEAN,
		release_date TEXT,
		revenue INTEGER,
		runtime INTEGER,
		soon_release BOOLEAN,
		status TEXT,
		tagline TEXT,
		title TEXT,
		watched BOOLEAN,
		FOREIGN KEY (original_language) REFERENCES languages (iso_639_1)
	);`,
	`CREATE TABLE IF NOT EXISTS series (
		add_date TEXT,
		backdrop_path TEXT,
		color BOOLEAN,
		created_by TEXT,
		episodes_number INT,
		genres TEXT,
		id TEXT PRIMARY KEY,
		in_production BOOLEAN,
		last_air_date TEXT,
		last_episode_number TEXT,
		manual BOOLEAN,
		next_air_date TEXT,
		new_release BOOLEAN,
		notes TEXT,
		original_language TEXT,
		original_title TEXT,
		overview TEXT,
		poster_path TEXT,
		recent_change BOOLEAN,
		release_date TEXT,
		seasons_number INT,
		soon_release BOOLEAN,
		status TEXT,
		tagline TEXT,
		title TEXT,
		watched BOOLEAN,
		activate_notification BOOLEAN,
		FOREIGN KEY (original_language) REFERENCES languages (iso_639_1)
	);`,
	`CREATE TABLE IF NOT EXISTS seasons (
		episodes_number INTEGER,
		id TEXT PRIMARY KEY,
		number INTEGER,
		overview TEXT,
		poster_path TEXT,
		title TEXT,
		show_id TEXT,
		FOREIGN KEY (show_id) REFERENCES series (id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		number INTEGER,
		overview TEXT,
		runtime INTEGER,
		season_number INTEGER,
		show_id TEXT,
		still_path TEXT,
		title TEXT,
		watched BOOLEAN,
		FOREIGN KEY (show_id) REFERENCES series (id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS languages (
		iso_639_1 TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);`,
}

// CreateSchema ensures all tables exist.
func (r *Repository) CreateSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	r.log.Debug("database.schema.ensured")
	return nil
}
