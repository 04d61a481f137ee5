package database

import "reelkeep/models"

// AddLanguage inserts a language. Codes already present are left as-is so
// seeding the table on startup stays idempotent.
func (r *Repository) AddLanguage(lang *models.Language) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO languages VALUES (?, ?);`, lang.Code, lang.Name)
	if err != nil {
		return err
	}
	r.langs.Add(lang.Code, lang)
	return nil
}

// GetLanguageByCode looks a language up by its ISO 639-1 code. Results are
// held in a small LRU cache since the same handful of codes repeats across
// every model constructed from a row. A missing code returns (nil, nil).
func (r *Repository) GetLanguageByCode(code string) (*models.Language, error) {
	if lang, ok := r.langs.Get(code); ok {
		return lang, nil
	}
	row, err := r.queryMap(`SELECT * FROM languages WHERE iso_639_1 = ?;`, code)
	if err != nil {
		return nil, err
	}
	if row == nil {
		r.log.Error("database.language.missing", "code", code)
		return nil, nil
	}
	lang := models.NewLanguageFromRow(row)
	r.langs.Add(code, lang)
	return lang, nil
}

// GetLanguageByName looks a language up by its display name. Uncached; used
// only by manual-entry forms.
func (r *Repository) GetLanguageByName(name string) (*models.Language, error) {
	row, err := r.queryMap(`SELECT * FROM languages WHERE name = ?;`, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return models.NewLanguageFromRow(row), nil
}

// GetAllLanguages returns every language ordered by code.
func (r *Repository) GetAllLanguages() ([]*models.Language, error) {
	rows, err := r.queryMaps(`SELECT * FROM languages ORDER BY iso_639_1;`)
	if err != nil {
		return nil, err
	}
	langs := make([]*models.Language, 0, len(rows))
	for _, row := range rows {
		langs = append(langs, models.NewLanguageFromRow(row))
	}
	return langs, nil
}
