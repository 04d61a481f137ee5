package models

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is an entry of the language lookup table. Immutable after creation.
type Language struct {
	Code string `json:"iso_639_1"` // ISO 639-1 code, e.g. "en"
	Name string `json:"name"`
}

// NewLanguage builds a Language from catalog data, validating the ISO code.
func NewLanguage(code, name string) (*Language, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, missingField("language", "iso_639_1")
	}
	if name == "" {
		return nil, missingField("language", "name")
	}
	if _, err := language.ParseBase(code); err != nil {
		return nil, missingField("language", "iso_639_1")
	}
	return &Language{Code: code, Name: name}, nil
}

// NewLanguageFromRow builds a Language from a persisted row. Rows are trusted;
// no code validation is applied so older entries keep loading.
func NewLanguageFromRow(row map[string]any) *Language {
	return &Language{
		Code: rowString(row, "iso_639_1"),
		Name: rowString(row, "name"),
	}
}
