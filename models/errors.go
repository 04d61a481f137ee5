package models

import "fmt"

// MissingFieldError reports a remote payload that lacks a field required to
// construct an entity. It aborts the construction of that single record only.
type MissingFieldError struct {
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s payload missing required field %q", e.Entity, e.Field)
}

func missingField(entity, field string) error {
	return &MissingFieldError{Entity: entity, Field: field}
}
