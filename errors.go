package strata

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when an operation addresses an entity, or an
// entity+source pair, that has no matching layer.
type NotFoundError struct {
	ID     string
	Type   string
	Source Source // zero means the entity had no layers at all
}

func (e *NotFoundError) Error() string {
	if e.Source.Valid() {
		return fmt.Sprintf("no %s configuration found for %s:%s", e.Source, e.Type, e.ID)
	}
	return fmt.Sprintf("no configuration found for %s:%s", e.Type, e.ID)
}

// ValidationError is returned by Set when a fragment fails the shape check.
// It carries the full result so callers can inspect every violation, not
// just the first.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed: %s", strings.Join(e.Result.Errors, "; "))
}
