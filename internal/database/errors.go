package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an update, delete or lookup targets a
	// row that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAuditWrite is returned when the audit append inside a mutation
	// transaction fails; the paired data write is rolled back with it.
	ErrAuditWrite = errors.New("audit write failed")
)

// UniqueConstraintError reports a write that would duplicate a value bound
// by a uniqueness invariant. Field names the colliding column or pair.
type UniqueConstraintError struct {
	Field string
	Err   error
}

func (e *UniqueConstraintError) Error() string {
	if e.Field == "" {
		return "unique constraint violation"
	}
	return fmt.Sprintf("unique constraint violation on %s", e.Field)
}

func (e *UniqueConstraintError) Unwrap() error { return e.Err }

// ForeignKeyError reports a write referencing a row that does not exist.
type ForeignKeyError struct {
	Err error
}

func (e *ForeignKeyError) Error() string { return "referenced record does not exist" }

func (e *ForeignKeyError) Unwrap() error { return e.Err }

// AggregationInconsistencyError reports an impossible statistics tally.
// It should never occur under correct storage-engine isolation; when it
// does, the aggregator aborts instead of returning corrupted figures.
type AggregationInconsistencyError struct {
	Detail string
}

func (e *AggregationInconsistencyError) Error() string {
	return "aggregation inconsistency: " + e.Detail
}

// IsUniqueViolation reports whether err is a uniqueness conflict.
func IsUniqueViolation(err error) bool {
	var ue *UniqueConstraintError
	return errors.As(err, &ue)
}

// IsForeignKeyViolation reports whether err is a missing-reference conflict.
func IsForeignKeyViolation(err error) bool {
	var fe *ForeignKeyError
	return errors.As(err, &fe)
}

// TranslateError maps driver and GORM errors onto the store's error
// taxonomy. Errors already belonging to the taxonomy pass through.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &UniqueConstraintError{Field: uniqueField(serr.Error()), Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &ForeignKeyError{Err: err}
		}
	}
	return err
}

// uniqueField extracts the colliding column list from a sqlite constraint
// message such as "UNIQUE constraint failed: users.email".
func uniqueField(msg string) string {
	_, after, ok := strings.Cut(msg, "constraint failed: ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}
