package store

import (
	"database/sql"
	"errors"

	"github.com/roach88/scnconform/internal/conformance"
)

// Column conversions between conformance values and SQLite storage.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullText(s string, valid bool) sql.NullString {
	return sql.NullString{String: s, Valid: valid}
}

// blob stores s as a BLOB so its bytes survive unchanged.
func blob(s string) []byte {
	if s == "" {
		return []byte{}
	}
	return []byte(s)
}

// nullBlob is blob for optional columns; nil stores SQL NULL.
func nullBlob(s string, valid bool) []byte {
	if !valid {
		return nil
	}
	return blob(s)
}

// failureColumns flattens a failure into the results.failure_* columns.
type failureColumns struct {
	kind     sql.NullString
	message  sql.NullString
	field    sql.NullString
	expected []byte
	actual   []byte
	err      sql.NullString
}

func marshalFailure(f *conformance.Failure) failureColumns {
	if f == nil {
		return failureColumns{}
	}
	cols := failureColumns{
		kind:     nullText(string(f.Kind), true),
		message:  nullText(f.Message, true),
		field:    nullText(f.Field, f.Field != ""),
		expected: blob(f.Expected),
		actual:   blob(f.Actual),
	}
	if f.Err != nil {
		cols.err = nullText(f.Err.Error(), true)
	}
	return cols
}

// unmarshalFailure rebuilds a failure. The underlying error keeps its text
// but not its type.
func unmarshalFailure(cols failureColumns) *conformance.Failure {
	if !cols.kind.Valid {
		return nil
	}
	f := &conformance.Failure{
		Kind:     conformance.FailureKind(cols.kind.String),
		Message:  cols.message.String,
		Field:    cols.field.String,
		Expected: string(cols.expected),
		Actual:   string(cols.actual),
	}
	if cols.err.Valid {
		f.Err = errors.New(cols.err.String)
	}
	return f
}
