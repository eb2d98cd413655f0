package facetgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/facetgo/index"
)

var (
	// ErrEmptyDomain is returned when the match volume is too small to form
	// any interior bucket (fewer than ten true matches, or an empty sample).
	ErrEmptyDomain = errors.New("insufficient matches to derive dynamic ranges")

	// ErrNilSearcher is returned when no searcher is provided.
	ErrNilSearcher = errors.New("searcher must not be nil")

	// ErrNoValueSource is returned when neither a value source is provided
	// nor the searcher can resolve one for the field.
	ErrNoValueSource = errors.New("no value source for field")
)

// QueryError indicates that executing a query against the index failed.
// The computation is aborted; facetgo never retries.
//
// The underlying index error can be accessed via errors.Unwrap.
type QueryError struct {
	// Op names the failing pass: "sample", "match", or "fastmatch".
	Op    string
	Query string
	cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution failed during %s of %q: %v", e.Op, e.Query, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }

func newQueryError(op string, q index.Query, err error) *QueryError {
	qs := ""
	if q != nil {
		qs = q.String()
	}
	return &QueryError{Op: op, Query: qs, cause: err}
}

// IsValueError reports whether err stems from a missing or unparsable
// field value. Convenience for callers distinguishing data problems from
// query execution problems.
func IsValueError(err error) bool {
	var ve *index.ValueError
	return errors.As(err, &ve)
}
