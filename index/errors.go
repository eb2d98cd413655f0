package index

import "fmt"

// ValueError indicates that a document's field value is missing or not
// parseable as a base-10 int64.
//
// The underlying parse error (if any) can be accessed via errors.Unwrap.
type ValueError struct {
	Field      string
	SegmentOrd int
	Doc        uint32
	// Raw is the stored representation when the failure is a parse error,
	// empty when the value is absent.
	Raw string
	Err error
}

func (e *ValueError) Error() string {
	if e.Err == nil && e.Raw == "" {
		return fmt.Sprintf("field %q: no value for doc %d in segment %d", e.Field, e.Doc, e.SegmentOrd)
	}
	return fmt.Sprintf("field %q: doc %d in segment %d: cannot parse %q as int64", e.Field, e.Doc, e.SegmentOrd, e.Raw)
}

func (e *ValueError) Unwrap() error { return e.Err }
