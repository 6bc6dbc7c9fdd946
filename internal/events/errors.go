package events

import "errors"

// Hard decode failures. These indicate a genuine ABI/layout mismatch and
// abort receipt decoding; an unknown address or signature never does.
var (
	ErrUnknownArgumentType = errors.New("unrecognized argument type")
	ErrUnknownTupleLayout  = errors.New("unrecognized tuple layout")
	ErrTupleFieldMismatch  = errors.New("tuple field mismatch")
)
