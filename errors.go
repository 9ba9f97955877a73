package vecfile

import "errors"

var (
	// ErrInvalidRank is returned when appended vectors are not rank 2 or
	// appended keys are not rank 1.
	ErrInvalidRank = errors.New("vecfile: invalid rank")

	// ErrDimensionMismatch is returned when appended vectors do not match
	// the dimension fixed by the first append.
	ErrDimensionMismatch = errors.New("vecfile: vector dimension mismatch")

	// ErrTypeMismatch is returned when appended vectors do not match the
	// element type fixed by the first append.
	ErrTypeMismatch = errors.New("vecfile: vector element type mismatch")

	// ErrCountMismatch is returned when the key count differs from the
	// vector row count of a batch.
	ErrCountMismatch = errors.New("vecfile: key count does not match vector count")

	// ErrKeyTypeMismatch is returned when appended keys do not match the
	// key type fixed by the first append.
	ErrKeyTypeMismatch = errors.New("vecfile: key element type mismatch")

	// ErrSessionClosed is returned when Append is called without an open
	// write session.
	ErrSessionClosed = errors.New("vecfile: no open write session")

	// ErrSessionOpen is returned when an operation requires the write
	// session to be closed first.
	ErrSessionOpen = errors.New("vecfile: write session still open")
)
