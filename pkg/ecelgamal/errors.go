package ecelgamal

import (
	"errors"
	"fmt"
)

// Common errors returned by the session layer
var (
	ErrInvalidParameters = errors.New("ecelgamal: invalid parameters")
	ErrChunkTooLong      = errors.New("ecelgamal: chunk length exceeds curve capacity")
)

// ChunkError reports the chunk of a multi-chunk message that failed.
type ChunkError struct {
	Index int
	Op    string
	Err   error
}

func (e *ChunkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s chunk %d: %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("%s chunk %d", e.Op, e.Index)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// NewChunkError creates a new ChunkError.
func NewChunkError(index int, op string, err error) *ChunkError {
	return &ChunkError{
		Index: index,
		Op:    op,
		Err:   err,
	}
}
