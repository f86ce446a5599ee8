package parse

import (
	"errors"
	"fmt"
)

// ErrFieldMiss marks a section that was missing or could not be read.
// It is never returned from Parse; misses are reported and the field stays unset.
var ErrFieldMiss = errors.New("field miss")

var errNodeAbsent = errors.New("node absent")

// FieldMissError describes one step that yielded no value.
type FieldMissError struct {
	Step string
	Path string
	Err  error
}

func (e *FieldMissError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Path, e.Err)
}

func (e *FieldMissError) Unwrap() error { return e.Err }

func (e *FieldMissError) Is(target error) bool { return target == ErrFieldMiss }

func miss(step, path string, err error) *FieldMissError {
	return &FieldMissError{Step: step, Path: path, Err: err}
}
