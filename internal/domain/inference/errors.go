package inference

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Each typed error below matches its sentinel via errors.Is.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInference        = errors.New("inference failed")
	ErrUnknownLabel     = errors.New("unknown label")
)

// ModelUnavailableError reports an artifact that is missing or failed to load.
type ModelUnavailableError struct {
	Artifact string
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	msg := "model unavailable"
	if e.Artifact != "" {
		msg += ": " + e.Artifact
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelUnavailableError) Unwrap() error       { return e.Err }
func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

// InferenceError reports a classify call that failed on a loaded model.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return "inference failed"
	}
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error       { return e.Err }
func (e *InferenceError) Is(target error) bool { return target == ErrInference }

// UnknownLabelError reports an encoded label the decoder was never fit on.
type UnknownLabelError struct {
	Label int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %d", e.Label)
}

func (e *UnknownLabelError) Is(target error) bool { return target == ErrUnknownLabel }
