package course

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned when the topic is empty or whitespace.
var ErrEmptyTopic = errors.New("topic is required")

// GenerationError wraps a failure of the external generation service. The
// request is kept so the caller can offer "try again" without re-collecting
// preferences.
type GenerationError struct {
	Topic string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate course for %q: %v", e.Topic, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
