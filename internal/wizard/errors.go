package wizard

import (
	"errors"

	"github.com/lyoapp/lyo/internal/course"
	"github.com/lyoapp/lyo/internal/preferences"
)

var (
	// ErrWrongStep is returned by an operation that is not valid in the
	// current step.
	ErrWrongStep = errors.New("operation not valid in current step")

	ErrNoPreviousStep     = errors.New("no previous step")
	ErrGenerationInFlight = errors.New("course generation in progress")
	ErrNotReady           = errors.New("no generated course yet")
	ErrDismissed          = errors.New("wizard dismissed")
	ErrNoLauncher         = errors.New("no classroom launcher configured")
	ErrUnknownPreset      = errors.New("unknown preset")
)

// IsValidation reports whether err is a user input error: an empty topic
// or an out-of-range preference.
func IsValidation(err error) bool {
	var ve *preferences.ValidationError
	return errors.Is(err, course.ErrEmptyTopic) || errors.As(err, &ve)
}
