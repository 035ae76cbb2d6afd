package launch

import (
	"math"
	"strconv"
)

// Target is the engine-side controller every command is addressed to.
const Target = "ClassroomController"

// Engine method names.
const (
	MethodLoadCourse     = "LoadCourse"
	MethodUpdateProgress = "UpdateProgress"
)

// Command is a typed engine message. The controller and method pairing is
// fixed per type.
type Command interface {
	Target() string
	Method() string
	Payload() string
}

// LoadCourse asks the engine to load a course.
type LoadCourse struct {
	Body []byte
}

// NewLoadCourse marshals m into a LoadCourse command.
func NewLoadCourse(m Message) (LoadCourse, error) {
	body, err := Marshal(m)
	if err != nil {
		return LoadCourse{}, err
	}
	return LoadCourse{Body: body}, nil
}

func (LoadCourse) Target() string    { return Target }
func (LoadCourse) Method() string    { return MethodLoadCourse }
func (c LoadCourse) Payload() string { return string(c.Body) }

// UpdateProgress reports lesson progress to the engine.
type UpdateProgress struct {
	Fraction float64
}

func (UpdateProgress) Target() string { return Target }
func (UpdateProgress) Method() string { return MethodUpdateProgress }

// Payload is the fraction clamped to [0,1] as a decimal string.
func (c UpdateProgress) Payload() string {
	return strconv.FormatFloat(Clamp(c.Fraction), 'f', -1, 64)
}

// Clamp limits f to [0,1]; NaN becomes 0.
func Clamp(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
