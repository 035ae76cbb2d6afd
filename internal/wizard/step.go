package wizard

// Step is the wizard's current stage. Transitions are between adjacent
// steps only.
type Step int

const (
	StepCollectingTopic Step = iota
	StepCollectingPreferences
	StepGenerating
	StepPreviewingResult
)

func (s Step) String() string {
	switch s {
	case StepCollectingTopic:
		return "collecting-topic"
	case StepCollectingPreferences:
		return "collecting-preferences"
	case StepGenerating:
		return "generating"
	case StepPreviewingResult:
		return "previewing-result"
	default:
		return "unknown"
	}
}

// EventKind distinguishes observer notifications.
type EventKind int

const (
	EventProgress EventKind = iota
	EventCompleted
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}
