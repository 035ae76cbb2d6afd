package classroom

import "errors"

// Protocol anomalies. They are logged and counted; the offending call is
// ignored and state is left as it was.
var (
	ErrSessionAlreadyOpen   = errors.New("classroom session already open")
	ErrNoOpenSession        = errors.New("no open classroom session")
	ErrEngineNotInitialized = errors.New("classroom engine not initialized")
)

var (
	// ErrOutboxFull means a command was dropped because the engine is not
	// draining fast enough.
	ErrOutboxFull = errors.New("engine outbox full")

	ErrBridgeClosed = errors.New("classroom bridge closed")
)

// Anomaly kinds used in logs and the anomaly metric.
const (
	AnomalySessionAlreadyOpen = "session_already_open"
	AnomalyExitWithoutSession = "exit_without_session"
	AnomalyNotInitialized     = "engine_not_initialized"
)
