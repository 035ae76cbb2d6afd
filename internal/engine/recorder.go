package engine

import (
	"context"
	"sync"
	"time"
)

// Recorder keeps frames in memory. StartDelay and StartErr simulate a slow
// or failing engine.
type Recorder struct {
	StartDelay time.Duration
	StartErr   error
	SendErr    error

	mu      sync.Mutex
	frames  []Frame
	starts  int
	closed  bool
	arrival chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{arrival: make(chan struct{}, 1024)}
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	r.starts++
	r.mu.Unlock()

	if r.StartDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.StartDelay):
		}
	}
	return r.StartErr
}

func (r *Recorder) Send(ctx context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.SendErr != nil {
		return r.SendErr
	}
	r.frames = append(r.frames, f)
	select {
	case r.arrival <- struct{}{}:
	default:
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns a copy of everything sent so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Starts reports how many times Start was called.
func (r *Recorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

// WaitFrames blocks until at least n frames arrived or timeout elapses.
func (r *Recorder) WaitFrames(n int, timeout time.Duration) []Frame {
	deadline := time.After(timeout)
	for {
		if frames := r.Frames(); len(frames) >= n {
			return frames
		}
		select {
		case <-r.arrival:
		case <-deadline:
			return r.Frames()
		}
	}
}
