// Package engine carries commands to the external 3D classroom engine.
// Delivery is one-way: a nil error from Send means the frame left the
// process, not that the engine understood it.
package engine

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("engine closed")

// Frame is one command on the wire.
type Frame struct {
	Target  string `json:"target"`
	Method  string `json:"method"`
	Payload string `json:"payload"`
}

// Engine is a transport to the render engine.
type Engine interface {
	// Start connects or loads the engine. It may block; callers bound it.
	Start(ctx context.Context) error
	Send(ctx context.Context, f Frame) error
	Close() error
}

func encodeFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a frame written by a transport.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
