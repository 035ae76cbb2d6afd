package engine

import (
	"context"

	"github.com/lyoapp/lyo/internal/logger"
)

// Log writes frames to the logger instead of a real engine. It is the
// default transport for dry runs.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log.With("engine", "log")}
}

func (l *Log) Start(ctx context.Context) error {
	l.log.Info("engine started")
	return nil
}

func (l *Log) Send(ctx context.Context, f Frame) error {
	l.log.Info("engine frame", "target", f.Target, "method", f.Method, "payload", f.Payload)
	return nil
}

func (l *Log) Close() error {
	return nil
}
