package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket sends each frame as one JSON text message to an engine host
// listening at URL.
type WebSocket struct {
	URL          string
	WriteTimeout time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocket(url string) *WebSocket {
	return &WebSocket{URL: url, WriteTimeout: 5 * time.Second}
}

func (w *WebSocket) Start(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.URL, nil)
	if err != nil {
		return fmt.Errorf("dial engine %s: %w", w.URL, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
	}
	w.conn = conn
	return nil
}

// Send serializes writes; gorilla connections allow one concurrent writer.
func (w *WebSocket) Send(ctx context.Context, f Frame) error {
	data, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return ErrClosed
	}
	deadline := time.Now().Add(w.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}
