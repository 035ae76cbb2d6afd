package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lyoapp/lyo/internal/logger"
)

var loadFrame = Frame{Target: "ClassroomController", Method: "LoadCourse", Payload: `{"courseId":"c1"}`}

func TestFrameJSON(t *testing.T) {
	data, err := encodeFrame(loadFrame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"target":"ClassroomController","method":"LoadCourse","payload":"{\"courseId\":\"c1\"}"}`, string(data))

	back, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, loadFrame, back)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Send(ctx, loadFrame))
	assert.Equal(t, []Frame{loadFrame}, r.WaitFrames(1, time.Second))
	assert.Equal(t, 1, r.Starts())

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Send(ctx, loadFrame), ErrClosed)
}

func TestRecorder_StartHonorsContext(t *testing.T) {
	r := NewRecorder()
	r.StartDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Start(ctx), context.DeadlineExceeded)

	r = NewRecorder()
	r.StartErr = errors.New("no gpu")
	assert.EqualError(t, r.Start(context.Background()), "no gpu")
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLog(logger.FromCore(core))

	require.NoError(t, l.Start(context.Background()))
	require.NoError(t, l.Send(context.Background(), loadFrame))
	require.NoError(t, l.Close())

	frames := logs.FilterMessage("engine frame").All()
	require.Len(t, frames, 1)
	assert.Equal(t, "LoadCourse", frames[0].ContextMap()["method"])
}

func TestWebSocket(t *testing.T) {
	received := make(chan Frame, 4)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				continue
			}
			if f, err := DecodeFrame(data); err == nil {
				received <- f
			}
		}
	}))
	defer server.Close()

	ws := NewWebSocket("ws" + strings.TrimPrefix(server.URL, "http"))
	ctx := context.Background()

	assert.ErrorIs(t, ws.Send(ctx, loadFrame), ErrClosed)
	require.NoError(t, ws.Start(ctx))
	require.NoError(t, ws.Send(ctx, loadFrame))
	progress := Frame{Target: "ClassroomController", Method: "UpdateProgress", Payload: "0.5"}
	require.NoError(t, ws.Send(ctx, progress))

	for _, want := range []Frame{loadFrame, progress} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}

	require.NoError(t, ws.Close())
	assert.NoError(t, ws.Close())
	assert.ErrorIs(t, ws.Send(ctx, loadFrame), ErrClosed)
}

func TestWebSocket_DialFailure(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/engine")
	assert.Error(t, ws.Start(context.Background()))
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(" ", "")
	assert.Error(t, err)

	r, err := NewRedis("localhost:6379", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRedisChannel, r.channel)
	require.NoError(t, r.Close())
}

// Runs against a real server when LYO_TEST_REDIS_ADDR is set.
func TestRedis_PublishSubscribe(t *testing.T) {
	addr := os.Getenv("LYO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LYO_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(addr, "lyo:test:"+t.Name())
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))

	got := make(chan Frame, 1)
	require.NoError(t, r.Subscribe(ctx, func(f Frame) { got <- f }))
	require.NoError(t, r.Send(ctx, loadFrame))

	select {
	case f := <-got:
		assert.Equal(t, loadFrame, f)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}
