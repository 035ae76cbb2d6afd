package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyoapp/lyo/internal/classroom"
	"github.com/lyoapp/lyo/internal/engine"
)

// isolate points the default config lookup at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LYO_CONFIG", "")
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "prod", c.Log.Mode)
	assert.Equal(t, TransportLog, c.Engine.Transport)
	assert.Equal(t, engine.DefaultRedisChannel, c.Engine.RedisChannel)
	assert.Equal(t, 10, c.Outline.MaxLessonMinutes)
	assert.Equal(t, 2*time.Minute, c.Generation.Timeout)
	assert.Equal(t, classroom.DefaultConfig(), c.BridgeConfig())
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), `
log:
  mode: dev
outline:
  max_lesson_minutes: 0
  title_prefix: "Lesson: "
classroom:
  init_grace: 250ms
  xp_per_lesson: 20
engine:
  transport: websocket
  websocket_url: ws://localhost:9000/engine
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", c.Log.Mode)
	assert.Equal(t, 250*time.Millisecond, c.Classroom.InitGrace)
	assert.Equal(t, 20, c.BridgeConfig().XPPerLesson)
	assert.Equal(t, 64, c.Classroom.OutboxSize)
	assert.Equal(t, "ws://localhost:9000/engine", c.Engine.WebSocketURL)

	p := c.OutlinePolicy()
	assert.Equal(t, 0, p.MaxLessonMinutes)
	assert.Equal(t, "Lesson: ", p.TitlePrefix)
	assert.Empty(t, p.ContentTypes)
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lyo"), 0o755))
	writeConfig(t, filepath.Join(dir, "lyo"), "engine:\n  transport: redis\n  redis_addr: cache:6379\n")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, TransportRedis, c.Engine.Transport)
	assert.Equal(t, "cache:6379", c.Engine.RedisAddr)
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "log:\n  mode: dev\n")
	t.Setenv("LYO_CONFIG", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dev", c.Log.Mode)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "classroom:\n  outbox_size: 16\n")
	t.Setenv("LYO_CLASSROOM_OUTBOX_SIZE", "8")
	t.Setenv("LYO_GENERATION_TIMEOUT", "45s")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Classroom.OutboxSize)
	assert.Equal(t, 45*time.Second, c.Generation.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown transport", func(c *Config) { c.Engine.Transport = "carrier-pigeon" }},
		{"websocket without url", func(c *Config) { c.Engine.Transport = TransportWebSocket }},
		{"zero outbox", func(c *Config) { c.Classroom.OutboxSize = 0 }},
		{"negative bonus", func(c *Config) { c.Classroom.CompletionBonus = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, base.Validate())
}
