// Package config loads application settings from defaults, an optional
// YAML file and LYO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lyoapp/lyo/internal/classroom"
	"github.com/lyoapp/lyo/internal/engine"
	"github.com/lyoapp/lyo/internal/outline"
)

// Engine transports.
const (
	TransportLog       = "log"
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

// Config holds application configuration. LLM provider settings are read
// separately by the llm package.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Store      StoreConfig      `mapstructure:"store"`
	Outline    OutlineConfig    `mapstructure:"outline"`
	Classroom  ClassroomConfig  `mapstructure:"classroom"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Generation GenerationConfig `mapstructure:"generation"`
}

type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode string `mapstructure:"mode"`
}

type StoreConfig struct {
	// Path of the sqlite database. Empty means store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type OutlineConfig struct {
	MaxLessonMinutes int    `mapstructure:"max_lesson_minutes"`
	TitlePrefix      string `mapstructure:"title_prefix"`
}

type ClassroomConfig struct {
	InitGrace       time.Duration `mapstructure:"init_grace"`
	OutboxSize      int           `mapstructure:"outbox_size"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"`
	XPPerLesson     int           `mapstructure:"xp_per_lesson"`
	CompletionBonus int           `mapstructure:"completion_bonus"`
}

type EngineConfig struct {
	Transport    string `mapstructure:"transport"`
	WebSocketURL string `mapstructure:"websocket_url"`
	RedisAddr    string `mapstructure:"redis_addr"`
	RedisChannel string `mapstructure:"redis_channel"`
}

type GenerationConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	cls := classroom.DefaultConfig()

	v.SetDefault("log.mode", "prod")
	v.SetDefault("store.path", "")
	v.SetDefault("outline.max_lesson_minutes", outline.DefaultMaxLessonMinutes)
	v.SetDefault("outline.title_prefix", "")
	v.SetDefault("classroom.init_grace", cls.InitGrace)
	v.SetDefault("classroom.outbox_size", cls.OutboxSize)
	v.SetDefault("classroom.send_timeout", cls.SendTimeout)
	v.SetDefault("classroom.xp_per_lesson", cls.XPPerLesson)
	v.SetDefault("classroom.completion_bonus", cls.CompletionBonus)
	v.SetDefault("engine.transport", TransportLog)
	v.SetDefault("engine.websocket_url", "")
	v.SetDefault("engine.redis_addr", "localhost:6379")
	v.SetDefault("engine.redis_channel", engine.DefaultRedisChannel)
	v.SetDefault("generation.timeout", 2*time.Minute)
}

// Load reads configuration. path names a config file explicitly and must
// exist; when empty, LYO_CONFIG is tried and then
// $XDG_CONFIG_HOME/lyo/config.yaml, which may be absent. Env overrides use
// the prefix LYO_ with dots replaced by underscores, e.g.
// LYO_ENGINE_TRANSPORT.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv("LYO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LYO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/lyo, falling back to ~/.config/lyo.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lyo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lyo")
}

// Validate rejects settings the classroom cannot run with.
func (c Config) Validate() error {
	switch c.Engine.Transport {
	case TransportLog, TransportRedis:
	case TransportWebSocket:
		if c.Engine.WebSocketURL == "" {
			return fmt.Errorf("engine.websocket_url is required for the websocket transport")
		}
	default:
		return fmt.Errorf("unknown engine transport %q", c.Engine.Transport)
	}
	if c.Classroom.OutboxSize <= 0 {
		return fmt.Errorf("classroom.outbox_size must be positive, got %d", c.Classroom.OutboxSize)
	}
	if c.Classroom.XPPerLesson < 0 || c.Classroom.CompletionBonus < 0 {
		return fmt.Errorf("classroom xp settings must not be negative")
	}
	return nil
}

// BridgeConfig converts the classroom settings for classroom.NewBridge.
func (c Config) BridgeConfig() classroom.Config {
	return classroom.Config{
		InitGrace:       c.Classroom.InitGrace,
		OutboxSize:      c.Classroom.OutboxSize,
		SendTimeout:     c.Classroom.SendTimeout,
		XPPerLesson:     c.Classroom.XPPerLesson,
		CompletionBonus: c.Classroom.CompletionBonus,
	}
}

// OutlinePolicy returns the flattening policy. Content types are left
// empty so the learner's preferences apply.
func (c Config) OutlinePolicy() outline.Policy {
	return outline.Policy{
		MaxLessonMinutes: c.Outline.MaxLessonMinutes,
		TitlePrefix:      c.Outline.TitlePrefix,
	}
}
