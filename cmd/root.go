package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/config"
	"github.com/lyoapp/lyo/internal/logger"
	"github.com/lyoapp/lyo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lyo",
	Short: "Build AI-generated courses and launch them in the 3D classroom",
	Long: `Lyo builds a course outline from a topic and your learning preferences,
then hands it to the 3D classroom engine and tracks the session.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store.path and LYO_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides LYO_CONFIG)")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev or prod (overrides log.mode)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(generationsCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(engineCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what most commands need: config, a logger and the store.
type env struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

// loadConfig reads configuration honoring --config and --log.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if mode, _ := cmd.Flags().GetString("log"); mode != "" {
		cfg.Log.Mode = mode
	}
	return cfg, nil
}

// setup loads config, builds the logger and opens the store.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, log: log, store: s}, nil
}

// resolveDBPath returns the database path using --db (highest priority),
// then store.path from config, then LYO_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
