package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/config"
	"github.com/lyoapp/lyo/internal/engine"
	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/logger"
)

// newEngine builds the transport selected by engine.transport.
func newEngine(cfg config.Config, log *logger.Logger) (engine.Engine, error) {
	switch cfg.Engine.Transport {
	case config.TransportWebSocket:
		return engine.NewWebSocket(cfg.Engine.WebSocketURL), nil
	case config.TransportRedis:
		r, err := engine.NewRedis(cfg.Engine.RedisAddr, cfg.Engine.RedisChannel)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return engine.NewLog(log), nil
	}
}

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Inspect the classroom engine transport",
}

var engineListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print classroom commands published on the Redis channel",
	Long: `Subscribe to the Redis channel the classroom engine listens on and print
every command frame. Useful for checking what "lyo build --launch" sends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Engine.RedisAddr
		}
		channel, _ := cmd.Flags().GetString("channel")
		if channel == "" {
			channel = cfg.Engine.RedisChannel
		}

		r, err := engine.NewRedis(addr, channel)
		if err != nil {
			return err
		}
		defer r.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := r.Start(ctx); err != nil {
			return err
		}
		err = r.Subscribe(ctx, func(f engine.Frame) {
			if f.Method == launch.MethodLoadCourse {
				if m, err := launch.Decode([]byte(f.Payload)); err == nil {
					fmt.Printf("%s.%s  %q in %s (%s)\n", f.Target, f.Method, m.Title, m.Environment, m.CourseID)
					return
				}
			}
			fmt.Printf("%s.%s  %s\n", f.Target, f.Method, f.Payload)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Listening on %s channel %q (Ctrl-C to stop)\n", addr, channel)
		<-ctx.Done()
		return nil
	},
}

func init() {
	engineListenCmd.Flags().String("addr", "", "Redis address (defaults to engine.redis_addr)")
	engineListenCmd.Flags().String("channel", "", "Redis channel (defaults to engine.redis_channel)")
	engineCmd.AddCommand(engineListenCmd)
}
