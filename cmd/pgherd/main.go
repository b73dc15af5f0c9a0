// Command pgherd maintains a PostgreSQL replication-cluster node
// registry and discovers, at runtime, which registered node is the
// live writable primary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pgherd/pgherd/pkg/config"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "pgherd",
	Short:   "Replication-cluster node registry and primary discovery for PostgreSQL",
	Version: version,

	SilenceUsage: true,
}

var (
	cfgFile string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "pgherd.yaml", "path to this node's configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(primaryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(eventsCmd)
}

// setup loads the node configuration and builds the logger every
// command shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(levelStr string) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(levelStr); err == nil {
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level)

	return zap.New(core)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
