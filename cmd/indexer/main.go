package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bhuan/monad-plays-pokemon/internal/config"
	"github.com/bhuan/monad-plays-pokemon/internal/supervisor"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Collaborative-play indexer: chain votes in, frames and game state out",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the indexer",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "chain HTTP RPC URL")
	runCmd.Flags().String("ws", "", "chain websocket RPC URL")
	runCmd.Flags().String("vote-contract", "", "vote contract address")
	runCmd.Flags().Uint64("window-size", 5, "blocks per vote window")
	runCmd.Flags().Uint64("block-time-ms", 400, "expected block time in milliseconds")
	runCmd.Flags().Int("port", 3001, "HTTP/websocket listen port")
	runCmd.Flags().String("static-dir", "", "optional static asset directory served at /")
	runCmd.Flags().String("rom-url", "", "ROM download URL used when the ROM is absent")
	runCmd.Flags().String("save-dir", "./data/saves", "save state directory")
	runCmd.Flags().Int("fps", 60, "emulator frames per second")
	runCmd.Flags().Duration("autosave-every", 60*time.Second, "save state interval")
	runCmd.Flags().Duration("gamestate-every", 2*time.Second, "game state sampling interval")
	runCmd.Flags().Duration("startup-barrier", 5*time.Second, "production startup delay")
	runCmd.Flags().Bool("production", false, "enable the production startup barrier")
	runCmd.Flags().Bool("relay-enabled", false, "enable the gasless relay")
	runCmd.Flags().String("relay-key", "", "relay signing key (hex)")
	runCmd.Flags().String("delegation-contract", "", "delegation contract address")
	runCmd.Flags().Int("max-cached-votes", 100, "recent vote buffer size")
	runCmd.Flags().Int("max-cached-actions", 50, "recent result buffer size")
	runCmd.Flags().Int("max-encodes", 8, "max concurrent frame compressions")
	runCmd.Flags().Int("jpeg-quality", 75, "frame JPEG quality")
	runCmd.Flags().String("journal", "", "optional window-result journal JSONL path")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("ws", cfg.WSURL),
		zap.String("vote_contract", cfg.VoteContract),
		zap.Uint64("window_size", cfg.WindowSize),
		zap.Int("port", cfg.Port),
		zap.Bool("relay", cfg.RelayEnabled),
	)

	return supervisor.New(cfg, logger).Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
