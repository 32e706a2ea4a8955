package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetrahedral/plymesh/internal/config"
	"github.com/tetrahedral/plymesh/internal/logger"
	"github.com/tetrahedral/plymesh/pkg/ply"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

var (
	globalFlags GlobalFlags
	cfg         *config.Config
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plytool",
	Short: "Inspect and convert binary Stanford PLY meshes",
	Long: `plytool reads and writes triangle meshes in the binary Stanford PLY
format, in either byte order.

Typical uses:
  plytool info bunny.ply              Show header and attribute layout
  plytool validate scans/*.ply        Check files decode cleanly
  plytool convert in.ply out.ply      Re-encode, optionally swapping byte order`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(globalFlags.ConfigPath)
		if err != nil {
			return err
		}

		// Flags beat the config file.
		if globalFlags.LogLevel != "" {
			cfg.Logging.Level = globalFlags.LogLevel
		}
		if globalFlags.LogFile != "" {
			cfg.Logging.LogFile = globalFlags.LogFile
		}

		log = logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "Write logs to this file")
}

// decodeOptions builds ply options from the loaded config.
func decodeOptions() *ply.Options {
	return &ply.Options{
		PerFaceToPerVertex: cfg.Codec.PerFaceToPerVertex,
		TriangleFastPath:   cfg.Codec.TriangleFastPath,
		ObjectIDAttribute:  cfg.Codec.ObjectIDAttribute,
		Log:                log,
	}
}
