// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the inpressign CLI. It exposes the
// command shell (greet, extract, save-and-extract) to the terminal, serves
// it over HTTP for the desktop front end, and manages the project library.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/commands"
	"github.com/pdiddy/inpressign/internal/config"
	"github.com/pdiddy/inpressign/internal/extract"
	"github.com/pdiddy/inpressign/internal/logging"
	"github.com/pdiddy/inpressign/internal/secrets"
	"github.com/pdiddy/inpressign/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// v holds defaults, the config file, and INPRESSIGN_* overrides.
	v = config.New()

	// appCfg is the validated configuration, resolved before any subcommand runs.
	appCfg types.Config

	// logger writes to stderr so command output on stdout stays clean.
	logger = zap.NewNop()

	// loadedSecrets holds values loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the inpressign CLI.
var rootCmd = &cobra.Command{
	Use:   "inpressign",
	Short: "Local command shell for the InPressign journalism analysis suite",
	Long: `inpressign runs the commands behind the InPressign desktop suite: a
greeting, plain-text extraction from local files, and extraction from
uploaded base64 payloads, with PDFs read through pdftotext or a native
parser.

The same commands are served over HTTP by "inpressign serve" for the front
end. The "library" subcommands manage the local project and news database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		appCfg = cfg

		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l

		if f := v.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}

		s, err := secrets.Load(".secrets/", func(name string, err error) {
			logger.Warn("skipping unreadable secret", zap.String("name", name), zap.Error(err))
		})
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", zap.Strings("names", s.Names()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./inpressign.yaml or ~/.config/inpressign/inpressign.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("inpressign")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "inpressign"))
		}
	}

	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// newShell builds the command shell with the configured PDF backend.
func newShell() (*commands.Shell, error) {
	pdf, err := extract.NewPDFExtractor(appCfg.Extraction)
	if err != nil {
		return nil, err
	}
	svc := extract.NewService(appCfg.Extraction, pdf, logger)
	return commands.NewShell(svc, logger), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
