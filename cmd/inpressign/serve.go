// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/api"
	"github.com/pdiddy/inpressign/internal/library"
	"github.com/pdiddy/inpressign/internal/metrics"
	"github.com/pdiddy/inpressign/internal/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the commands and the library over HTTP",
	Long: `Serve starts the HTTP adapter used by the desktop front end. Commands
are exposed under /api/commands, the library under /api/projects and
/api/trace, and Prometheus metrics under /metrics.

Only requests addressed to localhost or a loopback IP are served; any
other Host header is answered with 403.

When .secrets/api-token exists, every /api route except /api/health
requires "Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	shell, err := newShell()
	if err != nil {
		return err
	}

	store, err := library.Open(appCfg.Library.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	token := loadedSecrets.Get(secrets.APIToken)
	if token == "" {
		logger.Warn("no api-token secret; the HTTP API is unauthenticated")
	}

	m := metrics.New()
	h := api.NewHandler(shell, store, m, logger, version)
	srv := api.NewServer(appCfg.Server, api.NewEcho(h, m, token), logger)

	logger.Info("starting server",
		zap.String("addr", appCfg.Server.Addr),
		zap.String("library", appCfg.Library.Path),
		zap.String("pdf_backend", string(appCfg.Extraction.PDFBackend)),
	)
	return srv.Run(cmd.Context())
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:7420)")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
