// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves application settings from defaults, an optional
// YAML config file, and INPRESSIGN_* environment variables through viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/inpressign/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g.
// INPRESSIGN_EXTRACTION_PDF_BACKEND=native.
const EnvPrefix = "INPRESSIGN"

// SetDefaults registers every key with its default value. Keys must be
// known to viper before Unmarshal for environment overrides to apply.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("extraction.temp_dir", os.TempDir())
	v.SetDefault("extraction.temp_prefix", "inpressign-")
	v.SetDefault("extraction.pdf_tool", "pdftotext")
	v.SetDefault("extraction.pdf_backend", string(types.BackendPdftotext))
	v.SetDefault("extraction.tool_timeout", 60*time.Second)

	v.SetDefault("server.addr", "127.0.0.1:7420")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("library.path", "inpressign.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// BindEnv makes v read INPRESSIGN_<SECTION>_<KEY> variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func Validate(cfg types.Config) error {
	switch cfg.Extraction.PDFBackend {
	case types.BackendPdftotext, types.BackendNative, types.BackendAuto:
	default:
		return fmt.Errorf("extraction.pdf_backend: unknown backend %q (want pdftotext, native, or auto)", cfg.Extraction.PDFBackend)
	}
	if cfg.Extraction.ToolTimeout <= 0 {
		return fmt.Errorf("extraction.tool_timeout: must be positive, got %s", cfg.Extraction.ToolTimeout)
	}
	if strings.ContainsAny(cfg.Extraction.TempPrefix, `/\`) {
		return fmt.Errorf("extraction.temp_prefix: must not contain path separators, got %q", cfg.Extraction.TempPrefix)
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr: must not be empty")
	}
	if cfg.Library.Path == "" {
		return fmt.Errorf("library.path: must not be empty")
	}
	return nil
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}
