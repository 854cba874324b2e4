// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package commands defines the operations the front end can invoke and the
// Shell that implements them. Host adapters (the CLI, the HTTP API) bind
// to the Commands interface and hold no logic of their own.
package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/pkg/types"
)

// Command names as exposed to the front end.
const (
	NameGreet          = "greet"
	NameExtract        = "extract"
	NameSaveAndExtract = "save_and_extract"
)

// Commands is the contract between the front end and the backend.
type Commands interface {
	// Greet returns the welcome message for name.
	Greet(name string) string

	// Extract reads a local text file. Unreadable or non-text files give a
	// degraded result, not an error.
	Extract(ctx context.Context, path string) (types.Result, error)

	// SaveAndExtract decodes an upload and extracts its text. It fails only
	// with *types.DecodeError or *types.WriteError.
	SaveAndExtract(ctx context.Context, req types.UploadRequest) (types.Result, error)
}

// Command describes one registered operation.
type Command struct {
	Name    string   `json:"name" yaml:"name"`
	Summary string   `json:"summary" yaml:"summary"`
	Params  []string `json:"params" yaml:"params"`
}

// Registry lists every command in a fixed order.
func Registry() []Command {
	return []Command{
		{Name: NameGreet, Summary: "Format the welcome message", Params: []string{"name"}},
		{Name: NameExtract, Summary: "Read a local file as text", Params: []string{"path"}},
		{Name: NameSaveAndExtract, Summary: "Decode a base64 upload and extract its text", Params: []string{"data", "filename"}},
	}
}

// Extractor is the extraction backend a Shell delegates to.
type Extractor interface {
	ReadText(path string) types.Result
	SaveAndExtract(ctx context.Context, req types.UploadRequest) (types.Result, error)
}

// Shell implements Commands on top of an Extractor.
type Shell struct {
	extractor Extractor
	logger    *zap.Logger
}

// NewShell returns a Shell delegating to extractor.
func NewShell(extractor Extractor, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{extractor: extractor, logger: logger}
}

var _ Commands = (*Shell)(nil)

func (s *Shell) Greet(name string) string {
	return fmt.Sprintf("Bienvenido a %s, la suite local de análisis periodístico.", name)
}

func (s *Shell) Extract(ctx context.Context, path string) (types.Result, error) {
	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}
	start := time.Now()
	res := s.extractor.ReadText(path)
	s.logResult(NameExtract, res, time.Since(start))
	return res, nil
}

func (s *Shell) SaveAndExtract(ctx context.Context, req types.UploadRequest) (types.Result, error) {
	start := time.Now()
	res, err := s.extractor.SaveAndExtract(ctx, req)
	if err != nil {
		s.logger.Error("command failed",
			zap.String("command", NameSaveAndExtract),
			zap.String("filename", req.Filename),
			zap.Error(err))
		return types.Result{}, err
	}
	s.logResult(NameSaveAndExtract, res, time.Since(start))
	return res, nil
}

func (s *Shell) logResult(command string, res types.Result, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("command", command),
		zap.String("filename", res.Filename),
		zap.String("kind", string(res.Kind)),
		zap.Duration("elapsed", elapsed),
	}
	if res.IsDegraded() {
		fields = append(fields, zap.String("reason", string(res.Reason)))
		s.logger.Warn("degraded result", fields...)
		return
	}
	s.logger.Debug("command completed", append(fields, zap.Int("chars", len(res.Text)))...)
}
