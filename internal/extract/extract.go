// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract implements the upload extraction service: decode an
// uploaded payload, materialize it as a scoped temp file, and extract its
// text, falling back to a degraded result when no real text is available.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/tool"
	"github.com/pdiddy/inpressign/pkg/types"
)

const (
	defaultTempPrefix  = "inpressign-"
	defaultToolTimeout = 60 * time.Second
)

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// Sanitize replaces every path separator in name with an underscore. The
// extension is preserved. Leading dots are kept, so the result is only safe
// as the tail of a name joined under a fixed directory.
func Sanitize(name string) string {
	return separatorReplacer.Replace(name)
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Service turns uploads and local files into text results.
type Service struct {
	tempDir string
	prefix  string
	timeout time.Duration
	pdf     PDFExtractor
	logger  *zap.Logger
	newID   func() string
}

// NewService creates a service writing temp files under cfg.TempDir and
// extracting PDFs with pdf. Zero config fields take their defaults.
func NewService(cfg types.ExtractionConfig, pdf PDFExtractor, logger *zap.Logger) *Service {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	prefix := cfg.TempPrefix
	if prefix == "" {
		prefix = defaultTempPrefix
	}
	timeout := cfg.ToolTimeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tempDir: tempDir,
		prefix:  prefix,
		timeout: timeout,
		pdf:     pdf,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// ReadText reads the file at path as text. It never fails: an unreadable
// file or non-UTF-8 content produces a degraded result naming the path.
func (s *Service) ReadText(path string) types.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Degraded(path, types.ReasonUnreadable,
			fmt.Sprintf("[%s could not be read: %v]", path, err))
	}
	return textResult(path, data)
}

// SaveAndExtract decodes req.Data, writes it to a uniquely named temp file,
// and extracts its text. Only two errors are returned: *types.DecodeError
// for malformed base64 and *types.WriteError for temp file I/O. Every
// later failure becomes a degraded result that mentions req.Filename. The
// temp file is removed before returning on every path.
func (s *Service) SaveAndExtract(ctx context.Context, req types.UploadRequest) (types.Result, error) {
	data, err := decodeBase64(req.Data)
	if err != nil {
		return types.Result{}, &types.DecodeError{Filename: req.Filename, Err: err}
	}

	safeName := Sanitize(req.Filename)
	path, err := s.writeTemp(safeName, data)
	if err != nil {
		return types.Result{}, err
	}
	defer s.removeTemp(path)

	if IsPDF(safeName) {
		return s.extractPDF(ctx, path, req.Filename), nil
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return types.Degraded(req.Filename, types.ReasonUnreadable,
			fmt.Sprintf("[%s could not be read back: %v]", req.Filename, err)), nil
	}
	return textResult(req.Filename, written), nil
}

// decodeBase64 decodes standard base64. The stdlib decoder skips CR and LF
// anywhere in the input; line-wrapped payloads are rejected here instead.
func decodeBase64(data string) ([]byte, error) {
	if i := strings.IndexAny(data, "\r\n"); i >= 0 {
		return nil, base64.CorruptInputError(i)
	}
	return base64.StdEncoding.DecodeString(data)
}

// tempPath builds the destination for safeName. safeName carries no
// separators, so the result always sits directly inside tempDir.
func (s *Service) tempPath(safeName string) string {
	return filepath.Join(s.tempDir, s.prefix+s.newID()+"-"+safeName)
}

func (s *Service) writeTemp(safeName string, data []byte) (string, error) {
	path := s.tempPath(safeName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", &types.WriteError{Path: path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.removeTemp(path)
		return "", &types.WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		s.removeTemp(path)
		return "", &types.WriteError{Path: path, Err: err}
	}

	s.logger.Debug("temp file written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func (s *Service) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("removing temp file", zap.String("path", path), zap.Error(err))
	}
}

// extractPDF runs the PDF backend under the service timeout and maps its
// failures onto degraded results.
func (s *Service) extractPDF(ctx context.Context, path, filename string) types.Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.pdf.ExtractText(ctx, path)
	if err == nil {
		return types.OK(filename, text)
	}

	var (
		exitErr  *tool.ExitError
		spawnErr *tool.SpawnError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.Degraded(filename, types.ReasonToolTimeout,
			fmt.Sprintf("Text extraction for %s did not finish within %s: %v", filename, s.timeout, err))
	case errors.Is(err, context.Canceled):
		return types.Degraded(filename, types.ReasonCanceled,
			fmt.Sprintf("Text extraction for %s was canceled", filename))
	case errors.As(err, &exitErr):
		return types.Degraded(filename, types.ReasonToolFailed,
			fmt.Sprintf("%s could not extract text from %s: %s", exitErr.Tool, filename, strings.TrimSpace(exitErr.Stderr)))
	case errors.As(err, &spawnErr):
		return types.Degraded(filename, types.ReasonToolMissing,
			fmt.Sprintf("Could not run %s to extract text from %s: %v", spawnErr.Tool, filename, spawnErr.Err))
	default:
		return types.Degraded(filename, types.ReasonParseFailed,
			fmt.Sprintf("Could not extract text from %s: %v", filename, err))
	}
}

func textResult(name string, data []byte) types.Result {
	if !utf8.Valid(data) {
		return types.Degraded(name, types.ReasonNotText,
			fmt.Sprintf("[%s is not a text file; no preview available]", name))
	}
	return types.OK(name, string(data))
}
