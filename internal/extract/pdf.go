// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/inpressign/internal/tool"
	"github.com/pdiddy/inpressign/pkg/types"
)

const defaultPDFTool = "pdftotext"

// PDFExtractor turns a PDF file on disk into plain text. Different backends
// (an external tool, an in-process parser) implement this interface.
type PDFExtractor interface {
	// ExtractText reads the PDF at path and returns its text layer.
	ExtractText(ctx context.Context, path string) (string, error)
}

// PdftotextExtractor runs an external tool as `<tool> <path> -` and takes
// the text it writes to standard output.
type PdftotextExtractor struct {
	tool *tool.Tool
}

// NewPdftotextExtractor wraps t. Availability is not checked here; a
// missing binary surfaces as *tool.SpawnError on the first call.
func NewPdftotextExtractor(t *tool.Tool) *PdftotextExtractor {
	return &PdftotextExtractor{tool: t}
}

// ExtractText runs the tool against path.
func (p *PdftotextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	out, err := p.tool.Output(ctx, path, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NativeExtractor parses PDFs in-process with github.com/ledongthuc/pdf.
// Only the embedded text layer is read; scanned pages yield no text.
type NativeExtractor struct {
	// parse replaces readTextLayer in tests.
	parse func(path string) (string, error)
}

// ExtractText reads the text layer of path. Parsing runs on its own
// goroutine so that ctx bounds the call; on expiry the parse is abandoned
// and ctx.Err() is returned.
func (n NativeExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parse := n.parse
	if parse == nil {
		parse = readTextLayer
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := parse(path)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readTextLayer concatenates the plain text of every page. The parser
// panics on some malformed inputs; that is reported as an error.
func readTextLayer(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}
	return buf.String(), nil
}

// NewPDFExtractor builds the backend selected by cfg. The auto backend
// prefers the external tool when it is on PATH at construction time.
func NewPDFExtractor(cfg types.ExtractionConfig) (PDFExtractor, error) {
	bin := cfg.PDFTool
	if bin == "" {
		bin = defaultPDFTool
	}

	switch cfg.PDFBackend {
	case "", types.BackendPdftotext:
		return NewPdftotextExtractor(tool.New(bin)), nil
	case types.BackendNative:
		return NativeExtractor{}, nil
	case types.BackendAuto:
		t := tool.New(bin)
		if t.Available() {
			return NewPdftotextExtractor(t), nil
		}
		return NativeExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown PDF backend %q: want pdftotext, native, or auto", cfg.PDFBackend)
	}
}
