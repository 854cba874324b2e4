// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inpressign/pkg/types"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// errDegraded is returned under --strict when a command fell back to
// placeholder text.
var errDegraded = errors.New("extraction degraded")

// writeValue writes v to w as indented JSON or YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
}

// writeText writes s followed by a newline unless it already ends in one.
func writeText(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// writeResult prints an extraction result. With strict set, a degraded
// result is printed and then reported as errDegraded.
func writeResult(w io.Writer, format string, res types.Result, strict bool) error {
	var err error
	if format == formatText || format == "" {
		err = writeText(w, res.Text)
	} else {
		err = writeValue(w, format, res)
	}
	if err != nil {
		return err
	}

	if strict && res.IsDegraded() {
		return fmt.Errorf("%w: %s", errDegraded, res.Reason)
	}
	return nil
}

// readPayload resolves the save-and-extract input. A --file path is read
// and encoded; otherwise --data is used, or stdin when --data is empty,
// with line breaks removed.
// The returned name is the file's base name when --file is given.
func readPayload(data, file string, stdin io.Reader) (payload, name string, err error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", file, err)
		}
		return base64.StdEncoding.EncodeToString(raw), filepath.Base(file), nil
	}

	if data == "" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		data = string(raw)
	}

	// base64(1) wraps its output; the service rejects line breaks.
	data = strings.Join(strings.Fields(data), "")
	if data == "" {
		return "", "", errors.New("no payload: pass --data, --file, or base64 on stdin")
	}
	return data, "", nil
}
