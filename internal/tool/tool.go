// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tool runs external command-line programs and classifies how they
// fail: the binary could not be started, or it ran and exited non-zero.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// ExitError reports a tool that started but exited with a non-zero status.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.Code, msg)
}

// SpawnError reports a tool that could not be started at all, typically
// because it is not installed.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Tool is one external program addressed by binary name or path.
type Tool struct {
	bin  string
	exec executor
}

// New returns a Tool that runs bin through os/exec.
func New(bin string) *Tool {
	return newTool(bin, defaultExec)
}

func newTool(bin string, exec executor) *Tool {
	return &Tool{bin: bin, exec: exec}
}

// Name returns the binary the tool runs.
func (t *Tool) Name() string { return t.bin }

// Available reports whether the binary can be found on PATH.
func (t *Tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

// Output runs the tool with args and returns its captured standard output.
// A context that ends before the tool finishes yields an error wrapping
// ctx.Err(). A non-zero exit yields *ExitError carrying standard error;
// any other start failure yields *SpawnError.
func (t *Tool) Output(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	err := t.exec.Run(ctx, t.bin, args, &stdout, &stderr)
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("running %s: %w", t.bin, ctxErr)
	}

	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return nil, &ExitError{
			Tool:   t.bin,
			Code:   exitErr.ExitCode(),
			Stderr: stderr.String(),
		}
	}

	return nil, &SpawnError{Tool: t.bin, Err: err}
}
