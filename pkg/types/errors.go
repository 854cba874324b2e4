// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the two errors the extraction commands surface.
// Match them with errors.Is; use errors.As for the detailed types.
var (
	ErrDecode = errors.New("invalid base64 payload")
	ErrWrite  = errors.New("temp file write failed")
)

// DecodeError reports an upload payload that is not valid base64.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding payload for %s: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// WriteError reports a failure to create or write the temp file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing temp file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrWrite) match any WriteError.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }
