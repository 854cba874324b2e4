// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the inpressign command
// shell: upload requests, tagged extraction results, the errors the
// extraction commands surface, library records, and configuration.
package types

// UploadRequest carries an encoded file payload from the front end.
type UploadRequest struct {
	// Data is the file content as standard base64 text.
	Data string `json:"data" yaml:"data"`

	// Filename is the name the user gave the file. It is only used to sniff
	// the extension and to build a temp path after sanitization.
	Filename string `json:"filename" yaml:"filename"`
}

// ResultKind tags an extraction result as real text or a fallback.
type ResultKind string

const (
	// ResultOK means Text holds content read or extracted from the file.
	ResultOK ResultKind = "ok"

	// ResultDegraded means Text holds a diagnostic or placeholder message.
	ResultDegraded ResultKind = "degraded"
)

// DegradedReason names why a result fell back to placeholder text.
type DegradedReason string

const (
	ReasonToolMissing DegradedReason = "tool_missing"
	ReasonToolFailed  DegradedReason = "tool_failed"
	ReasonToolTimeout DegradedReason = "tool_timeout"
	ReasonCanceled    DegradedReason = "canceled"
	ReasonParseFailed DegradedReason = "parse_failed"
	ReasonNotText     DegradedReason = "not_text"
	ReasonUnreadable  DegradedReason = "unreadable"
)

// Result is the outcome of an extraction command. Hard failures are
// reported as errors (DecodeError, WriteError), never as a Result.
type Result struct {
	// Kind distinguishes real text from a fallback message.
	Kind ResultKind `json:"kind" yaml:"kind"`

	// Text is the extracted text, or the human-readable diagnostic when
	// Kind is ResultDegraded.
	Text string `json:"text" yaml:"text"`

	// Reason is set only for degraded results.
	Reason DegradedReason `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Filename is the original filename or path the result refers to.
	Filename string `json:"filename" yaml:"filename"`
}

// OK builds a result carrying real text.
func OK(filename, text string) Result {
	return Result{Kind: ResultOK, Text: text, Filename: filename}
}

// Degraded builds a fallback result with a diagnostic message.
func Degraded(filename string, reason DegradedReason, message string) Result {
	return Result{Kind: ResultDegraded, Text: message, Reason: reason, Filename: filename}
}

// IsDegraded reports whether the result carries fallback text.
func (r Result) IsDegraded() bool {
	return r.Kind == ResultDegraded
}
