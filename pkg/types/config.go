package types

import "time"

// PDFBackend identifies how PDF uploads are turned into text.
type PDFBackend string

const (
	// BackendPdftotext runs an external command-line tool.
	BackendPdftotext PDFBackend = "pdftotext"
	// BackendNative parses the PDF in-process.
	BackendNative PDFBackend = "native"
	// BackendAuto uses the external tool when it is on PATH, native otherwise.
	BackendAuto PDFBackend = "auto"
)

// ExtractionConfig holds settings for the upload extraction service.
type ExtractionConfig struct {
	// TempDir is where uploads are materialized (default os.TempDir()).
	TempDir string `json:"temp_dir" yaml:"temp_dir" mapstructure:"temp_dir"`

	// TempPrefix starts every temp file name (default "inpressign-").
	TempPrefix string `json:"temp_prefix" yaml:"temp_prefix" mapstructure:"temp_prefix"`

	// PDFTool is the binary invoked as `<tool> <path> -` (default "pdftotext").
	PDFTool string `json:"pdf_tool" yaml:"pdf_tool" mapstructure:"pdf_tool"`

	// PDFBackend selects pdftotext, native, or auto.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend" mapstructure:"pdf_backend"`

	// ToolTimeout bounds one PDF extraction (default 60s).
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout" mapstructure:"tool_timeout"`
}

// ServerConfig holds settings for the local HTTP host adapter.
type ServerConfig struct {
	// Addr is the listen address (default "127.0.0.1:7420").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LibraryConfig holds settings for the project library database.
type LibraryConfig struct {
	// Path is the SQLite database file (default "inpressign.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the application.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Library    LibraryConfig    `json:"library" yaml:"library" mapstructure:"library"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
