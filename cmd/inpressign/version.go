// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inpressign/internal/extract"
	"github.com/pdiddy/inpressign/pkg/types"
)

// versionInfo describes the binary and the PDF path it would use.
type versionInfo struct {
	Version    string           `json:"version" yaml:"version"`
	Revision   string           `json:"revision,omitempty" yaml:"revision,omitempty"`
	GoVersion  string           `json:"go_version" yaml:"go_version"`
	Platform   string           `json:"platform" yaml:"platform"`
	PDFBackend types.PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`
	PDFReader  string           `json:"pdf_reader" yaml:"pdf_reader"`
	Library    string           `json:"library" yaml:"library"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of inpressign",
	Long: `Version prints the build version and VCS revision together with the
configured PDF backend and the reader it resolves to on this machine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pdf, err := extract.NewPDFExtractor(appCfg.Extraction)
		if err != nil {
			return err
		}
		bi, _ := debug.ReadBuildInfo()
		format, _ := cmd.Flags().GetString("format")
		return writeVersion(cmd.OutOrStdout(), format, newVersionInfo(appCfg, bi, pdf))
	},
}

func newVersionInfo(cfg types.Config, bi *debug.BuildInfo, pdf extract.PDFExtractor) versionInfo {
	info := versionInfo{
		Version:    version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		PDFBackend: cfg.Extraction.PDFBackend,
		Library:    cfg.Library.Path,
	}
	if info.PDFBackend == "" {
		info.PDFBackend = types.BackendPdftotext
	}

	switch p := pdf.(type) {
	case *extract.PdftotextExtractor:
		info.PDFReader = "pdftotext"
		if cfg.Extraction.PDFTool != "" {
			info.PDFReader = cfg.Extraction.PDFTool
		}
	case extract.NativeExtractor:
		info.PDFReader = "native"
	default:
		info.PDFReader = fmt.Sprintf("%T", p)
	}

	if bi != nil {
		var revision, modified string
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value
			}
		}
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if revision != "" && modified == "true" {
			revision += "-dirty"
		}
		info.Revision = revision
	}
	return info
}

func writeVersion(w io.Writer, format string, info versionInfo) error {
	if format != formatText && format != "" {
		return writeValue(w, format, info)
	}

	fmt.Fprintf(w, "inpressign %s\n", info.Version)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if info.Revision != "" {
		fmt.Fprintf(tw, "  revision:\t%s\n", info.Revision)
	}
	fmt.Fprintf(tw, "  go:\t%s %s\n", info.GoVersion, info.Platform)
	fmt.Fprintf(tw, "  pdf backend:\t%s (%s)\n", info.PDFBackend, info.PDFReader)
	fmt.Fprintf(tw, "  library:\t%s\n", info.Library)
	return tw.Flush()
}

func init() {
	versionCmd.Flags().String("format", formatText, "output format: text, json, or yaml")
	rootCmd.AddCommand(versionCmd)
}
