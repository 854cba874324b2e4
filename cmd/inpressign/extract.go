// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/inpressign/pkg/types"
)

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract <path>",
	Short: "Print the text of a local file",
	Long: `Extract reads a file from disk and prints its text. Files that are not
valid UTF-8 and unreadable paths produce a placeholder message instead of
an error; use --strict to exit non-zero in that case.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := newShell()
		if err != nil {
			return err
		}

		res, err := shell.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeCommandResult(cmd, res)
	},
}

// --- save-and-extract ---

var saveAndExtractCmd = &cobra.Command{
	Use:   "save-and-extract",
	Short: "Extract text from a base64 payload",
	Long: `Save-and-extract decodes a base64 payload, stages it in the temp
directory under a unique name, extracts its text, and removes the staged
file. PDFs (by extension) go through the configured PDF backend; other
files are read as UTF-8 text.

The payload comes from --file (read and encoded for you), --data, or stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		file, _ := cmd.Flags().GetString("file")
		filename, _ := cmd.Flags().GetString("filename")

		payload, name, err := readPayload(data, file, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if filename == "" {
			filename = name
		}

		shell, err := newShell()
		if err != nil {
			return err
		}

		res, err := shell.SaveAndExtract(cmd.Context(), types.UploadRequest{Data: payload, Filename: filename})
		if err != nil {
			return err
		}
		return writeCommandResult(cmd, res)
	},
}

func writeCommandResult(cmd *cobra.Command, res types.Result) error {
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	return writeResult(cmd.OutOrStdout(), format, res, strict)
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, saveAndExtractCmd} {
		c.Flags().String("format", formatText, "output format: text, json, or yaml")
		c.Flags().Bool("strict", false, "exit non-zero when only placeholder text could be produced")
	}

	saveAndExtractCmd.Flags().String("data", "", "base64 file content (default: read stdin)")
	saveAndExtractCmd.Flags().String("file", "", "local file to encode and send as the payload")
	saveAndExtractCmd.Flags().String("filename", "", "file name used to pick the extractor (default: base name of --file)")
	saveAndExtractCmd.MarkFlagsMutuallyExclusive("data", "file")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(saveAndExtractCmd)
}
