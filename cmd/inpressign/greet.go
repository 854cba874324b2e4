// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

var greetCmd = &cobra.Command{
	Use:   "greet [name]",
	Short: "Print the suite's welcome message",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		shell, err := newShell()
		if err != nil {
			return err
		}
		text := shell.Greet(name)

		format, _ := cmd.Flags().GetString("format")
		if format == formatText {
			return writeText(cmd.OutOrStdout(), text)
		}
		return writeValue(cmd.OutOrStdout(), format, map[string]string{"text": text})
	},
}

func init() {
	greetCmd.Flags().String("format", formatText, "output format: text, json, or yaml")

	rootCmd.AddCommand(greetCmd)
}
