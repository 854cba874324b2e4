// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/inpressign/internal/library"
	"github.com/pdiddy/inpressign/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local project library (projects, news, trace, export)",
	Long: `Library manages the SQLite database of journalism projects and the news
items imported into them. Every write is recorded in a trace log that can
be inspected per entity.`,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and list projects",
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Import and list news items of a project",
}

// --- project create ---

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		hash, _ := cmd.Flags().GetString("hash")

		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.CreateProject(cmd.Context(), args[0], description, hash)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == formatText {
			return writeText(cmd.OutOrStdout(), fmt.Sprintf("Created project %s (%s)", p.Name, p.ID))
		}
		return writeValue(cmd.OutOrStdout(), format, p)
	},
}

// --- project list ---

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		projects, err := store.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == formatText {
			return formatProjects(cmd.OutOrStdout(), projects)
		}
		return writeValue(cmd.OutOrStdout(), format, projects)
	},
}

func formatProjects(w io.Writer, projects []types.Project) error {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-30s  %s\n", "ID", "Name", "Created")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, p := range projects {
		fmt.Fprintf(w, "%-36s  %-30s  %s\n", p.ID, truncate(p.Name, 30), p.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\n%d projects\n", len(projects))
	return nil
}

// --- news add ---

var newsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Import a news item into a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := newsInputFromFlags(cmd)

		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.AddNews(cmd.Context(), in)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == formatText {
			return writeText(cmd.OutOrStdout(), fmt.Sprintf("Added news %q (%s)", n.Title, n.ID))
		}
		return writeValue(cmd.OutOrStdout(), format, n)
	},
}

func newsInputFromFlags(cmd *cobra.Command) types.NewsInput {
	var in types.NewsInput
	in.ProjectID, _ = cmd.Flags().GetString("project")
	in.Title, _ = cmd.Flags().GetString("title")
	in.Author, _ = cmd.Flags().GetString("author")
	in.Source, _ = cmd.Flags().GetString("source")
	in.Section, _ = cmd.Flags().GetString("section")
	in.PublishedAt, _ = cmd.Flags().GetString("published-at")
	in.Keywords, _ = cmd.Flags().GetStringSlice("keywords")
	in.SEOScore, _ = cmd.Flags().GetFloat64("seo-score")
	in.BiasScore, _ = cmd.Flags().GetFloat64("bias-score")
	in.Hash, _ = cmd.Flags().GetString("hash")
	return in
}

// --- news list ---

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the news of a project, most recently published first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetString("project")

		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := store.GetProject(cmd.Context(), projectID); err != nil {
			return err
		}
		items, err := store.ListNews(cmd.Context(), projectID)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == formatText {
			return formatNews(cmd.OutOrStdout(), items)
		}
		return writeValue(cmd.OutOrStdout(), format, items)
	},
}

func formatNews(w io.Writer, items []types.News) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No news.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-40s  %-20s  %-20s\n", "Published", "Title", "Author", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, n := range items {
		fmt.Fprintf(w, "%-12s  %-40s  %-20s  %-20s\n",
			truncate(n.PublishedAt, 12), truncate(n.Title, 40), truncate(n.Author, 20), truncate(n.Source, 20))
	}
	fmt.Fprintf(w, "\n%d news items\n", len(items))
	return nil
}

// --- trace ---

var traceCmd = &cobra.Command{
	Use:   "trace <entity-id>",
	Short: "Show the trace log of a project or news item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListTrace(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format != formatText {
			return writeValue(cmd.OutOrStdout(), format, entries)
		}

		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No trace entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s  %-16s  %s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Event, e.EntityType, e.EntityID)
		}
		return nil
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every project and its news to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		store, err := library.Open(appCfg.Library.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if output == "" {
			return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := store.Export(cmd.Context(), f, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	for _, c := range []*cobra.Command{projectCreateCmd, projectListCmd, newsAddCmd, newsListCmd, traceCmd} {
		c.Flags().String("format", formatText, "output format: text, json, or yaml")
	}

	projectCreateCmd.Flags().String("description", "", "project description")
	projectCreateCmd.Flags().String("hash", "", "optional content hash; must be unique")

	newsAddCmd.Flags().String("project", "", "project ID (required)")
	newsAddCmd.Flags().String("title", "", "headline")
	newsAddCmd.Flags().String("author", "", "byline")
	newsAddCmd.Flags().String("source", "", "publication or outlet")
	newsAddCmd.Flags().String("section", "", "section of the publication")
	newsAddCmd.Flags().String("published-at", "", "publication date, e.g. 2026-03-01")
	newsAddCmd.Flags().StringSlice("keywords", nil, "comma-separated keywords")
	newsAddCmd.Flags().Float64("seo-score", 0, "SEO score")
	newsAddCmd.Flags().Float64("bias-score", 0, "bias score")
	newsAddCmd.Flags().String("hash", "", "optional content hash; must be unique")
	_ = newsAddCmd.MarkFlagRequired("project")

	newsListCmd.Flags().String("project", "", "project ID (required)")
	_ = newsListCmd.MarkFlagRequired("project")

	exportCmd.Flags().String("format", library.FormatYAML, "export format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	projectCmd.AddCommand(projectCreateCmd, projectListCmd)
	newsCmd.AddCommand(newsAddCmd, newsListCmd)
	libraryCmd.AddCommand(projectCmd, newsCmd, traceCmd, exportCmd)
	rootCmd.AddCommand(libraryCmd)
}
