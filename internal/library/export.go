// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inpressign/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportProject holds a project together with its news for export.
type ExportProject struct {
	types.Project `yaml:",inline"`
	News          []types.News `json:"news" yaml:"news"`
}

// Export writes every project with its news to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatYAML, "":
		data, err = yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q: want yaml or json", format)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportProject, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportProject, len(projects))
	for i, p := range projects {
		news, err := s.ListNews(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("querying news of %s for export: %w", p.ID, err)
		}
		entries[i] = ExportProject{Project: p, News: news}
	}
	return entries, nil
}
