// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/inpressign/pkg/types"
)

// AddNews imports a news item into its project and records an ADD_NEWS
// trace entry. An unknown project yields ErrNotFound; a reused non-empty
// hash yields ErrDuplicate.
func (s *Store) AddNews(ctx context.Context, in types.NewsInput) (types.News, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return types.News{}, fmt.Errorf("adding news: %w: project_id is required", ErrInvalid)
	}
	if in.Keywords == nil {
		in.Keywords = []string{}
	}
	if in.Metadata == nil {
		in.Metadata = map[string]any{}
	}

	n := types.News{
		NewsInput:  in,
		ID:         s.newID(),
		ImportedAt: s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.News{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO news (id, project_id, title, author, source, section, published_at,
			imported_at, hash, keywords, metadata, seo_score, bias_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ProjectID, n.Title, n.Author, n.Source, n.Section, n.PublishedAt,
		formatTime(n.ImportedAt), nullable(n.Hash),
		marshalJSON(n.Keywords, "[]"), marshalJSON(n.Metadata, "{}"),
		n.SEOScore, n.BiasScore,
	)
	if err != nil {
		return types.News{}, classify(err, "inserting news")
	}

	details := map[string]any{"project_id": n.ProjectID, "title": n.Title, "hash": n.Hash}
	if err := s.logTrace(ctx, tx, EventAddNews, "news", n.ID, details); err != nil {
		return types.News{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.News{}, fmt.Errorf("committing news: %w", err)
	}
	return n, nil
}

// ListNews returns the news of a project, most recently published first.
func (s *Store) ListNews(ctx context.Context, projectID string) ([]types.News, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, author, source, section, published_at,
			imported_at, hash, keywords, metadata, seo_score, bias_score
		 FROM news WHERE project_id = ?
		 ORDER BY published_at DESC, imported_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing news: %w", err)
	}
	defer rows.Close()

	items := []types.News{}
	for rows.Next() {
		var (
			n                  types.News
			imported           string
			hash               sql.NullString
			keywords, metadata string
		)
		err := rows.Scan(&n.ID, &n.ProjectID, &n.Title, &n.Author, &n.Source, &n.Section,
			&n.PublishedAt, &imported, &hash, &keywords, &metadata, &n.SEOScore, &n.BiasScore)
		if err != nil {
			return nil, fmt.Errorf("scanning news: %w", err)
		}
		n.ImportedAt = parseTime(imported)
		n.Hash = hash.String
		if err := json.Unmarshal([]byte(keywords), &n.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords of news %s: %w", n.ID, err)
		}
		if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of news %s: %w", n.ID, err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
