// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/inpressign/pkg/types"
)

// Trace event names written by the store.
const (
	EventCreateProject = "CREATE_PROJECT"
	EventAddNews       = "ADD_NEWS"
)

// CreateProject inserts a project and records a CREATE_PROJECT trace
// entry in the same transaction. A non-empty hash already used by another
// project yields ErrDuplicate.
func (s *Store) CreateProject(ctx context.Context, name, description, hash string) (types.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Project{}, fmt.Errorf("creating project: %w: name is required", ErrInvalid)
	}

	now := s.now()
	p := types.Project{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Hash:        hash,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Project{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at, hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullable(p.Hash),
	)
	if err != nil {
		return types.Project{}, classify(err, "inserting project")
	}

	details := map[string]any{"name": p.Name, "hash": p.Hash}
	if err := s.logTrace(ctx, tx, EventCreateProject, "project", p.ID, details); err != nil {
		return types.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Project{}, fmt.Errorf("committing project: %w", err)
	}
	return p, nil
}

// GetProject returns the project with id, or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id string) (types.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at, hash FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Project{}, fmt.Errorf("reading project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at, hash
		 FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (types.Project, error) {
	var (
		p                types.Project
		created, updated string
		hash             sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Description, &created, &updated, &hash); err != nil {
		return types.Project{}, err
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	p.Hash = hash.String
	return p, nil
}
