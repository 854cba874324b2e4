// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/inpressign/pkg/types"
)

// LogTrace appends an entry to the trace log outside of any other write.
func (s *Store) LogTrace(ctx context.Context, event, entityType, entityID string, details map[string]any) error {
	return s.logTrace(ctx, s.db, event, entityType, entityID, details)
}

func (s *Store) logTrace(ctx context.Context, ex execer, event, entityType, entityID string, details map[string]any) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO trace_log (id, event, entity_type, entity_id, timestamp, details)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.newID(), event, entityType, entityID, formatTime(s.now()), marshalJSON(details, "{}"),
	)
	if err != nil {
		return fmt.Errorf("logging %s trace: %w", event, err)
	}
	return nil
}

// ListTrace returns the trace entries recorded for an entity, newest first.
func (s *Store) ListTrace(ctx context.Context, entityID string) ([]types.TraceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event, entity_type, entity_id, timestamp, details
		 FROM trace_log WHERE entity_id = ? ORDER BY timestamp DESC`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing trace: %w", err)
	}
	defer rows.Close()

	entries := []types.TraceEntry{}
	for rows.Next() {
		var (
			e                  types.TraceEntry
			timestamp, details string
		)
		if err := rows.Scan(&e.ID, &e.Event, &e.EntityType, &e.EntityID, &timestamp, &details); err != nil {
			return nil, fmt.Errorf("scanning trace: %w", err)
		}
		e.Timestamp = parseTime(timestamp)
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, fmt.Errorf("decoding trace details %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
