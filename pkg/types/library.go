// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Project is a unit of journalistic work grouping imported news items.
type Project struct {
	// ID is a random UUID assigned at creation.
	ID string `json:"id" yaml:"id"`

	// Name is the display name of the project.
	Name string `json:"name" yaml:"name"`

	// Description is free text entered by the user.
	Description string `json:"description" yaml:"description"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Hash is an optional content hash. Non-empty hashes are unique.
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// NewsInput is the user-supplied part of a news item.
type NewsInput struct {
	ProjectID   string         `json:"project_id" yaml:"project_id"`
	Title       string         `json:"title" yaml:"title"`
	Author      string         `json:"author" yaml:"author"`
	Source      string         `json:"source" yaml:"source"`
	Section     string         `json:"section" yaml:"section"`
	PublishedAt string         `json:"published_at" yaml:"published_at"`
	Keywords    []string       `json:"keywords" yaml:"keywords"`
	Metadata    map[string]any `json:"metadata" yaml:"metadata"`
	SEOScore    float64        `json:"seo_score" yaml:"seo_score"`
	BiasScore   float64        `json:"bias_score" yaml:"bias_score"`
	Hash        string         `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// News is a stored news item belonging to a project.
type News struct {
	NewsInput `yaml:",inline"`

	// ID is a random UUID assigned on import.
	ID string `json:"id" yaml:"id"`

	// ImportedAt is when the item was added to the library.
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
}

// TraceEntry records one library event for audit.
type TraceEntry struct {
	ID         string         `json:"id" yaml:"id"`
	Event      string         `json:"event" yaml:"event"`
	EntityType string         `json:"entity_type" yaml:"entity_type"`
	EntityID   string         `json:"entity_id" yaml:"entity_id"`
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp"`
	Details    map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}
