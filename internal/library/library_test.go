package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/inpressign/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	// Step the clock one second per call so orderings are deterministic.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func mustProject(t *testing.T, s *Store, name, hash string) types.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), name, "", hash)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// --- projects ---

func TestCreateAndListProjects(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := mustProject(t, s, "Elecciones 2026", "")
	second := mustProject(t, s, "Sequía", "abc123")

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", first.ID, second.ID)
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != second.ID {
		t.Errorf("expected newest project first, got %q", projects[0].Name)
	}
	if projects[0].Hash != "abc123" || projects[1].Hash != "" {
		t.Errorf("unexpected hashes: %q, %q", projects[0].Hash, projects[1].Hash)
	}
	if !projects[1].CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at round trip: got %v, want %v", projects[1].CreatedAt, first.CreatedAt)
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	s := testStore(t)
	_, err := s.CreateProject(context.Background(), "   ", "desc", "")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateProjectDuplicateHash(t *testing.T) {
	s := testStore(t)
	mustProject(t, s, "A", "same")

	_, err := s.CreateProject(context.Background(), "B", "", "same")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	projects, err := s.ListProjects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Errorf("duplicate insert should roll back, got %d projects", len(projects))
	}
}

func TestEmptyHashesDoNotCollide(t *testing.T) {
	s := testStore(t)
	mustProject(t, s, "A", "")
	mustProject(t, s, "B", "")
}

func TestGetProject(t *testing.T) {
	s := testStore(t)
	p := mustProject(t, s, "A", "")

	got, err := s.GetProject(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "A" {
		t.Errorf("expected name A, got %q", got.Name)
	}

	_, err = s.GetProject(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- news ---

func TestAddAndListNews(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := mustProject(t, s, "A", "")

	older, err := s.AddNews(ctx, types.NewsInput{
		ProjectID:   p.ID,
		Title:       "Primera",
		PublishedAt: "2026-01-10",
		Keywords:    []string{"agua", "campo"},
		Metadata:    map[string]any{"words": 420.0},
		SEOScore:    0.7,
	})
	if err != nil {
		t.Fatal(err)
	}
	newer, err := s.AddNews(ctx, types.NewsInput{ProjectID: p.ID, Title: "Segunda", PublishedAt: "2026-02-01"})
	if err != nil {
		t.Fatal(err)
	}

	items, err := s.ListNews(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 news, got %d", len(items))
	}
	if items[0].ID != newer.ID || items[1].ID != older.ID {
		t.Errorf("expected most recently published first")
	}
	if strings.Join(items[1].Keywords, ",") != "agua,campo" {
		t.Errorf("keywords round trip: got %v", items[1].Keywords)
	}
	if items[1].Metadata["words"] != 420.0 {
		t.Errorf("metadata round trip: got %v", items[1].Metadata)
	}
	if items[1].SEOScore != 0.7 {
		t.Errorf("seo score round trip: got %v", items[1].SEOScore)
	}
	if items[0].Keywords == nil || items[0].Metadata == nil {
		t.Errorf("expected empty keywords and metadata, got nil")
	}
}

func TestAddNewsUnknownProject(t *testing.T) {
	s := testStore(t)
	_, err := s.AddNews(context.Background(), types.NewsInput{ProjectID: "nope", Title: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddNewsRequiresProject(t *testing.T) {
	s := testStore(t)
	_, err := s.AddNews(context.Background(), types.NewsInput{Title: "x"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestAddNewsDuplicateHash(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := mustProject(t, s, "A", "")

	if _, err := s.AddNews(ctx, types.NewsInput{ProjectID: p.ID, Title: "x", Hash: "h1"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.AddNews(ctx, types.NewsInput{ProjectID: p.ID, Title: "y", Hash: "h1"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListNewsEmpty(t *testing.T) {
	s := testStore(t)
	items, err := s.ListNews(context.Background(), "none")
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", items)
	}
}

// --- trace ---

func TestTraceRecordsLibraryEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := mustProject(t, s, "A", "")

	if err := s.LogTrace(ctx, "EXPORT", "project", p.ID, map[string]any{"format": "yaml"}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListTrace(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 trace entries, got %d", len(entries))
	}
	if entries[0].Event != "EXPORT" || entries[1].Event != EventCreateProject {
		t.Errorf("expected newest first, got %s then %s", entries[0].Event, entries[1].Event)
	}
	if entries[1].Details["name"] != "A" {
		t.Errorf("expected project name in details, got %v", entries[1].Details)
	}

	n, err := s.AddNews(ctx, types.NewsInput{ProjectID: p.ID, Title: "t", Hash: "news-hash"})
	if err != nil {
		t.Fatal(err)
	}
	newsTrace, err := s.ListTrace(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newsTrace) != 1 || newsTrace[0].Event != EventAddNews || newsTrace[0].EntityType != "news" {
		t.Fatalf("unexpected news trace: %+v", newsTrace)
	}
	details := newsTrace[0].Details
	if details["hash"] != "news-hash" || details["title"] != "t" || details["project_id"] != p.ID {
		t.Errorf("unexpected news trace details: %v", details)
	}
}

func TestFailedInsertLeavesNoTrace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mustProject(t, s, "A", "dup")

	s.newID = func() string { return "fixed-id" }
	if _, err := s.CreateProject(ctx, "B", "", "dup"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	entries, err := s.ListTrace(ctx, "fixed-id")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no trace for rolled back insert, got %d", len(entries))
	}
}

// --- export ---

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := mustProject(t, s, "Elecciones", "")
	if _, err := s.AddNews(ctx, types.NewsInput{ProjectID: p.ID, Title: "Debate", Author: "Redacción"}); err != nil {
		t.Fatal(err)
	}
	mustProject(t, s, "Vacío", "")

	var jbuf bytes.Buffer
	if err := s.Export(ctx, &jbuf, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var fromJSON []map[string]any
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}
	if len(fromJSON) != 2 {
		t.Fatalf("expected 2 projects in export, got %d", len(fromJSON))
	}
	if fromJSON[1]["name"] != "Elecciones" {
		t.Errorf("expected project fields flattened, got %v", fromJSON[1])
	}
	news := fromJSON[1]["news"].([]any)
	if len(news) != 1 || news[0].(map[string]any)["title"] != "Debate" {
		t.Errorf("unexpected exported news: %v", news)
	}

	var ybuf bytes.Buffer
	if err := s.Export(ctx, &ybuf, FormatYAML); err != nil {
		t.Fatal(err)
	}
	var fromYAML []map[string]any
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("invalid YAML export: %v", err)
	}
	if len(fromYAML) != 2 || fromYAML[1]["name"] != "Elecciones" {
		t.Errorf("unexpected YAML export: %v", fromYAML)
	}
	if !strings.Contains(ybuf.String(), "author: Redacción") {
		t.Errorf("expected inline news fields in YAML, got:\n%s", ybuf.String())
	}
}

func TestExportUnknownFormat(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	if err := s.Export(context.Background(), &buf, "csv"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateProject(context.Background(), "A", "", ""); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	projects, err := s.ListProjects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Errorf("expected 1 project after reopen, got %d", len(projects))
	}
}
