// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the command shell and the project library over HTTP
// for the desktop front end.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/commands"
	"github.com/pdiddy/inpressign/internal/metrics"
	"github.com/pdiddy/inpressign/pkg/types"
)

// Library is the subset of the project store the handlers use.
type Library interface {
	CreateProject(ctx context.Context, name, description, hash string) (types.Project, error)
	GetProject(ctx context.Context, id string) (types.Project, error)
	ListProjects(ctx context.Context) ([]types.Project, error)
	AddNews(ctx context.Context, in types.NewsInput) (types.News, error)
	ListNews(ctx context.Context, projectID string) ([]types.News, error)
	ListTrace(ctx context.Context, entityID string) ([]types.TraceEntry, error)
}

// Handler holds the dependencies of every route.
type Handler struct {
	cmds    commands.Commands
	lib     Library
	metrics *metrics.Metrics
	logger  *zap.Logger
	version string
}

// NewHandler wires the handlers. A nil logger discards output.
func NewHandler(cmds commands.Commands, lib Library, m *metrics.Metrics, logger *zap.Logger, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{cmds: cmds, lib: lib, metrics: m, logger: logger, version: version}
}

// GreetRequest is the body of POST /api/commands/greet.
type GreetRequest struct {
	Name string `json:"name"`
}

// ExtractRequest is the body of POST /api/commands/extract.
type ExtractRequest struct {
	Path string `json:"path"`
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Hash        string `json:"hash"`
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleListCommands returns the command registry.
func (h *Handler) HandleListCommands(c echo.Context) error {
	return c.JSON(http.StatusOK, commands.Registry())
}

// HandleGreet runs the greet command.
func (h *Handler) HandleGreet(c echo.Context) error {
	var req GreetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	start := time.Now()
	text := h.cmds.Greet(req.Name)
	h.observe(commands.NameGreet, types.Result{}, nil, start)

	return c.JSON(http.StatusOK, map[string]string{"text": text})
}

// HandleExtract runs the extract command on a path local to the server.
func (h *Handler) HandleExtract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return NewValidationError("path")
	}

	start := time.Now()
	res, err := h.cmds.Extract(c.Request().Context(), req.Path)
	h.observe(commands.NameExtract, res, err, start)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// HandleSaveAndExtract runs the save_and_extract command on an uploaded
// base64 payload.
func (h *Handler) HandleSaveAndExtract(c echo.Context) error {
	var req types.UploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	start := time.Now()
	res, err := h.cmds.SaveAndExtract(c.Request().Context(), req)
	h.observe(commands.NameSaveAndExtract, res, err, start)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// HandleListProjects returns all projects, newest first.
func (h *Handler) HandleListProjects(c echo.Context) error {
	projects, err := h.lib.ListProjects(c.Request().Context())
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// HandleCreateProject creates a project.
func (h *Handler) HandleCreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name")
	}

	p, err := h.lib.CreateProject(c.Request().Context(), req.Name, req.Description, req.Hash)
	if err != nil {
		return FromError(err)
	}
	h.logger.Info("project created", zap.String("id", p.ID), zap.String("name", p.Name))
	return c.JSON(http.StatusCreated, p)
}

// HandleListNews returns the news of one project.
func (h *Handler) HandleListNews(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.lib.GetProject(ctx, id); err != nil {
		if FromError(err).Status == http.StatusNotFound {
			return NewNotFoundError("project", id)
		}
		return FromError(err)
	}

	items, err := h.lib.ListNews(ctx, id)
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// HandleAddNews imports a news item into the project named in the path.
func (h *Handler) HandleAddNews(c echo.Context) error {
	var in types.NewsInput
	if err := c.Bind(&in); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	in.ProjectID = c.Param("id")

	n, err := h.lib.AddNews(c.Request().Context(), in)
	if err != nil {
		return FromError(err)
	}
	h.logger.Info("news added", zap.String("id", n.ID), zap.String("project_id", n.ProjectID))
	return c.JSON(http.StatusCreated, n)
}

// HandleTrace returns the trace log of one entity.
func (h *Handler) HandleTrace(c echo.Context) error {
	entries, err := h.lib.ListTrace(c.Request().Context(), c.Param("entity_id"))
	if err != nil {
		return FromError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) observe(command string, res types.Result, err error, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveCommand(command, metrics.Outcome(res, err), time.Since(start))
}
