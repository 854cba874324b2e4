// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/inpressign/internal/library"
	"github.com/pdiddy/inpressign/internal/metrics"
	"github.com/pdiddy/inpressign/pkg/types"
)

// fakeCommands implements commands.Commands with canned results.
type fakeCommands struct {
	result types.Result
	err    error

	gotPath string
	gotReq  types.UploadRequest
}

func (f *fakeCommands) Greet(name string) string { return "hola " + name }

func (f *fakeCommands) Extract(_ context.Context, path string) (types.Result, error) {
	f.gotPath = path
	return f.result, f.err
}

func (f *fakeCommands) SaveAndExtract(_ context.Context, req types.UploadRequest) (types.Result, error) {
	f.gotReq = req
	return f.result, f.err
}

func newTestEcho(t *testing.T, cmds *fakeCommands, token string) *echo.Echo {
	t.Helper()
	store, err := library.Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	h := NewHandler(cmds, store, m, nil, "test")
	return NewEcho(h, m, token)
}

func do(e *echo.Echo, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Host = "127.0.0.1:7420"
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")
	rec := do(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
}

func TestListCommands(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")
	rec := do(e, http.MethodGet, "/api/commands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"save_and_extract"`)
}

func TestGreetHandler(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")
	rec := do(e, http.MethodPost, "/api/commands/greet", `{"name":"Ana"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"hola Ana"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `inpressign_commands_total{command="greet",outcome="ok"} 1`)
}

func TestExtractHandler(t *testing.T) {
	cmds := &fakeCommands{result: types.OK("/tmp/a.txt", "contenido")}
	e := newTestEcho(t, cmds, "")

	rec := do(e, http.MethodPost, "/api/commands/extract", `{"path":"/tmp/a.txt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/tmp/a.txt", cmds.gotPath)

	var res types.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, cmds.result, res)

	rec = do(e, http.MethodPost, "/api/commands/extract", `{"path":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestSaveAndExtractHandler(t *testing.T) {
	tests := []struct {
		name       string
		cmds       *fakeCommands
		wantStatus int
		wantCode   string
		wantKind   types.ResultKind
	}{
		{
			name:       "ok",
			cmds:       &fakeCommands{result: types.OK("notes.txt", "hola")},
			wantStatus: http.StatusOK,
			wantKind:   types.ResultOK,
		},
		{
			name:       "degraded stays 200",
			cmds:       &fakeCommands{result: types.Degraded("r.pdf", types.ReasonToolMissing, "no tool")},
			wantStatus: http.StatusOK,
			wantKind:   types.ResultDegraded,
		},
		{
			name:       "decode error",
			cmds:       &fakeCommands{err: &types.DecodeError{Filename: "notes.txt", Err: errors.New("illegal base64")}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "DECODE_ERROR",
		},
		{
			name:       "write error",
			cmds:       &fakeCommands{err: &types.WriteError{Path: "/tmp/x", Err: os.ErrPermission}},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "WRITE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t, tt.cmds, "")
			rec := do(e, http.MethodPost, "/api/commands/save_and_extract", `{"data":"aG9sYQ==","filename":"notes.txt"}`)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, types.UploadRequest{Data: "aG9sYQ==", Filename: "notes.txt"}, tt.cmds.gotReq)

			if tt.wantCode != "" {
				body := decodeError(t, rec)
				assert.Equal(t, tt.wantCode, body.Code)
				assert.NotEmpty(t, body.Details)
				return
			}
			var res types.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.wantKind, res.Kind)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")
	rec := do(e, http.MethodPost, "/api/commands/save_and_extract", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestProjectsAndNews(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")

	rec := do(e, http.MethodPost, "/api/projects", `{"name":"Elecciones","hash":"h1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p types.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotEmpty(t, p.ID)

	rec = do(e, http.MethodPost, "/api/projects", `{"name":"Otro","hash":"h1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/api/projects", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []types.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)

	rec = do(e, http.MethodPost, "/api/projects/"+p.ID+"/news", `{"title":"Debate","keywords":["voto"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var n types.News
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, p.ID, n.ProjectID)

	rec = do(e, http.MethodGet, "/api/projects/"+p.ID+"/news", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []types.News
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, []string{"voto"}, items[0].Keywords)

	rec = do(e, http.MethodGet, "/api/projects/missing/news", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/projects/missing/news", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/trace/"+n.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trace []types.TraceEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trace))
	require.Len(t, trace, 1)
	assert.Equal(t, library.EventAddNews, trace[0].Event)
}

func TestTokenAuth(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "s3cret")

	rec := do(e, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)

	rec = do(e, http.MethodGet, "/api/projects", "", echo.HeaderAuthorization, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/api/projects", "", echo.HeaderAuthorization, "Bearer s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health check is open")

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(),
		`inpressign_http_requests_total{method="GET",path="/api/projects",status="401"} 2`)
}

func TestRejectsNonLoopbackHost(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(secret, []byte("private"), 0o644))

	cmds := &fakeCommands{result: types.OK("notes.txt", "private")}
	e := newTestEcho(t, cmds, "")

	body := `{"path":"` + secret + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/commands/extract", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Host = "attacker.example:7420"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN_HOST", decodeError(t, rec).Code)
	assert.NotContains(t, rec.Body.String(), "private")
	assert.Empty(t, cmds.gotPath, "command must not run")

	for _, host := range []string{"localhost:7420", "LOCALHOST", "[::1]:7420", "127.0.0.1", "127.0.0.2:80"} {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Host = host
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, host)
	}
	for _, host := range []string{"", "evil.localhost:7420", "127.0.0.1.nip.io", "0.0.0.0:7420"} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.Host = host
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, host)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&types.DecodeError{Err: errors.New("x")}, http.StatusBadRequest},
		{&types.WriteError{Err: errors.New("x")}, http.StatusInternalServerError},
		{library.ErrInvalid, http.StatusBadRequest},
		{library.ErrNotFound, http.StatusNotFound},
		{library.ErrDuplicate, http.StatusConflict},
		{NewNotFoundError("project", "p"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromError(tt.err).Status, tt.err.Error())
	}
}

func TestServerShutsDownOnCancel(t *testing.T) {
	e := newTestEcho(t, &fakeCommands{}, "")
	srv := NewServer(types.ServerConfig{ShutdownTimeout: time.Second}, e, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
