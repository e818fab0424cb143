package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dayboard/internal/config"
	"dayboard/internal/models"
	"dayboard/internal/service"
	"dayboard/internal/storage/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *Server) {
	t.Helper()
	cfg := &config.Config{
		Port:           "3000",
		JWTSecret:      "test-secret",
		StorageBackend: config.BackendMemory,
		UploadDir:      t.TempDir(),
		Env:            "test",
	}

	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })

	s, err := NewServerWithDeps(cfg, store, nil)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return app, s
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decode[service.AuthResult](t, resp)
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app, _ := newTestApp(t)

	registerUser(t, app, "alice")

	// Duplicate registration conflicts.
	resp := doJSON(t, app, http.MethodPost, "/api/register", "", fiber.Map{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": "alice", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeUnauthorized, body.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/api/tasks/", "/api/profile", "/api/stats"} {
		resp := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/tasks/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "bob")

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", token, fiber.Map{
		"title": "Write report", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decode[models.Task](t, resp)
	assert.Equal(t, "high", task.Priority)
	assert.Equal(t, "general", task.Category)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token, fiber.Map{
		"completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Task](t, resp)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Write report", updated.Title)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskValidation(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "carol")

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", token, fiber.Map{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/tasks/", token, fiber.Map{
		"title": "x", "priority": "urgent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/tasks/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty patch is rejected, not treated as a no-op.
	resp = doJSON(t, app, http.MethodPut, "/api/tasks/1", token, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOwnershipIsolation(t *testing.T) {
	app, _ := newTestApp(t)
	alice := registerUser(t, app, "alice")
	mallory := registerUser(t, app, "mallory")

	resp := doJSON(t, app, http.MethodPost, "/api/notes/", alice, fiber.Map{
		"title": "Secret plans", "content": "classified",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	note := decode[models.Note](t, resp)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/notes/%d", note.ID), mallory, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/notes/%d", note.ID), mallory, fiber.Map{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/notes/", mallory, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Note](t, resp)
	assert.Empty(t, notes)
}

func TestSearchAndStats(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "dave")

	resp := doJSON(t, app, http.MethodPost, "/api/events/", token, fiber.Map{
		"title":      "Quarterly Review",
		"start_date": "2026-09-10T09:00:00Z",
		"end_date":   "2026-09-10T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, completed := range []bool{true, true, true, false} {
		resp = doJSON(t, app, http.MethodPost, "/api/tasks/", token, fiber.Map{
			"title": "quarter close", "completed": completed,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/search?q=quarter", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[service.SearchResults](t, resp)
	assert.Len(t, results.Events, 1)
	assert.Len(t, results.Tasks, 4)
	assert.Empty(t, results.Notes)

	resp = doJSON(t, app, http.MethodGet, "/api/search?q=", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/search?q=quarter&type=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[service.Stats](t, resp)
	assert.Equal(t, int64(1), stats.Events)
	assert.Equal(t, int64(4), stats.Tasks)
	assert.Equal(t, 75, stats.CompletionRate)
}

func TestSearchTypeFilter(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "grace")

	resp := doJSON(t, app, http.MethodPost, "/api/tasks/", token, fiber.Map{
		"title": "Quarterly budget",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/notes/", token, fiber.Map{
		"title": "Quarterly minutes",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/search?q=quarter&type=tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[service.SearchResults](t, resp)
	assert.Len(t, results.Tasks, 1)
	assert.Empty(t, results.Notes)
	assert.Empty(t, results.Events)

	resp = doJSON(t, app, http.MethodGet, "/api/search?q=quarter&type=tasks,notes", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results = decode[service.SearchResults](t, resp)
	assert.Len(t, results.Tasks, 1)
	assert.Len(t, results.Notes, 1)
	assert.Empty(t, results.Events)
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "erin")

	resp := doJSON(t, app, http.MethodPut, "/api/profile", token, fiber.Map{
		"first_name": "Erin", "theme": "dark",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decode[models.Profile](t, resp)
	assert.Equal(t, "Erin", profile.FirstName)
	assert.Equal(t, "dark", profile.Theme)

	resp = doJSON(t, app, http.MethodPut, "/api/profile/password", token, fiber.Map{
		"current_password": "wrong", "new_password": "next-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/profile/password", token, fiber.Map{
		"current_password": "secret1", "new_password": "next-secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"username": "erin", "password": "next-secret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportImportRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)
	alice := registerUser(t, app, "alice")
	bob := registerUser(t, app, "bob")

	resp := doJSON(t, app, http.MethodPost, "/api/notes/", alice, fiber.Map{
		"title": "Packing list", "content": "passport",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/export", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bundle := decode[service.ExportBundle](t, resp)
	require.Len(t, bundle.Notes, 1)

	resp = doJSON(t, app, http.MethodPost, "/api/import", bob, bundle)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[map[string]any](t, resp)
	assert.Equal(t, float64(1), report["imported"])
	assert.Equal(t, float64(0), report["errors"])

	resp = doJSON(t, app, http.MethodGet, "/api/notes/", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Note](t, resp)
	require.Len(t, notes, 1)
	assert.Equal(t, "Packing list", notes[0].Title)
}

func TestFileUploadAndDelete(t *testing.T) {
	app, s := newTestApp(t)
	token := registerUser(t, app, "frank")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("quarterly numbers"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	record := decode[models.File](t, resp)
	assert.Equal(t, "report.txt", record.OriginalName)
	assert.NotEqual(t, "report.txt", record.Filename)
	assert.Equal(t, filepath.Ext(record.Filename), ".txt")

	saved, err := os.ReadFile(filepath.Join(s.config.UploadDir, record.Filename))
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(saved))

	resp = doJSON(t, app, http.MethodGet, "/api/files/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	files := decode[[]models.File](t, resp)
	require.Len(t, files, 1)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/files/%d", record.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(filepath.Join(s.config.UploadDir, record.Filename))
	assert.True(t, os.IsNotExist(err))
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
}
