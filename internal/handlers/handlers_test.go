package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"taskBoard/internal/handlers"
	"taskBoard/internal/remote"
	"taskBoard/internal/remote/inmemory"
	"taskBoard/internal/service"
	"taskBoard/internal/session"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router  http.Handler
	svc     *service.Service
	backend *inmemory.Storage
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	sessions, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	backend := inmemory.NewStorage()
	svc := service.New(remote.New(backend, "memory"), sessions, service.WithBcryptCost(bcrypt.MinCost))
	t.Cleanup(svc.Close)

	r := chi.NewRouter()
	handlers.NewHandler(svc).Mount(r, nil)
	return testServer{router: r, svc: svc, backend: backend}
}

func (s testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func (s testServer) register(t *testing.T) {
	t.Helper()
	w, _ := s.do(t, "POST", "/session/register",
		`{"name":"Anja Schulz","email":"schulz@hotmail.com","password":"pw","confirmPassword":"pw","acceptPrivacy":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "task-board", resp["service"])
	assert.Equal(t, "none", resp["session"])
}

func TestNoSession(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/tasks", "/board", "/summary", "/contacts", "/session"} {
		w, _ := s.do(t, "GET", path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestGuestBoard(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, "POST", "/session/guest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest", resp["session"].(map[string]any)["kind"])

	w, resp = s.do(t, "GET", "/board", "")
	require.Equal(t, http.StatusOK, w.Code)
	columns := resp["columns"].([]any)
	require.Len(t, columns, 4)
	assert.Equal(t, "todo", columns[0].(map[string]any)["id"])

	w, resp = s.do(t, "GET", "/board?q=invoices", "")
	require.Equal(t, http.StatusOK, w.Code)
	columns = resp["columns"].([]any)
	assert.Equal(t, "No tasks To do", columns[0].(map[string]any)["placeholder"])

	w, resp = s.do(t, "GET", "/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), resp["total"])
	assert.Equal(t, "January 30, 2026", resp["deadlineLabel"])
	assert.Equal(t, "Guest", resp["userName"])

	w, resp = s.do(t, "GET", "/tasks?q=video", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["tasks"].([]any), 1)

	assert.Empty(t, s.backend.Calls())
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	w, resp := s.do(t, "POST", "/tasks",
		`{"title":"Website redesign","description":"Modify structure of sidebar and header","category":"Technical Task","dueDate":"2026-03-15","subtasks":["New Icons"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := resp["task"].(map[string]any)
	id := int64(created["id"].(float64))
	path := "/tasks/" + remote.Key(id)
	assert.Equal(t, "todo", created["status"])
	assert.Equal(t, float64(1), created["subtasksTotal"])

	w, resp = s.do(t, "GET", path, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, "POST", path+"/move", `{"status":"awaitfeedback"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "awaitfeedback", resp["task"].(map[string]any)["status"])

	w, _ = s.do(t, "POST", path+"/drop", `{"column":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(t, "PUT", path, `{"title":"Website relaunch","priority":"urgent"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := resp["task"].(map[string]any)
	assert.Equal(t, "Website relaunch", updated["title"])
	assert.Equal(t, "awaitfeedback", updated["status"])

	w, resp = s.do(t, "POST", path+"/subtasks/0/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["task"].(map[string]any)["subtasksDone"])

	w, _ = s.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, resp = s.do(t, "GET", path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, service.CodeNotFound, resp["error"])

	s.svc.Close()
	_, ok := s.backend.Document(remote.Tasks, remote.Key(id))
	assert.False(t, ok)
}

func TestTaskErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		contentType    string
		expectedStatus int
	}{
		{name: "missing title", method: "POST", path: "/tasks", body: `{"category":"User Story","dueDate":"2026-01-01"}`, expectedStatus: http.StatusBadRequest},
		{name: "invalid JSON", method: "POST", path: "/tasks", body: `{invalid json}`, expectedStatus: http.StatusBadRequest},
		{name: "invalid content type", method: "POST", path: "/tasks", body: `{}`, contentType: "text/plain", expectedStatus: http.StatusUnsupportedMediaType},
		{name: "bad id", method: "GET", path: "/tasks/abc", expectedStatus: http.StatusBadRequest},
		{name: "unknown id", method: "POST", path: "/tasks/404/move", body: `{"status":"done"}`, expectedStatus: http.StatusNotFound},
		{name: "bad subtask index", method: "POST", path: "/tasks/404/subtasks/x/toggle", expectedStatus: http.StatusBadRequest},
		{name: "unknown assignee", method: "PUT", path: "/tasks/1", body: `{"assignees":[99]}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			}
			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json"
			}
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, "POST", "/session/register",
		`{"name":"Anja","email":"a@b.de","password":"one","confirmPassword":"two","acceptPrivacy":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeValidation, resp["error"])

	w, _ = s.do(t, "POST", "/session/register",
		`{"name":"Anja","email":"a@b.de","password":"one","confirmPassword":"one"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.register(t)
	w, resp = s.do(t, "POST", "/session/register",
		`{"name":"Anja","email":"schulz@hotmail.com","password":"pw","confirmPassword":"pw","acceptPrivacy":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CodeEmailTaken, resp["error"])

	w, _ = s.do(t, "DELETE", "/session", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, resp = s.do(t, "POST", "/session/login", `{"email":"schulz@hotmail.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.CodeInvalidCredentials, resp["error"])

	w, _ = s.do(t, "POST", "/session/login", `{"email":"schulz@hotmail.com","password":"pw","remember":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, "GET", "/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "schulz@hotmail.com", resp["rememberedEmail"])
	sess := resp["session"].(map[string]any)
	assert.Equal(t, "authenticated", sess["kind"])
	assert.Equal(t, true, sess["persistent"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestContacts(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	w, resp := s.do(t, "POST", "/contacts", `{"name":"Anton Mayer","email":"anton@gmail.com","phone":"+49 1111 111 11 1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	anton := resp["contact"].(map[string]any)
	assert.Equal(t, "AM", anton["initials"])

	w, _ = s.do(t, "POST", "/contacts", `{"name":"Other","email":"anton@gmail.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = s.do(t, "POST", "/tasks",
		`{"title":"Call","description":"Discuss the offer","category":"User Story","dueDate":"2026-04-01","assignees":[`+remote.Key(int64(anton["id"].(float64)))+`]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	taskPath := "/tasks/" + remote.Key(int64(resp["task"].(map[string]any)["id"].(float64)))

	w, resp = s.do(t, "PUT", "/contacts/anton@gmail.com", `{"name":"Anton Maier","email":"anton@gmail.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Anton Maier", resp["contact"].(map[string]any)["name"])

	w, _ = s.do(t, "PUT", "/contacts/nobody@gmail.com", `{"name":"X","email":"x@y.z"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(t, "GET", "/contacts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["contacts"].([]any), 2)

	w, _ = s.do(t, "DELETE", "/contacts/anton@gmail.com", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// каскад идёт по имени: задача хранит старое имя "Anton Mayer"
	w, resp = s.do(t, "GET", taskPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["task"].(map[string]any)["assignedTo"], 1)
}
