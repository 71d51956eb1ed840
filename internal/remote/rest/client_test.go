package rest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"taskBoard/internal/models/task"
	"taskBoard/internal/remote"
	"taskBoard/internal/remote/rest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeTree - минимальный сервер дерева документов
func fakeTree(t *testing.T, responses map[string]string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var mtx sync.Mutex
	var reqs []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mtx.Lock()
		reqs = append(reqs, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		mtx.Unlock()

		resp, ok := responses[r.Method+" "+r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("null"))
			return
		}
		if resp == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recorded {
		mtx.Lock()
		defer mtx.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestClient_FetchAll(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		response string
		expected []int64
	}{
		{
			name:     "object keyed by id, numeric order",
			response: `{"102":{"id":102,"status":"todo"},"101":{"id":101,"status":"done"}}`,
			expected: []int64{101, 102},
		},
		{
			name:     "null collection",
			response: `null`,
			expected: []int64{},
		},
		{
			name:     "array with holes",
			response: `[null,{"id":1,"status":"todo"},{"id":2,"status":"todo"}]`,
			expected: []int64{1, 2},
		},
		{
			name:     "malformed body",
			response: `{"broken":`,
			expected: []int64{},
		},
		{
			name:     "server error",
			response: "500",
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeTree(t, map[string]string{"GET /tasks.json": tt.response})
			store := remote.New(rest.New(srv.URL, "", time.Second), "http")

			tasks := remote.Decode[task.Task](store.FetchAll(ctx, remote.Tasks))

			ids := []int64{}
			for _, tk := range tasks {
				ids = append(ids, tk.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestClient_PutAndRemove(t *testing.T) {
	ctx := context.Background()
	srv, requests := fakeTree(t, map[string]string{
		"PUT /tasks/101.json":    `{}`,
		"DELETE /tasks/101.json": `null`,
	})
	store := remote.New(rest.New(srv.URL+"/", "token 1", time.Second), "http")

	err := store.Put(ctx, remote.Tasks, 101, task.Task{ID: 101, Status: task.StatusAwaitFeedback})
	require.NoError(t, err)
	err = store.Remove(ctx, remote.Tasks, 101)
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "PUT", reqs[0].Method)
	assert.Equal(t, "/tasks/101.json", reqs[0].Path)
	assert.Equal(t, "auth=token+1", reqs[0].Query)
	assert.Contains(t, reqs[0].Body, `"status":"awaitfeedback"`)
	assert.Equal(t, "DELETE", reqs[1].Method)
	assert.Equal(t, "/tasks/101.json", reqs[1].Path)
}

func TestClient_PutFailureIsReturned(t *testing.T) {
	srv, _ := fakeTree(t, map[string]string{"PUT /contacts/1.json": "500"})
	store := remote.New(rest.New(srv.URL, "", time.Second), "http")

	err := store.Put(context.Background(), remote.Contacts, 1, map[string]any{"id": 1})

	require.Error(t, err)
	var statusErr *rest.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestClient_UnknownCollection(t *testing.T) {
	srv, requests := fakeTree(t, nil)
	store := remote.New(rest.New(srv.URL, "", time.Second), "http")

	err := store.Put(context.Background(), remote.Collection("boards"), 1, struct{}{})

	assert.ErrorIs(t, err, remote.ErrUnknownCollection)
	assert.Empty(t, store.FetchAll(context.Background(), remote.Collection("boards")))
	assert.Empty(t, requests())
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := rest.New(baseURL, "s3cret-token", time.Second)

	err := client.Put(context.Background(), remote.Tasks, "101", []byte(`{"id":101}`))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cret-token")
	assert.Contains(t, err.Error(), "tasks/101.json")

	_, err = client.Get(context.Background(), remote.Contacts)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cret-token")
}
