package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/models/task"
	"taskBoard/internal/remote"
	"taskBoard/internal/remote/inmemory"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection yields empty slice", func(t *testing.T) {
		store := remote.New(inmemory.NewStorage(), "memory")

		docs := store.FetchAll(ctx, remote.Contacts)

		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("backend failure yields empty slice", func(t *testing.T) {
		backend := inmemory.NewStorage()
		require.NoError(t, backend.Seed(remote.Tasks, "1", task.Task{ID: 1}))
		backend.FailWith(errors.New("connection refused"))
		store := remote.New(backend, "memory")

		assert.Empty(t, store.FetchAll(ctx, remote.Tasks))
	})

	t.Run("numeric keys ordered, null documents skipped", func(t *testing.T) {
		backend := inmemory.NewStorage()
		require.NoError(t, backend.Seed(remote.Tasks, "105", task.Task{ID: 105}))
		require.NoError(t, backend.Seed(remote.Tasks, "20", task.Task{ID: 20}))
		require.NoError(t, backend.Seed(remote.Tasks, "3", nil))
		require.NoError(t, backend.Seed(remote.Tasks, "101", task.Task{ID: 101}))
		store := remote.New(backend, "memory")

		tasks := remote.Decode[task.Task](store.FetchAll(ctx, remote.Tasks))

		require.Len(t, tasks, 3)
		assert.Equal(t, int64(20), tasks[0].ID)
		assert.Equal(t, int64(101), tasks[1].ID)
		assert.Equal(t, int64(105), tasks[2].ID)
	})
}

func TestStore_PutRemove(t *testing.T) {
	ctx := context.Background()
	backend := inmemory.NewStorage()
	store := remote.New(backend, "memory")

	c := contact.Contact{ID: 7, Name: "Marcel Bauer", Email: "bauer@gmail.com", Color: "#462F8A"}
	require.NoError(t, store.Put(ctx, remote.Contacts, c.ID, c))

	body, ok := backend.Document(remote.Contacts, "7")
	require.True(t, ok)
	var stored contact.Contact
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.Equal(t, c, stored)

	require.NoError(t, store.Remove(ctx, remote.Contacts, 7))
	_, ok = backend.Document(remote.Contacts, "7")
	assert.False(t, ok)

	writes := backend.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "PUT", writes[0].Method)
	assert.Equal(t, "DELETE", writes[1].Method)
}

func TestStore_WriteFailureReturned(t *testing.T) {
	ctx := context.Background()
	backend := inmemory.NewStorage()
	backend.FailWith(errors.New("boom"))
	store := remote.New(backend, "memory")

	assert.Error(t, store.Put(ctx, remote.Tasks, 1, task.Task{ID: 1}))
	assert.Error(t, store.Remove(ctx, remote.Tasks, 1))
}

func TestDecode_SkipsBrokenDocuments(t *testing.T) {
	docs := []json.RawMessage{
		json.RawMessage(`{"id":1,"title":"ok"}`),
		json.RawMessage(`{"id":"not a number"}`),
		json.RawMessage(`{"id":2,"title":"also ok"}`),
	}

	tasks := remote.Decode[task.Task](docs)

	require.Len(t, tasks, 2)
	assert.Equal(t, "ok", tasks[0].Title)
	assert.Equal(t, "also ok", tasks[1].Title)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "1718000000123", remote.Key(1718000000123))
	assert.Equal(t, "0", remote.Key(0))
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
		wantErr  bool
	}{
		{name: "null", body: "null", expected: nil},
		{name: "empty body", body: "  ", expected: nil},
		{name: "object", body: `{"1":{"id":1},"2":{"id":2}}`, expected: []string{"1", "2"}},
		{name: "array skips holes", body: `[null,{"id":1},null,{"id":3}]`, expected: []string{"1", "3"}},
		{name: "scalar", body: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := remote.ParseTree([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var keys []string
			for k := range docs {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.expected, keys)
		})
	}
}
