package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adfharrison1/go-blog/pkg/domain"
	"github.com/adfharrison1/go-blog/pkg/storage"
)

// TestServer represents a test HTTP server for integration testing
type TestServer struct {
	Server   *httptest.Server
	DataFile string
	Storage  *storage.Engine
	BaseURL  string
}

// NewTestServer creates a new test server backed by an embedded store in a temp dir
func NewTestServer(t *testing.T, storageOptions ...storage.StorageOption) *TestServer {
	dataFile := filepath.Join(t.TempDir(), "posts"+storage.FileExtension)

	defaultOptions := []storage.StorageOption{
		storage.WithDataFile(dataFile),
		storage.WithTransactionSave(true),
	}
	engine, err := storage.Open(append(defaultOptions, storageOptions...)...)
	require.NoError(t, err)

	handler := NewHandler(engine, nil)
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)

	return &TestServer{
		Server:   server,
		DataFile: dataFile,
		Storage:  engine,
		BaseURL:  server.URL,
	}
}

// Close shuts the server down and flushes the store
func (ts *TestServer) Close(t *testing.T) {
	ts.Server.Close()
	require.NoError(t, ts.Storage.Close(context.Background()))
}

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, ts.BaseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (ts *TestServer) createPost(t *testing.T, title, body string) domain.Post {
	t.Helper()
	status, data := ts.do(t, "POST", "/create-post", map[string]string{"title": title, "body": body})
	require.Equal(t, http.StatusOK, status, string(data))

	var post domain.Post
	require.NoError(t, json.Unmarshal(data, &post))
	return post
}

func (ts *TestServer) listPosts(t *testing.T) []domain.Post {
	t.Helper()
	status, data := ts.do(t, "GET", "/all-posts", nil)
	require.Equal(t, http.StatusOK, status)

	var posts []domain.Post
	require.NoError(t, json.Unmarshal(data, &posts))
	return posts
}

func TestAPI_Integration_EmptyList(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)

	status, data := ts.do(t, "GET", "/all-posts", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(data))
}

func TestAPI_Integration_BasicCRUD(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)

	created := ts.createPost(t, "A", "B")
	assert.False(t, created.ID.IsZero())

	t.Run("list contains exactly the created post", func(t *testing.T) {
		posts := ts.listPosts(t)
		require.Len(t, posts, 1)
		assert.Equal(t, created, posts[0])
	})

	t.Run("raw JSON uses _id", func(t *testing.T) {
		status, data := ts.do(t, "GET", "/find-post/"+created.ID.Hex(), nil)
		require.Equal(t, http.StatusOK, status)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, created.ID.Hex(), raw["_id"])
		assert.Equal(t, "A", raw["title"])
		assert.Equal(t, "B", raw["body"])
	})

	t.Run("update then fetch returns new values", func(t *testing.T) {
		status, data := ts.do(t, "PUT", "/update-post/"+created.ID.Hex(),
			map[string]string{"title": "A2", "body": "B2"})
		require.Equal(t, http.StatusOK, status)

		var updated domain.Post
		require.NoError(t, json.Unmarshal(data, &updated))
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "A2", updated.Title)

		status, data = ts.do(t, "GET", "/find-post/"+created.ID.Hex(), nil)
		require.Equal(t, http.StatusOK, status)
		var fetched domain.Post
		require.NoError(t, json.Unmarshal(data, &fetched))
		assert.Equal(t, "A2", fetched.Title)
		assert.Equal(t, "B2", fetched.Body)
	})

	t.Run("delete then fetch is 404", func(t *testing.T) {
		status, data := ts.do(t, "DELETE", "/delete/"+created.ID.Hex(), nil)
		assert.Equal(t, http.StatusAccepted, status)
		assert.Equal(t, DeletedMessage, string(data))

		status, data = ts.do(t, "GET", "/find-post/"+created.ID.Hex(), nil)
		assert.Equal(t, http.StatusNotFound, status)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "Document not found", resp.Error)
	})
}

func TestAPI_Integration_BadIdentifiers(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)

	status, _ := ts.do(t, "GET", "/find-post/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, "GET", "/find-post/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, "PUT", "/update-post/not-an-id", map[string]string{"title": "t", "body": "b"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, "DELETE", "/delete/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_Integration_ConcurrentCreates(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close(t)

	results := make([]domain.Post, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jsonData, _ := json.Marshal(map[string]string{"title": "T", "body": "B"})
			resp, err := http.Post(ts.BaseURL+"/create-post", "application/json", bytes.NewReader(jsonData))
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NoError(t, json.NewDecoder(resp.Body).Decode(&results[i]))
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, results[0].ID, results[1].ID)

	posts := ts.listPosts(t)
	require.Len(t, posts, 2)
	ids := []primitive.ObjectID{posts[0].ID, posts[1].ID}
	assert.ElementsMatch(t, []primitive.ObjectID{results[0].ID, results[1].ID}, ids)
}

func TestAPI_Integration_PersistsAcrossRestart(t *testing.T) {
	ts := NewTestServer(t)
	created := ts.createPost(t, "Durable", "post")
	ts.Close(t)

	engine, err := storage.Open(storage.WithDataFile(ts.DataFile))
	require.NoError(t, err)
	defer engine.Close(context.Background())

	post, err := engine.FindByID(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created, *post)
}
