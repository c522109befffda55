package api

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

var _ domain.PostStore = (*MockPostStore)(nil)

// MockPostStore provides a mock implementation of domain.PostStore for testing
type MockPostStore struct {
	mu    sync.RWMutex
	posts []domain.Post
	calls map[string]int

	// Err, when set, is returned by every operation
	Err error
	// PingErr is returned by Ping
	PingErr error
}

// NewMockPostStore creates a new mock post store
func NewMockPostStore() *MockPostStore {
	return &MockPostStore{
		posts: make([]domain.Post, 0),
		calls: make(map[string]int),
	}
}

func (m *MockPostStore) record(op string) {
	m.calls[op]++
}

// Create adds a post with a generated id
func (m *MockPostStore) Create(ctx context.Context, in domain.PostInput) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("create")
	if m.Err != nil {
		return nil, m.Err
	}

	post := domain.Post{ID: primitive.NewObjectID(), Title: in.Title, Body: in.Body}
	m.posts = append(m.posts, post)
	return &post, nil
}

// FindAll returns a copy of all posts
func (m *MockPostStore) FindAll(ctx context.Context) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("findAll")
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]domain.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

// FindByID returns the post with the matching id
func (m *MockPostStore) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("findByID")
	if m.Err != nil {
		return nil, m.Err
	}

	for _, post := range m.posts {
		if post.ID == oid {
			found := post
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Update replaces title and body of the matching post
func (m *MockPostStore) Update(ctx context.Context, id string, in domain.PostInput) (*domain.Post, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("update")
	if m.Err != nil {
		return nil, m.Err
	}

	for i := range m.posts {
		if m.posts[i].ID == oid {
			m.posts[i].Title = in.Title
			m.posts[i].Body = in.Body
			updated := m.posts[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes the matching post
func (m *MockPostStore) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("delete")
	if m.Err != nil {
		return m.Err
	}

	for i, post := range m.posts {
		if post.ID == oid {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockPostStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ping")
	return m.PingErr
}

func (m *MockPostStore) Close(ctx context.Context) error {
	return nil
}

// Seed inserts a post directly, bypassing call tracking
func (m *MockPostStore) Seed(title, body string) domain.Post {
	m.mu.Lock()
	defer m.mu.Unlock()

	post := domain.Post{ID: primitive.NewObjectID(), Title: title, Body: body}
	m.posts = append(m.posts, post)
	return post
}

// Calls returns how many times op was invoked
func (m *MockPostStore) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Count returns the number of stored posts
func (m *MockPostStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.posts)
}
