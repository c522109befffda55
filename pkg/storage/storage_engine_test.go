package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

func TestEngine_CreateAndFind(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	created, err := engine.Create(ctx, domain.PostInput{Title: "A", Body: "B"})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	found, err := engine.FindByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, *created, *found)

	posts, err := engine.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "B", posts[0].Body)
}

func TestEngine_FindAllEmpty(t *testing.T) {
	engine := NewStorageEngine()

	posts, err := engine.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Len(t, posts, 0)
}

func TestEngine_FindAllCreationOrder(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := engine.Create(ctx, domain.PostInput{Title: fmt.Sprintf("post-%02d", i), Body: "b"})
		require.NoError(t, err)
	}

	posts, err := engine.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 20)
	for i, post := range posts {
		assert.Equal(t, fmt.Sprintf("post-%02d", i), post.Title)
	}
}

func TestEngine_Update(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	created, err := engine.Create(ctx, domain.PostInput{Title: "Old", Body: "Old body"})
	require.NoError(t, err)

	updated, err := engine.Update(ctx, created.ID.Hex(), domain.PostInput{Title: "New", Body: "New body"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New", updated.Title)

	found, err := engine.FindByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "New", found.Title)
	assert.Equal(t, "New body", found.Body)

	_, err = engine.Update(ctx, primitive.NewObjectID().Hex(), domain.PostInput{Title: "x", Body: "y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Delete(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	created, err := engine.Create(ctx, domain.PostInput{Title: "A", Body: "B"})
	require.NoError(t, err)

	require.NoError(t, engine.Delete(ctx, created.ID.Hex()))

	_, err = engine.FindByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = engine.Delete(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_InvalidIDs(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	_, err := engine.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = engine.Update(ctx, "nope", domain.PostInput{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	assert.ErrorIs(t, engine.Delete(ctx, "nope"), domain.ErrInvalidID)
}

func TestEngine_CancelledContext(t *testing.T) {
	engine := NewStorageEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Create(ctx, domain.PostInput{Title: "A", Body: "B"})
	var storeErr *domain.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, engine.Count())
}

func TestEngine_ConcurrentCreates(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()

	const workers = 50
	ids := make(chan primitive.ObjectID, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			post, err := engine.Create(ctx, domain.PostInput{Title: fmt.Sprintf("t%d", i), Body: "b"})
			assert.NoError(t, err)
			ids <- post.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[primitive.ObjectID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id.Hex())
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	posts, err := engine.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, workers)
}

func TestEngine_ClosedRejectsRequests(t *testing.T) {
	engine := NewStorageEngine()
	ctx := context.Background()
	require.NoError(t, engine.Close(ctx))

	var connErr *domain.ConnectionError
	assert.True(t, errors.As(engine.Ping(ctx), &connErr))

	_, err := engine.Create(ctx, domain.PostInput{Title: "A", Body: "B"})
	assert.True(t, errors.As(err, &connErr))

	_, err = engine.FindAll(ctx)
	assert.True(t, errors.As(err, &connErr))

	// Closing twice is harmless
	assert.NoError(t, engine.Close(ctx))
}
