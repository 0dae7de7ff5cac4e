package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_InsertAndExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	exists, err := s.Exists(ctx, "registrations", "email", "ann@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	id, err := s.Insert(ctx, "registrations", Document{"email": "ann@example.com", "fullname": "Ann"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	exists, err = s.Exists(ctx, "registrations", "email", "ann@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	// exact match only
	exists, err = s.Exists(ctx, "registrations", "email", "ANN@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	// collections are separate
	exists, err = s.Exists(ctx, "subscribers", "email", "ann@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryStore_InsertCopiesDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := Document{"email": "a@example.com"}
	id, err := s.Insert(ctx, "subscribers", doc)
	require.NoError(t, err)

	doc["email"] = "changed@example.com"

	found, err := s.Find(ctx, "subscribers", id)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", found.GetString("email"))
	require.Equal(t, id, found.ID())
}

func TestMemoryStore_FindNotFound(t *testing.T) {
	_, err := NewMemoryStore().Find(context.Background(), "events", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, "events", Document{"name": fmt.Sprintf("event-%d", i)})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "events", ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, "event-4", all[0].GetString("name"))
	require.Equal(t, "event-0", all[4].GetString("name"))

	page, err := s.List(ctx, "events", ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "event-2", page[0].GetString("name"))
	require.Equal(t, "event-1", page[1].GetString("name"))

	empty, err := s.List(ctx, "events", ListOptions{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, empty)

	count, err := s.Count(ctx, "events")
	require.NoError(t, err)
	require.EqualValues(t, 5, count)
}

func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Insert(ctx, "subscribers", Document{"email": fmt.Sprintf("user%d@example.com", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := s.Count(ctx, "subscribers")
	require.NoError(t, err)
	require.EqualValues(t, 50, count)
}

func TestDocument_Getters(t *testing.T) {
	doc := Document{
		"name":     "Launch",
		"fee":      12.5,
		"capacity": int64(40),
		"free":     true,
	}

	require.Equal(t, "Launch", doc.GetString("name"))
	require.Equal(t, "", doc.GetString("missing"))
	require.Equal(t, 12.5, doc.GetFloat("fee"))
	require.Equal(t, 40.0, doc.GetFloat("capacity"))
	require.True(t, doc.GetBool("free"))
	require.False(t, doc.GetBool("missing"))
	require.True(t, doc.GetTime("missing").IsZero())
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), "memory://", "", nil)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), "redis://localhost", "", nil)
	require.Error(t, err)
}
