package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sftgate/internal/sentinel"
)

func TestMemory_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))

	info, err := store.Put(ctx, "sft-acme", "report.pdf", strings.NewReader("%PDF-1.7 data"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", info.Name)
	assert.Equal(t, int64(13), info.Size)
	assert.False(t, info.ModifiedAt.IsZero())

	rc, got, err := store.Get(ctx, "sft-acme", "report.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 data", string(data))
	assert.Equal(t, info.Name, got.Name)
}

func TestMemory_PutDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))

	_, err := store.Put(ctx, "sft-acme", "a.csv", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = store.Put(ctx, "sft-acme", "a.csv", strings.NewReader("y"))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestMemory_PutMissingContainer(t *testing.T) {
	store := NewMemory()
	_, err := store.Put(context.Background(), "nope", "a.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemory_ConcurrentPutSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Put(ctx, "sft-acme", "same.pdf", strings.NewReader("payload"))
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, conflict)
}

func TestMemory_ListBlobsSortedWithPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))

	for _, name := range []string{"inbound/b.csv", "inbound/a.csv", "outbound/c.csv"} {
		_, err := store.Put(ctx, "sft-acme", name, strings.NewReader("x"))
		require.NoError(t, err)
	}

	infos, err := store.ListBlobs(ctx, "sft-acme", "inbound/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "inbound/a.csv", infos[0].Name)
	assert.Equal(t, "inbound/b.csv", infos[1].Name)
}

func TestMemory_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))
	_, err := store.Put(ctx, "sft-acme", "a.csv", strings.NewReader("x"))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "sft-acme", "a.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "sft-acme", "a.csv"))
	assert.ErrorIs(t, store.Delete(ctx, "sft-acme", "a.csv"), sentinel.ErrNotFound)

	ok, err = store.Exists(ctx, "sft-acme", "a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ContainersByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	for _, c := range []string{"sft-zeta", "sft-acme", "other"} {
		require.NoError(t, store.EnsureContainer(ctx, c))
	}

	names, err := store.Containers(ctx, "sft-")
	require.NoError(t, err)
	assert.Equal(t, []string{"sft-acme", "sft-zeta"}, names)
}

func TestMemory_EnsureContainerIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))
	_, err := store.Put(ctx, "sft-acme", "a.csv", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.EnsureContainer(ctx, "sft-acme"))

	ok, err := store.Exists(ctx, "sft-acme", "a.csv")
	require.NoError(t, err)
	assert.True(t, ok, "re-ensuring must not wipe existing blobs")
}
