package store_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketdav/bucketdav/pkg/store"
)

func TestMemStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()

	err := mem.Put(ctx, "docs/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)

	info, body, err := mem.Get(ctx, "docs/a.txt")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)
	assert.NotEmpty(t, info.ETag)
	assert.False(t, info.Uploaded.IsZero())
}

func TestMemStore_HeadMissing(t *testing.T) {
	mem := store.NewMemStore()
	_, err := mem.Head(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrDoesNotExist)

	_, _, err = mem.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrDoesNotExist)
}

func TestMemStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()

	require.NoError(t, mem.Put(ctx, "k", strings.NewReader("one"), 3, ""))
	first, err := mem.Head(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, mem.Put(ctx, "k", strings.NewReader("twotwo"), 6, ""))
	second, err := mem.Head(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, int64(6), second.Size)
	assert.NotEqual(t, first.ETag, second.ETag)
}

func TestMemStore_ListPrefix(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()
	for _, key := range []string{"docs/b.txt", "docs/a.txt", "docs/sub/c.txt", "other.txt"} {
		require.NoError(t, mem.Put(ctx, key, strings.NewReader("x"), 1, ""))
	}

	infos, err := mem.List(ctx, "docs")
	require.NoError(t, err)
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	// lexicographic order, like a bucket listing
	assert.Equal(t, []string{"docs/a.txt", "docs/b.txt", "docs/sub/c.txt"}, keys)

	all, err := mem.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := mem.List(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()
	require.NoError(t, mem.Put(ctx, "k", strings.NewReader("x"), 1, ""))

	require.NoError(t, mem.Delete(ctx, "k"))
	require.NoError(t, mem.Delete(ctx, "k"), "deleting an absent key must not fail")
}

func TestMemStore_SetCustom(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()
	require.NoError(t, mem.Put(ctx, "k", strings.NewReader("x"), 1, ""))

	require.NoError(t, mem.SetCustom("k", map[string]string{store.CustomResourceTypeKey: "<collection/>"}))
	info, err := mem.Head(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "<collection/>", info.Custom[store.CustomResourceTypeKey])

	assert.ErrorIs(t, mem.SetCustom("missing", nil), store.ErrDoesNotExist)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := store.New(context.Background(), store.Config{Backend: "carrier-pigeon"})
	assert.ErrorIs(t, err, store.ErrUnknownBackend)
}

func TestNew_MemBackend(t *testing.T) {
	s, err := store.New(context.Background(), store.Config{Backend: "mem"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
