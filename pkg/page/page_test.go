package page_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/page"
)

func TestPagePutGetRemoveRoundTrip(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	p, err := page.Create(ctx.Dir("cache"), "cache", "scratch", 0, 0)
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), "a", []byte("hello"), false))

	got, err := p.Get(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	require.NoError(t, p.Remove(context.Background(), "a"))

	_, err = p.Get(context.Background(), "a")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestPageTTLExpiresEntries(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	p, err := page.Create(ctx.Dir("cache"), "cache", "", 0, 1)
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), "a", []byte("hello"), false))

	_, err = p.Get(context.Background(), "a")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = p.Get(context.Background(), "a")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestPageSelectStripsTimestampPrefixAndEvicts(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	p, err := page.Create(ctx.Dir("cache"), "cache", "", 0, 1)
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), "fresh", []byte("keep"), false))
	require.NoError(t, p.Put(context.Background(), "stale", []byte("gone"), false))

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, p.Put(context.Background(), "fresh", []byte("keep"), true))

	result, err := p.Select(context.Background(), index.SelectParams{Left: true})
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	require.Equal(t, "fresh", result.Values[0].Key)
	require.Equal(t, []byte("keep"), result.Values[0].Value)
}

func TestPageSweepRemovesExpiredEntries(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	p, err := page.Create(ctx.Dir("cache"), "cache", "", 0, 1)
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), "a", []byte("1"), false))
	require.NoError(t, p.Put(context.Background(), "b", []byte("2"), false))

	time.Sleep(1100 * time.Millisecond)

	removed, err := p.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	result, err := p.Select(context.Background(), index.SelectParams{Left: true})
	require.NoError(t, err)
	require.Empty(t, result.Values)
}

func TestPageModifyRenames(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	p, err := page.Create(ctx.Dir("cache"), "cache", "old", 0, 0)
	require.NoError(t, err)

	require.NoError(t, p.Modify("hotcache", "new"))
	require.Equal(t, "hotcache", p.Name())
	require.Equal(t, "new", p.Comment())
}

func TestPageRecoverReopensMetadataWithEmptyData(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("cache")
	p, err := page.Create(dir, "cache", "persisted comment", 128, 0)
	require.NoError(t, err)
	require.NoError(t, p.Put(context.Background(), "a", []byte("1"), false))

	recovered, err := page.Recover(dir)
	require.NoError(t, err)
	require.Equal(t, "cache", recovered.Name())
	require.Equal(t, "persisted comment", recovered.Comment())
	require.Equal(t, 128, recovered.SizeHintMB())

	_, err = recovered.Get(context.Background(), "a")
	require.ErrorIs(t, err, kinds.NotFound)
}
