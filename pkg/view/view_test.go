package view_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/view"
)

func TestViewPutGetDelRoundTrip(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	v, err := view.Create(ctx.Dir("people"), "people", "", true)
	require.NoError(t, err)

	require.NoError(t, v.CreateIndex(context.Background(), "email", ge.EngineDisk, index.KeyTypeString, false, true, true))

	rec, err := v.Put(context.Background(), "ignored-by-increment", []byte(`{"email":"alice@example.com","age":30}`), false)
	require.NoError(t, err)
	slotKey := strconv.FormatUint(rec.Increment, 10)

	got, err := v.Get(context.Background(), slotKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"alice@example.com","age":30}`, string(got.Value))

	byEmail, err := v.GetByIndex(context.Background(), "email", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, rec.Key, byEmail.Key)

	require.NoError(t, v.Del(context.Background(), slotKey))

	_, err = v.Get(context.Background(), slotKey)
	require.ErrorIs(t, err, kinds.NotFound)

	_, err = v.GetByIndex(context.Background(), "email", "alice@example.com")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestViewUniqueIndexRejectsDuplicateKey(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	v, err := view.Create(ctx.Dir("people"), "people", "", true)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex(context.Background(), "email", ge.EngineDisk, index.KeyTypeString, false, true, true))

	_, err = v.Put(context.Background(), "a", []byte(`{"email":"dup@example.com"}`), false)
	require.NoError(t, err)

	_, err = v.Put(context.Background(), "b", []byte(`{"email":"dup@example.com"}`), false)
	require.ErrorIs(t, err, kinds.DataExists)
}

func TestViewRecoverReconstructsIndexes(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("people")
	v, err := view.Create(dir, "people", "original comment", true)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex(context.Background(), "email", ge.EngineDisk, index.KeyTypeString, false, true, true))

	rec, err := v.Put(context.Background(), "a", []byte(`{"email":"bob@example.com"}`), false)
	require.NoError(t, err)

	recovered, err := view.Recover(dir)
	require.NoError(t, err)
	require.Equal(t, "people", recovered.Name())
	require.Equal(t, "original comment", recovered.Comment())
	require.Len(t, recovered.Indexes(), 2)

	got, err := recovered.Get(context.Background(), strconv.FormatUint(rec.Increment, 10))
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"bob@example.com"}`, string(got.Value))
}

func TestViewArchivePreservesOldVersionReads(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("people")
	v, err := view.Create(dir, "people", "", true)
	require.NoError(t, err)

	rec, err := v.Put(context.Background(), "a", []byte(`{"n":1}`), false)
	require.NoError(t, err)

	require.NoError(t, v.Archive(ctx.File("archive", "v1.ge")))

	got, err := v.Get(context.Background(), strconv.FormatUint(rec.Increment, 10))
	require.NoError(t, err)
	require.JSONEq(t, `{"n":1}`, string(got.Value))

	records := v.Records()
	require.Len(t, records, 2)
	require.False(t, records[0].Live)
	require.True(t, records[1].Live)
}

func TestViewDiskIndexAsExplicitPrimary(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	v, err := view.Create(ctx.Dir("people"), "people", "", false)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex(context.Background(), "username", ge.EngineDisk, index.KeyTypeString, true, true, false))

	_, err = v.Put(context.Background(), "alice", []byte(`{"age":30}`), false)
	require.NoError(t, err)

	got, err := v.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.JSONEq(t, `{"age":30}`, string(got.Value))

	require.NoError(t, v.Del(context.Background(), "alice"))
	_, err = v.Get(context.Background(), "alice")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestViewIncrementMonotonicAcrossRecover(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("events")
	v, err := view.Create(dir, "events", "", true)
	require.NoError(t, err)

	for want := uint64(1); want <= 3; want++ {
		rec, err := v.Put(context.Background(), "e", []byte(`{"n":1}`), false)
		require.NoError(t, err)
		require.Equal(t, want, rec.Increment)
	}

	recovered, err := view.Recover(dir)
	require.NoError(t, err)

	for want := uint64(4); want <= 5; want++ {
		rec, err := recovered.Put(context.Background(), "e", []byte(`{"n":1}`), false)
		require.NoError(t, err)
		require.Equal(t, want, rec.Increment)
	}
}

func TestViewModifyRenames(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	v, err := view.Create(ctx.Dir("people"), "people", "old", true)
	require.NoError(t, err)

	require.NoError(t, v.Modify("humans", "new"))
	require.Equal(t, "humans", v.Name())
	require.Equal(t, "new", v.Comment())
}
