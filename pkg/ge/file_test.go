package ge_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/ge"
)

func TestCreateRecoverRoundTrip(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("round.ge")
	desc := []byte(`{"name":"round"}`)

	created, err := ge.Create(path, ge.TagView, ge.EngineNone, desc)
	require.NoError(t, err)
	require.NoError(t, created.Close())

	recovered, err := ge.Recover(path)
	require.NoError(t, err)
	defer recovered.Close()

	got, err := recovered.Description()
	require.NoError(t, err)
	require.Equal(t, desc, got)

	digest := recovered.Digest()
	require.Equal(t, ge.TagView, digest.Tag)
	require.Equal(t, ge.EngineNone, digest.Engine)
	require.Equal(t, uint16(1), digest.Version)
	require.Equal(t, uint16(0), digest.Sequence)
}

func TestCreateRejectsExistingFile(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("dup.ge")
	f, err := ge.Create(path, ge.TagView, ge.EngineNone, []byte("a"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ge.Create(path, ge.TagView, ge.EngineNone, []byte("b"))
	require.ErrorIs(t, err, kinds.AlreadyExists)
}

func TestModifyChainsDescriptionsAndBumpsSequence(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("chain.ge")
	des0, des1, des2 := []byte("initial"), []byte("first change"), []byte("second change")

	f, err := ge.Create(path, ge.TagDatabase, ge.EngineNone, des0)
	require.NoError(t, err)
	require.NoError(t, f.Modify(des1))
	require.NoError(t, f.Modify(des2))

	history, err := f.History()
	require.NoError(t, err)
	require.Equal(t, [][]byte{des0, des1, des2}, history)

	live, err := f.Description()
	require.NoError(t, err)
	require.Equal(t, des2, live)
	require.Equal(t, uint16(2), f.Digest().Sequence)
	require.NoError(t, f.Close())

	recovered, err := ge.Recover(path)
	require.NoError(t, err)
	defer recovered.Close()

	live, err = recovered.Description()
	require.NoError(t, err)
	require.Equal(t, des2, live)
	require.Equal(t, uint16(2), recovered.Digest().Sequence)

	history, err = recovered.History()
	require.NoError(t, err)
	require.Equal(t, [][]byte{des0, des1, des2}, history)
}

func TestModifyRejectsAlreadyLinkedTail(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("broken.ge")
	f, err := ge.Create(path, ge.TagView, ge.EngineNone, []byte("d"))
	require.NoError(t, err)
	defer f.Close()

	// Corrupt the live header's next_descriptor (bytes 44-51 on a fresh
	// file) so the tail no longer terminates the chain.
	require.NoError(t, f.Write(44, []byte{0, 0, 0, 0, 0, 0, 0, 1}))

	err = f.Modify([]byte("new"))
	require.ErrorIs(t, err, kinds.CorruptMetadata)
}

func TestRecoverRejectsBadSentinelWithoutMutating(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("sentinel.ge")
	f, err := ge.Create(path, ge.TagView, ge.EngineNone, []byte("d"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] = 0x21
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = ge.Recover(path)
	require.ErrorIs(t, err, kinds.InvalidFormat)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, raw, after)
}

func TestAppendReturnsPreAppendOffset(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	f, err := ge.Create(ctx.File("append.ge"), ge.TagView, ge.EngineNone, []byte("desc"))
	require.NoError(t, err)
	defer f.Close()

	before := f.Size()
	offset, err := f.Append([]byte("payload"))
	require.NoError(t, err)
	require.Equal(t, before, offset)

	got, err := f.Read(offset, len("payload"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestReadAllowNoneZeroFillsPastEOF(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	f, err := ge.Create(ctx.File("probe.ge"), ge.TagNode, ge.EngineDisk, []byte("d"))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.ReadAllowNone(f.Size()+100, 8)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 8), got)

	_, err = f.Read(f.Size()+100, 8)
	require.Error(t, err)
}

func TestArchiveRotatesFileAndPreservesOldOne(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("live.ge")
	archivedPath := ctx.File("archive", "v1.ge")

	f, err := ge.Create(path, ge.TagView, ge.EngineNone, []byte("v1 desc"))
	require.NoError(t, err)
	_, err = f.Append([]byte("old payload"))
	require.NoError(t, err)

	require.NoError(t, f.Archive(archivedPath, []byte("v2 desc")))
	defer f.Close()

	require.Equal(t, uint16(2), f.Digest().Version)
	require.Equal(t, uint16(0), f.Digest().Sequence)

	live, err := f.Description()
	require.NoError(t, err)
	require.Equal(t, []byte("v2 desc"), live)

	old, err := ge.Recover(archivedPath)
	require.NoError(t, err)
	defer old.Close()

	oldDesc, err := old.Description()
	require.NoError(t, err)
	require.Equal(t, []byte("v1 desc"), oldDesc)
	require.Equal(t, uint16(1), old.Digest().Version)
}
