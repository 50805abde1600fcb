package filed_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/filed"
)

func TestAppendReadRoundTrip(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	f, err := filed.Open(ctx.File("data.bin"))
	require.NoError(t, err)
	defer f.Close()

	first, err := f.Append([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, int64(0), first)

	second, err := f.Append([]byte("world"))
	require.NoError(t, err)
	require.Equal(t, int64(5), second)
	require.Equal(t, int64(10), f.Size())

	got, err := f.Read(5, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), got)
}

func TestWriteStaysWithinFile(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	f, err := filed.Open(ctx.File("data.bin"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Append([]byte("0123456789"))
	require.NoError(t, err)

	require.NoError(t, f.Write(2, []byte("ab")))
	got, err := f.Read(0, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("01ab456789"), got)

	require.Error(t, f.Write(9, []byte("xx")))
	require.Error(t, f.Write(-1, []byte("x")))
}

func TestReadAllowNonePadsTail(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	f, err := filed.Open(ctx.File("data.bin"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Append([]byte("abc"))
	require.NoError(t, err)

	got, err := f.ReadAllowNone(1, 6)
	require.NoError(t, err)
	require.Equal(t, []byte{'b', 'c', 0, 0, 0, 0}, got)

	got, err = f.ReadAllowNone(100, 4)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 4), got)
}

func TestArchiveMovesFileAndResetsHandle(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("data.bin")
	moved := ctx.File("old", "data.bin")

	f, err := filed.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Append([]byte("payload"))
	require.NoError(t, err)

	require.NoError(t, f.Archive(moved))
	require.Equal(t, int64(0), f.Size())
	require.Equal(t, path, f.Path())

	raw, err := os.ReadFile(moved)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), raw)

	offset, err := f.Append([]byte("new"))
	require.NoError(t, err)
	require.Equal(t, int64(0), offset)
}
