package testctx_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/testctx"
)

func TestContextDirCreatesNestedDirectories(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("a", "b", "c")
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.True(t, filepath.IsAbs(dir))
}

func TestContextFileEnsuresParentDirButNotTheFileItself(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	path := ctx.File("archive", "v1.ge")

	_, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestContextGoSucceedsSilently(t *testing.T) {
	ctx := testctx.New(t)

	done := make(chan struct{})
	ctx.Go(func() error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracked goroutine never ran")
	}
	ctx.Cleanup()
}

func TestContextGoCancelsContextOnTrackedError(t *testing.T) {
	ctx := testctx.New(t)

	ctx.Go(func() error { return errors.New("boom") })

	select {
	case <-ctx.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled after a tracked goroutine failed")
	}
}

func TestNewWithTimeoutCancelsContextAfterDeadline(t *testing.T) {
	ctx := testctx.NewWithTimeout(t, 50*time.Millisecond)
	defer ctx.Cleanup()

	select {
	case <-ctx.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context was never canceled by its timeout")
	}
}
