package master_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aberic/george/internal/config"
	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/master"
)

func TestMasterOpenFreshCreatesBootstrap(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	cfg := &config.Config{DataDir: ctx.Dir("data"), ThreadCount: 2}
	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	require.Empty(t, m.Databases())
	require.Empty(t, m.Pages())
}

func TestMasterCreateDatabaseAndPageThenRecover(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dataDir := ctx.Dir("data")
	cfg := &config.Config{DataDir: dataDir, ThreadCount: 2}

	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = m.CreateDatabase(context.Background(), "shop", "retail")
	require.NoError(t, err)

	_, err = m.CreatePage(context.Background(), "cache", "", 0, 0)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	recovered, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer recovered.Close()

	require.Len(t, recovered.Databases(), 1)
	require.Len(t, recovered.Pages(), 1)

	db, err := recovered.Database("shop")
	require.NoError(t, err)
	require.Equal(t, "shop", db.Name())

	p, err := recovered.Page("cache")
	require.NoError(t, err)
	require.Equal(t, "cache", p.Name())
}

func TestMasterCreateDatabaseRejectsDuplicateName(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	cfg := &config.Config{DataDir: ctx.Dir("data"), ThreadCount: 1}
	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.CreateDatabase(context.Background(), "shop", "")
	require.NoError(t, err)

	_, err = m.CreateDatabase(context.Background(), "shop", "")
	require.ErrorIs(t, err, kinds.AlreadyExists)
}

func TestMasterRemoveDatabaseForgetsHandle(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	cfg := &config.Config{DataDir: ctx.Dir("data"), ThreadCount: 1}
	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.CreateDatabase(context.Background(), "shop", "")
	require.NoError(t, err)
	require.NoError(t, m.RemoveDatabase(context.Background(), "shop"))

	_, err = m.Database("shop")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestMasterRemovePageForgetsHandle(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	cfg := &config.Config{DataDir: ctx.Dir("data"), ThreadCount: 1}
	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.CreatePage(context.Background(), "cache", "", 0, 0)
	require.NoError(t, err)
	require.NoError(t, m.RemovePage(context.Background(), "cache"))

	_, err = m.Page("cache")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestMasterSweepPagesEvictsExpiredEntriesAcrossPages(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	cfg := &config.Config{DataDir: ctx.Dir("data"), ThreadCount: 4}
	m, err := master.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	p, err := m.CreatePage(context.Background(), "cache", "", 0, 1)
	require.NoError(t, err)
	require.NoError(t, p.Put(context.Background(), "a", []byte("1"), false))

	time.Sleep(1100 * time.Millisecond)

	require.NoError(t, m.SweepPages(context.Background()))

	_, err = p.Get(context.Background(), "a")
	require.ErrorIs(t, err, kinds.NotFound)
}
