package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/database"
)

func TestDatabaseCreateViewAndRecover(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	dir := ctx.Dir("dbs", "shop")
	db, err := database.Create(dir, "shop", "retail data")
	require.NoError(t, err)

	v, err := db.CreateView(context.Background(), "orders", "order rows", true)
	require.NoError(t, err)
	require.Equal(t, "orders", v.Name())

	rec, err := v.Put(context.Background(), "ignored", []byte(`{"total":42}`), false)
	require.NoError(t, err)
	require.NotNil(t, rec)

	recovered, err := database.Recover(dir)
	require.NoError(t, err)
	require.Equal(t, "shop", recovered.Name())
	require.Equal(t, "retail data", recovered.Comment())

	recoveredView, err := recovered.View("orders")
	require.NoError(t, err)
	require.Equal(t, "orders", recoveredView.Name())
}

func TestDatabaseCreateViewRejectsDuplicateName(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	db, err := database.Create(ctx.Dir("dbs", "shop"), "shop", "")
	require.NoError(t, err)

	_, err = db.CreateView(context.Background(), "orders", "", true)
	require.NoError(t, err)

	_, err = db.CreateView(context.Background(), "orders", "", true)
	require.ErrorIs(t, err, kinds.AlreadyExists)
}

func TestDatabaseViewUnknownNameNotFound(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	db, err := database.Create(ctx.Dir("dbs", "shop"), "shop", "")
	require.NoError(t, err)

	_, err = db.View("missing")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestDatabaseRemoveViewForgetsHandle(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	db, err := database.Create(ctx.Dir("dbs", "shop"), "shop", "")
	require.NoError(t, err)

	_, err = db.CreateView(context.Background(), "orders", "", true)
	require.NoError(t, err)

	require.NoError(t, db.RemoveView(context.Background(), "orders"))

	_, err = db.View("orders")
	require.ErrorIs(t, err, kinds.NotFound)

	err = db.RemoveView(context.Background(), "orders")
	require.ErrorIs(t, err, kinds.NotFound)
}

func TestDatabaseModifyRenames(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	db, err := database.Create(ctx.Dir("dbs", "shop"), "shop", "old")
	require.NoError(t, err)

	require.NoError(t, db.Modify("store", "new"))
	require.Equal(t, "store", db.Name())
	require.Equal(t, "new", db.Comment())
}

func TestDatabaseViewsSnapshotIsIndependentOfInternalMap(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()

	db, err := database.Create(ctx.Dir("dbs", "shop"), "shop", "")
	require.NoError(t, err)

	_, err = db.CreateView(context.Background(), "orders", "", true)
	require.NoError(t, err)

	snapshot := db.Views()
	require.Len(t, snapshot, 1)

	_, err = db.CreateView(context.Background(), "customers", "", true)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Len(t, db.Views(), 2)
}
