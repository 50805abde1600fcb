package condition_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/testctx"
	"github.com/aberic/george/pkg/condition"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/view"
)

func seedView(t *testing.T, dir string) *view.View {
	t.Helper()
	v, err := view.Create(dir, "people", "", true)
	require.NoError(t, err)
	require.NoError(t, v.CreateIndex(context.Background(), "age", ge.EngineSequence, index.KeyTypeU64, false, false, false))

	people := []string{
		`{"name":"alice","age":30}`,
		`{"name":"bob","age":18}`,
		`{"name":"carl","age":45}`,
		`{"name":"dina","age":22}`,
		`{"name":"erin","age":60}`,
	}
	for i, body := range people {
		_, err := v.Put(context.Background(), "k"+string(rune('a'+i)), []byte(body), false)
		require.NoError(t, err)
	}
	return v
}

func TestExecuteFiltersOnClause(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()
	v := seedView(t, ctx.Dir("people"))

	constraint, err := condition.Parse([]byte(`{"conditions":[{"param":"age","cond":"ge","value":30}]}`))
	require.NoError(t, err)

	result, err := condition.Execute(context.Background(), v, constraint, condition.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, result.Values, 3)
	for _, rec := range result.Values {
		age, ok := fieldAsFloat(t, rec.Value, "age")
		require.True(t, ok)
		require.GreaterOrEqual(t, age, float64(30))
	}
}

func TestExecuteSortsByIndexedField(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()
	v := seedView(t, ctx.Dir("people"))

	constraint, err := condition.Parse([]byte(`{"sort":{"param":"age","asc":true}}`))
	require.NoError(t, err)

	result, err := condition.Execute(context.Background(), v, constraint, condition.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, result.Values, 5)

	var prev float64 = -1
	for _, rec := range result.Values {
		age, ok := fieldAsFloat(t, rec.Value, "age")
		require.True(t, ok)
		require.GreaterOrEqual(t, age, prev)
		prev = age
	}
}

func TestExecuteSkipLimit(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()
	v := seedView(t, ctx.Dir("people"))

	constraint, err := condition.Parse([]byte(`{"sort":{"param":"age","asc":true},"skip":1,"limit":2}`))
	require.NoError(t, err)

	result, err := condition.Execute(context.Background(), v, constraint, condition.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, result.Values, 2)
}

func TestExecuteDeleteRemovesMatches(t *testing.T) {
	ctx := testctx.New(t)
	defer ctx.Cleanup()
	v := seedView(t, ctx.Dir("people"))

	constraint, err := condition.Parse([]byte(`{"conditions":[{"param":"age","cond":"lt","value":25}],"delete":true}`))
	require.NoError(t, err)

	result, err := condition.Execute(context.Background(), v, constraint, condition.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, result.Values, 2)

	remaining, err := condition.Execute(context.Background(), v, condition.Constraint{}, condition.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, remaining.Values, 3)
}

func fieldAsFloat(t *testing.T, raw []byte, field string) (float64, bool) {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	v, ok := doc[field]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
