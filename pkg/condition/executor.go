package condition

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/aberic/george/internal/kinds"
	"github.com/aberic/george/pkg/ge"
	"github.com/aberic/george/pkg/index"
	"github.com/aberic/george/pkg/record"
	"github.com/aberic/george/pkg/view"
)

// Execute runs constraint against v. It picks an index to drive iteration —
// the one named by constraint.Sort, failing that the one named by the
// constraint's first equality clause, falling back to the primary index —
// applies every clause as a predicate regardless of which field drove
// iteration, and pages the result. When the driving index doesn't already
// produce the requested sort order, the full (predicate-filtered) result is
// collected and sorted in memory instead, subject to cfg.MaxUnsortedScan.
//
// When constraint.Delete is set, every record in the final page is also
// removed from v via its own primary key, so secondary indexes tombstone
// along with it — the same rm(key, value) path View.Del uses directly.
func Execute(ctx context.Context, v *view.View, constraint Constraint, cfg Config) (index.SelectResult, error) {
	indexes := v.Indexes()

	driver, driverOrdersResult, err := chooseIndex(indexes, constraint)
	if err != nil {
		return index.SelectResult{}, err
	}

	predicate, err := buildPredicate(constraint.Conditions)
	if err != nil {
		return index.SelectResult{}, err
	}

	left := true
	if constraint.Sort != nil {
		left = constraint.Sort.Asc
	}

	if driverOrdersResult {
		params := index.SelectParams{
			Left:      left,
			Predicate: predicate,
			Skip:      constraint.Skip,
			Limit:     constraint.Limit,
			Delete:    constraint.Delete,
		}
		if constraint.Delete {
			params.OnDelete = deleteCallback(ctx, v)
		}
		return driver.Select(ctx, params)
	}

	full, err := driver.Select(ctx, index.SelectParams{Left: true, Predicate: predicate})
	if err != nil {
		return index.SelectResult{}, err
	}
	if constraint.Sort != nil && len(full.Values) > cfg.MaxUnsortedScan {
		return index.SelectResult{}, Error.Wrap(kinds.ResultTooLarge)
	}
	if constraint.Sort != nil {
		sortByParam(full.Values, constraint.Sort.Param, constraint.Sort.Asc)
	}

	paged := slicePage(full.Values, constraint.Skip, constraint.Limit)
	result := index.SelectResult{TotalScanned: full.TotalScanned, Count: len(paged), Values: paged}

	if constraint.Delete {
		del := deleteCallback(ctx, v)
		for _, value := range paged {
			if err := del(value.Key, value); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// deleteCallback adapts View.Del to an index.SelectParams.OnDelete hook.
// The driving index's own notion of "key" (a hash bucket, a sequence
// number, a projected field) is irrelevant here — Del needs whatever key
// representation the view's own primary index expects. For an increment
// primary that's the allocated slot number, not the literal key the record
// was originally Put under, since the increment engine never writes the
// slot back into DataReal.Key.
func deleteCallback(ctx context.Context, v *view.View) func(string, record.DataReal) error {
	var primaryIsIncrement bool
	if primary, err := v.Primary(); err == nil && primary.Engine() == ge.EngineIncrement {
		primaryIsIncrement = true
	}
	return func(_ string, value record.DataReal) error {
		key := value.Key
		if primaryIsIncrement {
			key = strconv.FormatUint(value.Increment, 10)
		}
		return v.Del(ctx, key)
	}
}

// chooseIndex picks which index drives iteration and reports whether that
// index's natural order already satisfies constraint.Sort (true when no
// sort was requested, since any order is then acceptable).
func chooseIndex(indexes map[string]index.TNode, constraint Constraint) (index.TNode, bool, error) {
	var primary index.TNode
	for _, idx := range indexes {
		if idx.Primary() {
			primary = idx
			break
		}
	}
	if primary == nil {
		return nil, false, Error.Wrap(kinds.NotFound)
	}

	if constraint.Sort != nil {
		if idx, ok := indexes[constraint.Sort.Param]; ok {
			return idx, true, nil
		}
	}
	for _, clause := range constraint.Conditions {
		if clause.Cond != CondEq {
			continue
		}
		if idx, ok := indexes[clause.Param]; ok {
			return idx, constraint.Sort == nil, nil
		}
		break
	}
	return primary, constraint.Sort == nil, nil
}

func buildPredicate(conditions []Clause) (index.Predicate, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	for _, clause := range conditions {
		if !isSupportedCond(clause.Cond) {
			return nil, Error.Wrap(kinds.Unimplemented)
		}
	}
	return func(value record.DataReal) bool {
		for _, clause := range conditions {
			fieldValue, ok := fieldOf(value.Value, clause.Param)
			if !ok {
				return false
			}
			var want any
			if err := json.Unmarshal(clause.Value, &want); err != nil {
				return false
			}
			ok2, err := compare(fieldValue, clause.Cond, want)
			if err != nil || !ok2 {
				return false
			}
		}
		return true
	}, nil
}

func isSupportedCond(cond string) bool {
	switch cond {
	case CondEq, CondGt, CondGe, CondLt, CondLe, CondNe, CondLike, CondIn, CondNin:
		return true
	default:
		return false
	}
}

func fieldOf(raw []byte, param string) (any, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	r, ok := doc[param]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(r, &v); err != nil {
		return nil, false
	}
	return v, true
}

func sortByParam(values []record.DataReal, param string, asc bool) {
	sort.SliceStable(values, func(i, j int) bool {
		vi, oki := fieldOf(values[i].Value, param)
		vj, okj := fieldOf(values[j].Value, param)
		if !oki || !okj {
			return false
		}
		if asc {
			less, _ := lessThan(vi, vj)
			return less
		}
		greater, _ := lessThan(vj, vi)
		return greater
	})
}

func slicePage(values []record.DataReal, skip, limit int) []record.DataReal {
	if skip >= len(values) {
		return nil
	}
	values = values[skip:]
	if limit > 0 && limit < len(values) {
		values = values[:limit]
	}
	return values
}
