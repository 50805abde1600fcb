package condition

import (
	"reflect"
	"strings"

	"github.com/aberic/george/internal/kinds"
)

// compare evaluates one clause's comparator against a field value decoded
// from a record (a) and the clause's own JSON-decoded value (b). Both
// arrive as the types encoding/json produces for arbitrary values: float64
// for numbers, string, bool, []any, map[string]any, or nil.
func compare(a any, cond string, b any) (bool, error) {
	switch cond {
	case CondEq:
		return reflect.DeepEqual(a, b), nil
	case CondNe:
		return !reflect.DeepEqual(a, b), nil
	case CondGt, CondGe, CondLt, CondLe:
		return orderedCompare(a, cond, b)
	case CondLike:
		return likeMatch(a, b)
	case CondIn:
		return inSet(a, b, true)
	case CondNin:
		return inSet(a, b, false)
	default:
		return false, kinds.Unimplemented
	}
}

func orderedCompare(a any, cond string, b any) (bool, error) {
	switch cond {
	case CondLt:
		return lessThan(a, b)
	case CondLe:
		greater, err := lessThan(b, a)
		if err != nil {
			return false, err
		}
		return !greater, nil
	case CondGt:
		return lessThan(b, a)
	case CondGe:
		less, err := lessThan(a, b)
		if err != nil {
			return false, err
		}
		return !less, nil
	default:
		return false, kinds.Unimplemented
	}
}

// lessThan compares two JSON-decoded scalars, numerically if both are
// numbers, lexically if both are strings.
func lessThan(a, b any) (bool, error) {
	if af, aok := a.(float64); aok {
		if bf, bok := b.(float64); bok {
			return af < bf, nil
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return as < bs, nil
		}
	}
	return false, kinds.KeyTypeMismatch
}

// likeMatch supports the four forms SQL LIKE patterns reduce to once
// nested wildcards are disallowed: "%x%" (contains), "%x" (suffix), "x%"
// (prefix), and "x" (exact).
func likeMatch(a, b any) (bool, error) {
	as, aok := a.(string)
	pattern, bok := b.(string)
	if !aok || !bok {
		return false, kinds.KeyTypeMismatch
	}
	prefix := strings.HasPrefix(pattern, "%")
	suffix := strings.HasSuffix(pattern, "%")
	trimmed := strings.Trim(pattern, "%")
	switch {
	case prefix && suffix:
		return strings.Contains(as, trimmed), nil
	case prefix:
		return strings.HasSuffix(as, trimmed), nil
	case suffix:
		return strings.HasPrefix(as, trimmed), nil
	default:
		return as == pattern, nil
	}
}

func inSet(a, b any, wantMember bool) (bool, error) {
	arr, ok := b.([]any)
	if !ok {
		return false, kinds.KeyTypeMismatch
	}
	found := false
	for _, item := range arr {
		if reflect.DeepEqual(a, item) {
			found = true
			break
		}
	}
	if wantMember {
		return found, nil
	}
	return !found, nil
}
