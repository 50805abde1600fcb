// Package condition implements the query constraint evaluator: a JSON
// document of ANDed equality/comparison clauses plus an optional sort,
// skip, limit, and delete flag, executed against a view by picking the most
// useful index to drive iteration and applying the rest as a predicate.
package condition

import (
	"encoding/json"

	"github.com/zeebo/errs"

	"github.com/aberic/george/internal/kinds"
)

// Error is the error class for this package.
var Error = errs.Class("condition")

// Config holds the evaluator's tunables — currently just the cap on an
// in-memory sort's candidate set.
type Config struct {
	MaxUnsortedScan int
}

// DefaultConfig returns the cap used when no Config is supplied: 100000
// candidate records, chosen as a conservative default for an unindexed sort.
func DefaultConfig() Config {
	return Config{MaxUnsortedScan: 100000}
}

// Clause is one ANDed condition: `{param, cond, value}`.
type Clause struct {
	Param string          `json:"param"`
	Cond  string          `json:"cond"`
	Value json.RawMessage `json:"value"`
}

// The complete set of supported comparators.
const (
	CondEq  = "eq"
	CondGt  = "gt"
	CondGe  = "ge"
	CondLt  = "lt"
	CondLe  = "le"
	CondNe  = "ne"
	CondLike = "like"
	CondIn  = "in"
	CondNin = "nin"
)

// SortSpec names the field to sort by and the direction.
type SortSpec struct {
	Param string `json:"param"`
	Asc   bool   `json:"asc"`
}

// Constraint is the fully parsed query document.
type Constraint struct {
	Conditions []Clause  `json:"conditions"`
	Sort       *SortSpec `json:"sort"`
	Skip       int       `json:"skip"`
	Limit      int       `json:"limit"`
	Delete     bool      `json:"delete"`
}

// Parse decodes raw into a Constraint.
func Parse(raw []byte) (Constraint, error) {
	var c Constraint
	if err := json.Unmarshal(raw, &c); err != nil {
		return Constraint{}, Error.Wrap(kinds.EncodingError)
	}
	return c, nil
}
