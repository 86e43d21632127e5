package syncer

import (
	"strings"

	"github.com/roach88/surveysync/internal/survey"
)

// resolver matches incoming items to persisted rows of one scope.
//
// A row is claimed at most once per pass: once an incoming item resolves to
// it, later items with the same id or natural key fall through. Rows named by
// an incoming explicit id are reserved for that item and never matched by
// natural key, whatever the incoming order.
type resolver[T any] struct {
	byID     map[string]*T
	byKey    map[string][]*T // folded natural key -> rows in persisted order
	claimed  map[*T]bool
	reserved map[*T]bool
}

// newResolver indexes rows. keyOf may be nil for kinds without a natural key.
func newResolver[T any](rows []*T, idOf func(*T) string, keyOf func(*T) string) *resolver[T] {
	r := &resolver[T]{
		byID:     make(map[string]*T, len(rows)),
		byKey:    make(map[string][]*T),
		claimed:  make(map[*T]bool, len(rows)),
		reserved: make(map[*T]bool),
	}
	for _, row := range rows {
		if id := idOf(row); id != "" {
			if _, dup := r.byID[id]; !dup {
				r.byID[id] = row
			}
		}
		if keyOf != nil {
			if key := survey.FoldKey(keyOf(row)); key != "" {
				r.byKey[key] = append(r.byKey[key], row)
			}
		}
	}
	return r
}

// reserve withholds the rows named by ids from natural-key matching. Call it
// with every explicit id of the scope before the first resolve.
func (r *resolver[T]) reserve(ids []string) {
	for _, id := range ids {
		if row, ok := r.byID[strings.TrimSpace(id)]; ok {
			r.reserved[row] = true
		}
	}
}

// resolve returns the row an incoming item identifies, claiming it.
// A nil result means the item is new.
//
// Precedence: explicit id of an unclaimed row, then the first unclaimed and
// unreserved row with the same natural key.
func (r *resolver[T]) resolve(id, naturalKey string) *T {
	if id != "" {
		if row, ok := r.byID[id]; ok && !r.claimed[row] {
			r.claimed[row] = true
			return row
		}
	}
	if key := survey.FoldKey(naturalKey); key != "" {
		for _, row := range r.byKey[key] {
			if !r.claimed[row] && !r.reserved[row] {
				r.claimed[row] = true
				return row
			}
		}
	}
	return nil
}

// claim marks a row created during this pass.
func (r *resolver[T]) claim(row *T) {
	r.claimed[row] = true
}

// isClaimed reports whether row was matched or created in this pass.
func (r *resolver[T]) isClaimed(row *T) bool {
	return r.claimed[row]
}

func sectionResolver(rows []*survey.Section) *resolver[survey.Section] {
	return newResolver(rows,
		func(s *survey.Section) string { return s.ID },
		func(s *survey.Section) string { return s.Title })
}

func questionResolver(rows []*survey.Question) *resolver[survey.Question] {
	return newResolver(rows,
		func(q *survey.Question) string { return q.ID },
		func(q *survey.Question) string { return q.Key })
}

func optionResolver(rows []*survey.Option) *resolver[survey.Option] {
	return newResolver(rows,
		func(o *survey.Option) string { return o.ID },
		func(o *survey.Option) string { return o.Value })
}

// ruleResolver matches by id only; a rule without a known id is always new.
func ruleResolver(rows []*survey.Rule) *resolver[survey.Rule] {
	return newResolver(rows,
		func(r *survey.Rule) string { return r.ID },
		nil)
}
