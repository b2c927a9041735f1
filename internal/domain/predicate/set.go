package predicate

import "strings"

type setOp int

const (
	opEmpty setOp = iota
	opLeaf
	opIntersect
	opUnion
)

// Set is a candidate set: a composition of Predicates under intersection and union.
// The zero value is the empty set. Sets are values; combinators never modify their operands.
type Set struct {
	op       setOp
	leaf     Predicate
	children []Set
}

// Empty returns the set that matches no record.
func Empty() Set { return Set{} }

// Of wraps a single predicate. A zero predicate yields the empty set.
func Of(p Predicate) Set {
	if p.IsZero() {
		return Empty()
	}
	return Set{op: opLeaf, leaf: p}
}

// Intersect returns the intersection of sets.
// No operands, or any empty operand, gives the empty set.
func Intersect(sets ...Set) Set {
	if len(sets) == 0 {
		return Empty()
	}
	children := make([]Set, 0, len(sets))
	for _, s := range sets {
		switch s.op {
		case opEmpty:
			return Empty()
		case opIntersect:
			children = append(children, s.children...)
		default:
			children = append(children, s)
		}
	}
	if len(children) == 1 {
		return children[0]
	}
	return Set{op: opIntersect, children: children}
}

// Union returns the union of sets. Empty operands are dropped; nothing left gives the empty set.
func Union(sets ...Set) Set {
	children := make([]Set, 0, len(sets))
	for _, s := range sets {
		switch s.op {
		case opEmpty:
			continue
		case opUnion:
			children = append(children, s.children...)
		default:
			children = append(children, s)
		}
	}
	switch len(children) {
	case 0:
		return Empty()
	case 1:
		return children[0]
	}
	return Set{op: opUnion, children: children}
}

// IsEmpty reports whether the set is known to match nothing without consulting the store.
func (s Set) IsEmpty() bool { return s.op == opEmpty }

// Leaves returns the predicates of the set in render order.
func (s Set) Leaves() []Predicate {
	var out []Predicate
	s.walk(func(p Predicate) { out = append(out, p) })
	return out
}

func (s Set) walk(fn func(Predicate)) {
	switch s.op {
	case opLeaf:
		fn(s.leaf)
	case opIntersect, opUnion:
		for _, c := range s.children {
			c.walk(fn)
		}
	}
}

// Predicate renders the set as one composed id query. The empty set renders as the zero Predicate.
func (s Set) Predicate() Predicate {
	var b strings.Builder
	var args []any
	s.render(&b, &args)
	if b.Len() == 0 {
		return Predicate{}
	}
	return Predicate{sql: b.String(), args: args}
}

func (s Set) render(b *strings.Builder, args *[]any) {
	switch s.op {
	case opLeaf:
		b.WriteString(s.leaf.sql)
		*args = append(*args, s.leaf.args...)
	case opIntersect, opUnion:
		keyword := " INTERSECT "
		if s.op == opUnion {
			keyword = " UNION "
		}
		for i, c := range s.children {
			if i > 0 {
				b.WriteString(keyword)
			}
			b.WriteByte('(')
			c.render(b, args)
			b.WriteByte(')')
		}
	}
}

// Evaluate computes the set in memory, resolving each leaf predicate through resolve.
// It mirrors the SQL semantics and backs the set-algebra tests of the compiler.
func Evaluate(s Set, resolve func(Predicate) []int64) map[int64]struct{} {
	switch s.op {
	case opLeaf:
		out := make(map[int64]struct{})
		for _, id := range resolve(s.leaf) {
			out[id] = struct{}{}
		}
		return out
	case opUnion:
		out := make(map[int64]struct{})
		for _, c := range s.children {
			for id := range Evaluate(c, resolve) {
				out[id] = struct{}{}
			}
		}
		return out
	case opIntersect:
		out := Evaluate(s.children[0], resolve)
		for _, c := range s.children[1:] {
			next := Evaluate(c, resolve)
			for id := range out {
				if _, ok := next[id]; !ok {
					delete(out, id)
				}
			}
		}
		return out
	}
	return map[int64]struct{}{}
}
