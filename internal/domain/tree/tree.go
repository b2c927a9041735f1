package tree

import (
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
)

// Kind discriminates the two node shapes of a filter tree.
type Kind int

const (
	// KindLeaf is a {strategy, query} node.
	KindLeaf Kind = iota + 1
	// KindOperator is an {operator, operands} node.
	KindOperator
)

// Known operator kinds. Other values decode fine and compile to an empty set.
const (
	OpAnd = "AND"
	OpOr  = "OR"
)

// Default bounds applied to untrusted trees.
const (
	DefaultMaxDepth    = 16
	DefaultMaxOperands = 64
	DefaultMaxLeaves   = 256
)

// Node is an immutable filter tree node: either a leaf or an operator.
type Node struct {
	kind     Kind
	strategy string
	query    string
	operator string
	operands []*Node
}

// Leaf creates a strategy leaf.
func Leaf(strategy, query string) *Node {
	return &Node{kind: KindLeaf, strategy: strategy, query: query}
}

// And creates an intersection node.
func And(operands ...*Node) *Node { return Operator(OpAnd, operands...) }

// Or creates a union node.
func Or(operands ...*Node) *Node { return Operator(OpOr, operands...) }

// Operator creates an operator node. The kind is trimmed and upper-cased, so
// "and" and " Or " compile as AND and OR rather than degrading as unknown
// kinds. Any other kind is kept and degrades at compile time.
func Operator(kind string, operands ...*Node) *Node {
	ops := make([]*Node, len(operands))
	copy(ops, operands)
	return &Node{kind: KindOperator, operator: strings.ToUpper(strings.TrimSpace(kind)), operands: ops}
}

// Kind returns the node shape.
func (n *Node) Kind() Kind { return n.kind }

// Strategy returns the strategy name of a leaf.
func (n *Node) Strategy() string { return n.strategy }

// Query returns the raw query string of a leaf.
func (n *Node) Query() string { return n.query }

// OperatorKind returns the operator of an interior node.
func (n *Node) OperatorKind() string { return n.operator }

// Operands returns the children of an interior node.
func (n *Node) Operands() []*Node { return n.operands }

// IsLeaf reports whether the node is a strategy leaf.
func (n *Node) IsLeaf() bool { return n.kind == KindLeaf }

// Depth returns the height of the subtree rooted at n. A single leaf has depth 1.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	maxChild := 0
	for _, op := range n.operands {
		if d := op.Depth(); d > maxChild {
			maxChild = d
		}
	}
	return maxChild + 1
}

// Leaves returns every leaf in depth-first, left-to-right order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.walk(func(node *Node) {
		if node.IsLeaf() {
			out = append(out, node)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, op := range n.operands {
		op.walk(fn)
	}
}

// String renders the tree in a compact prefix form, e.g. AND(wordmark:"acme", section_12c:"").
func (n *Node) String() string {
	if n == nil {
		return "<empty>"
	}
	if n.IsLeaf() {
		return fmt.Sprintf("%s:%q", n.strategy, n.query)
	}
	parts := make([]string, len(n.operands))
	for i, op := range n.operands {
		parts[i] = op.String()
	}
	return n.operator + "(" + strings.Join(parts, ", ") + ")"
}

// Limits bounds the shape of a tree before it is compiled.
type Limits struct {
	MaxDepth    int
	MaxOperands int
	MaxLeaves   int
}

// DefaultLimits returns the default tree bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:    DefaultMaxDepth,
		MaxOperands: DefaultMaxOperands,
		MaxLeaves:   DefaultMaxLeaves,
	}
}

// Validate checks the tree against the limits. A nil tree is valid. Zero limits are unbounded.
func Validate(n *Node, l Limits) error {
	if n == nil {
		return nil
	}
	if l.MaxDepth > 0 {
		if d := n.Depth(); d > l.MaxDepth {
			return fmt.Errorf("%w: depth %d exceeds %d", domain.ErrTreeTooLarge, d, l.MaxDepth)
		}
	}

	var leaves, widest int
	n.walk(func(node *Node) {
		if node.IsLeaf() {
			leaves++
		}
		if len(node.operands) > widest {
			widest = len(node.operands)
		}
	})
	if l.MaxOperands > 0 && widest > l.MaxOperands {
		return fmt.Errorf("%w: %d operands exceeds %d", domain.ErrTreeTooLarge, widest, l.MaxOperands)
	}
	if l.MaxLeaves > 0 && leaves > l.MaxLeaves {
		return fmt.Errorf("%w: %d leaves exceeds %d", domain.ErrTreeTooLarge, leaves, l.MaxLeaves)
	}
	return nil
}
