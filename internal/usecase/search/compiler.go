package search

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	"github.com/DavidZachariahWC/trademarks-public/internal/logger"
	"github.com/DavidZachariahWC/trademarks-public/internal/metrics"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
)

// Degradation reasons.
const (
	ReasonUnknownStrategy = "unknown_strategy"
	ReasonUnknownOperator = "unknown_operator"
	ReasonUnsatisfiable   = "unsatisfiable"
)

// Degradation records a node that compiled to the empty set instead of failing the request.
type Degradation struct {
	Path     string
	Reason   string
	Strategy string
	Operator string
	Detail   string
}

// Compiled is the result of compiling a filter tree.
type Compiled struct {
	// Set is the admitted-id set of the whole tree.
	Set predicate.Set
	// Scores holds the contribution of every scoring leaf in the tree,
	// including leaves on branches that do not reach Set.
	Scores       []predicate.ScoreExpr
	Degradations []Degradation
	Leaves       int
}

// Compiler turns filter trees into candidate sets and score contributions.
type Compiler struct {
	registry Resolver
	pool     *ants.Pool
	tracer   trace.Tracer
}

// NewCompiler creates a compiler. workers > 1 compiles root operands concurrently
// on a pool of that size; otherwise everything compiles on the calling goroutine.
func NewCompiler(registry Resolver, workers int) (*Compiler, error) {
	c := &Compiler{registry: registry, tracer: otel.Tracer("tmsearch-search")}
	if workers > 1 {
		pool, err := ants.NewPool(workers)
		if err != nil {
			return nil, fmt.Errorf("create compile pool: %w", err)
		}
		c.pool = pool
	}
	return c, nil
}

// Release stops the worker pool. The compiler must not be used afterwards.
func (c *Compiler) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// Compile compiles root. A nil root compiles to the empty set.
// Compilation never fails: unknown names and bad leaf input degrade to the empty set.
func (c *Compiler) Compile(ctx context.Context, root *tree.Node, p strategy.Params) Compiled {
	_, span := c.tracer.Start(ctx, "search.compile")
	defer span.End()

	var out Compiled
	if root != nil {
		out = c.compileRoot(root, p)
	} else {
		out = Compiled{Set: predicate.Empty()}
	}

	log := logger.FromContext(ctx)
	for _, d := range out.Degradations {
		metrics.SearchDegradationsTotal.WithLabelValues(d.Reason).Inc()
		log.Warn("Filter tree node degraded",
			zap.String("path", d.Path),
			zap.String("reason", d.Reason),
			zap.String("strategy", d.Strategy),
			zap.String("operator", d.Operator),
			zap.String("detail", d.Detail),
		)
	}

	span.SetAttributes(
		attribute.Int("search.leaves", out.Leaves),
		attribute.Int("search.scoring_leaves", len(out.Scores)),
		attribute.Int("search.degradations", len(out.Degradations)),
		attribute.Bool("search.empty", out.Set.IsEmpty()),
	)
	return out
}

func (c *Compiler) compileRoot(root *tree.Node, p strategy.Params) Compiled {
	ops := root.Operands()
	if c.pool == nil || root.IsLeaf() || !knownOperator(root.OperatorKind()) || len(ops) < 2 {
		return c.compileNode(root, "", p)
	}

	parts := make([]Compiled, len(ops))
	var wg sync.WaitGroup
	for i, op := range ops {
		task := func() {
			defer wg.Done()
			parts[i] = c.compileNode(op, operandPath("", i), p)
		}
		wg.Add(1)
		if err := c.pool.Submit(task); err != nil {
			// Pool closed or overloaded: compile inline.
			task()
		}
	}
	wg.Wait()

	return combine(root.OperatorKind(), parts)
}

func (c *Compiler) compileNode(n *tree.Node, path string, p strategy.Params) Compiled {
	if n.IsLeaf() {
		return c.compileLeaf(n, path, p)
	}

	op := n.OperatorKind()
	ops := n.Operands()
	parts := make([]Compiled, len(ops))
	for i, child := range ops {
		parts[i] = c.compileNode(child, operandPath(path, i), p)
	}
	if knownOperator(op) {
		return combine(op, parts)
	}

	// Unknown kinds admit nothing, but scoring leaves below them still contribute.
	out := merge(parts)
	out.Set = predicate.Empty()
	out.Degradations = append([]Degradation{{Path: path, Reason: ReasonUnknownOperator, Operator: op}}, out.Degradations...)
	return out
}

func (c *Compiler) compileLeaf(n *tree.Node, path string, p strategy.Params) Compiled {
	out := Compiled{Set: predicate.Empty(), Leaves: 1}

	ctor, ok := c.registry.Resolve(n.Strategy())
	if !ok {
		out.Degradations = []Degradation{{Path: path, Reason: ReasonUnknownStrategy, Strategy: n.Strategy()}}
		return out
	}

	p.Query = n.Query()
	s := ctor(p)
	res := s.Evaluate()
	if !res.IsMatched() {
		out.Degradations = []Degradation{{
			Path:     path,
			Reason:   ReasonUnsatisfiable,
			Strategy: s.Name(),
			Detail:   res.Reason(),
		}}
		return out
	}

	out.Set = predicate.Of(res.Predicate())
	if sc, ok := res.Score(); ok && s.IsScoring() {
		out.Scores = []predicate.ScoreExpr{sc}
	}
	return out
}

// combine applies a known operator to compiled operands.
func combine(op string, parts []Compiled) Compiled {
	out := merge(parts)
	sets := make([]predicate.Set, len(parts))
	for i, part := range parts {
		sets[i] = part.Set
	}
	if op == tree.OpAnd {
		out.Set = predicate.Intersect(sets...)
	} else {
		out.Set = predicate.Union(sets...)
	}
	return out
}

// merge concatenates scores, degradations and leaf counts in operand order.
func merge(parts []Compiled) Compiled {
	var out Compiled
	for _, part := range parts {
		out.Scores = append(out.Scores, part.Scores...)
		out.Degradations = append(out.Degradations, part.Degradations...)
		out.Leaves += part.Leaves
	}
	return out
}

func knownOperator(op string) bool {
	return op == tree.OpAnd || op == tree.OpOr
}

func operandPath(parent string, i int) string {
	p := "operands[" + strconv.Itoa(i) + "]"
	if parent == "" {
		return p
	}
	return parent + "." + p
}
