package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
)

// maxDecodeDepth stops pathological nesting before Validate sees the tree.
const maxDecodeDepth = 512

type wireNode struct {
	Strategy *string            `json:"strategy,omitempty"`
	Query    json.RawMessage    `json:"query,omitempty"`
	Operator *string            `json:"operator,omitempty"`
	Operands *[]json.RawMessage `json:"operands,omitempty"`
}

// Decode parses a filter tree from JSON.
// An empty body, null or {} yields a nil tree, which searches to an empty page.
func Decode(data []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var w wireNode
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, domain.NewTreeError("", "root is not an object: "+err.Error())
	}
	if w.Strategy == nil && w.Operator == nil && w.Operands == nil {
		return nil, nil
	}
	return decodeNode(&w, "", 1)
}

func decodeRaw(raw json.RawMessage, path string, depth int) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, domain.NewTreeError(path, "node is not an object")
	}
	return decodeNode(&w, path, depth)
}

func decodeNode(w *wireNode, path string, depth int) (*Node, error) {
	if depth > maxDecodeDepth {
		return nil, fmt.Errorf("%w: nesting exceeds %d", domain.ErrTreeTooLarge, maxDecodeDepth)
	}

	if w.Strategy != nil {
		q, err := decodeQuery(w.Query)
		if err != nil {
			return nil, domain.NewTreeError(path, err.Error())
		}
		return Leaf(*w.Strategy, q), nil
	}

	if w.Operator == nil || w.Operands == nil {
		return nil, domain.NewTreeError(path, "node has neither strategy nor operator with operands")
	}

	raw := *w.Operands
	operands := make([]*Node, 0, len(raw))
	for i, r := range raw {
		child, err := decodeRaw(r, childPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		operands = append(operands, child)
	}
	return Operator(*w.Operator, operands...), nil
}

// decodeQuery accepts a string, a bare number or boolean, or nothing.
func decodeQuery(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("query: %w", err)
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("query must be a string")
	default:
		return string(raw), nil
	}
}

func childPath(parent string, i int) string {
	p := "operands[" + strconv.Itoa(i) + "]"
	if parent == "" {
		return p
	}
	return parent + "." + p
}

// MarshalJSON encodes the node in the same shape Decode accepts.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	if n.IsLeaf() {
		s, q := n.strategy, n.query
		return json.Marshal(struct {
			Strategy string `json:"strategy"`
			Query    string `json:"query"`
		}{s, q})
	}
	ops := n.operands
	if ops == nil {
		ops = []*Node{}
	}
	return json.Marshal(struct {
		Operator string  `json:"operator"`
		Operands []*Node `json:"operands"`
	}{n.operator, ops})
}
