package strategy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

//go:embed coordinated_classes.yaml
var coordinatedClassesYAML []byte

// ClassGroup pairs the international and US class codes of one coordinated group.
type ClassGroup struct {
	International []string `yaml:"international"`
	US            []string `yaml:"us"`
}

// Classes maps a coordinated group key (e.g. coord_class_001) to its codes.
type Classes map[string]ClassGroup

// DefaultClasses returns the embedded coordinated class table.
func DefaultClasses() (Classes, error) {
	return ParseClasses(coordinatedClassesYAML)
}

// ParseClasses decodes a coordinated class table. Every group needs both code sets.
func ParseClasses(data []byte) (Classes, error) {
	var c Classes
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse coordinated classes: %w", err)
	}
	for key, g := range c {
		if len(g.International) == 0 || len(g.US) == 0 {
			return nil, fmt.Errorf("coordinated class %q needs international and us codes", key)
		}
	}
	return c, nil
}

// Keys returns the group keys in order.
func (c Classes) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// coordinated matches records classified under at least one international code
// and at least one US code of the same group.
type coordinated struct {
	name    string
	query   string
	classes Classes
}

func (s *coordinated) Name() string    { return s.name }
func (s *coordinated) IsScoring() bool { return false }

func (s *coordinated) Evaluate() Outcome {
	key := strings.ToLower(strings.TrimSpace(s.query))
	group, ok := s.classes[key]
	if !ok {
		return Unsatisfiable(fmt.Sprintf("unknown coordinated class %q", s.query))
	}

	intl := predicate.Of(predicate.New(
		"SELECT x.serial_number FROM classification x WHERE x.international_code = ANY(?)",
		group.International,
	))
	us := predicate.Of(predicate.New(
		"SELECT x.serial_number FROM classification x WHERE x.us_code = ANY(?)",
		group.US,
	))
	return Matched(predicate.Intersect(intl, us).Predicate(), predicate.ScoreExpr{})
}

func coordinatedEntry(name string, classes Classes) Entry {
	return Entry{
		Name:   name,
		Family: FamilyCoordinated,
		New: func(p Params) Strategy {
			return &coordinated{name: name, query: p.Query, classes: classes}
		},
	}
}
