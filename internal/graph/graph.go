package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ancestree/gedfilter/internal/model"
)

// ErrPersonNotFound is returned when a requested root person is absent
// from the graph. Dangling relationship ids never produce this error;
// they are skipped and logged by the traversal instead.
var ErrPersonNotFound = errors.New("person not found")

// Graph is a read-mostly store of persons keyed by xref id. It is built
// once by the GEDCOM reader and only read afterwards. Iteration order is
// insertion (parse) order, which keeps downstream output deterministic.
type Graph struct {
	people map[string]*model.Person
	order  []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{people: make(map[string]*model.Person)}
}

// Add inserts a person, replacing any previous entry with the same id.
func (g *Graph) Add(p *model.Person) {
	if _, exists := g.people[p.ID]; !exists {
		g.order = append(g.order, p.ID)
	}
	g.people[p.ID] = p
}

// Get looks up a person by id. An absent id is an expected outcome
// (dangling reference), not an error.
func (g *Graph) Get(id string) (*model.Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

// All returns every person in insertion order.
func (g *Graph) All() []*model.Person {
	out := make([]*model.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id])
	}
	return out
}

// Len returns the number of people in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// FindByName returns ids of people whose name matches. With exact=false
// the match is a case-insensitive substring search, otherwise a
// case-insensitive full match. Returns ids in graph order.
func (g *Graph) FindByName(name string, exact bool) []string {
	var matches []string
	search := strings.ToLower(strings.TrimSpace(name))
	for _, id := range g.order {
		p := g.people[id]
		if p.Name == "" {
			continue
		}
		personName := strings.ToLower(p.Name)
		if exact {
			if personName == search {
				matches = append(matches, id)
			}
		} else if strings.Contains(personName, search) {
			matches = append(matches, id)
		}
	}
	return matches
}

// NameOf returns the display name for an id, falling back to the id
// itself for dangling references. Used for log messages.
func (g *Graph) NameOf(id string) string {
	if p, ok := g.people[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

// Summary describes the graph for logs.
func (g *Graph) Summary() string {
	return fmt.Sprintf("%d people", len(g.order))
}
