package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ancestree/gedfilter/internal/model"
)

// Options controls a generation filter run. Generation bounds are
// non-negative counts, or model.Unbounded for no limit.
type Options struct {
	AncestorGens   int
	DescendantGens int

	// WiderDescendantsEnd, when non-nil, enables the wider-descendants
	// pass: descendants are also collected from every recorded ancestor,
	// down to this end generation. This reaches collateral lines
	// (cousins), not only the root's own descendants.
	WiderDescendantsEnd *int

	IncludePartners bool
	IncludeSiblings bool
}

// GenerationFilter extracts a generation-bounded subset of a graph
// around a root person. It only reads the graph; every run produces a
// fresh FilteredSet.
type GenerationFilter struct {
	graph *Graph
	log   *zap.Logger
}

// NewGenerationFilter creates a filter over the given graph.
func NewGenerationFilter(g *Graph, log *zap.Logger) *GenerationFilter {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerationFilter{graph: g, log: log}
}

// Filter collects the root person, ancestors, descendants and optionally
// partners, siblings and wider descendant lines. Generation 0 is the
// root; ancestors are negative, descendants positive. The first recorded
// generation for a person wins when several paths reach them.
//
// Returns ErrPersonNotFound if the root id is absent. Dangling ids met
// during traversal abort only their branch and are logged as warnings.
func (f *GenerationFilter) Filter(rootID string, opts Options) (*FilteredSet, error) {
	if _, ok := f.graph.Get(rootID); !ok {
		return nil, fmt.Errorf("start person %q: %w", rootID, ErrPersonNotFound)
	}

	set := NewFilteredSet()

	f.collectAncestors(set, rootID, opts)

	// The wider pass runs before the root's own descendant pass so the
	// latter only fills in whatever the wider bound did not reach.
	if opts.WiderDescendantsEnd != nil {
		earliest := set.EarliestGeneration()
		for gen := 0; gen >= earliest; gen-- {
			for _, id := range set.AtGeneration(gen) {
				f.collectDescendants(set, id, gen, *opts.WiderDescendantsEnd, opts)
			}
		}
	}

	f.collectDescendants(set, rootID, 0, opts.DescendantGens, opts)

	f.log.Info("filtered people",
		zap.Int("selected", set.Len()),
		zap.Int("total", f.graph.Len()),
		zap.Int("earliest_generation", set.EarliestGeneration()),
		zap.Int("latest_generation", set.LatestGeneration()),
		zap.String("root", f.graph.NameOf(rootID)))

	return set, nil
}

type genItem struct {
	id  string
	gen int
}

// collectAncestors walks parents depth-first, father branch before
// mother. Each node is recorded before its parents are visited so
// partial results survive a dangling branch. A revisit of an id within
// the walk is a no-op, which terminates cyclic parent links from
// corrupt input.
func (f *GenerationFilter) collectAncestors(set *FilteredSet, rootID string, opts Options) {
	visited := make(map[string]bool)
	stack := []genItem{{rootID, 0}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[it.id] {
			continue
		}
		visited[it.id] = true

		person, ok := f.graph.Get(it.id)
		if !ok {
			f.log.Warn("person not found while collecting ancestors", zap.String("id", it.id))
			continue
		}

		lastGeneration := opts.AncestorGens != model.Unbounded && abs(it.gen) >= opts.AncestorGens

		if set.Add(it.id, it.gen) {
			f.log.Debug("collecting ancestor",
				zap.Int("generation", it.gen), zap.String("id", it.id), zap.String("name", person.Name))
		}
		if opts.IncludePartners {
			f.addPartners(set, person, it.gen)
		}
		// Siblings at the truncation boundary would drag in parents that
		// were deliberately cut off, so they are skipped there.
		if opts.IncludeSiblings && !lastGeneration {
			f.addSiblings(set, person, it.gen)
		}

		if lastGeneration {
			continue
		}
		if person.MotherID != "" {
			stack = append(stack, genItem{person.MotherID, it.gen - 1})
		}
		if person.FatherID != "" {
			stack = append(stack, genItem{person.FatherID, it.gen - 1})
		}
	}
}

// collectDescendants walks children depth-first from a seed until the
// end generation is reached (endGen == model.Unbounded disables the
// limit). The visited guard is per walk: seeds from the wider pass and
// the final root pass may legitimately re-walk the same subtree, and
// recording is idempotent anyway.
func (f *GenerationFilter) collectDescendants(set *FilteredSet, seedID string, seedGen, endGen int, opts Options) {
	visited := make(map[string]bool)
	stack := []genItem{{seedID, seedGen}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[it.id] {
			continue
		}
		visited[it.id] = true

		person, ok := f.graph.Get(it.id)
		if !ok {
			f.log.Warn("person not found while collecting descendants", zap.String("id", it.id))
			continue
		}

		if set.Add(it.id, it.gen) {
			f.log.Debug("collecting descendant",
				zap.Int("generation", it.gen), zap.String("id", it.id), zap.String("name", person.Name))
		}
		if opts.IncludePartners {
			f.addPartners(set, person, it.gen)
		}

		if endGen != model.Unbounded && it.gen >= endGen {
			continue
		}
		for i := len(person.ChildIDs) - 1; i >= 0; i-- {
			stack = append(stack, genItem{person.ChildIDs[i], it.gen + 1})
		}
	}
}

// addPartners records a person's partners at the same generation.
// Partner ids are recorded even when they do not resolve in the graph;
// downstream consumers tolerate dangling references.
func (f *GenerationFilter) addPartners(set *FilteredSet, person *model.Person, generation int) {
	for _, partnerID := range person.PartnerIDs {
		if set.Add(partnerID, generation) {
			f.log.Debug("collecting partner",
				zap.Int("generation", generation),
				zap.String("id", partnerID),
				zap.String("name", f.graph.NameOf(partnerID)))
		}
	}
}

// addSiblings records the union of the father's and mother's children,
// minus the pivot, at the pivot's generation. Siblings are only
// produced when both parents are known; a single shared parent is not
// treated as a sibling relationship.
func (f *GenerationFilter) addSiblings(set *FilteredSet, person *model.Person, generation int) {
	if person.FatherID == "" || person.MotherID == "" {
		return
	}
	seen := make(map[string]bool)
	var siblings []string
	for _, parentID := range []string{person.FatherID, person.MotherID} {
		parent, ok := f.graph.Get(parentID)
		if !ok {
			f.log.Warn("parent not found while collecting siblings",
				zap.String("id", parentID), zap.String("child", person.ID))
			continue
		}
		for _, childID := range parent.ChildIDs {
			if childID == person.ID || seen[childID] {
				continue
			}
			seen[childID] = true
			siblings = append(siblings, childID)
		}
	}
	for _, siblingID := range siblings {
		if set.Add(siblingID, generation) {
			f.log.Debug("collecting sibling",
				zap.Int("generation", generation),
				zap.String("id", siblingID),
				zap.String("name", f.graph.NameOf(siblingID)))
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
