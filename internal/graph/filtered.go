package graph

// FilteredSet maps person ids to signed generation offsets relative to a
// root person: 0 for the root, negative for ancestors, positive for
// descendants. The first recorded generation for an id wins; later
// attempts to record the same id are no-ops, so membership is
// deterministic for a fixed traversal order.
type FilteredSet struct {
	generations map[string]int
	order       []string
	earliest    int
	latest      int
}

// NewFilteredSet creates an empty set.
func NewFilteredSet() *FilteredSet {
	return &FilteredSet{generations: make(map[string]int)}
}

// Add records an id at a generation. Returns false if the id was already
// present (at any generation).
func (s *FilteredSet) Add(id string, generation int) bool {
	if _, exists := s.generations[id]; exists {
		return false
	}
	s.generations[id] = generation
	s.order = append(s.order, id)
	if generation < s.earliest {
		s.earliest = generation
	}
	if generation > s.latest {
		s.latest = generation
	}
	return true
}

// Contains reports whether the id has been recorded.
func (s *FilteredSet) Contains(id string) bool {
	_, ok := s.generations[id]
	return ok
}

// Generation returns the recorded generation for an id.
func (s *FilteredSet) Generation(id string) (int, bool) {
	gen, ok := s.generations[id]
	return gen, ok
}

// AtGeneration returns the ids first recorded at the given generation,
// in insertion order.
func (s *FilteredSet) AtGeneration(generation int) []string {
	var ids []string
	for _, id := range s.order {
		if s.generations[id] == generation {
			ids = append(ids, id)
		}
	}
	return ids
}

// IDs returns all recorded ids in insertion order.
func (s *FilteredSet) IDs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of recorded ids.
func (s *FilteredSet) Len() int {
	return len(s.order)
}

// EarliestGeneration returns the most negative generation observed
// (0 if no ancestors were recorded).
func (s *FilteredSet) EarliestGeneration() int {
	return s.earliest
}

// LatestGeneration returns the most positive generation observed
// (0 if no descendants were recorded).
func (s *FilteredSet) LatestGeneration() int {
	return s.latest
}

// NumGenerations returns the span of observed generations.
func (s *FilteredSet) NumGenerations() int {
	return s.latest - s.earliest + 1
}
