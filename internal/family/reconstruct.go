// Package family rebuilds GEDCOM family (FAM) groupings from
// person-level parent, child and partner links. The reconstruction is
// restricted strictly to the persons it is given: relationship ids that
// point outside the set are excluded from grouping, but the bare values
// stay on the output records so dangling references survive a
// round-trip.
package family

import (
	"fmt"

	"github.com/ancestree/gedfilter/internal/model"
)

// Group is a reconstructed family: an unordered pair of optional parent
// ids plus the children of that pair, with a synthesized stable id.
// For partner-only (childless) groups FatherID/MotherID hold the sorted
// partner pair, regardless of sex.
type Group struct {
	ID       string // e.g. "@F0001@"
	FatherID string
	MotherID string
	ChildIDs []string
}

type pairKey struct {
	a string
	b string
}

// Reconstruct derives family groups from the supplied persons and
// back-annotates spouse-family (FAMS) and child-family (FAMC) reference
// lists. The input is never mutated: annotated copies are returned, in
// input order, alongside the groups in discovery order. Identical
// ordered input always yields identical group ids. Reconstruct never
// fails; a person with no qualifying relationships simply keeps empty
// reference lists.
func Reconstruct(persons []*model.Person) ([]*model.Person, []*Group) {
	inSet := make(map[string]*model.Person, len(persons))
	out := make([]*model.Person, 0, len(persons))
	outByID := make(map[string]*model.Person, len(persons))
	for _, p := range persons {
		clone := p.Clone()
		clone.SpouseFamilyIDs = nil
		clone.ChildFamilyIDs = nil
		inSet[p.ID] = p
		out = append(out, clone)
		outByID[clone.ID] = clone
	}

	groups := make(map[pairKey]*Group)
	var keyOrder []pairKey

	ensure := func(key pairKey) *Group {
		if g, ok := groups[key]; ok {
			return g
		}
		g := &Group{FatherID: key.a, MotherID: key.b}
		groups[key] = g
		keyOrder = append(keyOrder, key)
		return g
	}

	// 1. Families with children: key on (father, mother), restricted to
	// the supplied set. Either side may be empty.
	for _, p := range persons {
		father := p.FatherID
		mother := p.MotherID
		if _, ok := inSet[father]; !ok {
			father = ""
		}
		if _, ok := inSet[mother]; !ok {
			mother = ""
		}
		if father == "" && mother == "" {
			continue
		}
		g := ensure(pairKey{father, mother})
		g.ChildIDs = appendUnique(g.ChildIDs, p.ID)
	}

	// 2. Partner-only families, keyed by the sorted pair so (A,B) and
	// (B,A) collapse. Skipped when a family with children already covers
	// the pair in either order.
	for _, p := range persons {
		for _, partnerID := range p.PartnerIDs {
			if _, ok := inSet[partnerID]; !ok {
				continue
			}
			a, b := p.ID, partnerID
			if b < a {
				a, b = b, a
			}
			if _, ok := groups[pairKey{p.ID, partnerID}]; ok {
				continue
			}
			if _, ok := groups[pairKey{partnerID, p.ID}]; ok {
				continue
			}
			if _, ok := groups[pairKey{a, b}]; ok {
				continue
			}
			ensure(pairKey{a, b})
		}
	}

	// 3. Sequential ids in discovery order.
	ordered := make([]*Group, 0, len(keyOrder))
	for i, key := range keyOrder {
		g := groups[key]
		g.ID = fmt.Sprintf("@F%04d@", i+1)
		ordered = append(ordered, g)
	}

	// 4. Back-annotation: FAMS on both parents/partners, FAMC on each
	// child. A person remarried into several groups gets several FAMS
	// entries, in group order.
	for _, g := range ordered {
		if parent, ok := outByID[g.FatherID]; ok {
			parent.SpouseFamilyIDs = append(parent.SpouseFamilyIDs, g.ID)
		}
		if parent, ok := outByID[g.MotherID]; ok {
			parent.SpouseFamilyIDs = append(parent.SpouseFamilyIDs, g.ID)
		}
		for _, childID := range g.ChildIDs {
			if child, ok := outByID[childID]; ok {
				child.ChildFamilyIDs = append(child.ChildFamilyIDs, g.ID)
			}
		}
	}

	return out, ordered
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
