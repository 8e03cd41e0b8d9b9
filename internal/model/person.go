package model

import "fmt"

// Person represents an individual parsed from a GEDCOM file. All
// relationship links are held as xref ids, never object references, so
// the graph stays cycle-free and a filtered subset can be serialized
// independently. Dangling ids are tolerated everywhere.
type Person struct {
	ID         string // GEDCOM xref id, e.g. "@I42@"
	Name       string
	FirstName  string
	Surname    string
	MaidenName string
	Sex        string
	Title      string

	FatherID   string
	MotherID   string
	ChildIDs   []string // in FAM record order
	PartnerIDs []string

	Birth      *LifeEvent
	Death      *LifeEvent
	Marriages  []*LifeEvent
	Residences []*LifeEvent

	LatLon *LatLon // best known coordinate

	Photos []string // all photo file references
	Photo  string   // primary photo, "" if none

	SpouseFamilyIDs []string // FAMS: families where this person is a parent/partner
	ChildFamilyIDs  []string // FAMC: families where this person is a child
}

// NewPerson creates an empty person with the given xref id.
func NewPerson(id string) *Person {
	return &Person{ID: id}
}

func (p *Person) String() string {
	return fmt.Sprintf("Person(id=%s, name=%s)", p.ID, p.Name)
}

// RefYear returns a human-readable reference year, preferring birth over
// death, e.g. "2010 (Born)" or "1150 (Died)" or "? (Unknown)".
func (p *Person) RefYear() string {
	if p.Birth != nil && p.Birth.Date != nil {
		if year := p.Birth.WhenYear(false); year != "" {
			return year + " (Born)"
		}
	}
	if p.Death != nil && p.Death.Date != nil {
		if year := p.Death.WhenYear(false); year != "" {
			return year + " (Died)"
		}
	}
	return "? (Unknown)"
}

// BestLatLon returns the best known coordinate for the person: birth
// location first, then death. Returns nil when nothing was geocoded.
func (p *Person) BestLatLon() *LatLon {
	if p.Birth != nil && p.Birth.LatLon().HasLocation() {
		return p.Birth.LatLon()
	}
	if p.Death != nil && p.Death.LatLon().HasLocation() {
		return p.Death.LatLon()
	}
	return nil
}

// Clone returns a copy of the person with fresh annotation lists, so
// family reconstruction can annotate output without mutating its input.
func (p *Person) Clone() *Person {
	out := *p
	out.SpouseFamilyIDs = append([]string(nil), p.SpouseFamilyIDs...)
	out.ChildFamilyIDs = append([]string(nil), p.ChildFamilyIDs...)
	return &out
}
