package geo

import (
	"testing"

	"github.com/ancestree/gedfilter/internal/model"
)

func TestAddressBookFuzzyCollapse(t *testing.T) {
	book := NewAddressBook()

	first := book.Add("Haworth, Yorkshire, England")
	variants := []string{
		"haworth yorkshire england",
		"Haworth,  Yorkshire,England",
		"HAWORTH; YORKSHIRE: ENGLAND",
		"Haworth. Yorkshire. England.",
	}
	for _, v := range variants {
		if got := book.Add(v); got != first {
			t.Errorf("expected %q to collapse into the first entry", v)
		}
	}

	if book.Len() != 1 {
		t.Errorf("expected 1 distinct place, got %d", book.Len())
	}
	if first.Place != "Haworth, Yorkshire, England" {
		t.Errorf("canonical text must be the first spelling seen, got %q", first.Place)
	}
}

func TestAddressBookDistinctPlaces(t *testing.T) {
	book := NewAddressBook()
	book.Add("Haworth")
	book.Add("Thornton")

	if book.Len() != 2 {
		t.Errorf("expected 2 places, got %d", book.Len())
	}
	if _, ok := book.Lookup("thornton"); !ok {
		t.Error("expected fuzzy lookup to find Thornton")
	}
	if _, ok := book.Lookup("London"); ok {
		t.Error("unexpected match for unregistered place")
	}
}

func TestAddressBookIgnoresEmpty(t *testing.T) {
	book := NewAddressBook()
	if e := book.Add(""); e != nil {
		t.Error("empty place must not create an entry")
	}
	if e := book.Add("   "); e != nil {
		t.Error("blank place must not create an entry")
	}
	if book.Len() != 0 {
		t.Errorf("expected empty book, got %d entries", book.Len())
	}
}

func TestAddressBookEntriesOrder(t *testing.T) {
	book := NewAddressBook()
	names := []string{"Thornton", "Haworth", "Emdale"}
	for _, n := range names {
		book.Add(n)
	}

	entries := book.Entries()
	for i, want := range names {
		if entries[i].Place != want {
			t.Errorf("position %d: expected %s, got %s", i, want, entries[i].Place)
		}
	}
}

func TestCollectPlaces(t *testing.T) {
	p1 := model.NewPerson("@I1@")
	p1.Birth = model.NewLifeEvent(model.EventBirth, "Thornton", nil, nil)
	p1.Death = model.NewLifeEvent(model.EventDeath, "Haworth", nil, nil)
	p1.Marriages = []*model.LifeEvent{
		model.NewLifeEvent(model.EventMarriage, "Guiseley", nil, nil),
	}

	p2 := model.NewPerson("@I2@")
	p2.Birth = model.NewLifeEvent(model.EventBirth, "thornton", nil, nil) // dup of p1's
	p2.Residences = []*model.LifeEvent{
		model.NewLifeEvent(model.EventResidence, "London", nil, nil),
	}

	p3 := model.NewPerson("@I3@") // no events at all

	book := CollectPlaces([]*model.Person{p1, p2, p3})
	if book.Len() != 4 {
		t.Errorf("expected 4 distinct places, got %d", book.Len())
	}
	for _, place := range []string{"Thornton", "Haworth", "Guiseley", "London"} {
		if _, ok := book.Lookup(place); !ok {
			t.Errorf("expected %s in the book", place)
		}
	}
}

func TestAnnotate(t *testing.T) {
	p := model.NewPerson("@I1@")
	p.Birth = model.NewLifeEvent(model.EventBirth, "Thornton", nil, nil)
	p.Death = model.NewLifeEvent(model.EventDeath, "Nowhere", nil, nil)

	book := NewAddressBook()
	entry := book.Add("Thornton")
	entry.Location = &model.Location{
		LatLon:      model.NewLatLon(53.79, -1.85),
		Address:     "Thornton",
		DisplayName: "Thornton, Bradford, England",
	}
	book.Add("Nowhere") // registered but never resolved

	Annotate([]*model.Person{p}, book)

	if !p.Birth.LatLon().HasLocation() {
		t.Fatal("expected birth event to be annotated")
	}
	if p.Birth.Location.DisplayName != "Thornton, Bradford, England" {
		t.Errorf("unexpected display name %q", p.Birth.Location.DisplayName)
	}
	if p.Death.LatLon().HasLocation() {
		t.Error("unresolved place must stay unannotated")
	}
	if p.LatLon == nil || p.LatLon.Lat != 53.79 {
		t.Errorf("expected person coordinate from birth, got %v", p.LatLon)
	}
}
