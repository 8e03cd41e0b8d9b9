// Package geo resolves event place text to coordinates through a
// Nominatim-style geocoding service, with fuzzy place matching, polite
// rate limiting and a persistent result cache.
package geo

import (
	"strings"

	"github.com/ancestree/gedfilter/internal/model"
)

// Entry is one canonical place in the address book with its resolved
// location, nil until geocoded (or when geocoding found nothing).
type Entry struct {
	Place    string // canonical text, as first seen
	Location *model.Location
}

// AddressBook is a fuzzy registry of place names. Spellings that differ
// only in case, whitespace or punctuation collapse into one entry, so
// each distinct place is geocoded once.
type AddressBook struct {
	entries map[string]*Entry
	order   []string
}

// NewAddressBook creates an empty address book.
func NewAddressBook() *AddressBook {
	return &AddressBook{entries: make(map[string]*Entry)}
}

// Add registers a place, returning the existing entry when a fuzzy
// match is already present.
func (b *AddressBook) Add(place string) *Entry {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil
	}
	key := normalizePlace(place)
	if e, ok := b.entries[key]; ok {
		return e
	}
	e := &Entry{Place: place}
	b.entries[key] = e
	b.order = append(b.order, key)
	return e
}

// Lookup finds the entry fuzzily matching a place.
func (b *AddressBook) Lookup(place string) (*Entry, bool) {
	e, ok := b.entries[normalizePlace(place)]
	return e, ok
}

// Entries returns all entries in insertion order.
func (b *AddressBook) Entries() []*Entry {
	out := make([]*Entry, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.entries[key])
	}
	return out
}

// Len returns the number of distinct places.
func (b *AddressBook) Len() int {
	return len(b.order)
}

// CollectPlaces builds an address book from every place mentioned in
// the persons' life events.
func CollectPlaces(persons []*model.Person) *AddressBook {
	book := NewAddressBook()
	for _, p := range persons {
		for _, ev := range personEvents(p) {
			if ev != nil && ev.Place != "" {
				book.Add(ev.Place)
			}
		}
	}
	return book
}

// personEvents lists every event attached to a person.
func personEvents(p *model.Person) []*model.LifeEvent {
	events := []*model.LifeEvent{p.Birth, p.Death}
	events = append(events, p.Marriages...)
	events = append(events, p.Residences...)
	return events
}

// normalizePlace produces the fuzzy-match key: lowercase, punctuation
// stripped, whitespace collapsed.
func normalizePlace(place string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(place) {
		switch ch {
		case '.', ',', ';', ':', '\'', '"':
			b.WriteRune(' ')
		default:
			b.WriteRune(ch)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
