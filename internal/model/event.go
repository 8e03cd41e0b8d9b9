package model

import "fmt"

// EventKind tags the type of a life event
type EventKind string

const (
	EventBirth     EventKind = "BIRT"
	EventDeath     EventKind = "DEAT"
	EventMarriage  EventKind = "MARR"
	EventResidence EventKind = "RESI"
)

// LifeEvent represents a dated, placed event in a person's life.
// Location is only ever set when a place or coordinate is known; it is
// never a placeholder.
type LifeEvent struct {
	Kind     EventKind
	Place    string
	Date     *DateValue
	Location *Location // geocoded, nil until resolved
}

// NewLifeEvent creates a LifeEvent with an optional initial coordinate.
// A Location is attached only if a coordinate or place was supplied.
func NewLifeEvent(kind EventKind, place string, date *DateValue, pos *LatLon) *LifeEvent {
	ev := &LifeEvent{Kind: kind, Place: place, Date: date}
	if pos != nil || place != "" {
		ev.Location = &Location{LatLon: pos, Address: place}
	}
	return ev
}

// WhenYear returns the event's year string, or "" if undated.
func (e *LifeEvent) WhenYear(last bool) string {
	if e == nil || e.Date == nil {
		return ""
	}
	return e.Date.WhenYear(last)
}

// LatLon returns the event's geocoded coordinate, or nil.
func (e *LifeEvent) LatLon() *LatLon {
	if e == nil || e.Location == nil {
		return nil
	}
	return e.Location.LatLon
}

// String summarizes the event for logs.
func (e *LifeEvent) String() string {
	if e == nil {
		return ""
	}
	date := ""
	if e.Date != nil {
		date = e.Date.Text
	}
	if e.Kind != "" {
		return fmt.Sprintf("[ %s : %s is %s ]", date, e.Place, e.Kind)
	}
	return fmt.Sprintf("[ %s : %s ]", date, e.Place)
}
