package model

import "fmt"

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
	set bool
}

// NewLatLon creates a coordinate known to be valid.
func NewLatLon(lat, lon float64) *LatLon {
	return &LatLon{Lat: lat, Lon: lon, set: true}
}

// HasLocation reports whether the coordinate was actually resolved.
func (l *LatLon) HasLocation() bool {
	return l != nil && l.set
}

func (l *LatLon) String() string {
	if !l.HasLocation() {
		return "Unknown"
	}
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lon)
}

// Location is a geocoded place: the address text it was resolved from
// plus the resolved coordinate and the geocoder's display name.
type Location struct {
	LatLon      *LatLon
	Address     string
	DisplayName string
}
