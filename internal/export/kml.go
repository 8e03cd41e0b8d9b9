package export

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/ancestree/gedfilter/internal/model"
)

type kmlDocument struct {
	XMLName    xml.Name       `xml:"kml"`
	Namespace  string         `xml:"xmlns,attr"`
	Name       string         `xml:"Document>name"`
	Placemarks []kmlPlacemark `xml:"Document>Placemark"`
}

type kmlPlacemark struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description,omitempty"`
	Point       kmlPoint `xml:"Point"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"` // lon,lat per the KML spec
}

// WriteKML writes a placemark for every person with a geocoded birth or
// death location, suitable for loading into Google Earth. Persons
// without any resolved coordinate are left out.
func WriteKML(path, name string, persons []*model.Person) error {
	doc := kmlDocument{
		Namespace: "http://www.opengis.net/kml/2.2",
		Name:      name,
	}

	for _, p := range persons {
		latlon := p.BestLatLon()
		if !latlon.HasLocation() {
			continue
		}
		doc.Placemarks = append(doc.Placemarks, kmlPlacemark{
			Name:        p.Name,
			Description: p.RefYear(),
			Point: kmlPoint{
				Coordinates: fmt.Sprintf("%f,%f", latlon.Lon, latlon.Lat),
			},
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal kml: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
