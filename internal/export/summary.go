// Package export writes the secondary artifacts next to the filtered
// GEDCOM: a per-person CSV summary and a KML document of geocoded
// places.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ancestree/gedfilter/internal/graph"
	"github.com/ancestree/gedfilter/internal/model"
)

// WriteSummaryCSV writes one row per person: identity, generation
// offset, birth/death year and place, and the best known coordinate.
// Persons appear in the given order.
func WriteSummaryCSV(path string, persons []*model.Person, set *graph.FilteredSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "name", "sex", "generation", "birth_year", "birth_place", "death_year", "death_place", "lat", "lon"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range persons {
		generation := ""
		if set != nil {
			if gen, ok := set.Generation(p.ID); ok {
				generation = strconv.Itoa(gen)
			}
		}
		lat, lon := "", ""
		if p.LatLon.HasLocation() {
			lat = strconv.FormatFloat(p.LatLon.Lat, 'f', 6, 64)
			lon = strconv.FormatFloat(p.LatLon.Lon, 'f', 6, 64)
		}
		row := []string{
			p.ID,
			p.Name,
			p.Sex,
			generation,
			p.Birth.WhenYear(false),
			eventPlace(p.Birth),
			p.Death.WhenYear(false),
			eventPlace(p.Death),
			lat,
			lon,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", p.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func eventPlace(ev *model.LifeEvent) string {
	if ev == nil {
		return ""
	}
	return ev.Place
}
