package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ancestree/gedfilter/internal/graph"
	"github.com/ancestree/gedfilter/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")

	emily := model.NewPerson("@I3@")
	emily.Name = "Emily Bronte"
	emily.Sex = "F"
	emily.Birth = model.NewLifeEvent(model.EventBirth, "Thornton",
		&model.DateValue{Kind: model.DateSimple, Text: "30 JUL 1818", Year: "1818"}, nil)
	emily.Death = model.NewLifeEvent(model.EventDeath, "Haworth",
		&model.DateValue{Kind: model.DateSimple, Text: "19 DEC 1848", Year: "1848"}, nil)
	emily.LatLon = model.NewLatLon(53.83, -1.9569)

	bare := model.NewPerson("@I9@")
	bare.Name = "Unknown"

	set := graph.NewFilteredSet()
	set.Add("@I3@", 0)

	if err := WriteSummaryCSV(path, []*model.Person{emily, bare}, set); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][3] != "generation" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	got := rows[1]
	want := []string{"@I3@", "Emily Bronte", "F", "0", "1818", "Thornton", "1848", "Haworth", "53.830000", "-1.956900"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	// A person with no events, coordinates or generation yields empty
	// cells, not a crash.
	blank := rows[2]
	for _, i := range []int{3, 4, 5, 6, 7, 8, 9} {
		if blank[i] != "" {
			t.Errorf("column %d: expected empty, got %q", i, blank[i])
		}
	}
}

func TestWriteKML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.kml")

	located := model.NewPerson("@I1@")
	located.Name = "Emily Bronte"
	located.Birth = model.NewLifeEvent(model.EventBirth, "Thornton",
		&model.DateValue{Kind: model.DateSimple, Year: "1818"}, model.NewLatLon(53.79, -1.85))

	unlocated := model.NewPerson("@I2@")
	unlocated.Name = "No Where"

	if err := WriteKML(path, "bronte", []*model.Person{located, unlocated}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read kml: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "http://www.opengis.net/kml/2.2") {
		t.Error("missing KML namespace")
	}
	if !strings.Contains(text, "<name>Emily Bronte</name>") {
		t.Error("missing placemark for located person")
	}
	// KML wants lon,lat order.
	if !strings.Contains(text, "<coordinates>-1.850000,53.790000</coordinates>") {
		t.Errorf("missing or misordered coordinates:\n%s", text)
	}
	if strings.Contains(text, "No Where") {
		t.Error("person without coordinates must be left out")
	}
	if !strings.Contains(text, "1818 (Born)") {
		t.Error("expected reference year in description")
	}
}
