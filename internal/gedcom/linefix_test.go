package gedcom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.ged")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestCheckFixUnchanged(t *testing.T) {
	path := writeTemp(t, `0 @I1@ INDI
1 NAME Emily /Bronte/
1 NOTE a note
2 CONC with a continuation
0 TRLR
`)

	fixed, err := CheckFix(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed != path {
		t.Errorf("well-formed file must be returned as-is, got %s", fixed)
	}
}

func TestCheckFixRepairsLevels(t *testing.T) {
	// CONC at the wrong level (1 instead of 2), as emitted by some
	// desktop exports.
	path := writeTemp(t, `0 @I1@ INDI
1 NOTE a note
1 CONC  continued wrongly
0 TRLR
`)

	fixed, err := CheckFix(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed == path {
		t.Fatal("expected a corrected temp file")
	}
	defer os.Remove(fixed)

	data, err := os.ReadFile(fixed)
	if err != nil {
		t.Fatalf("read corrected file: %v", err)
	}
	if !strings.Contains(string(data), "2 CONC  continued wrongly") {
		t.Errorf("expected CONC moved to level 2, got:\n%s", data)
	}
	if !strings.Contains(string(data), "1 NOTE a note") {
		t.Errorf("other lines must be untouched, got:\n%s", data)
	}
}

func TestReadFileRepairsAndParses(t *testing.T) {
	path := writeTemp(t, `0 @I1@ INDI
1 NAME Emily /Bronte/
1 BIRT
2 PLAC Thornton
1 CONC , Yorkshire
0 TRLR
`)

	g, err := NewReader(false, nil).ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := g.Get("@I1@")
	if !ok {
		t.Fatal("person not parsed")
	}
	if p.Birth == nil || p.Birth.Place != "Thornton, Yorkshire" {
		t.Errorf("expected repaired CONC folded into place, got %v", p.Birth)
	}
}
