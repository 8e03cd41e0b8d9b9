// Package gedcom reads and writes the line-oriented GEDCOM exchange
// format: INDI and FAM records, life events, family links and photo
// references. It is deliberately tolerant: unknown tags are ignored and
// malformed relationship ids are passed through for downstream code to
// skip.
package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/ancestree/gedfilter/internal/graph"
	"github.com/ancestree/gedfilter/internal/model"
)

// photoExts is the allowlist of photo file extensions.
var photoExts = map[string]bool{
	"jpg": true, "jpeg": true, "bmp": true, "png": true, "gif": true,
}

// parseLineRe captures level, optional xref and tag, plus the value.
var parseLineRe = regexp.MustCompile(`^(\d+)\s+(?:(@[^@]+@)\s+)?([A-Z0-9_]+)(?:\s(.*))?$`)

// node is one GEDCOM line with its nested sub-lines.
type node struct {
	xref  string
	tag   string
	value string
	subs  []*node
}

func (n *node) sub(tag string) *node {
	for _, s := range n.subs {
		if s.tag == tag {
			return s
		}
	}
	return nil
}

func (n *node) subValue(tag string) string {
	if s := n.sub(tag); s != nil {
		return s.value
	}
	return ""
}

func (n *node) subAll(tag string) []*node {
	var out []*node
	for _, s := range n.subs {
		if s.tag == tag {
			out = append(out, s)
		}
	}
	return out
}

// Reader parses GEDCOM files into a relationship graph.
type Reader struct {
	onlyPhotoTags bool
	log           *zap.Logger
}

// NewReader creates a reader. With onlyPhotoTags set, photos are taken
// only from _PHOTO tags and standard OBJE records are ignored.
func NewReader(onlyPhotoTags bool, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{onlyPhotoTags: onlyPhotoTags, log: log}
}

// ReadFile parses a GEDCOM file into a graph. Broken CONC/CONT levels
// are repaired in a temporary copy first; the input is never modified.
func (r *Reader) ReadFile(path string) (*graph.Graph, error) {
	fixedPath, err := CheckFix(path)
	if err != nil {
		return nil, fmt.Errorf("check gedcom structure: %w", err)
	}
	if fixedPath != path {
		r.log.Warn("corrected CONC/CONT levels in GEDCOM file",
			zap.String("input", path), zap.String("corrected", fixedPath))
		defer os.Remove(fixedPath)
	}

	f, err := os.Open(fixedPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read parses GEDCOM data into a graph. Input that is not valid UTF-8 is
// re-decoded as latin-1, the other encoding seen in the wild for older
// exports.
func (r *Reader) Read(src io.Reader) (*graph.Graph, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read gedcom: %w", err)
	}
	if !utf8.Valid(data) {
		r.log.Info("input is not valid UTF-8, decoding as latin-1")
		decoder, err := charset.NewReaderLabel("latin-1", strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("latin-1 decoder: %w", err)
		}
		if data, err = io.ReadAll(decoder); err != nil {
			return nil, fmt.Errorf("decode latin-1: %w", err)
		}
	}

	records, err := parseRecords(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for _, rec := range records {
		if rec.tag == "INDI" {
			g.Add(r.createPerson(rec))
		}
	}
	for _, rec := range records {
		if rec.tag == "FAM" {
			r.applyFamily(g, rec)
		}
	}

	r.log.Info("parsed gedcom", zap.Int("people", g.Len()))
	return g, nil
}

// parseRecords builds the level-0 record trees. CONC lines are folded
// into the preceding value, CONT lines add a newline.
func parseRecords(src io.Reader) ([]*node, error) {
	var records []*node
	var stack []*node // stack[i] = current node at level i

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := parseLineRe.FindStringSubmatch(line)
		if m == nil {
			continue // tolerate junk lines
		}
		level, err := strconv.Atoi(m[1])
		if err != nil || level > len(stack) {
			return nil, fmt.Errorf("line %d: bad level in %q", lineNum, line)
		}
		xref, tag, value := m[2], m[3], m[4]

		if tag == "CONC" || tag == "CONT" {
			if level > 0 && len(stack) >= level {
				parent := stack[level-1]
				if tag == "CONC" {
					parent.value += value
				} else {
					parent.value += "\n" + value
				}
			}
			continue
		}

		n := &node{xref: xref, tag: tag, value: value}
		stack = append(stack[:level], n)
		if level == 0 {
			records = append(records, n)
		} else {
			parent := stack[level-1]
			parent.subs = append(parent.subs, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan gedcom: %w", err)
	}
	return records, nil
}

// createPerson maps an INDI record to a Person.
func (r *Reader) createPerson(rec *node) *model.Person {
	p := model.NewPerson(rec.xref)

	if name := rec.subValue("NAME"); name != "" {
		p.FirstName, p.Surname = splitName(name)
		p.Name = formatName(p.FirstName, p.Surname)
		// The /Surname/ of a GEDCOM name is the birth surname.
		p.MaidenName = p.Surname
	}
	if p.Name == "" {
		p.FirstName = "Unknown"
		p.Surname = "Unknown"
		p.MaidenName = "Unknown"
		p.Name = "Unknown"
	}
	p.Sex = rec.subValue("SEX")
	p.Title = rec.subValue("TITL")
	p.Birth = eventFrom(rec.sub("BIRT"), model.EventBirth)
	p.Death = eventFrom(rec.sub("DEAT"), model.EventDeath)
	for _, resi := range rec.subAll("RESI") {
		if ev := eventFrom(resi, model.EventResidence); ev != nil {
			p.Residences = append(p.Residences, ev)
		}
	}

	photos, preferred := r.extractPhotos(rec)
	p.Photos = photos
	switch {
	case len(preferred) > 0:
		p.Photo = preferred[0]
	case len(photos) > 0:
		p.Photo = photos[0]
	}

	return p
}

// applyFamily wires one FAM record into the graph: partner links on both
// spouses, marriage events, and parent/child links.
func (r *Reader) applyFamily(g *graph.Graph, rec *node) {
	husbandID := rec.subValue("HUSB")
	wifeID := rec.subValue("WIFE")
	husband, hasHusband := g.Get(husbandID)
	wife, hasWife := g.Get(wifeID)

	// Partner links regardless of whether a marriage was recorded. Both
	// sides are kept consistent here since storage is per-person.
	if hasHusband && hasWife {
		husband.PartnerIDs = append(husband.PartnerIDs, wifeID)
		wife.PartnerIDs = append(wife.PartnerIDs, husbandID)
	}

	for _, marr := range rec.subAll("MARR") {
		if hasHusband {
			husband.Marriages = append(husband.Marriages, eventFrom(marr, model.EventMarriage))
		}
		if hasWife {
			wife.Marriages = append(wife.Marriages, eventFrom(marr, model.EventMarriage))
		}
	}

	for _, chil := range rec.subAll("CHIL") {
		child, ok := g.Get(chil.value)
		if !ok {
			r.log.Warn("family references unknown child",
				zap.String("family", rec.xref), zap.String("child", chil.value))
			continue
		}
		if hasHusband {
			child.FatherID = husbandID
			husband.ChildIDs = append(husband.ChildIDs, child.ID)
		}
		if hasWife {
			child.MotherID = wifeID
			wife.ChildIDs = append(wife.ChildIDs, child.ID)
		}
	}
}

// extractPhotos collects photo references. _PHOTO tags (MyHeritage and
// others use these for the preferred photo) always count as preferred;
// standard OBJE records contribute unless the reader is restricted to
// photo tags, with _PRIM marking preference.
func (r *Reader) extractPhotos(rec *node) (photos, preferred []string) {
	for _, obj := range rec.subAll("_PHOTO") {
		files, _ := extractPhotoFiles(obj)
		preferred = append(preferred, files...)
	}
	if !r.onlyPhotoTags {
		for _, obj := range rec.subAll("OBJE") {
			files, prim := extractPhotoFiles(obj)
			photos = append(photos, files...)
			preferred = append(preferred, prim...)
		}
	}
	return photos, preferred
}

// extractPhotoFiles pulls allowed photo files out of one media record.
func extractPhotoFiles(obj *node) (files, preferred []string) {
	fileValue := obj.subValue("FILE")
	if fileValue == "" {
		return nil, nil
	}
	ext := strings.ToLower(fileValue)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i+1:]
	}
	allowed := photoExts[ext]
	if !allowed {
		for _, form := range obj.subAll("FORM") {
			if photoExts[strings.ToLower(form.value)] {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		return nil, nil
	}
	files = append(files, fileValue)
	if prim := obj.sub("_PRIM"); prim != nil && strings.ToUpper(prim.value) != "N" {
		preferred = append(preferred, fileValue)
	}
	return files, preferred
}

// eventFrom maps an event record (BIRT, DEAT, MARR, RESI) to a
// LifeEvent with its DATE and PLAC. Returns nil for a nil record.
func eventFrom(rec *node, kind model.EventKind) *model.LifeEvent {
	if rec == nil {
		return nil
	}
	place := strings.TrimSpace(rec.subValue("PLAC"))
	return model.NewLifeEvent(kind, place, ParseDate(rec.subValue("DATE")), nil)
}

// splitName parses a GEDCOM personal name of the form
// "Given /Surname/ Suffix" into given name and surname.
func splitName(name string) (first, surname string) {
	before, rest, found := strings.Cut(name, "/")
	first = strings.TrimSpace(before)
	if found {
		surname, _, _ = strings.Cut(rest, "/")
		surname = strings.TrimSpace(surname)
	}
	return first, surname
}

// formatName renders a display name in the conventional
// "Given Surname" form.
func formatName(first, surname string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(surname))
}
