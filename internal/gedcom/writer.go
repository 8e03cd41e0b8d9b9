package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ancestree/gedfilter/internal/family"
	"github.com/ancestree/gedfilter/internal/model"
)

// Writer serializes annotated persons and reconstructed family groups
// back to GEDCOM, optionally copying referenced photos into a directory
// next to the output file.
type Writer struct {
	log *zap.Logger
}

// NewWriter creates a writer.
func NewWriter(log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{log: log}
}

// WriteFile writes a GEDCOM file at outputPath. Persons must already
// carry FAMS/FAMC annotations matching the groups. When photoDir is
// non-empty, each person's primary photo is copied there and the FILE
// reference rewritten relative to the output file; copy failures are
// logged, never fatal.
func (w *Writer) WriteFile(outputPath string, persons []*model.Person, groups []*family.Group, photoDir string) error {
	photoRel := ""
	if photoDir != "" {
		if err := os.MkdirAll(photoDir, 0755); err != nil {
			return fmt.Errorf("create photo dir: %w", err)
		}
		rel, err := filepath.Rel(filepath.Dir(outputPath), photoDir)
		if err == nil {
			photoRel = filepath.ToSlash(rel)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	w.writeHeader(buf)
	for _, p := range persons {
		w.writePerson(buf, p, photoDir, photoRel)
	}
	for _, g := range groups {
		writeFamily(buf, g)
	}
	fmt.Fprintln(buf, "0 TRLR")

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func (w *Writer) writeHeader(buf *bufio.Writer) {
	fmt.Fprintln(buf, "0 HEAD")
	fmt.Fprintln(buf, "1 SOUR gedfilter")
	fmt.Fprintln(buf, "1 GEDC")
	fmt.Fprintln(buf, "2 VERS 5.5.1")
	fmt.Fprintln(buf, "1 CHAR UTF-8")
}

func (w *Writer) writePerson(buf *bufio.Writer, p *model.Person, photoDir, photoRel string) {
	fmt.Fprintf(buf, "0 %s INDI\n", p.ID)
	if p.Name != "" {
		name := p.Name
		if p.Surname != "" {
			name = strings.TrimSpace(p.FirstName) + " /" + p.Surname + "/"
		}
		fmt.Fprintf(buf, "1 NAME %s\n", name)
	}
	if p.Sex != "" {
		fmt.Fprintf(buf, "1 SEX %s\n", p.Sex)
	}
	writeEvent(buf, "BIRT", p.Birth)
	writeEvent(buf, "DEAT", p.Death)
	for _, fams := range p.SpouseFamilyIDs {
		fmt.Fprintf(buf, "1 FAMS %s\n", fams)
	}
	for _, famc := range p.ChildFamilyIDs {
		fmt.Fprintf(buf, "1 FAMC %s\n", famc)
	}
	if p.Photo != "" {
		w.writePhoto(buf, p, photoDir, photoRel)
	}
}

func writeEvent(buf *bufio.Writer, tag string, ev *model.LifeEvent) {
	if ev == nil {
		return
	}
	fmt.Fprintf(buf, "1 %s\n", tag)
	if ev.Date != nil {
		fmt.Fprintf(buf, "2 DATE %s\n", ev.Date.Text)
	}
	if ev.Place != "" {
		fmt.Fprintf(buf, "2 PLAC %s\n", ev.Place)
	}
}

// writePhoto emits the OBJE record for the primary photo, copying the
// file into photoDir when one was configured.
func (w *Writer) writePhoto(buf *bufio.Writer, p *model.Person, photoDir, photoRel string) {
	src := p.Photo
	dest := src
	if photoDir != "" {
		dest = filepath.Join(photoDir, filepath.Base(src))
		if err := copyFile(src, dest); err != nil {
			w.log.Warn("could not copy photo",
				zap.String("person", p.ID), zap.String("src", src), zap.Error(err))
		}
	}
	filePath := dest
	if photoRel != "" {
		filePath = photoRel + "/" + filepath.Base(dest)
	}
	fmt.Fprintln(buf, "1 OBJE")
	fmt.Fprintf(buf, "2 FILE %s\n", filePath)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(dest)), ".")
	if ext != "" {
		fmt.Fprintf(buf, "2 FORM %s\n", ext)
	}
}

func writeFamily(buf *bufio.Writer, g *family.Group) {
	fmt.Fprintf(buf, "0 %s FAM\n", g.ID)
	if g.FatherID != "" {
		fmt.Fprintf(buf, "1 HUSB %s\n", g.FatherID)
	}
	if g.MotherID != "" {
		fmt.Fprintf(buf, "1 WIFE %s\n", g.MotherID)
	}
	for _, childID := range g.ChildIDs {
		fmt.Fprintf(buf, "1 CHIL %s\n", childID)
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
