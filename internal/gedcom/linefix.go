package gedcom

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// lineRe matches "level [@xref@] TAG rest"; the xref before the tag is
// optional.
var lineRe = regexp.MustCompile(`^(\d+)\s+(?:@[^@]+@\s+)?([A-Z0-9_]+)(.*)$`)

// CheckFix scans a GEDCOM file for CONC/CONT lines carried at the wrong
// level (seen in Family Tree Maker exports; they break parsing) and, if
// any were found, writes a corrected copy to a temp file and returns its
// path. Otherwise the input path is returned unchanged.
func CheckFix(inputPath string) (string, error) {
	tmp, err := os.CreateTemp("", "gedfilter-*.ged")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	changed, err := fixConcContLevels(inputPath, tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if !changed {
		_ = os.Remove(tmpPath)
		return inputPath, nil
	}
	return tmpPath, nil
}

// fixConcContLevels rewrites CONC/CONT lines to the level implied by the
// preceding substantive line (its level + 1). Reports whether anything
// was changed.
func fixConcContLevels(inputPath string, out *os.File) (bool, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer in.Close()

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	contLevel := -1
	changed := false

	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimRight(raw, "\r\n")

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			fmt.Fprintln(w, raw)
			continue
		}

		level, _ := strconv.Atoi(m[1])
		tag, rest := m[2], m[3]

		if tag == "CONC" || tag == "CONT" {
			fixedLevel := level
			if contLevel >= 0 {
				fixedLevel = contLevel
			}
			fmt.Fprintf(w, "%d %s%s\n", fixedLevel, tag, rest)
			if fixedLevel != level {
				changed = true
			}
		} else {
			contLevel = level + 1
			fmt.Fprintln(w, raw)
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", inputPath, err)
	}
	if err := w.Flush(); err != nil {
		return false, fmt.Errorf("write corrected file: %w", err)
	}
	return changed, nil
}
