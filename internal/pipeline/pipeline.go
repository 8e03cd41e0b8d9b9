// Package pipeline wires the stages of a filter run together: parse the
// GEDCOM into a relationship graph, locate the start person, apply the
// generation filter, geocode event places, reconstruct family groups
// and export the results.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ancestree/gedfilter/internal/cache"
	"github.com/ancestree/gedfilter/internal/export"
	"github.com/ancestree/gedfilter/internal/family"
	"github.com/ancestree/gedfilter/internal/gedcom"
	"github.com/ancestree/gedfilter/internal/geo"
	"github.com/ancestree/gedfilter/internal/graph"
	"github.com/ancestree/gedfilter/internal/model"
)

// Pipeline orchestrates the complete filter process for input files.
type Pipeline struct {
	cfg      *model.Config
	reader   *gedcom.Reader
	writer   *gedcom.Writer
	geocoder *geo.Geocoder // nil when geocoding is disabled
	log      *zap.Logger
}

// New creates a pipeline from the given configuration.
func New(cfg *model.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	var geocoder *geo.Geocoder
	if cfg.Geocode.Enabled {
		var store cache.Cache
		if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		}
		geocoder = geo.NewGeocoder(cfg.Geocode, cfg.Cache.TTL, store, log)
	}

	return &Pipeline{
		cfg:      cfg,
		reader:   gedcom.NewReader(cfg.Filter.OnlyPhotoTags, log),
		writer:   gedcom.NewWriter(log),
		geocoder: geocoder,
		log:      log,
	}
}

// Result summarizes one processed input file.
type Result struct {
	InputPath   string
	OutputPath  string
	TotalPeople int
	Selected    int
	Groups      int
	EarliestGen int
	LatestGen   int
	Geocoded    int
}

// ProcessFile runs the full pipeline for one GEDCOM file.
func (p *Pipeline) ProcessFile(ctx context.Context, inputPath string) (*Result, error) {
	// 1. Parse the relationship graph
	g, err := p.reader.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("parse gedcom: %w", err)
	}

	// 2. Locate the start person by name
	matches := g.FindByName(p.cfg.Filter.StartPerson, false)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no person found with name %q", p.cfg.Filter.StartPerson)
	}
	if len(matches) > 1 {
		p.log.Warn("multiple people match start person, using first",
			zap.String("name", p.cfg.Filter.StartPerson),
			zap.Strings("matches", matches))
	}
	rootID := matches[0]

	// 3. Generation filter
	filter := graph.NewGenerationFilter(g, p.log)
	set, err := filter.Filter(rootID, graph.Options{
		AncestorGens:        p.cfg.Filter.AncestorGens,
		DescendantGens:      p.cfg.Filter.DescendantGens,
		WiderDescendantsEnd: p.widerDescendantsEnd(),
		IncludePartners:     p.cfg.Filter.IncludePartners,
		IncludeSiblings:     p.cfg.Filter.IncludeSiblings,
	})
	if err != nil {
		return nil, fmt.Errorf("filter generations: %w", err)
	}

	// 4. Materialize selected persons in first-recorded order, skipping
	// ids that never resolved in the graph.
	persons := make([]*model.Person, 0, set.Len())
	for _, id := range set.IDs() {
		person, ok := g.Get(id)
		if !ok {
			p.log.Warn("selected person not in graph, skipping", zap.String("id", id))
			continue
		}
		persons = append(persons, person)
	}

	// 5. Geocode event places
	geocoded := 0
	if p.geocoder != nil {
		book := geo.CollectPlaces(persons)
		geocoded = p.geocoder.GeocodeAll(ctx, book, p.cfg.Concurrency.GeocodeWorkers)
		geo.Annotate(persons, book)
	}

	// 6. Reconstruct family groups and annotate FAMS/FAMC
	annotated, groups := family.Reconstruct(persons)

	// 7. Export
	outputPath := p.outputPath(inputPath)
	photoDir := ""
	if p.cfg.Output.PhotoSubdir != "" {
		photoDir = filepath.Join(p.cfg.Output.Folder, p.cfg.Output.PhotoSubdir)
	}
	if err := p.writer.WriteFile(outputPath, annotated, groups, photoDir); err != nil {
		return nil, fmt.Errorf("write gedcom: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	if p.cfg.Output.SummaryCSV {
		csvPath := filepath.Join(p.cfg.Output.Folder, base+"_summary.csv")
		if err := export.WriteSummaryCSV(csvPath, annotated, set); err != nil {
			return nil, fmt.Errorf("write summary csv: %w", err)
		}
	}
	if p.cfg.Output.KML {
		kmlPath := filepath.Join(p.cfg.Output.Folder, base+".kml")
		if err := export.WriteKML(kmlPath, base, annotated); err != nil {
			return nil, fmt.Errorf("write kml: %w", err)
		}
	}

	return &Result{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		TotalPeople: g.Len(),
		Selected:    len(annotated),
		Groups:      len(groups),
		EarliestGen: set.EarliestGeneration(),
		LatestGen:   set.LatestGeneration(),
		Geocoded:    geocoded,
	}, nil
}

// widerDescendantsEnd maps the configured mode to the end generation of
// the wider-descendants pass, nil meaning the pass is skipped.
func (p *Pipeline) widerDescendantsEnd() *int {
	switch p.cfg.Filter.WiderDescendants {
	case model.WiderStart:
		end := 0
		return &end
	case model.WiderDeep:
		end := p.cfg.Filter.DescendantGens
		return &end
	default:
		return nil
	}
}

// outputPath derives the output file path: the configured name, or
// "<input>_filtered.ged", always with a .ged extension, inside the
// output folder.
func (p *Pipeline) outputPath(inputPath string) string {
	name := p.cfg.Output.File
	if name == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		name = base + "_filtered.ged"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".ged") {
		name += ".ged"
	}
	return filepath.Join(p.cfg.Output.Folder, name)
}
