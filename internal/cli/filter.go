package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ancestree/gedfilter/internal/model"
	"github.com/ancestree/gedfilter/internal/pipeline"
)

var (
	startPerson     string
	ancestorGens    int
	descendantGens  int
	widerMode       string
	includePartners bool
	includeSiblings bool
	onlyPhotoTags   bool
	outputFolder    string
	outputFile      string
	photoSubdir     string
	noGeocode       bool
	noCache         bool
	writeKML        bool
	noSummary       bool
	geocodeWorkers  int
	runTimeout      time.Duration
)

// filterCmd represents the filter command
var filterCmd = &cobra.Command{
	Use:   "filter <file.ged> [file.ged...]",
	Short: "Filter one or more GEDCOM files around a start person",
	Long: `Filter selects the start person's relatives within the given
generation bounds and exports a filtered GEDCOM with rebuilt family
records, copied photos, a CSV summary and optionally a KML file.

Generation bounds count from the start person: ancestors backwards,
descendants forwards. Pass -1 for an unbounded direction.

Example:
  gedfilter filter tree.ged --start-person "Emily Bronte"
  gedfilter filter tree.ged --start-person "Emily Bronte" --ancestor-generations 3 --siblings --partners
  gedfilter filter tree.ged --start-person "Emily Bronte" --wider-descendants deep --no-geocode`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	// Filter flags
	filterCmd.Flags().StringVar(&startPerson, "start-person", "", "name of the person to filter generations from (required)")
	filterCmd.Flags().IntVar(&ancestorGens, "ancestor-generations", 2, "ancestor generations to include (-1 for all)")
	filterCmd.Flags().IntVar(&descendantGens, "descendant-generations", 2, "descendant generations to include (-1 for all)")
	filterCmd.Flags().StringVar(&widerMode, "wider-descendants", "none", "include descendants of ancestors: none, start, or deep")
	filterCmd.Flags().BoolVar(&includePartners, "partners", false, "include partners of collected people")
	filterCmd.Flags().BoolVar(&includeSiblings, "siblings", false, "include siblings of collected ancestors")
	filterCmd.Flags().BoolVar(&onlyPhotoTags, "only-use-photo-tags", false, "only use _PHOTO tags for photos, ignore OBJE tags")

	// Output flags
	filterCmd.Flags().StringVar(&outputFolder, "output-folder", "output", "folder for output files")
	filterCmd.Flags().StringVar(&outputFile, "output-file", "", "output GEDCOM file name (default: derived from input file)")
	filterCmd.Flags().StringVar(&photoSubdir, "photo-subdir", "photos", "subfolder for copied photos (empty to keep original paths)")
	filterCmd.Flags().BoolVar(&writeKML, "kml", false, "also write a KML file of geocoded places")
	filterCmd.Flags().BoolVar(&noSummary, "no-summary", false, "skip the CSV summary")

	// Geocoding flags
	filterCmd.Flags().BoolVar(&noGeocode, "no-geocode", false, "disable place geocoding")
	filterCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the geocode cache (force fresh lookups)")
	filterCmd.Flags().IntVar(&geocodeWorkers, "concurrency", 2, "concurrent geocode workers")
	filterCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall timeout (geocoding large trees is rate limited)")

	_ = filterCmd.MarkFlagRequired("start-person")
}

func runFilter(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Folder, 0755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	p := pipeline.New(cfg, logger)

	for _, inputFile := range args {
		inputPath, err := filepath.Abs(inputFile)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", inputFile, err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Processing GEDCOM file: %s\n", inputPath)
		}

		result, err := p.ProcessFile(ctx, inputPath)
		if err != nil {
			return fmt.Errorf("process %s: %w", inputFile, err)
		}

		fmt.Printf("Filtered %d of %d people (%d generations, %d to %d) into %d families\n",
			result.Selected, result.TotalPeople,
			result.LatestGen-result.EarliestGen+1,
			result.EarliestGen, result.LatestGen,
			result.Groups)
		if cfg.Geocode.Enabled {
			fmt.Printf("Geocoded %d places\n", result.Geocoded)
		}
		fmt.Printf("Filtered GEDCOM exported to: %s\n", result.OutputPath)
	}

	return nil
}

// buildConfig merges defaults, the config file and flags, highest
// priority last.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	cfg.Filter.StartPerson = startPerson
	flags := cmd.Flags()
	if flags.Changed("ancestor-generations") {
		cfg.Filter.AncestorGens = ancestorGens
	}
	if flags.Changed("descendant-generations") {
		cfg.Filter.DescendantGens = descendantGens
	}
	if flags.Changed("wider-descendants") {
		cfg.Filter.WiderDescendants = model.WiderDescendantsMode(widerMode)
	}
	if flags.Changed("partners") {
		cfg.Filter.IncludePartners = includePartners
	}
	if flags.Changed("siblings") {
		cfg.Filter.IncludeSiblings = includeSiblings
	}
	if flags.Changed("only-use-photo-tags") {
		cfg.Filter.OnlyPhotoTags = onlyPhotoTags
	}
	if flags.Changed("output-folder") {
		cfg.Output.Folder = outputFolder
	}
	if flags.Changed("output-file") {
		cfg.Output.File = outputFile
	}
	if flags.Changed("photo-subdir") {
		cfg.Output.PhotoSubdir = photoSubdir
	}
	if flags.Changed("kml") {
		cfg.Output.KML = writeKML
	}
	if flags.Changed("no-summary") {
		cfg.Output.SummaryCSV = !noSummary
	}
	if flags.Changed("no-geocode") {
		cfg.Geocode.Enabled = !noGeocode
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency.GeocodeWorkers = geocodeWorkers
	}
	cfg.Output.Verbose = verbose

	switch cfg.Filter.WiderDescendants {
	case model.WiderNone, model.WiderStart, model.WiderDeep:
	default:
		return nil, fmt.Errorf("invalid --wider-descendants value %q (want none, start or deep)", cfg.Filter.WiderDescendants)
	}

	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		cfg.Cache.Dir = filepath.Join(dir, "cache")
	}

	return cfg, nil
}
