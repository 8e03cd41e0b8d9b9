package model

import "time"

// Unbounded disables a generation limit when passed as a bound.
const Unbounded = -1

// WiderDescendantsMode controls how far descendants of collected
// ancestors (cousin lines) are followed.
type WiderDescendantsMode string

const (
	WiderNone  WiderDescendantsMode = "none"  // only the root's own descendants
	WiderStart WiderDescendantsMode = "start" // down to the root's generation
	WiderDeep  WiderDescendantsMode = "deep"  // down to the descendant limit
)

// Config is the complete application configuration
type Config struct {
	Filter      FilterConfig      `yaml:"filter" mapstructure:"filter"`
	Geocode     GeocodeConfig     `yaml:"geocode" mapstructure:"geocode"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// FilterConfig controls generation filtering
type FilterConfig struct {
	StartPerson      string               `yaml:"start_person" mapstructure:"start_person"`
	AncestorGens     int                  `yaml:"ancestor_generations" mapstructure:"ancestor_generations"`
	DescendantGens   int                  `yaml:"descendant_generations" mapstructure:"descendant_generations"`
	WiderDescendants WiderDescendantsMode `yaml:"wider_descendants" mapstructure:"wider_descendants"`
	IncludePartners  bool                 `yaml:"partners" mapstructure:"partners"`
	IncludeSiblings  bool                 `yaml:"siblings" mapstructure:"siblings"`
	OnlyPhotoTags    bool                 `yaml:"only_use_photo_tags" mapstructure:"only_use_photo_tags"`
}

// GeocodeConfig controls place lookup
type GeocodeConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls the geocode result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls export artifacts
type OutputConfig struct {
	Folder      string `yaml:"folder" mapstructure:"folder"`
	File        string `yaml:"file" mapstructure:"file"`
	PhotoSubdir string `yaml:"photo_subdir" mapstructure:"photo_subdir"`
	SummaryCSV  bool   `yaml:"summary_csv" mapstructure:"summary_csv"`
	KML         bool   `yaml:"kml" mapstructure:"kml"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig controls worker pools
type ConcurrencyConfig struct {
	GeocodeWorkers int `yaml:"geocode_workers" mapstructure:"geocode_workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			AncestorGens:     2,
			DescendantGens:   2,
			WiderDescendants: WiderNone,
		},
		Geocode: GeocodeConfig{
			Enabled:           true,
			BaseURL:           "https://nominatim.openstreetmap.org",
			UserAgent:         "gedfilter/0.3 (+https://github.com/ancestree/gedfilter)",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1, // Nominatim usage policy
			Burst:             1,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // resolved to ~/.gedfilter/cache at startup
			TTL:     30 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Folder:      "output",
			PhotoSubdir: "photos",
			SummaryCSV:  true,
		},
		Concurrency: ConcurrencyConfig{
			GeocodeWorkers: 2,
		},
	}
}
