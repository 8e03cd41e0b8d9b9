package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ancestree/gedfilter/internal/cache"
	"github.com/ancestree/gedfilter/internal/model"
	"github.com/ancestree/gedfilter/internal/worker"
)

// Geocoder resolves place text against a Nominatim-style search API.
// Lookups are rate limited per host and cached, including negative
// results, so a place that fails to resolve is not retried every run.
type Geocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *worker.Limiter
	store     cache.Cache
	cacheTTL  time.Duration
	log       *zap.Logger
}

// NewGeocoder creates a geocoder. store may be nil to disable caching.
func NewGeocoder(cfg model.GeocodeConfig, cacheTTL time.Duration, store cache.Cache, log *zap.Logger) *Geocoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Geocoder{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		store:     store,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// nominatimResult is one hit from the search API.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// cachedLocation is the cache representation of a lookup, including the
// negative case.
type cachedLocation struct {
	Found       bool    `json:"found"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Lookup resolves a single place. Returns (nil, nil) when the service
// has no match; that outcome is cached too. Never returns a placeholder
// location.
func (g *Geocoder) Lookup(ctx context.Context, place string) (*model.Location, error) {
	if place == "" {
		return nil, nil
	}

	key := cache.Key(place)
	if g.store != nil {
		if data, ok := g.store.Get(key); ok {
			var cached cachedLocation
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached.toLocation(place), nil
			}
		}
	}

	if err := g.limiter.Wait(ctx, g.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	loc, err := g.query(ctx, place)
	if err != nil {
		return nil, err
	}

	if g.store != nil {
		cached := cachedLocation{}
		if loc != nil {
			cached = cachedLocation{
				Found:       true,
				Lat:         loc.LatLon.Lat,
				Lon:         loc.LatLon.Lon,
				DisplayName: loc.DisplayName,
			}
		}
		if data, err := json.Marshal(cached); err == nil {
			if err := g.store.Set(key, data, g.cacheTTL); err != nil {
				g.log.Warn("could not cache geocode result", zap.String("place", place), zap.Error(err))
			}
		}
	}

	return loc, nil
}

// query performs the HTTP search request.
func (g *Geocoder) query(ctx context.Context, place string) (*model.Location, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", place, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %d", place, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("geocode %q: read response: %w", place, err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geocode %q: decode response: %w", place, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, fmt.Errorf("geocode %q: bad coordinates %q,%q", place, results[0].Lat, results[0].Lon)
	}

	return &model.Location{
		LatLon:      model.NewLatLon(lat, lon),
		Address:     place,
		DisplayName: results[0].DisplayName,
	}, nil
}

func (c cachedLocation) toLocation(place string) *model.Location {
	if !c.Found {
		return nil
	}
	return &model.Location{
		LatLon:      model.NewLatLon(c.Lat, c.Lon),
		Address:     place,
		DisplayName: c.DisplayName,
	}
}
