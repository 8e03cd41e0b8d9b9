package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ancestree/gedfilter/internal/cache"
	"github.com/ancestree/gedfilter/internal/model"
)

func testGeocodeConfig(baseURL string) model.GeocodeConfig {
	return model.GeocodeConfig{
		Enabled:           true,
		BaseURL:           baseURL,
		UserAgent:         "gedfilter-test",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000, // no throttling in tests
		Burst:             1000,
	}
}

// fakeNominatim answers /search with a fixed result for "Haworth" and an
// empty result set for everything else, counting requests.
func fakeNominatim(t *testing.T, requests *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "gedfilter-test" {
			t.Errorf("expected identifying user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "Haworth" {
			w.Write([]byte(`[{"lat":"53.8300","lon":"-1.9569","display_name":"Haworth, Bradford, England"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
}

func TestGeocoderLookup(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, nil, nil)

	loc, err := g.Lookup(context.Background(), "Haworth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a location")
	}
	if !loc.LatLon.HasLocation() || loc.LatLon.Lat != 53.83 {
		t.Errorf("unexpected coordinate %v", loc.LatLon)
	}
	if loc.DisplayName != "Haworth, Bradford, England" {
		t.Errorf("unexpected display name %q", loc.DisplayName)
	}
}

func TestGeocoderLookupNoMatch(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, nil, nil)

	loc, err := g.Lookup(context.Background(), "Nowhere At All")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Errorf("expected no location, got %v", loc)
	}
}

func TestGeocoderLookupEmptyPlace(t *testing.T) {
	g := NewGeocoder(testGeocodeConfig("http://unused.invalid"), time.Hour, nil, nil)
	loc, err := g.Lookup(context.Background(), "")
	if err != nil || loc != nil {
		t.Errorf("empty place must resolve to nothing without a request, got %v / %v", loc, err)
	}
}

func TestGeocoderCachesResults(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	store := cache.NewMemoryCache(time.Hour, time.Hour)
	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, store, nil)

	for i := 0; i < 3; i++ {
		loc, err := g.Lookup(context.Background(), "Haworth")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if loc == nil || loc.LatLon.Lat != 53.83 {
			t.Fatalf("lookup %d: unexpected result %v", i, loc)
		}
	}

	if n := atomic.LoadInt64(&requests); n != 1 {
		t.Errorf("expected 1 upstream request, got %d", n)
	}
}

func TestGeocoderCachesNegativeResults(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	store := cache.NewMemoryCache(time.Hour, time.Hour)
	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, store, nil)

	for i := 0; i < 3; i++ {
		loc, err := g.Lookup(context.Background(), "Nowhere At All")
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if loc != nil {
			t.Fatalf("lookup %d: expected no match, got %v", i, loc)
		}
	}

	if n := atomic.LoadInt64(&requests); n != 1 {
		t.Errorf("expected the miss to be cached after 1 request, got %d", n)
	}
}

func TestGeocoderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, nil, nil)

	if _, err := g.Lookup(context.Background(), "Haworth"); err == nil {
		t.Error("expected an error on HTTP 503")
	}
}

func TestGeocodeAll(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, nil, nil)

	book := NewAddressBook()
	book.Add("Haworth")
	book.Add("Nowhere At All")

	resolved := g.GeocodeAll(context.Background(), book, 4)
	if resolved != 1 {
		t.Errorf("expected 1 resolved place, got %d", resolved)
	}

	entry, _ := book.Lookup("Haworth")
	if entry.Location == nil || !entry.Location.LatLon.HasLocation() {
		t.Error("expected Haworth entry to carry its location")
	}
	missed, _ := book.Lookup("Nowhere At All")
	if missed.Location != nil {
		t.Error("expected unresolved entry to stay nil")
	}
}

// A large tree yields many more places than the worker pool buffers;
// the batch must still complete.
func TestGeocodeAllManyPlaces(t *testing.T) {
	var requests int64
	srv := fakeNominatim(t, &requests)
	defer srv.Close()

	g := NewGeocoder(testGeocodeConfig(srv.URL), time.Hour, nil, nil)

	book := NewAddressBook()
	const places = 60
	for i := 0; i < places; i++ {
		book.Add(fmt.Sprintf("Village %d, Yorkshire", i))
	}

	if resolved := g.GeocodeAll(context.Background(), book, 2); resolved != 0 {
		t.Errorf("expected 0 resolved for unknown places, got %d", resolved)
	}
	if n := atomic.LoadInt64(&requests); n != places {
		t.Errorf("expected %d upstream requests, got %d", places, n)
	}
}

func TestGeocodeAllEmptyBook(t *testing.T) {
	g := NewGeocoder(testGeocodeConfig("http://unused.invalid"), time.Hour, nil, nil)
	if got := g.GeocodeAll(context.Background(), NewAddressBook(), 4); got != 0 {
		t.Errorf("expected 0 resolved for empty book, got %d", got)
	}
}
