package geo

import (
	"context"

	"go.uber.org/zap"

	"github.com/ancestree/gedfilter/internal/model"
	"github.com/ancestree/gedfilter/internal/worker"
)

// geocodeJob resolves one address book entry.
type geocodeJob struct {
	ctx      context.Context
	geocoder *Geocoder
	entry    *Entry
}

type geocodeResult struct {
	entry    *Entry
	location *model.Location
	err      error
}

func (r *geocodeResult) GetError() error { return r.err }

func (j *geocodeJob) Execute(poolCtx context.Context) worker.Result {
	ctx := j.ctx
	if ctx == nil {
		ctx = poolCtx
	}
	loc, err := j.geocoder.Lookup(ctx, j.entry.Place)
	return &geocodeResult{entry: j.entry, location: loc, err: err}
}

// GeocodeAll resolves every entry in the address book through a worker
// pool. The per-host rate limiter keeps the request rate polite no
// matter how many workers run. Individual failures are logged and
// leave the entry unresolved; the number of resolved places is
// returned.
func (g *Geocoder) GeocodeAll(ctx context.Context, book *AddressBook, workers int) int {
	entries := book.Entries()
	if len(entries) == 0 {
		return 0
	}

	pool := worker.NewPool(workers)
	pool.Start()
	for _, entry := range entries {
		pool.Submit(&geocodeJob{ctx: ctx, geocoder: g, entry: entry})
	}

	resolved := 0
	for _, result := range pool.Wait() {
		res := result.(*geocodeResult)
		if res.err != nil {
			g.log.Warn("geocode failed", zap.String("place", res.entry.Place), zap.Error(res.err))
			continue
		}
		if res.location == nil {
			g.log.Debug("no geocode match", zap.String("place", res.entry.Place))
			continue
		}
		res.entry.Location = res.location
		resolved++
	}

	g.log.Info("geocoded places", zap.Int("resolved", resolved), zap.Int("total", len(entries)))
	return resolved
}

// Annotate copies resolved locations from the address book onto every
// matching life event and sets each person's best-known coordinate.
// Events without a resolved place keep a nil location.
func Annotate(persons []*model.Person, book *AddressBook) {
	for _, p := range persons {
		for _, ev := range personEvents(p) {
			if ev == nil || ev.Place == "" {
				continue
			}
			if entry, ok := book.Lookup(ev.Place); ok && entry.Location != nil {
				ev.Location = entry.Location
			}
		}
		if best := p.BestLatLon(); best.HasLocation() {
			p.LatLon = best
		}
	}
}
