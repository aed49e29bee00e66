package citydata

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// ErrCityNotFound is returned when no catalog record matches the requested city.
var ErrCityNotFound = errors.New("citydata: city not found")

const (
	dateLayout = "02.01.2006"
	timeLayout = "15:04"
)

// Provider answers category lookups from an immutable catalog. It is safe for
// concurrent use; only the random source is locked.
type Provider struct {
	catalog  Catalog
	now      func() time.Time
	degraded bool

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClock overrides the wall clock used for local time.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRandSource overrides the random source used for weather.
func WithRandSource(src rand.Source) Option {
	return func(p *Provider) {
		if src != nil {
			p.rnd = rand.New(src)
		}
	}
}

// NewProvider wraps catalog. The catalog must not be modified afterwards.
func NewProvider(catalog Catalog, opts ...Option) *Provider {
	if catalog.Cities == nil {
		catalog.Cities = map[string]City{}
	}
	if catalog.Sights == nil {
		catalog.Sights = map[string]map[string]SightDescription{}
	}
	p := &Provider{
		catalog: catalog,
		now:     time.Now,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Degraded reports whether the provider fell back to empty tables.
func (p *Provider) Degraded() bool { return p.degraded }

// Len reports the number of known cities.
func (p *Provider) Len() int { return len(p.catalog.Cities) }

// Cities lists the known city keys in sorted order.
func (p *Provider) Cities() []string { return sortedKeys(p.catalog.Cities) }

func (p *Provider) lookup(city string) (City, error) {
	rec, ok := p.catalog.Cities[NormalizeCity(city)]
	if !ok {
		return City{}, ErrCityNotFound
	}
	return rec, nil
}

// Overview returns sights, restaurants and a fresh weather observation.
func (p *Provider) Overview(city string) (Overview, error) {
	rec, err := p.lookup(city)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Sights:      slices.Clone(rec.Sights),
		Restaurants: slices.Clone(rec.Restaurants),
		Weather:     p.observe(rec.Weather),
	}, nil
}

// WeatherAndTime returns a fresh weather observation with the city's local
// date and time computed from UTC plus the city offset.
func (p *Provider) WeatherAndTime(city string) (WeatherReport, error) {
	rec, err := p.lookup(city)
	if err != nil {
		return WeatherReport{}, err
	}
	local := p.now().UTC().Add(time.Duration(rec.UTCOffset) * time.Hour)
	return WeatherReport{
		Weather: p.observe(rec.Weather),
		Date:    local.Format(dateLayout),
		Time:    local.Format(timeLayout),
	}, nil
}

// Transport returns the city's transport record.
func (p *Provider) Transport(city string) (Transport, error) {
	rec, err := p.lookup(city)
	if err != nil {
		return Transport{}, err
	}
	return Transport{
		Subway: slices.Clone(rec.Transport.Subway),
		Bus:    slices.Clone(rec.Transport.Bus),
		Taxi:   slices.Clone(rec.Transport.Taxi),
	}, nil
}

// Sights returns the described sights in the order the city lists them.
// Sights without a description are skipped. A city missing from either table
// is not found; a city whose sights have no descriptions yields an empty list.
func (p *Provider) Sights(city string) ([]Sight, error) {
	key := NormalizeCity(city)
	rec, ok := p.catalog.Cities[key]
	if !ok {
		return nil, ErrCityNotFound
	}
	descs, ok := p.catalog.Sights[key]
	if !ok {
		return nil, ErrCityNotFound
	}
	out := make([]Sight, 0, len(rec.Sights))
	for _, name := range rec.Sights {
		d, ok := descs[name]
		if !ok {
			continue
		}
		out = append(out, Sight{Name: name, SightDescription: d})
	}
	return out, nil
}

// History returns the city's history record.
func (p *Provider) History(city string) (History, error) {
	rec, err := p.lookup(city)
	if err != nil {
		return History{}, err
	}
	h := rec.History
	h.ShortHistory = slices.Clone(h.ShortHistory)
	h.FunFacts = slices.Clone(h.FunFacts)
	return h, nil
}

// Events returns the city's events record.
func (p *Provider) Events(city string) (Events, error) {
	rec, err := p.lookup(city)
	if err != nil {
		return Events{}, err
	}
	return Events{
		Concerts:    slices.Clone(rec.Events.Concerts),
		Exhibitions: slices.Clone(rec.Events.Exhibitions),
		Theater:     slices.Clone(rec.Events.Theater),
	}, nil
}

// observe draws temperature and description independently on every call.
func (p *Provider) observe(r WeatherRange) Weather {
	p.rndMu.Lock()
	defer p.rndMu.Unlock()
	w := Weather{Temperature: r.Min}
	if r.Max > r.Min {
		w.Temperature = r.Min + p.rnd.IntN(r.Max-r.Min+1)
	}
	if len(r.Descriptions) > 0 {
		w.Description = r.Descriptions[p.rnd.IntN(len(r.Descriptions))]
	}
	return w
}
