package showtimes

import (
	"context"
	"fmt"
	"sync"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/geocode"
	"yahoomovie/internal/scrapers/yahoo"
)

const (
	report_theater_resolver_resolve = "theater-resolver.resolve"
)

type TheaterSite interface {
	Theater(ctx context.Context, theaterUrl string) (yahoo.TheaterInfo, error)
}

type TheaterCatalog interface {
	Get(id yahoo.TheaterID) (catalog.Theater, bool)
	GetByName(name string) (catalog.Theater, bool)
	Alias(name string, id yahoo.TheaterID) bool
	Append(t catalog.Theater) error
}

// TheaterResolver fills in theaters the first time a schedule mentions them.
type TheaterResolver struct {
	site     TheaterSite
	geocoder geocode.Resolver
	catalog  TheaterCatalog
	tel      telemetry.API
	mu       *sync.Mutex
}

func NewTheaterResolver(
	site TheaterSite,
	geocoder geocode.Resolver,
	catalog TheaterCatalog,
	tel telemetry.API,
) TheaterResolver {
	assert.NotNil(site)
	assert.NotNil(geocoder)
	assert.NotNil(catalog)
	assert.NotNil(tel)

	return TheaterResolver{
		site:     site,
		geocoder: geocoder,
		catalog:  catalog,
		tel:      telemetry.NewScopedAPI("showtimes", tel),
		mu:       &sync.Mutex{},
	}
}

// Resolve returns the theater called `name`, fetching its page at
// `theaterUrl` and geocoding its address when neither the name nor the id in
// `theaterUrl` is known yet. A known id under a new name is the same theater
// renamed, it is returned as stored and the new name is kept as an alias.
// A failed geocode fails the whole resolution and nothing is stored, so the
// next query tries again.
func (r TheaterResolver) Resolve(ctx context.Context, name, theaterUrl string) (catalog.Theater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.catalog.GetByName(name)
	if ok {
		return existing, nil
	}

	id, err := yahoo.ParseTheaterID(theaterUrl)
	if err != nil {
		return catalog.Theater{}, err
	}
	existing, ok = r.catalog.Get(id)
	if ok {
		r.tel.ReportWarning(report_theater_resolver_resolve, "renamed", id, existing.Name, name)
		r.catalog.Alias(name, id)
		return existing, nil
	}
	r.tel.ReportDebug(report_theater_resolver_resolve, id, name)

	info, err := r.site.Theater(ctx, theaterUrl)
	if err != nil {
		return catalog.Theater{}, fmt.Errorf("theater %s: %w", name, err)
	}
	lat, lng, err := r.geocoder.Geocode(ctx, info.Address)
	if err != nil {
		return catalog.Theater{}, fmt.Errorf("theater %s: %w", name, err)
	}

	theater := catalog.Theater{
		ID:        id,
		Name:      name,
		Region:    info.Region,
		Phone:     info.Phone,
		Address:   info.Address,
		Latitude:  lat,
		Longitude: lng,
	}
	err = r.catalog.Append(theater)
	if err != nil {
		return catalog.Theater{}, fmt.Errorf("theater %s: %w", name, err)
	}
	return theater, nil
}
