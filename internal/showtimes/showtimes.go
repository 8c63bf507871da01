package showtimes

import (
	"context"
	"fmt"
	"sync"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	report_resolver_get = "resolver.get"
)

var tracer = otel.Tracer("yahoomovie.internal.showtimes")

type ScheduleSite interface {
	Schedule(ctx context.Context, id yahoo.MovieID, date string) ([]yahoo.TheaterSchedule, error)
}

type ShowtimeCatalog interface {
	Has(movie yahoo.MovieID, date string) bool
	Filter(movie yahoo.MovieID, date string) []catalog.Showtime
	AppendAll(showtimes []catalog.Showtime) error
}

type TheaterResolverAPI interface {
	Resolve(ctx context.Context, name, theaterUrl string) (catalog.Theater, error)
}

// Resolver answers showtime queries from the showtime catalog, fetching
// the schedule of a (movie, date) pair the catalog has no rows for.
//
// A pair whose schedule was empty stores no rows, so it is fetched again on
// every query.
type Resolver struct {
	site     ScheduleSite
	catalog  ShowtimeCatalog
	theaters TheaterResolverAPI
	tel      telemetry.API
	mu       *sync.Mutex
}

func NewResolver(
	site ScheduleSite,
	catalog ShowtimeCatalog,
	theaters TheaterResolverAPI,
	tel telemetry.API,
) Resolver {
	assert.NotNil(site)
	assert.NotNil(catalog)
	assert.NotNil(theaters)
	assert.NotNil(tel)

	return Resolver{
		site:     site,
		catalog:  catalog,
		theaters: theaters,
		tel:      telemetry.NewScopedAPI("showtimes", tel),
		mu:       &sync.Mutex{},
	}
}

// Get returns the showtimes of `movie` on `date` (YYYY-MM-DD) in the order
// the schedule lists areas, theaters and slots.
func (r Resolver) Get(ctx context.Context, movie yahoo.MovieID, date string) ([]catalog.Showtime, error) {
	ctx, span := tracer.Start(ctx, "Resolver.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("movie_id", string(movie)),
		attribute.String("date", date),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalog.Has(movie, date) {
		span.SetAttributes(attribute.Bool("cached", true))
		return r.catalog.Filter(movie, date), nil
	}

	schedules, err := r.site.Schedule(ctx, movie, date)
	if err != nil {
		return nil, err
	}

	var rows []catalog.Showtime
	for _, schedule := range schedules {
		_, err := r.theaters.Resolve(ctx, schedule.TheaterName, schedule.TheaterUrl)
		if err != nil {
			return nil, err
		}
		for _, slot := range schedule.Slots {
			for _, t := range slot.Times {
				rows = append(rows, catalog.Showtime{
					MovieID:   movie,
					TheaterID: schedule.TheaterID,
					Tag:       slot.Tag,
					Date:      date,
					Time:      t,
				})
			}
		}
	}

	err = r.catalog.AppendAll(rows)
	if err != nil {
		return nil, fmt.Errorf("save showtimes of %s on %s: %w", movie, date, err)
	}
	r.tel.ReportDebug(report_resolver_get, movie, date, len(rows))
	return r.catalog.Filter(movie, date), nil
}
