package crawler

import (
	"context"
	"fmt"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_crawler_run  = "crawler.run"
	report_crawler_page = "crawler.page"
	report_crawler_new  = "crawler.new-movies"
)

// DefaultMaxPages bounds the crawl when the site never shows the end marker.
const DefaultMaxPages = 1000

var tracer = otel.Tracer("yahoomovie.internal.crawler")

// Site is the part of the listing site the crawler reads.
type Site interface {
	ListingPage(ctx context.Context, page int) (yahoo.ListingPage, error)
	Detail(ctx context.Context, detailUrl string) (yahoo.MovieDetail, error)
}

// Catalog is where discovered movies are kept.
type Catalog interface {
	Contains(id yahoo.MovieID) bool
	Append(m catalog.Movie) error
}

type Options struct {
	// MaxPages is the last page that will be requested, 0 means DefaultMaxPages.
	MaxPages int
}

// Crawler walks the listing pages in order and adds every movie the catalog
// does not know yet.
type Crawler struct {
	site     Site
	catalog  Catalog
	maxPages int
	tel      telemetry.API
}

func New(site Site, catalog Catalog, opts Options, tel telemetry.API) Crawler {
	assert.NotNil(site)
	assert.NotNil(catalog)
	assert.NotNil(tel)

	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	return Crawler{
		site:     site,
		catalog:  catalog,
		maxPages: opts.MaxPages,
		tel:      telemetry.NewScopedAPI("crawler", tel),
	}
}

type Result struct {
	// Pages is the number of listing pages requested, including the one
	// carrying the end marker.
	Pages int
	// Added are the new movies in listing order.
	Added []catalog.Movie
	// Skipped counts entries that were already in the catalog.
	Skipped int
	// Finished is false when the crawl stopped at MaxPages without seeing
	// the end marker.
	Finished bool
}

// Run crawls until the end marker or MaxPages. Every new movie is saved
// before the next one is fetched, so the first error returned leaves all
// earlier discoveries in the catalog and a later run resumes from there.
func (c Crawler) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Crawler.Run")
	defer span.End()

	var result Result
	for page := 1; page <= c.maxPages; page++ {
		err := ctx.Err()
		if err != nil {
			return result, err
		}

		listing, err := c.site.ListingPage(ctx, page)
		result.Pages++
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "listing page")
			return result, err
		}
		if listing.Empty {
			result.Finished = true
			break
		}

		err = c.crawlPage(ctx, page, listing, &result)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "crawl page")
			return result, err
		}
	}

	if !result.Finished {
		c.tel.ReportWarning(report_crawler_run, fmt.Errorf("stopped at page limit %d without end marker", c.maxPages))
	}
	span.SetAttributes(
		attribute.Int("pages", result.Pages),
		attribute.Int("added", len(result.Added)),
		attribute.Int("skipped", result.Skipped),
	)
	c.tel.ReportCount(report_crawler_new, int64(len(result.Added)))
	return result, nil
}

func (c Crawler) crawlPage(ctx context.Context, page int, listing yahoo.ListingPage, result *Result) error {
	c.tel.ReportDebug(report_crawler_page, page, len(listing.Movies))

	for _, summary := range listing.Movies {
		if c.catalog.Contains(summary.ID) {
			result.Skipped++
			continue
		}

		detail, err := c.site.Detail(ctx, summary.DetailUrl)
		if err != nil {
			return fmt.Errorf("movie %s (%s): %w", summary.ID, summary.ChineseName, err)
		}
		movie := catalog.NewMovie(summary, detail)
		err = c.catalog.Append(movie)
		if err != nil {
			return fmt.Errorf("movie %s (%s): %w", summary.ID, summary.ChineseName, err)
		}
		result.Added = append(result.Added, movie)
	}
	return nil
}
