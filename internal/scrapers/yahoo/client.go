package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_client_listing_page = "client.listing-page"
	report_client_detail       = "client.detail"
	report_client_schedule     = "client.schedule"
	report_client_theater      = "client.theater"
)

const (
	DefaultListingUrl  = "https://movies.yahoo.com.tw/movie_intheaters.html"
	DefaultScheduleUrl = "https://movies.yahoo.com.tw/ajax/pc/get_schedule_by_movie"
)

// Fetcher is the network access the client needs.
type Fetcher interface {
	Document(ctx context.Context, link string, query url.Values) (*goquery.Document, error)
	JSON(ctx context.Context, link string, query url.Values, out any) error
}

type Endpoints struct {
	ListingUrl  string
	ScheduleUrl string
}

// Client requests and parses pages of the listing site.
type Client struct {
	fetcher   Fetcher
	endpoints Endpoints
	tel       telemetry.API
}

func NewClient(fetcher Fetcher, endpoints Endpoints, tel telemetry.API) Client {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	if endpoints.ListingUrl == "" {
		endpoints.ListingUrl = DefaultListingUrl
	}
	if endpoints.ScheduleUrl == "" {
		endpoints.ScheduleUrl = DefaultScheduleUrl
	}

	return Client{
		fetcher:   fetcher,
		endpoints: endpoints,
		tel:       telemetry.NewScopedAPI("yahoo", tel),
	}
}

// ListingPage fetches and parses page `page` (1-based) of the listing.
func (c Client) ListingPage(ctx context.Context, page int) (ListingPage, error) {
	c.tel.ReportDebug(report_client_listing_page, page)

	doc, err := c.fetcher.Document(ctx, c.endpoints.ListingUrl, url.Values{
		"page": {strconv.Itoa(page)},
	})
	if err != nil {
		return ListingPage{}, err
	}
	listing, err := ParseListing(ctx, doc)
	if err != nil {
		c.tel.ReportBroken(report_client_listing_page, fmt.Errorf("parse: %w", err), page)
		return ListingPage{}, fmt.Errorf("listing page %d: %w", page, err)
	}
	return listing, nil
}

// Detail fetches and parses a movie's detail page.
func (c Client) Detail(ctx context.Context, detailUrl string) (MovieDetail, error) {
	c.tel.ReportDebug(report_client_detail, detailUrl)

	doc, err := c.fetcher.Document(ctx, detailUrl, nil)
	if err != nil {
		return MovieDetail{}, err
	}
	detail, err := ParseDetail(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_detail, fmt.Errorf("parse: %w", err), detailUrl)
		return MovieDetail{}, fmt.Errorf("detail page %s: %w", detailUrl, err)
	}
	return detail, nil
}

// Schedule fetches the showtimes of a movie on `date` (YYYY-MM-DD) in every area.
func (c Client) Schedule(ctx context.Context, id MovieID, date string) ([]TheaterSchedule, error) {
	c.tel.ReportDebug(report_client_schedule, id, date)

	var res ScheduleResponse
	err := c.fetcher.JSON(ctx, c.endpoints.ScheduleUrl, url.Values{
		"movie_id": {string(id)},
		"date":     {date},
		"area_id":  {""},
	}, &res)
	if err != nil {
		return nil, err
	}
	schedules, err := ParseSchedule(res.View)
	if err != nil {
		c.tel.ReportBroken(report_client_schedule, fmt.Errorf("parse: %w", err), id, date)
		return nil, fmt.Errorf("schedule of %s on %s: %w", id, date, err)
	}
	return schedules, nil
}

// Theater fetches and parses a theater's page.
func (c Client) Theater(ctx context.Context, theaterUrl string) (TheaterInfo, error) {
	c.tel.ReportDebug(report_client_theater, theaterUrl)

	doc, err := c.fetcher.Document(ctx, theaterUrl, nil)
	if err != nil {
		return TheaterInfo{}, err
	}
	info, err := ParseTheater(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_theater, fmt.Errorf("parse: %w", err), theaterUrl)
		return TheaterInfo{}, fmt.Errorf("theater page %s: %w", theaterUrl, err)
	}
	return info, nil
}
