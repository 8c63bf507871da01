package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"yahoomovie/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing parses one page of the in-theaters listing. Every field of an
// entry is required, a missing one fails the whole page with
// htmlutil.ErrMissingElement.
func ParseListing(ctx context.Context, doc *goquery.Document) (ListingPage, error) {
	root := htmlutil.FromDocument(doc)

	if root.FindByText("p", EmptyListingMarker).Exists() {
		return ListingPage{Empty: true}, nil
	}

	list, err := root.Find("ul.release_list").Require()
	if err != nil {
		return ListingPage{}, err
	}

	page := ListingPage{}
	for i, item := range list.FindAll("li") {
		summary, err := parseListingItem(ctx, doc.Url, item)
		if err != nil {
			return ListingPage{}, fmt.Errorf("listing entry %d: %w", i, err)
		}
		page.Movies = append(page.Movies, summary)
	}
	return page, nil
}

func parseListingItem(ctx context.Context, base *url.URL, item htmlutil.Node) (MovieSummary, error) {
	info, err := item.Find("div.release_info").Require()
	if err != nil {
		return MovieSummary{}, err
	}

	name, err := info.Find("div.release_movie_name a").Require()
	if err != nil {
		return MovieSummary{}, err
	}
	english, err := info.Find("div.en a").Require()
	if err != nil {
		return MovieSummary{}, err
	}
	released, err := info.Find("div.release_movie_time").Require()
	if err != nil {
		return MovieSummary{}, err
	}

	expectation, err := info.FindByText("div.level_name", "期待度").
		NextSibling("div").
		Find("span").
		Require()
	if err != nil {
		return MovieSummary{}, err
	}
	satisfaction, err := info.FindByText("div.level_name", "滿意度").
		NextSibling("div").
		Find("span").
		LookupAttr("data-num")
	if err != nil {
		return MovieSummary{}, err
	}

	poster, err := item.Find("div.release_foto a img").LookupAttr("data-src")
	if err != nil {
		return MovieSummary{}, err
	}

	text := info.Find("div.release_text span")
	detailUrl, err := text.RequireAttr("data-url")
	if err != nil {
		return MovieSummary{}, err
	}
	detailUrl = resolve(base, detailUrl)

	id, err := listingMovieID(ctx, base, info, detailUrl)
	if err != nil {
		return MovieSummary{}, err
	}

	return MovieSummary{
		ID:           id,
		ChineseName:  name.Text(),
		EnglishName:  english.Text(),
		ReleaseDate:  htmlutil.StripLabel(released.Text(), labelReleaseDate),
		Expectation:  expectation.Text(),
		Satisfaction: satisfaction,
		Synopsis:     text.Text(),
		PosterUrl:    poster,
		DetailUrl:    detailUrl,
	}, nil
}

// listingMovieID takes the id from the timetable link, entries without one
// fall back to the detail url.
func listingMovieID(ctx context.Context, base *url.URL, info htmlutil.Node, detailUrl string) (MovieID, error) {
	for _, a := range htmlutil.GetAnchors(ctx, base, info.Selection().Find("a")) {
		if strings.Contains(a.Name, labelTimetable) {
			return ParseMovieID(a.Url.String())
		}
	}
	return ParseMovieID(detailUrl)
}

func resolve(base *url.URL, link string) string {
	if base == nil {
		return link
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(parsed).String()
}
