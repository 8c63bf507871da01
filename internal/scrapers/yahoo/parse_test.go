package yahoo_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/scrapers/yahoo/yahootest"
	"yahoomovie/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parseDoc(t testing.TB, contents, link string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	require.NoError(t, err)
	if link != "" {
		doc.Url, err = url.Parse(link)
		require.NoError(t, err)
	}
	return doc
}

var nomadland = yahootest.Movie{
	ID:             "11586",
	ChineseName:    "游牧人生",
	EnglishName:    "Nomadland",
	ReleaseDate:    "2021-04-15",
	Expectation:    "89%",
	Satisfaction:   "4.2",
	Synopsis:       "芬恩在經濟大蕭條後失去了一切。",
	Poster:         "https://movies.yahoo.com.tw/x/r/w420/i/o/production/movies/nomadland.jpg",
	Runtime:        "01時48分",
	Distributor:    "迪士尼",
	Imdb:           "7.4",
	Director:       "Chloé Zhao",
	DirectorLinked: true,
	Cast:           []string{"A", "B"},
	CastLinked:     true,
}

func TestParseListing(t *testing.T) {
	base := "https://movies.yahoo.com.tw"
	doc := parseDoc(t, yahootest.ListingHtml(base, []yahootest.Movie{nomadland}), base+"/movie_intheaters.html")

	page, err := yahoo.ParseListing(context.Background(), doc)
	require.NoError(t, err)
	require.False(t, page.Empty)

	expected := []yahoo.MovieSummary{
		{
			ID:           "11586",
			ChineseName:  "游牧人生",
			EnglishName:  "Nomadland",
			ReleaseDate:  "2021-04-15",
			Expectation:  "89%",
			Satisfaction: "4.2",
			Synopsis:     "芬恩在經濟大蕭條後失去了一切。",
			PosterUrl:    nomadland.Poster,
			DetailUrl:    base + "/movieinfo_main/11586",
		},
	}
	diff := cmp.Diff(expected, page.Movies)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseListingEmpty(t *testing.T) {
	doc := parseDoc(t, yahootest.EmptyListingHtml(), "")

	page, err := yahoo.ParseListing(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, page.Empty)
	require.Nil(t, page.Movies)
}

func TestParseListingMissingRequired(t *testing.T) {
	contents := `<ul class="release_list"><li><div class="release_info">
		<div class="release_movie_name"><a>沒有介紹</a></div>
	</div></li></ul>`
	_, err := yahoo.ParseListing(context.Background(), parseDoc(t, contents, ""))
	require.ErrorIs(t, err, htmlutil.ErrMissingElement)

	_, err = yahoo.ParseListing(context.Background(), parseDoc(t, `<div>maintenance</div>`, ""))
	require.ErrorIs(t, err, htmlutil.ErrMissingElement)
}

func TestParseListingIncompleteEntry(t *testing.T) {
	base := "https://movies.yahoo.com.tw"
	full := yahootest.ListingHtml(base, []yahootest.Movie{nomadland})

	testCases := []struct {
		name   string
		remove string
	}{
		{name: "english name", remove: `<div class="en"><a href="` + base + `/movieinfo_main/11586">Nomadland</a></div>`},
		{name: "release date", remove: `<div class="release_movie_time">上映日期： 2021-04-15</div>`},
		{name: "expectation", remove: `<div class="leveltext_box"><span>89%</span></div>`},
		{name: "satisfaction", remove: ` data-num="4.2"`},
		{name: "poster", remove: ` data-src="` + nomadland.Poster + `"`},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Contains(t, full, test.remove)
			contents := strings.Replace(full, test.remove, "", 1)

			page, err := yahoo.ParseListing(context.Background(), parseDoc(t, contents, base+"/movie_intheaters.html"))
			require.ErrorIs(t, err, htmlutil.ErrMissingElement)
			require.Nil(t, page.Movies)
		})
	}
}

func TestParseListingEmptyValues(t *testing.T) {
	base := "https://movies.yahoo.com.tw"
	contents := yahootest.ListingHtml(base, []yahootest.Movie{{ID: "2", ChineseName: "神隱少女"}})

	page, err := yahoo.ParseListing(context.Background(), parseDoc(t, contents, base+"/movie_intheaters.html"))
	require.NoError(t, err)
	require.Len(t, page.Movies, 1)
	require.Equal(t, yahoo.MovieID("2"), page.Movies[0].ID)
	require.Equal(t, "", page.Movies[0].Satisfaction)
	require.Equal(t, "", page.Movies[0].PosterUrl)
}

func TestParseDetail(t *testing.T) {
	testCases := []struct {
		name     string
		movie    yahootest.Movie
		director string
		cast     string
		imdb     string
		shapes   [2]yahoo.CreditShape
	}{
		{
			name:     "linked credits",
			movie:    nomadland,
			director: "Chloé Zhao",
			cast:     "A, B",
			imdb:     "7.4",
			shapes:   [2]yahoo.CreditShape{yahoo.CreditLinked, yahoo.CreditLinked},
		},
		{
			name: "labeled text credits without imdb",
			movie: yahootest.Movie{
				Runtime:     "02時00分",
				Distributor: "華納",
				Director:    "張三",
				Cast:        []string{"A", "B", "C"},
			},
			director: "張三",
			cast:     "A, B, C",
			imdb:     yahoo.ImdbUnavailable,
			shapes:   [2]yahoo.CreditShape{yahoo.CreditLabeledText, yahoo.CreditLabeledText},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			detail, err := yahoo.ParseDetail(parseDoc(t, yahootest.DetailHtml(test.movie), ""))
			require.NoError(t, err)
			require.Equal(t, test.movie.Runtime, detail.Runtime)
			require.Equal(t, test.movie.Distributor, detail.Distributor)
			require.Equal(t, test.imdb, detail.ImdbScore)
			require.Equal(t, test.director, detail.Director.String())
			require.Equal(t, test.cast, detail.Cast.String())
			require.Equal(t, test.shapes[0], detail.Director.Shape)
			require.Equal(t, test.shapes[1], detail.Cast.Shape)
		})
	}
}

func TestParseDetailLabeledBlocks(t *testing.T) {
	contents := `<div class="movie_intro_info_r">
		<span>片　　長：01時30分</span>
		<span>發行公司：得藝</span>
		<span class="movie_intro_list">導演：張三</span>
		<span class="movie_intro_list">演員：A、B、C</span>
	</div>`
	detail, err := yahoo.ParseDetail(parseDoc(t, contents, ""))
	require.NoError(t, err)
	require.Equal(t, "張三", detail.Director.String())
	require.Equal(t, "A, B, C", detail.Cast.String())
	require.Equal(t, yahoo.ImdbUnavailable, detail.ImdbScore)
	require.NotEqual(t, "", detail.ImdbScore)
}

func TestParseDetailMissingRuntime(t *testing.T) {
	contents := `<div class="movie_intro_info_r">
		<span>發行公司：得藝</span>
		<span class="movie_intro_list">導演：張三</span>
		<span class="movie_intro_list">演員：A</span>
	</div>`
	_, err := yahoo.ParseDetail(parseDoc(t, contents, ""))
	require.ErrorIs(t, err, htmlutil.ErrMissingElement)
}

func TestParseSchedule(t *testing.T) {
	base := "https://movies.yahoo.com.tw"
	view := yahootest.ScheduleView(base, []yahootest.Showing{
		{
			Area:        "台北",
			TheaterID:   "21",
			TheaterName: "信義威秀影城",
			Slots: []yahootest.Slot{
				{Tags: []string{"數位", "中文字幕"}, Times: []string{"10:30", "13:00"}},
				{Tags: []string{"IMAX"}, Times: []string{"21:10"}},
			},
		},
		{
			Area:        "新北",
			TheaterID:   "99",
			TheaterName: "板橋大遠百威秀影城",
			Slots: []yahootest.Slot{
				{Tags: []string{"數位"}, Times: []string{"11:00"}},
			},
		},
	})

	schedules, err := yahoo.ParseSchedule(view)
	require.NoError(t, err)

	expected := []yahoo.TheaterSchedule{
		{
			TheaterID:   "21",
			TheaterName: "信義威秀影城",
			TheaterUrl:  base + "/theater_result.html?id=21",
			Slots: []yahoo.ScheduleSlot{
				{Tag: "數位, 中文字幕", Times: []string{"10:30", "13:00"}},
				{Tag: "IMAX", Times: []string{"21:10"}},
			},
		},
		{
			TheaterID:   "99",
			TheaterName: "板橋大遠百威秀影城",
			TheaterUrl:  base + "/theater_result.html?id=99",
			Slots: []yahoo.ScheduleSlot{
				{Tag: "數位", Times: []string{"11:00"}},
			},
		},
	}
	diff := cmp.Diff(expected, schedules)
	if diff != "" {
		t.Fatal(diff)
	}

	empty, err := yahoo.ParseSchedule("")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestParseTheater(t *testing.T) {
	doc := parseDoc(t, yahootest.TheaterHtml(yahootest.Theater{
		Address: "臺北市信義區松壽路20號",
		Phone:   "(02)1234-5678",
	}), "")

	info, err := yahoo.ParseTheater(doc)
	require.NoError(t, err)
	require.Equal(t, yahoo.TheaterInfo{
		Address: "臺北市信義區松壽路20號",
		Phone:   "02-1234-5678",
		Region:  "台北",
	}, info)
}

func TestNormalization(t *testing.T) {
	require.Equal(t, "02-1234-5678", yahoo.NormalizePhone("(02)1234-5678"))
	require.Equal(t, "台北", yahoo.RegionOf("臺北市..."))
	require.Equal(t, "新北", yahoo.RegionOf("新北市板橋區"))
	require.Equal(t, "台", yahoo.RegionOf("臺"))
}

func TestParseIDs(t *testing.T) {
	id, err := yahoo.ParseMovieID("https://movies.yahoo.com.tw/movietime_result.html?id=11586")
	require.NoError(t, err)
	require.Equal(t, yahoo.MovieID("11586"), id)

	theater, err := yahoo.ParseTheaterID("https://movies.yahoo.com.tw/theater_result.html/id=21")
	require.NoError(t, err)
	require.Equal(t, yahoo.TheaterID("21"), theater)

	for _, link := range []string{
		"https://movies.yahoo.com.tw/movieinfo_main/11586",
		"https://movies.yahoo.com.tw/movietime_result.html?id=",
		"https://movies.yahoo.com.tw/movietime_result.html?id=1 OR 1=1",
	} {
		_, err := yahoo.ParseMovieID(link)
		require.ErrorIs(t, err, yahoo.ErrInvalidID, link)
	}
}
