package showtimes

import (
	"context"
	"sync"
	"testing"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/fetch"
	"yahoomovie/internal/geocode"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/scrapers/yahoo/yahootest"

	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	calls   map[string]int
	missing map[string]bool
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	g.calls[address]++
	if g.missing[address] {
		return 0, 0, geocode.ErrAddressNotFound
	}
	return 25.0356, 121.5671, nil
}

func (g *fakeGeocoder) count(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}

type harness struct {
	site     *yahootest.Site
	geocoder *fakeGeocoder
	store    catalog.Store
	theaters TheaterResolver
	resolver Resolver
	recorder *telemetry.Recorder
}

func newHarness(t testing.TB) harness {
	tel := &telemetry.Recorder{}
	site := yahootest.NewSite(t)
	store, err := catalog.Open(t.TempDir(), catalog.FormatCsv, tel)
	require.NoError(t, err)

	client := yahoo.NewClient(fetch.New(fetch.Options{}, tel), site.Endpoints(), tel)
	geocoder := &fakeGeocoder{missing: map[string]bool{}}
	theaters := NewTheaterResolver(client, geocoder, store.Theaters, tel)
	resolver := NewResolver(client, store.Showtimes, theaters, tel)

	site.AddTheater(yahootest.Theater{ID: "21", Address: "臺北市信義區松壽路20號", Phone: "(02)8780-5566"})
	site.AddTheater(yahootest.Theater{ID: "99", Address: "新北市板橋區新站路28號", Phone: "(02)7738-6608"})

	return harness{
		site:     site,
		geocoder: geocoder,
		store:    store,
		theaters: theaters,
		resolver: resolver,
		recorder: tel,
	}
}

var (
	vieshow = yahootest.Showing{
		Area:        "台北",
		TheaterID:   "21",
		TheaterName: "信義威秀影城",
		Slots: []yahootest.Slot{
			{Tags: []string{"數位", "中文字幕"}, Times: []string{"10:30", "13:00"}},
			{Tags: []string{"IMAX"}, Times: []string{"21:10"}},
		},
	}
	banqiao = yahootest.Showing{
		Area:        "新北",
		TheaterID:   "99",
		TheaterName: "板橋大遠百威秀影城",
		Slots: []yahootest.Slot{
			{Tags: []string{"數位"}, Times: []string{"11:00"}},
		},
	}
)

func TestGet(t *testing.T) {
	h := newHarness(t)
	h.site.SetSchedule("11586", "2021-04-20", vieshow, banqiao)
	ctx := context.Background()

	rows, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.NoError(t, err)
	require.Equal(t, []catalog.Showtime{
		{MovieID: "11586", TheaterID: "21", Tag: "數位, 中文字幕", Date: "2021-04-20", Time: "10:30"},
		{MovieID: "11586", TheaterID: "21", Tag: "數位, 中文字幕", Date: "2021-04-20", Time: "13:00"},
		{MovieID: "11586", TheaterID: "21", Tag: "IMAX", Date: "2021-04-20", Time: "21:10"},
		{MovieID: "11586", TheaterID: "99", Tag: "數位", Date: "2021-04-20", Time: "11:00"},
	}, rows)

	theater, ok := h.store.Theaters.Get("21")
	require.True(t, ok)
	require.Equal(t, catalog.Theater{
		ID:        "21",
		Name:      "信義威秀影城",
		Region:    "台北",
		Phone:     "02-8780-5566",
		Address:   "臺北市信義區松壽路20號",
		Latitude:  25.0356,
		Longitude: 121.5671,
	}, theater)
	require.True(t, h.store.Theaters.ContainsName("板橋大遠百威秀影城"))
}

func TestGetIsCached(t *testing.T) {
	h := newHarness(t)
	h.site.SetSchedule("11586", "2021-04-20", vieshow)
	ctx := context.Background()

	first, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.NoError(t, err)
	second, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, h.site.Hits(yahootest.SchedulePath))
}

func TestEmptyScheduleIsRefetched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rows, err := h.resolver.Get(ctx, "11586", "2021-04-20")
		require.NoError(t, err)
		require.Empty(t, rows)
	}
	require.Equal(t, 2, h.site.Hits(yahootest.SchedulePath))
}

func TestTheaterResolvedOncePerName(t *testing.T) {
	h := newHarness(t)
	for _, date := range []string{"2021-04-20", "2021-04-21", "2021-04-22"} {
		h.site.SetSchedule("11586", date, vieshow, banqiao)
		h.site.SetSchedule("2", date, vieshow)
	}
	ctx := context.Background()

	for _, movie := range []yahoo.MovieID{"11586", "2"} {
		for _, date := range []string{"2021-04-20", "2021-04-21", "2021-04-22"} {
			_, err := h.resolver.Get(ctx, movie, date)
			require.NoError(t, err)
		}
	}

	require.Equal(t, 1, h.site.Hits(yahootest.TheaterPath+"?id=21"))
	require.Equal(t, 1, h.site.Hits(yahootest.TheaterPath+"?id=99"))
	require.Equal(t, 1, h.geocoder.count("臺北市信義區松壽路20號"))
	require.Len(t, h.store.Theaters.All(), 2)
}

func TestGeocodeFailureAbortsQuery(t *testing.T) {
	h := newHarness(t)
	h.site.SetSchedule("11586", "2021-04-20", vieshow)
	h.geocoder.missing["臺北市信義區松壽路20號"] = true
	ctx := context.Background()

	_, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.ErrorIs(t, err, geocode.ErrAddressNotFound)
	require.False(t, h.store.Theaters.ContainsName("信義威秀影城"))
	require.False(t, h.store.Showtimes.Has("11586", "2021-04-20"))
	require.Empty(t, h.recorder.Reports("broken", ""))

	delete(h.geocoder.missing, "臺北市信義區松壽路20號")
	rows, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 2, h.geocoder.count("臺北市信義區松壽路20號"))
}

func TestTheaterPageFailureReportedOnce(t *testing.T) {
	h := newHarness(t)
	missing := banqiao
	missing.TheaterID = "77"
	missing.TheaterName = "已關閉影城"
	h.site.SetSchedule("11586", "2021-04-20", missing)

	_, err := h.resolver.Get(context.Background(), "11586", "2021-04-20")
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 404, fetchErr.Status)
	require.Len(t, h.recorder.Reports("broken", ""), 1)
	require.False(t, h.store.Showtimes.Has("11586", "2021-04-20"))
}

func TestRenamedTheaterKeepsStoredRow(t *testing.T) {
	h := newHarness(t)
	h.site.SetSchedule("11586", "2021-04-20", vieshow)
	ctx := context.Background()

	_, err := h.resolver.Get(ctx, "11586", "2021-04-20")
	require.NoError(t, err)

	renamed := vieshow
	renamed.TheaterName = "信義威秀影城(新名)"
	h.site.SetSchedule("2", "2021-04-20", renamed)

	for i := 0; i < 2; i++ {
		rows, err := h.resolver.Get(ctx, "2", "2021-04-20")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, yahoo.TheaterID("21"), rows[0].TheaterID)
	}

	theater, ok := h.store.Theaters.GetByName("信義威秀影城(新名)")
	require.True(t, ok)
	require.Equal(t, "信義威秀影城", theater.Name)
	require.Len(t, h.store.Theaters.All(), 1)
	require.Equal(t, 1, h.site.Hits(yahootest.TheaterPath+"?id=21"))
	require.Equal(t, 1, h.geocoder.count("臺北市信義區松壽路20號"))
	require.Len(t, h.recorder.Reports("warning", report_theater_resolver_resolve), 1)
}

func TestResolveKnownTheater(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.theaters.Resolve(ctx, "信義威秀影城", h.site.TheaterUrl("21"))
	require.NoError(t, err)
	second, err := h.theaters.Resolve(ctx, "信義威秀影城", h.site.TheaterUrl("21"))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, h.site.Hits(yahootest.TheaterPath))

	_, err = h.theaters.Resolve(ctx, "沒有編號", "https://movies.yahoo.com.tw/theater_result.html")
	require.ErrorIs(t, err, yahoo.ErrInvalidID)
}
