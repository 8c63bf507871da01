package yahoo_test

import (
	"context"
	"errors"
	"testing"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/fetch"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/scrapers/yahoo/yahootest"

	"github.com/stretchr/testify/require"
)

func newClient(t testing.TB) (yahoo.Client, *yahootest.Site, *telemetry.Recorder) {
	site := yahootest.NewSite(t)
	tel := &telemetry.Recorder{}
	client := yahoo.NewClient(fetch.New(fetch.Options{}, tel), site.Endpoints(), tel)
	return client, site, tel
}

func TestClientListing(t *testing.T) {
	client, site, _ := newClient(t)
	site.SetPages(
		[]yahootest.Movie{nomadland},
		[]yahootest.Movie{{ID: "2", ChineseName: "神隱少女"}},
	)
	ctx := context.Background()

	first, err := client.ListingPage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first.Movies, 1)
	require.Equal(t, yahoo.MovieID("11586"), first.Movies[0].ID)
	require.Equal(t, site.DetailUrl("11586"), first.Movies[0].DetailUrl)

	second, err := client.ListingPage(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "神隱少女", second.Movies[0].ChineseName)

	past, err := client.ListingPage(ctx, 3)
	require.NoError(t, err)
	require.True(t, past.Empty)

	require.Equal(t, 1, site.Hits(site.ListingHit(3)))
}

func TestClientDetail(t *testing.T) {
	client, site, tel := newClient(t)
	site.SetPages([]yahootest.Movie{nomadland})
	ctx := context.Background()

	detail, err := client.Detail(ctx, site.DetailUrl("11586"))
	require.NoError(t, err)
	require.Equal(t, "Chloé Zhao", detail.Director.String())
	require.Equal(t, "7.4", detail.ImdbScore)

	_, err = client.Detail(ctx, site.DetailUrl("404"))
	var fetchErr *fetch.Error
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 404, fetchErr.Status)
	require.Len(t, tel.Reports("broken", ""), 1)
	require.Len(t, tel.Reports("broken", "fetcher.get"), 1)
}

func TestClientSchedule(t *testing.T) {
	client, site, _ := newClient(t)
	site.SetSchedule("11586", "2021-04-20", yahootest.Showing{
		Area:        "台北",
		TheaterID:   "21",
		TheaterName: "信義威秀影城",
		Slots: []yahootest.Slot{
			{Tags: []string{"數位"}, Times: []string{"10:30"}},
		},
	})
	ctx := context.Background()

	schedules, err := client.Schedule(ctx, "11586", "2021-04-20")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.Equal(t, site.TheaterUrl("21"), schedules[0].TheaterUrl)
	require.Equal(t, []string{"10:30"}, schedules[0].Slots[0].Times)

	none, err := client.Schedule(ctx, "11586", "2021-04-21")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestClientTheater(t *testing.T) {
	client, site, _ := newClient(t)
	site.AddTheater(yahootest.Theater{
		ID:      "21",
		Address: "臺北市信義區松壽路20號",
		Phone:   "(02)8780-5566",
	})

	info, err := client.Theater(context.Background(), site.TheaterUrl("21"))
	require.NoError(t, err)
	require.Equal(t, "02-8780-5566", info.Phone)
	require.Equal(t, "台北", info.Region)
}
