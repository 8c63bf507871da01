package watch

import (
	"context"
	"errors"
	"testing"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/crawler"

	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	results []crawler.Result
	err     error
	runs    int
}

func (c *fakeCrawler) Run(ctx context.Context) (crawler.Result, error) {
	result := c.results[c.runs]
	c.runs++
	return result, c.err
}

type fakeDigest struct {
	sent [][]catalog.Movie
	err  error
}

func (d *fakeDigest) SendDigest(ctx context.Context, movies []catalog.Movie) error {
	d.sent = append(d.sent, movies)
	return d.err
}

type manualCron struct {
	specs     []string
	callbacks []func()
}

func (c *manualCron) Cron(spec string, callback func()) error {
	c.specs = append(c.specs, spec)
	c.callbacks = append(c.callbacks, callback)
	return nil
}

func (c *manualCron) Stop() {}

func (c *manualCron) fire() {
	for _, cb := range c.callbacks {
		cb()
	}
}

var nomadland = catalog.Movie{ID: "11586", ChineseName: "游牧人生"}

func TestSchedule(t *testing.T) {
	crawl := &fakeCrawler{results: []crawler.Result{
		{Added: []catalog.Movie{nomadland}, Finished: true},
		{Skipped: 1, Finished: true},
	}}
	digest := &fakeDigest{}
	cron := &manualCron{}
	w := New(crawl, digest, &telemetry.Recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Schedule(ctx, cron, "0 */6 * * *"))
	require.Equal(t, []string{"0 */6 * * *"}, cron.specs)

	cron.fire()
	cron.fire()
	require.Equal(t, 2, crawl.runs)
	require.Equal(t, [][]catalog.Movie{{nomadland}}, digest.sent)

	cancel()
	cron.fire()
	require.Equal(t, 2, crawl.runs)
}

func TestTickMailsPartialProgress(t *testing.T) {
	crawl := &fakeCrawler{
		results: []crawler.Result{{Added: []catalog.Movie{nomadland}}},
		err:     errors.New("status 503"),
	}
	digest := &fakeDigest{}
	tel := &telemetry.Recorder{}

	_, err := New(crawl, digest, tel).Tick(context.Background())
	require.ErrorContains(t, err, "503")
	require.Len(t, digest.sent, 1)
	require.Empty(t, tel.Reports("broken", ""))
}

func TestTickWithoutDigest(t *testing.T) {
	crawl := &fakeCrawler{results: []crawler.Result{{Added: []catalog.Movie{nomadland}}}}
	result, err := New(crawl, nil, &telemetry.Recorder{}).Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Added, 1)
}

func TestDigestFailureKeepsCrawl(t *testing.T) {
	crawl := &fakeCrawler{results: []crawler.Result{{Added: []catalog.Movie{nomadland}}}}
	digest := &fakeDigest{err: errors.New("smtp down")}
	tel := &telemetry.Recorder{}

	result, err := New(crawl, digest, tel).Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Added, 1)
	require.Len(t, digest.sent, 1)
	require.Empty(t, tel.Reports("broken", ""))
}
