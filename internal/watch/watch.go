package watch

import (
	"context"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/chrono"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/crawler"
)

const (
	report_watcher_tick = "watcher.tick"
)

type Crawler interface {
	Run(ctx context.Context) (crawler.Result, error)
}

type DigestSender interface {
	SendDigest(ctx context.Context, movies []catalog.Movie) error
}

// Watcher re-crawls the listing on a schedule and mails a digest of the
// movies each crawl discovers.
type Watcher struct {
	crawler Crawler
	// digest is nil when no mail should be sent
	digest DigestSender
	tel    telemetry.API
}

func New(c Crawler, digest DigestSender, tel telemetry.API) Watcher {
	assert.NotNil(c)
	assert.NotNil(tel)
	return Watcher{
		crawler: c,
		digest:  digest,
		tel:     telemetry.NewScopedAPI("watch", tel),
	}
}

// Tick runs one crawl and sends the digest of what it added. Movies added
// before a crawl error are still mailed. Crawl and mail failures are
// reported by the crawler and the mailer, a failed digest does not fail the
// tick.
func (w Watcher) Tick(ctx context.Context) (crawler.Result, error) {
	result, err := w.crawler.Run(ctx)
	w.tel.ReportDebug(report_watcher_tick, len(result.Added), result.Skipped, err)

	if w.digest != nil && len(result.Added) > 0 {
		w.digest.SendDigest(ctx, result.Added)
	}
	return result, err
}

// Schedule registers Tick on `cron` with `spec`, ticks stop once ctx is done.
func (w Watcher) Schedule(ctx context.Context, cron chrono.CronAPI, spec string) error {
	return cron.Cron(spec, func() {
		if ctx.Err() != nil {
			return
		}
		w.Tick(ctx)
	})
}
