package globals

import (
	"context"
	"errors"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/config"
	"yahoomovie/internal/crawler"
	"yahoomovie/internal/fetch"
	"yahoomovie/internal/geocode"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/service"
	"yahoomovie/internal/showtimes"
	"yahoomovie/lib/osutil"
)

type ctxKey struct{}

// Value holds everything a command needs, built once from the config.
type Value struct {
	Config  config.Config
	Tel     telemetry.API
	Otel    telemetry.Otel
	Store   catalog.Store
	Fetcher fetch.Fetcher
	Client  yahoo.Client
	Crawler crawler.Crawler
	Service service.Service
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, ctxKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(ctxKey{}).(*Value)
}

// Build wires the catalogs, the site client, the resolvers and the service
// according to `cfg`.
func Build(ctx context.Context, cfg config.Config) (*Value, error) {
	tel := telemetry.SlogAPI{}

	otel, err := telemetry.SetupOtel(ctx, "yahoomovie-cli", cfg.Otlp)
	if err != nil {
		return nil, err
	}

	err = osutil.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, errors.Join(err, otel.Shutdown(ctx))
	}
	store, err := catalog.Open(cfg.DataDir, cfg.Format, tel)
	if err != nil {
		return nil, errors.Join(err, otel.Shutdown(ctx))
	}

	opts := fetch.Options{
		UserAgent:        cfg.Scraper.UserAgent,
		Timeout:          cfg.Scraper.Timeout(),
		CloudflareBypass: cfg.Scraper.CloudflareBypass,
	}
	if cfg.Scraper.HttpDumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(cfg.Scraper.HttpDumpDir)
		if err != nil {
			return nil, errors.Join(err, otel.Shutdown(ctx))
		}
		opts.Dump = output
	}
	fetcher := fetch.New(opts, tel)
	client := yahoo.NewClient(fetcher, cfg.Scraper.Endpoints(), tel)

	geocoder := geocode.NewArcGIS(cfg.Geocoder.Url, cfg.Scraper.Timeout(), tel)
	theaters := showtimes.NewTheaterResolver(client, geocoder, store.Theaters, tel)
	resolver := showtimes.NewResolver(client, store.Showtimes, theaters, tel)

	svc := service.NewService(service.Options{
		Movies:         store.Movies,
		Theaters:       store.Theaters,
		Showtimes:      resolver,
		ShowtimeIssues: store.Showtimes.LoadIssue,
		Posters:        fetcher,
	}, tel)

	return &Value{
		Config:  cfg,
		Tel:     tel,
		Otel:    otel,
		Store:   store,
		Fetcher: fetcher,
		Client:  client,
		Crawler: crawler.New(client, store.Movies, crawler.Options{MaxPages: cfg.Scraper.MaxPages}, tel),
		Service: svc,
	}, nil
}
