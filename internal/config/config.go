package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/crawler"
	"yahoomovie/internal/export"
	"yahoomovie/internal/fetch"
	"yahoomovie/internal/geocode"
	"yahoomovie/internal/notify"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/lib/configutil"
)

type Scraper struct {
	ListingUrl       string `json:"listing_url"`
	ScheduleUrl      string `json:"schedule_url"`
	UserAgent        string `json:"user_agent"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	MaxPages         int    `json:"max_pages"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// HttpDumpDir, when set, receives every request/response made.
	HttpDumpDir string `json:"http_dump_dir"`
}

func (s Scraper) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (s Scraper) Endpoints() yahoo.Endpoints {
	return yahoo.Endpoints{
		ListingUrl:  s.ListingUrl,
		ScheduleUrl: s.ScheduleUrl,
	}
}

type Geocoder struct {
	Url string `json:"url"`
}

type Watch struct {
	// Cron is a standard 5 field cron expression evaluated in Asia/Taipei.
	Cron string `json:"cron"`
}

type Notify struct {
	To []string `json:"to"`
}

type Serve struct {
	Port int `json:"port"`
}

type Config struct {
	DataDir  string               `json:"data_dir"`
	Format   string               `json:"format"`
	Scraper  Scraper              `json:"scraper"`
	Geocoder Geocoder             `json:"geocoder"`
	Watch    Watch                `json:"watch"`
	Smtp     notify.SmtpConfig    `json:"smtp"`
	Notify   Notify               `json:"notify"`
	Export   export.Database      `json:"export"`
	Serve    Serve                `json:"serve"`
	Otlp     telemetry.OtlpConfig `json:"otlp"`
	Verbose  bool                 `json:"verbose"`
}

func Defaults() Config {
	return Config{
		DataDir: "data",
		Format:  catalog.FormatXlsx,
		Scraper: Scraper{
			ListingUrl:     yahoo.DefaultListingUrl,
			ScheduleUrl:    yahoo.DefaultScheduleUrl,
			UserAgent:      fetch.DefaultUserAgent,
			TimeoutSeconds: 30,
			MaxPages:       crawler.DefaultMaxPages,
		},
		Geocoder: Geocoder{Url: geocode.DefaultUrl},
		Watch:    Watch{Cron: "0 */6 * * *"},
		Smtp:     notify.SmtpConfig{Port: 587},
		Serve:    Serve{Port: 8080},
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("data_dir is empty"))
	}
	if c.Format != catalog.FormatCsv && c.Format != catalog.FormatXlsx {
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", catalog.FormatCsv, catalog.FormatXlsx, c.Format))
	}
	if c.Scraper.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("scraper.max_pages must be positive"))
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scraper.timeout_seconds must be positive"))
	}
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port %d is out of range", c.Serve.Port))
	}
	return errors.Join(errs...)
}

// Load reads `path` and its .local override over Defaults. A missing file
// is not an error, the defaults are used as they are.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig(path, Defaults())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
