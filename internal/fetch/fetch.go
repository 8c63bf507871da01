package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_fetcher_get = "fetcher.get"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var tracer = otel.Tracer("yahoomovie.internal.fetch")

// Error is a failed request: the request could not be made, or the server
// answered with a non-2xx status. It is never retried.
type Error struct {
	Url    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.Url, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: status %d", e.Url, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// CloudflareBypass wraps the transport with cloudflare-bp-go.
	CloudflareBypass bool
	// Dump, when non-nil, receives every request/response pair.
	Dump telemetry.MessageOutput
}

// Fetcher issues sequential GET requests and hands back parsed documents,
// decoded json or raw bytes.
type Fetcher struct {
	http *resty.Client
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) Fetcher {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("fetch", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, tel, opts.Dump)

	return Fetcher{http: client, tel: tel}
}

// Bytes returns the raw body of `link` with `query` merged into its query string.
func (f Fetcher) Bytes(ctx context.Context, link string, query url.Values) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetcher.Bytes")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	req := f.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	res, err := req.Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &Error{Url: link, Err: err}
	}
	if res.IsError() {
		err := &Error{Url: link, Status: res.StatusCode()}
		f.tel.ReportBroken(report_fetcher_get, err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}
	return res.Body(), nil
}

// Document fetches `link` and parses it as html.
func (f Fetcher) Document(ctx context.Context, link string, query url.Values) (*goquery.Document, error) {
	body, err := f.Bytes(ctx, link, query)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.tel.ReportBroken(report_fetcher_get, fmt.Errorf("parse: %w", err), link)
		return nil, fmt.Errorf("parse %s: %w", link, err)
	}
	if doc.Url == nil {
		doc.Url, _ = url.Parse(link)
	}
	return doc, nil
}

// JSON fetches `link` and decodes the body into `out`.
func (f Fetcher) JSON(ctx context.Context, link string, query url.Values, out any) error {
	body, err := f.Bytes(ctx, link, query)
	if err != nil {
		return err
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_get, fmt.Errorf("decode json: %w", err), link)
		return fmt.Errorf("decode %s: %w", link, err)
	}
	return nil
}
