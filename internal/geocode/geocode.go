package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_arcgis_geocode = "arcgis.geocode"
)

const DefaultUrl = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"

var tracer = otel.Tracer("yahoomovie.internal.geocode")

// ErrAddressNotFound is returned when the geocoder has no candidate for an address.
var ErrAddressNotFound = errors.New("address not found")

// Resolver turns a street address into coordinates.
//
// note: fault injection point
type Resolver interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

type candidatesResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
		Score float64 `json:"score"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ArcGIS geocodes through the findAddressCandidates operation of an ArcGIS
// geocode server.
type ArcGIS struct {
	http *resty.Client
	tel  telemetry.API
}

func NewArcGIS(baseUrl string, timeout time.Duration, tel telemetry.API) ArcGIS {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("geocode", tel)

	if baseUrl == "" {
		baseUrl = DefaultUrl
	}
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseUrl, "/"))
	client.SetTimeout(timeout)
	telemetry.InstrumentResty(client, tel, nil)

	return ArcGIS{http: client, tel: tel}
}

func (g ArcGIS) Geocode(ctx context.Context, address string) (float64, float64, error) {
	ctx, span := tracer.Start(ctx, "ArcGIS.Geocode")
	defer span.End()
	span.SetAttributes(attribute.String("address", address))

	var out candidatesResponse
	res, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"SingleLine":   address,
			"f":            "json",
			"maxLocations": "1",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/findAddressCandidates")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	if res.IsError() {
		err := fmt.Errorf("geocode %q: status %d", address, res.StatusCode())
		g.tel.ReportBroken(report_arcgis_geocode, err)
		span.SetStatus(codes.Error, "unexpected status")
		return 0, 0, err
	}
	if out.Error != nil {
		err := fmt.Errorf("geocode %q: %d %s", address, out.Error.Code, out.Error.Message)
		g.tel.ReportBroken(report_arcgis_geocode, err)
		span.SetStatus(codes.Error, "service error")
		return 0, 0, err
	}
	if len(out.Candidates) == 0 {
		g.tel.ReportWarning(report_arcgis_geocode, ErrAddressNotFound, address)
		return 0, 0, fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}

	location := out.Candidates[0].Location
	span.SetAttributes(
		attribute.Float64("lat", location.Y),
		attribute.Float64("lng", location.X),
	)
	return location.Y, location.X, nil
}
