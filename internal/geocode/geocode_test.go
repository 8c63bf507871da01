package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"yahoomovie/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newArcGISServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/findAddressCandidates", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("f") != "json" || query.Get("maxLocations") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("content-type", "application/json")
		switch query.Get("SingleLine") {
		case "臺北市信義區松壽路20號":
			w.Write([]byte(`{"candidates": [{
				"address": "松壽路20號, 信義區, 臺北市",
				"location": {"x": 121.5671, "y": 25.0356},
				"score": 100
			}]}`))
		case "新北市板橋區新站路28號":
			w.Header().Set("content-type", "text/plain; charset=utf-8")
			w.Write([]byte(`{"candidates": [{"location": {"x": 121.4643, "y": 25.0137}, "score": 100}]}`))
		case "broken":
			w.Write([]byte(`{"error": {"code": 498, "message": "Invalid Token"}}`))
		default:
			w.Write([]byte(`{"candidates": []}`))
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestArcGIS(t *testing.T) {
	server := newArcGISServer(t)
	tel := &telemetry.Recorder{}
	geocoder := NewArcGIS(server.URL+"/", 0, tel)
	ctx := context.Background()

	lat, lng, err := geocoder.Geocode(ctx, "臺北市信義區松壽路20號")
	require.NoError(t, err)
	require.InDelta(t, 25.0356, lat, 1e-9)
	require.InDelta(t, 121.5671, lng, 1e-9)

	lat, lng, err = geocoder.Geocode(ctx, "新北市板橋區新站路28號")
	require.NoError(t, err)
	require.InDelta(t, 25.0137, lat, 1e-9)
	require.InDelta(t, 121.4643, lng, 1e-9)

	_, _, err = geocoder.Geocode(ctx, "nowhere")
	require.ErrorIs(t, err, ErrAddressNotFound)
	require.Len(t, tel.Reports("warning", report_arcgis_geocode), 1)

	_, _, err = geocoder.Geocode(ctx, "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAddressNotFound)
	require.Len(t, tel.Reports("broken", report_arcgis_geocode), 1)
}
