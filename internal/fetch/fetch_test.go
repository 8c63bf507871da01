package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"yahoomovie/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><p class="greeting">你好</p></body></html>`))
	})
	mux.HandleFunc("/ajax", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		query := r.URL.Query()
		_, hasArea := query["area_id"]
		if query.Get("movie_id") != "11586" || !hasArea {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"view": "<div>ok</div>"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDocument(t *testing.T) {
	server := newTestServer(t)
	fetcher := New(Options{}, telemetry.SlogAPI{})

	doc, err := fetcher.Document(context.Background(), server.URL+"/page", nil)
	require.NoError(t, err)
	require.Equal(t, "你好", doc.Find("p.greeting").Text())
}

func TestJSON(t *testing.T) {
	server := newTestServer(t)
	fetcher := New(Options{}, telemetry.SlogAPI{})

	var out struct {
		View string `json:"view"`
	}
	err := fetcher.JSON(context.Background(), server.URL+"/ajax", url.Values{
		"movie_id": {"11586"},
		"area_id":  {""},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "<div>ok</div>", out.View)
}

func TestErrors(t *testing.T) {
	server := newTestServer(t)
	tel := &telemetry.Recorder{}
	fetcher := New(Options{}, tel)

	_, err := fetcher.Bytes(context.Background(), server.URL+"/broken", nil)
	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.Status)
	require.NotEmpty(t, tel.Reports("broken", report_fetcher_get))

	server.Close()
	_, err = fetcher.Bytes(context.Background(), server.URL+"/page", nil)
	require.True(t, errors.As(err, &fetchErr))
	require.NotNil(t, fetchErr.Err)
}
