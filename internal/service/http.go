package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"yahoomovie/internal/fetch"
	"yahoomovie/internal/geocode"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Ok         bool   `json:"ok"`
	LoadIssues string `json:"load_issues,omitempty"`
}

// NewHandler exposes the service as a read-only JSON api.
func NewHandler(s Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /movies", s.handleMovies)
	mux.HandleFunc("GET /movies/search", s.handleSearch)
	mux.HandleFunc("GET /movies/{id}", s.handleMovie)
	mux.HandleFunc("GET /movies/{id}/showtimes", s.handleShowtimes)
	mux.HandleFunc("GET /movies/{id}/markers", s.handleMarkers)
	mux.HandleFunc("GET /theaters/{id}", s.handleTheater)
	mux.HandleFunc("GET /poster", s.handlePoster)
	return mux
}

func writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

// statusOf maps an error to the status a client should see. Failures of
// the listing site or the geocoder are upstream failures, not empty results.
func statusOf(err error) int {
	var fetchErr *fetch.Error
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.Is(err, geocode.ErrAddressNotFound):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJson(w, statusOf(err), errorResponse{Error: err.Error()})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(ErrInvalidInput, err)
	}
	return n, nil
}

func (s Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	res := statusResponse{Ok: true}
	err := s.LoadIssues()
	if err != nil {
		res.Ok = false
		res.LoadIssues = err.Error()
	}
	writeJson(w, http.StatusOK, res)
}

func (s Service) handleMovies(w http.ResponseWriter, r *http.Request) {
	recent, err := intParam(r, "recent")
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := s.Movies(MovieQuery{
		RecentDays: recent,
		Preview:    r.URL.Query().Get("preview") != "",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, rows)
}

func (s Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, s.Search(r.URL.Query().Get("q"), limit))
}

func (s Service) handleMovie(w http.ResponseWriter, r *http.Request) {
	row, err := s.Movie(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, row)
}

func (s Service) handleShowtimes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Showtimes(r.Context(), r.PathValue("id"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, rows)
}

func (s Service) handleMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.Markers(r.Context(), r.PathValue("id"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, markers)
}

func (s Service) handleTheater(w http.ResponseWriter, r *http.Request) {
	theater, err := s.Theater(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, theater)
}

func (s Service) handlePoster(w http.ResponseWriter, r *http.Request) {
	body, err := s.Poster(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("content-type", http.DetectContentType(body))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
