// Package service is the read surface used by frontends: movie listings,
// search, posters, showtimes, theaters and map markers.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/chrono"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/lib/textutil"
)

const (
	report_service_markers = "service.markers"
)

// SynopsisPreviewLength is the number of runes of synopsis kept in listings.
const SynopsisPreviewLength = 200

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type MovieCatalog interface {
	Get(id yahoo.MovieID) (catalog.MovieRow, bool)
	Rows(filter catalog.Filter) []catalog.MovieRow
	LoadIssue() error
}

type TheaterCatalog interface {
	Get(id yahoo.TheaterID) (catalog.Theater, bool)
	LoadIssue() error
}

type ShowtimeResolver interface {
	Get(ctx context.Context, movie yahoo.MovieID, date string) ([]catalog.Showtime, error)
}

type PosterFetcher interface {
	Bytes(ctx context.Context, link string, query url.Values) ([]byte, error)
}

type Options struct {
	Movies    MovieCatalog
	Theaters  TheaterCatalog
	Showtimes ShowtimeResolver
	// ShowtimeIssues reports load problems of the showtime table.
	ShowtimeIssues func() error
	Posters        PosterFetcher
	Time           chrono.TimeAPI
}

type Service struct {
	movies         MovieCatalog
	theaters       TheaterCatalog
	showtimes      ShowtimeResolver
	showtimeIssues func() error
	posters        PosterFetcher
	time           chrono.TimeAPI
	tel            telemetry.API
}

func NewService(opts Options, tel telemetry.API) Service {
	assert.NotNil(opts.Movies)
	assert.NotNil(opts.Theaters)
	assert.NotNil(opts.Showtimes)
	assert.NotNil(opts.Posters)
	assert.NotNil(tel)

	if opts.Time == nil {
		opts.Time = chrono.NewStandardTime()
	}
	if opts.ShowtimeIssues == nil {
		opts.ShowtimeIssues = func() error { return nil }
	}

	return Service{
		movies:         opts.Movies,
		theaters:       opts.Theaters,
		showtimes:      opts.Showtimes,
		showtimeIssues: opts.ShowtimeIssues,
		posters:        opts.Posters,
		time:           opts.Time,
		tel:            telemetry.NewScopedAPI("service", tel),
	}
}

// LoadIssues returns the problems found while loading the tables, a frontend
// should show them so that an empty listing is not mistaken for no data.
func (s Service) LoadIssues() error {
	return errors.Join(
		s.movies.LoadIssue(),
		s.theaters.LoadIssue(),
		s.showtimeIssues(),
	)
}

type MovieQuery struct {
	// RecentDays keeps only movies released in the last RecentDays days,
	// 0 keeps every movie.
	RecentDays int
	// Preview shortens synopses to SynopsisPreviewLength runes.
	Preview bool
}

func (s Service) Movies(query MovieQuery) ([]catalog.MovieRow, error) {
	if query.RecentDays < 0 {
		return nil, fmt.Errorf("%w: recent days %d", ErrInvalidInput, query.RecentDays)
	}

	filter := catalog.All()
	if query.RecentDays > 0 {
		filter = catalog.Recent(s.time.Now(), query.RecentDays)
	}
	rows := s.movies.Rows(filter)
	if query.Preview {
		for i := range rows {
			rows[i].Synopsis = textutil.Preview(rows[i].Synopsis, SynopsisPreviewLength)
		}
	}
	return rows, nil
}

func (s Service) Movie(id string) (catalog.MovieRow, error) {
	movieID, err := yahoo.NewMovieID(id)
	if err != nil {
		return catalog.MovieRow{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	row, ok := s.movies.Get(movieID)
	if !ok {
		return catalog.MovieRow{}, fmt.Errorf("%w: movie %s", ErrNotFound, movieID)
	}
	return row, nil
}

// Poster downloads the image at `link`, only http(s) urls are accepted.
func (s Service) Poster(ctx context.Context, link string) ([]byte, error) {
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: poster url %q", ErrInvalidInput, link)
	}
	body, err := s.posters.Bytes(ctx, link, nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s Service) parseQuery(id, date string) (yahoo.MovieID, string, error) {
	movieID, err := yahoo.NewMovieID(id)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if date == "" {
		return movieID, chrono.Date(s.time.Now()), nil
	}
	_, err = time.ParseInLocation(chrono.DateLayout, date, chrono.Taipei())
	if err != nil {
		return "", "", fmt.Errorf("%w: date %q", ErrInvalidInput, date)
	}
	return movieID, date, nil
}

// Showtimes returns the showtimes of a movie on `date` (YYYY-MM-DD), an
// empty date means today in Asia/Taipei.
func (s Service) Showtimes(ctx context.Context, id, date string) ([]catalog.Showtime, error) {
	movieID, date, err := s.parseQuery(id, date)
	if err != nil {
		return nil, err
	}
	rows, err := s.showtimes.Get(ctx, movieID, date)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s Service) Theater(id string) (catalog.Theater, error) {
	if id == "" {
		return catalog.Theater{}, fmt.Errorf("%w: empty theater id", ErrInvalidInput)
	}
	theater, ok := s.theaters.Get(yahoo.TheaterID(id))
	if !ok {
		return catalog.Theater{}, fmt.Errorf("%w: theater %s", ErrNotFound, id)
	}
	return theater, nil
}

// Marker is a theater to pin on a map together with the showtimes it has
// for the queried movie and date.
type Marker struct {
	Theater catalog.Theater `json:"theater"`
	Times   []string        `json:"times"`
}

// Markers returns one marker per theater showing the movie on `date`, in the
// order the theaters first appear in the showtimes.
func (s Service) Markers(ctx context.Context, id, date string) ([]Marker, error) {
	showtimes, err := s.Showtimes(ctx, id, date)
	if err != nil {
		return nil, err
	}

	var markers []Marker
	positions := map[yahoo.TheaterID]int{}
	for _, st := range showtimes {
		i, ok := positions[st.TheaterID]
		if !ok {
			i = -1
			theater, found := s.theaters.Get(st.TheaterID)
			if found {
				markers = append(markers, Marker{Theater: theater})
				i = len(markers) - 1
			} else {
				s.tel.ReportWarning(report_service_markers, fmt.Errorf("%w: theater %s", ErrNotFound, st.TheaterID))
			}
			positions[st.TheaterID] = i
		}
		if i < 0 {
			continue
		}
		markers[i].Times = append(markers[i].Times, st.Time)
	}
	return markers, nil
}
