package catalog

import (
	"fmt"
	"sync"
	"time"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/chrono"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/table"
)

const (
	report_movies_append = "movies.append"
)

var MovieColumns = []string{
	"電影ID", "電影名稱", "英文名稱", "上映日期", "片長",
	"期待度", "滿意度", "IMDb分數", "發行公司", "導演",
	"演員", "電影海報", "劇情介紹",
}

type Movie struct {
	ID           yahoo.MovieID `json:"movie_id"`
	ChineseName  string        `json:"chinese_name"`
	EnglishName  string        `json:"english_name"`
	ReleaseDate  string        `json:"release_date"`
	Runtime      string        `json:"runtime"`
	Expectation  string        `json:"expectation_score"`
	Satisfaction string        `json:"satisfaction_score"`
	ImdbScore    string        `json:"imdb_score"`
	Distributor  string        `json:"distributor"`
	Director     string        `json:"director"`
	Cast         string        `json:"cast"`
	PosterUrl    string        `json:"poster_url"`
	Synopsis     string        `json:"synopsis"`
}

// NewMovie assembles a movie from its listing entry and its detail page.
func NewMovie(summary yahoo.MovieSummary, detail yahoo.MovieDetail) Movie {
	return Movie{
		ID:           summary.ID,
		ChineseName:  summary.ChineseName,
		EnglishName:  summary.EnglishName,
		ReleaseDate:  summary.ReleaseDate,
		Runtime:      detail.Runtime,
		Expectation:  summary.Expectation,
		Satisfaction: summary.Satisfaction,
		ImdbScore:    detail.ImdbScore,
		Distributor:  detail.Distributor,
		Director:     detail.Director.String(),
		Cast:         detail.Cast.String(),
		PosterUrl:    summary.PosterUrl,
		Synopsis:     summary.Synopsis,
	}
}

func (m Movie) row() []string {
	return []string{
		string(m.ID), m.ChineseName, m.EnglishName, m.ReleaseDate, m.Runtime,
		m.Expectation, m.Satisfaction, m.ImdbScore, m.Distributor, m.Director,
		m.Cast, m.PosterUrl, m.Synopsis,
	}
}

func movieFromRow(row []string) Movie {
	return Movie{
		ID:           yahoo.MovieID(row[0]),
		ChineseName:  row[1],
		EnglishName:  row[2],
		ReleaseDate:  row[3],
		Runtime:      row[4],
		Expectation:  row[5],
		Satisfaction: row[6],
		ImdbScore:    row[7],
		Distributor:  row[8],
		Director:     row[9],
		Cast:         row[10],
		PosterUrl:    row[11],
		Synopsis:     row[12],
	}
}

// MovieRow is a movie with its display index, the first movie is index 1.
type MovieRow struct {
	Index int `json:"index"`
	Movie
}

// Filter selects movies by release date. The zero value selects every movie.
type Filter struct {
	dates map[string]struct{}
}

func All() Filter {
	return Filter{}
}

// Recent selects movies released on one of the `days` dates ending with
// the date of `now` in Asia/Taipei.
func Recent(now time.Time, days int) Filter {
	dates := map[string]struct{}{}
	for _, d := range chrono.RecentDates(now, days) {
		dates[d] = struct{}{}
	}
	return Filter{dates: dates}
}

func (f Filter) match(m Movie) bool {
	if f.dates == nil {
		return true
	}
	_, ok := f.dates[m.ReleaseDate]
	return ok
}

// Movies is the insert-only movie catalog keyed by movie id.
type Movies struct {
	mu    sync.RWMutex
	table *table.Table
	ids   map[yahoo.MovieID]int
	tel   telemetry.API
}

func OpenMovies(path string, tel telemetry.API) (*Movies, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("catalog", tel)

	tbl, err := openTable(path, MovieColumns, tel)
	if err != nil {
		return nil, err
	}

	ids := map[yahoo.MovieID]int{}
	for i, row := range tbl.Rows() {
		id := yahoo.MovieID(row[0])
		if _, seen := ids[id]; seen {
			tel.ReportWarning(report_catalog_load, fmt.Errorf("%w: movie %s", ErrDuplicate, id), path)
			continue
		}
		ids[id] = i
	}

	return &Movies{table: tbl, ids: ids, tel: tel}, nil
}

func (c *Movies) LoadIssue() error {
	return c.table.LoadIssue()
}

func (c *Movies) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Len()
}

func (c *Movies) Contains(id yahoo.MovieID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// Append adds a new movie and saves the table before returning.
func (c *Movies) Append(m Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[m.ID]; ok {
		return fmt.Errorf("%w: movie %s", ErrDuplicate, m.ID)
	}
	err := c.table.Append(m.row())
	if err != nil {
		c.tel.ReportBroken(report_movies_append, err, m.ID)
		return err
	}
	c.ids[m.ID] = c.table.Len() - 1
	c.tel.ReportDebug(report_movies_append, m.ID, m.ChineseName)
	return nil
}

func (c *Movies) Get(id yahoo.MovieID) (MovieRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.ids[id]
	if !ok {
		return MovieRow{}, false
	}
	return MovieRow{Index: i + 1, Movie: movieFromRow(c.table.Row(i))}, true
}

// Rows returns the movies matching `filter` in insertion order. Indices
// count every stored movie, so a movie keeps its index under any filter.
func (c *Movies) Rows(filter Filter) []MovieRow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []MovieRow
	for i, row := range c.table.Rows() {
		m := movieFromRow(row)
		if filter.match(m) {
			out = append(out, MovieRow{Index: i + 1, Movie: m})
		}
	}
	return out
}
