package catalog

import (
	"sync"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/table"
)

const (
	report_showtimes_append = "showtimes.append"
)

var ShowtimeColumns = []string{"電影ID", "戲院ID", "類型", "日期", "時間"}

type Showtime struct {
	MovieID   yahoo.MovieID   `json:"movie_id"`
	TheaterID yahoo.TheaterID `json:"theater_id"`
	Tag       string          `json:"tag"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
}

func (s Showtime) row() []string {
	return []string{string(s.MovieID), string(s.TheaterID), s.Tag, s.Date, s.Time}
}

func showtimeFromRow(row []string) Showtime {
	return Showtime{
		MovieID:   yahoo.MovieID(row[0]),
		TheaterID: yahoo.TheaterID(row[1]),
		Tag:       row[2],
		Date:      row[3],
		Time:      row[4],
	}
}

type showingKey struct {
	movie yahoo.MovieID
	date  string
}

// Showtimes is the append-only showtime catalog. A (movie, date) pair with
// at least one row counts as already queried.
type Showtimes struct {
	mu        sync.RWMutex
	table     *table.Table
	showtimes []Showtime
	showings  map[showingKey][]int
	tel       telemetry.API
}

func OpenShowtimes(path string, tel telemetry.API) (*Showtimes, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("catalog", tel)

	tbl, err := openTable(path, ShowtimeColumns, tel)
	if err != nil {
		return nil, err
	}

	c := &Showtimes{
		table:    tbl,
		showings: map[showingKey][]int{},
		tel:      tel,
	}
	for _, row := range tbl.Rows() {
		c.index(showtimeFromRow(row))
	}
	return c, nil
}

func (c *Showtimes) index(s Showtime) {
	c.showtimes = append(c.showtimes, s)
	key := showingKey{movie: s.MovieID, date: s.Date}
	c.showings[key] = append(c.showings[key], len(c.showtimes)-1)
}

func (c *Showtimes) LoadIssue() error {
	return c.table.LoadIssue()
}

func (c *Showtimes) Has(movie yahoo.MovieID, date string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.showings[showingKey{movie: movie, date: date}]) > 0
}

// Filter returns the showtimes of `movie` on `date` in insertion order.
func (c *Showtimes) Filter(movie yahoo.MovieID, date string) []Showtime {
	c.mu.RLock()
	defer c.mu.RUnlock()

	indices := c.showings[showingKey{movie: movie, date: date}]
	out := make([]Showtime, 0, len(indices))
	for _, i := range indices {
		out = append(out, c.showtimes[i])
	}
	return out
}

// All returns every showtime in insertion order.
func (c *Showtimes) All() []Showtime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Showtime, len(c.showtimes))
	copy(out, c.showtimes)
	return out
}

// AppendAll adds showtimes with a single save of the table.
func (c *Showtimes) AppendAll(showtimes []Showtime) error {
	if len(showtimes) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([][]string, len(showtimes))
	for i, s := range showtimes {
		rows[i] = s.row()
	}
	err := c.table.Append(rows...)
	if err != nil {
		c.tel.ReportBroken(report_showtimes_append, err, len(showtimes))
		return err
	}
	for _, s := range showtimes {
		c.index(s)
	}
	c.tel.ReportCount(report_showtimes_append, int64(len(showtimes)))
	return nil
}
