// Package catalog owns the three persisted tables: movies, theaters and
// showtimes. Each catalog keeps its table in memory, indexes it by natural
// key, and saves the whole table after every append.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/table"
)

const (
	report_catalog_load = "catalog.load"
)

// ErrDuplicate is returned when appending a record whose key is already present.
var ErrDuplicate = errors.New("duplicate key")

const (
	FormatCsv  = "csv"
	FormatXlsx = "xlsx"
)

// Store groups the catalogs of one data directory.
type Store struct {
	Movies    *Movies
	Theaters  *Theaters
	Showtimes *Showtimes
}

// FilePath is the path of the `name` table in `dir` with the given format.
func FilePath(dir, name, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s", name, format))
}

// Open loads every table in `dir`. Tables that were corrupt are reported and
// start out empty, their problems are available through LoadIssues.
func Open(dir, format string, tel telemetry.API) (Store, error) {
	assert.NotNil(tel)

	if format != FormatCsv && format != FormatXlsx {
		return Store{}, fmt.Errorf("unknown table format %q", format)
	}

	movies, err := OpenMovies(FilePath(dir, "movies", format), tel)
	if err != nil {
		return Store{}, err
	}
	theaters, err := OpenTheaters(FilePath(dir, "theaters", format), tel)
	if err != nil {
		return Store{}, err
	}
	showtimes, err := OpenShowtimes(FilePath(dir, "showtimes", format), tel)
	if err != nil {
		return Store{}, err
	}
	return Store{
		Movies:    movies,
		Theaters:  theaters,
		Showtimes: showtimes,
	}, nil
}

// LoadIssues joins the load problems of every table, it is nil when all
// tables loaded cleanly.
func (s Store) LoadIssues() error {
	return errors.Join(
		s.Movies.LoadIssue(),
		s.Theaters.LoadIssue(),
		s.Showtimes.LoadIssue(),
	)
}

func openTable(path string, columns []string, tel telemetry.API) (*table.Table, error) {
	tbl, err := table.Open(path, columns)
	if err != nil {
		tel.ReportBroken(report_catalog_load, err, path)
		return nil, err
	}
	if tbl.LoadIssue() != nil {
		tel.ReportWarning(report_catalog_load, tbl.LoadIssue(), "moved to "+path+table.CorruptSuffix)
	}
	tel.ReportCount(report_catalog_load, int64(tbl.Len()))
	return tbl, nil
}
