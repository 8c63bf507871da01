package export

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"yahoomovie/internal/catalog"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	report_exporter_export = "exporter.export"
)

//go:embed schema.sql
var Schema string

// Database selects where the tables are mirrored: a local sqlite file, or a
// remote libsql server when Url is set.
type Database struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Database) Enabled() bool {
	return config.File != "" || config.Url != ""
}

func (config Database) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		link := config.Url
		if len(values) > 0 {
			link += "?" + values.Encode()
		}
		return sql.Open("libsql", link)
	}

	if config.File == "" {
		return nil, fmt.Errorf("neither a database file nor url was specified")
	}
	err := os.MkdirAll(filepath.Dir(config.File), 0777)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Snapshot is the content of the three catalogs at one point in time.
type Snapshot struct {
	Movies    []catalog.MovieRow
	Theaters  []catalog.Theater
	Showtimes []catalog.Showtime
}

func TakeSnapshot(store catalog.Store) Snapshot {
	return Snapshot{
		Movies:    store.Movies.Rows(catalog.All()),
		Theaters:  store.Theaters.All(),
		Showtimes: store.Showtimes.All(),
	}
}

type Exporter struct {
	db  *sql.DB
	tel telemetry.API
}

func NewExporter(db *sql.DB, tel telemetry.API) Exporter {
	assert.NotNil(db)
	assert.NotNil(tel)
	return Exporter{db: db, tel: telemetry.NewScopedAPI("export", tel)}
}

// Export replaces the contents of the database tables with `snap` in a
// single transaction.
func (e Exporter) Export(ctx context.Context, snap Snapshot) error {
	_, err := e.db.ExecContext(ctx, Schema)
	if err != nil {
		e.tel.ReportBroken(report_exporter_export, fmt.Errorf("schema: %w", err))
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		e.tel.ReportBroken(report_exporter_export, fmt.Errorf("begin: %w", err))
		return err
	}
	defer tx.Rollback()

	err = e.write(ctx, tx, snap)
	if err != nil {
		e.tel.ReportBroken(report_exporter_export, err)
		return err
	}

	err = tx.Commit()
	if err != nil {
		e.tel.ReportBroken(report_exporter_export, fmt.Errorf("commit: %w", err))
		return err
	}
	e.tel.ReportCount(report_exporter_export, int64(len(snap.Movies)))
	return nil
}

func (e Exporter) write(ctx context.Context, tx *sql.Tx, snap Snapshot) error {
	for _, table := range []string{"movies", "theaters", "showtimes"} {
		_, err := tx.ExecContext(ctx, "delete from "+table)
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, m := range snap.Movies {
		_, err := tx.ExecContext(
			ctx,
			`insert into movies (
				movie_id, display_index, chinese_name, english_name, release_date, runtime,
				expectation_score, satisfaction_score, imdb_score, distributor, director,
				cast_members, poster_url, synopsis
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(m.ID), m.Index, m.ChineseName, m.EnglishName, m.ReleaseDate, m.Runtime,
			m.Expectation, m.Satisfaction, m.ImdbScore, m.Distributor, m.Director,
			m.Cast, m.PosterUrl, m.Synopsis,
		)
		if err != nil {
			return fmt.Errorf("insert movie %s: %w", m.ID, err)
		}
	}

	for _, t := range snap.Theaters {
		_, err := tx.ExecContext(
			ctx,
			`insert into theaters (
				theater_id, name, region, phone, address, latitude, longitude
			) values (?, ?, ?, ?, ?, ?, ?)`,
			string(t.ID), t.Name, t.Region, t.Phone, t.Address, t.Latitude, t.Longitude,
		)
		if err != nil {
			return fmt.Errorf("insert theater %s: %w", t.ID, err)
		}
	}

	for _, s := range snap.Showtimes {
		_, err := tx.ExecContext(
			ctx,
			`insert into showtimes (movie_id, theater_id, tag, date, time) values (?, ?, ?, ?, ?)`,
			string(s.MovieID), string(s.TheaterID), s.Tag, s.Date, s.Time,
		)
		if err != nil {
			return fmt.Errorf("insert showtime of %s at %s: %w", s.MovieID, s.TheaterID, err)
		}
	}
	return nil
}
