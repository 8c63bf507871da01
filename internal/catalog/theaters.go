package catalog

import (
	"fmt"
	"strconv"
	"sync"
	"yahoomovie/internal/components/assert"
	"yahoomovie/internal/components/telemetry"
	"yahoomovie/internal/scrapers/yahoo"
	"yahoomovie/internal/table"
)

const (
	report_theaters_append = "theaters.append"
)

var TheaterColumns = []string{"戲院ID", "戲院名稱", "地區", "電話", "地址", "緯度", "經度"}

type Theater struct {
	ID        yahoo.TheaterID `json:"theater_id"`
	Name      string          `json:"name"`
	Region    string          `json:"region"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (t Theater) row() []string {
	return []string{
		string(t.ID), t.Name, t.Region, t.Phone, t.Address,
		formatCoordinate(t.Latitude), formatCoordinate(t.Longitude),
	}
}

// theaterFromRow fills every field it can, coordinates that do not parse
// are left at zero and reported through the error.
func theaterFromRow(row []string) (Theater, error) {
	t := Theater{
		ID:      yahoo.TheaterID(row[0]),
		Name:    row[1],
		Region:  row[2],
		Phone:   row[3],
		Address: row[4],
	}
	var err error
	t.Latitude, err = strconv.ParseFloat(row[5], 64)
	if err != nil {
		return t, fmt.Errorf("theater %s latitude: %w", t.ID, err)
	}
	t.Longitude, err = strconv.ParseFloat(row[6], 64)
	if err != nil {
		return t, fmt.Errorf("theater %s longitude: %w", t.ID, err)
	}
	return t, nil
}

// Theaters is the insert-only theater catalog, keyed by theater id and
// looked up by name before a theater is resolved.
type Theaters struct {
	mu       sync.RWMutex
	table    *table.Table
	theaters []Theater
	ids      map[yahoo.TheaterID]int
	names    map[string]int
	tel      telemetry.API
}

func OpenTheaters(path string, tel telemetry.API) (*Theaters, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("catalog", tel)

	tbl, err := openTable(path, TheaterColumns, tel)
	if err != nil {
		return nil, err
	}

	c := &Theaters{
		table: tbl,
		ids:   map[yahoo.TheaterID]int{},
		names: map[string]int{},
		tel:   tel,
	}
	for _, row := range tbl.Rows() {
		t, err := theaterFromRow(row)
		if err != nil {
			tel.ReportWarning(report_catalog_load, err, path)
		}
		if _, seen := c.ids[t.ID]; seen {
			tel.ReportWarning(report_catalog_load, fmt.Errorf("%w: theater %s", ErrDuplicate, t.ID), path)
			continue
		}
		c.index(t)
	}
	return c, nil
}

func (c *Theaters) index(t Theater) {
	c.theaters = append(c.theaters, t)
	c.ids[t.ID] = len(c.theaters) - 1
	if _, ok := c.names[t.Name]; !ok {
		c.names[t.Name] = len(c.theaters) - 1
	}
}

func (c *Theaters) LoadIssue() error {
	return c.table.LoadIssue()
}

func (c *Theaters) ContainsName(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[name]
	return ok
}

func (c *Theaters) Get(id yahoo.TheaterID) (Theater, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.ids[id]
	if !ok {
		return Theater{}, false
	}
	return c.theaters[i], true
}

func (c *Theaters) GetByName(name string) (Theater, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.names[name]
	if !ok {
		return Theater{}, false
	}
	return c.theaters[i], true
}

// Alias makes `name` resolve to the theater with `id` for the lifetime of the
// catalog. Names are not persisted, the stored row keeps the first name seen.
func (c *Theaters) Alias(name string, id yahoo.TheaterID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.ids[id]
	if !ok {
		return false
	}
	if _, taken := c.names[name]; !taken {
		c.names[name] = i
	}
	return true
}

// Append adds a new theater and saves the table before returning.
func (c *Theaters) Append(t Theater) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[t.ID]; ok {
		return fmt.Errorf("%w: theater %s", ErrDuplicate, t.ID)
	}
	err := c.table.Append(t.row())
	if err != nil {
		c.tel.ReportBroken(report_theaters_append, err, t.ID)
		return err
	}
	c.index(t)
	c.tel.ReportDebug(report_theaters_append, t.ID, t.Name)
	return nil
}

// All returns every theater in insertion order.
func (c *Theaters) All() []Theater {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Theater, len(c.theaters))
	copy(out, c.theaters)
	return out
}
