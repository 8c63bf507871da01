package chrono

import (
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

var taipei *time.Location

func init() {
	var err error
	taipei, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
}

// Taipei returns a [*time.Location] for Asia/Taipei, the timezone every
// date on the listing site is written in.
func Taipei() *time.Location {
	return taipei
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Asia/Taipei.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(taipei)
}

// FixedTime always returns the same instant.
type FixedTime struct {
	T time.Time
}

func (f FixedTime) Now() time.Time {
	return f.T.In(taipei)
}

// Date formats t as the YYYY-MM-DD date used by the schedule endpoint and
// by the release dates of the listing site.
func Date(t time.Time) string {
	return t.In(taipei).Format(DateLayout)
}

// RecentDates returns the dates of the last n days, today first.
func RecentDates(now time.Time, n int) []string {
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, Date(now.AddDate(0, 0, -i)))
	}
	return dates
}
