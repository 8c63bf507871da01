package yahoo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// ImdbUnavailable is stored in place of an IMDb score the detail page does not show.
	ImdbUnavailable = "unavailable"
	// EmptyListingMarker is the text the listing site shows past its last page.
	EmptyListingMarker = "本週無電影/戲劇上映。"
)

const (
	labelReleaseDate = "上映日期："
	labelRuntime     = "片　　長："
	labelDistributor = "發行公司："
	labelImdb        = "IMDb分數："
	labelDirector    = "導演："
	labelCast        = "演員："
	labelAddress     = "地址："
	labelPhone       = "電話："
	labelTimetable   = "時刻表"

	castSeparator = "、"
)

var ErrInvalidID = errors.New("invalid id")

var idCharset = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// parseQueryID derives an id from a link by taking everything after the
// first "id=", the remainder must be a plain token.
func parseQueryID(link string) (string, error) {
	_, id, found := strings.Cut(link, "id=")
	if !found {
		return "", fmt.Errorf("%w: no id in %q", ErrInvalidID, link)
	}
	id = strings.TrimSpace(id)
	if !idCharset.MatchString(id) {
		return "", fmt.Errorf("%w: %q in %q", ErrInvalidID, id, link)
	}
	return id, nil
}

// MovieID identifies a movie, it is the id query parameter of the movie's
// timetable link.
type MovieID string

// NewMovieID validates a bare movie id received from outside the site.
func NewMovieID(id string) (MovieID, error) {
	if !idCharset.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return MovieID(id), nil
}

func ParseMovieID(link string) (MovieID, error) {
	id, err := parseQueryID(link)
	return MovieID(id), err
}

// TheaterID identifies a theater, it is the id query parameter of the
// theater's schedule page.
type TheaterID string

func ParseTheaterID(link string) (TheaterID, error) {
	id, err := parseQueryID(link)
	return TheaterID(id), err
}

// MovieSummary is one entry of the listing page.
type MovieSummary struct {
	ID           MovieID
	ChineseName  string
	EnglishName  string
	ReleaseDate  string
	Expectation  string
	Satisfaction string
	Synopsis     string
	PosterUrl    string
	DetailUrl    string
}

// ListingPage is a parsed page of the listing. Empty is set when the page
// carries the end-of-listing marker, Movies is nil in that case.
type ListingPage struct {
	Empty  bool
	Movies []MovieSummary
}

// CreditShape is the markup a credit block was written in.
type CreditShape int

const (
	// CreditLinked lists each person as an anchor.
	CreditLinked CreditShape = iota
	// CreditLabeledText is plain text after a label like "演員：".
	CreditLabeledText
)

func (s CreditShape) String() string {
	switch s {
	case CreditLinked:
		return "linked"
	case CreditLabeledText:
		return "labeled-text"
	}
	return fmt.Sprintf("CreditShape(%d)", int(s))
}

type Credit struct {
	Shape CreditShape
	Names []string
}

func (c Credit) String() string {
	return strings.Join(c.Names, ", ")
}

// MovieDetail holds the fields only present on a movie's detail page.
type MovieDetail struct {
	Runtime     string
	Distributor string
	ImdbScore   string
	Director    Credit
	Cast        Credit
}

// ScheduleSlot is one group of showtimes sharing the same tags (ex. "數位, 中文字幕").
type ScheduleSlot struct {
	Tag   string
	Times []string
}

// TheaterSchedule is the showtimes of one theater in the schedule fragment.
type TheaterSchedule struct {
	TheaterID   TheaterID
	TheaterName string
	TheaterUrl  string
	Slots       []ScheduleSlot
}

// TheaterInfo holds the fields of a theater's own page.
type TheaterInfo struct {
	Address string
	Phone   string
	Region  string
}
