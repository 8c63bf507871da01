// Package yahootest serves a fake copy of the listing site for tests.
package yahootest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"yahoomovie/internal/scrapers/yahoo"
)

const (
	ListingPath  = "/movie_intheaters.html"
	DetailPath   = "/movieinfo_main/"
	SchedulePath = "/ajax/pc/get_schedule_by_movie"
	TheaterPath  = "/theater_result.html"
)

type Movie struct {
	ID           string
	ChineseName  string
	EnglishName  string
	ReleaseDate  string
	Expectation  string
	Satisfaction string
	Synopsis     string
	Poster       string

	Runtime     string
	Distributor string
	// Imdb is left out of the detail page when empty.
	Imdb           string
	Director       string
	DirectorLinked bool
	Cast           []string
	CastLinked     bool
}

type Slot struct {
	Tags  []string
	Times []string
}

type Showing struct {
	Area        string
	TheaterID   string
	TheaterName string
	Slots       []Slot
}

type Theater struct {
	ID      string
	Address string
	Phone   string
}

// Site is an httptest server answering like the listing site. Its fields may
// be changed between requests through the setters.
type Site struct {
	Server *httptest.Server

	mu        sync.Mutex
	pages     [][]Movie
	schedules map[string][]Showing
	theaters  map[string]Theater
	hits      []string
}

func NewSite(t testing.TB) *Site {
	s := &Site{
		schedules: map[string][]Showing{},
		theaters:  map[string]Theater{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(ListingPath, s.serveListing)
	mux.HandleFunc(DetailPath, s.serveDetail)
	mux.HandleFunc(SchedulePath, s.serveSchedule)
	mux.HandleFunc(TheaterPath, s.serveTheater)
	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Site) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		hit := r.URL.Path
		if r.URL.RawQuery != "" {
			hit += "?" + r.URL.RawQuery
		}
		s.hits = append(s.hits, hit)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Site) Endpoints() yahoo.Endpoints {
	return yahoo.Endpoints{
		ListingUrl:  s.Server.URL + ListingPath,
		ScheduleUrl: s.Server.URL + SchedulePath,
	}
}

func (s *Site) SetPages(pages ...[]Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
}

func (s *Site) SetSchedule(movieID, date string, showings ...Showing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[movieID+"|"+date] = showings
}

func (s *Site) AddTheater(theater Theater) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theaters[theater.ID] = theater
}

// Hits counts the requests whose path (and query) starts with `prefix`.
func (s *Site) Hits(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		if strings.HasPrefix(h, prefix) {
			n++
		}
	}
	return n
}

func (s *Site) ListingHit(page int) string {
	return fmt.Sprintf("%s?page=%d", ListingPath, page)
}

func (s *Site) DetailUrl(id string) string {
	return s.Server.URL + DetailPath + id
}

func (s *Site) TheaterUrl(id string) string {
	return s.Server.URL + TheaterPath + "?id=" + id
}

func writeHtml(w http.ResponseWriter, body string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *Site) serveListing(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	var movies []Movie
	if page <= len(s.pages) {
		movies = s.pages[page-1]
	}
	s.mu.Unlock()

	if movies == nil {
		writeHtml(w, EmptyListingHtml())
		return
	}
	writeHtml(w, ListingHtml(s.Server.URL, movies))
}

func (s *Site) findMovie(id string) (Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, page := range s.pages {
		for _, m := range page {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Movie{}, false
}

func (s *Site) serveDetail(w http.ResponseWriter, r *http.Request) {
	movie, ok := s.findMovie(strings.TrimPrefix(r.URL.Path, DetailPath))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeHtml(w, DetailHtml(movie))
}

func (s *Site) serveSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	s.mu.Lock()
	showings := s.schedules[query.Get("movie_id")+"|"+query.Get("date")]
	s.mu.Unlock()

	body, err := json.Marshal(yahoo.ScheduleResponse{View: ScheduleView(s.Server.URL, showings)})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "application/json")
	w.Write(body)
}

func (s *Site) serveTheater(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	theater, ok := s.theaters[r.URL.Query().Get("id")]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeHtml(w, TheaterHtml(theater))
}

func EmptyListingHtml() string {
	return `<html><body><div class="release_box"><p>` + yahoo.EmptyListingMarker + `</p></div></body></html>`
}

func ListingHtml(baseUrl string, movies []Movie) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="release_list">`)
	for _, m := range movies {
		fmt.Fprintf(&b, `
<li>
	<div class="release_foto">
		<a href="%[1]s/movieinfo_main/%[2]s"><img src="/lazy.png" data-src="%[3]s"></a>
	</div>
	<div class="release_info">
		<div class="release_info_text">
			<div class="release_movie_name">
				<a href="%[1]s/movieinfo_main/%[2]s" class="gabtn">%[4]s</a>
				<div class="en"><a href="%[1]s/movieinfo_main/%[2]s">%[5]s</a></div>
			</div>
			<div class="leveltext">
				<div class="level_name">期待度</div>
				<div class="leveltext_box"><span>%[6]s</span></div>
			</div>
			<div class="leveltext">
				<div class="level_name">滿意度</div>
				<div class="starbox"><span data-num="%[7]s"></span></div>
			</div>
			<div class="release_movie_time">上映日期： %[8]s</div>
		</div>
		<div class="release_text"><span data-url="%[1]s/movieinfo_main/%[2]s">%[9]s</span></div>
		<div class="release_btn">
			<a href="%[1]s/movieinfo_main/%[2]s" class="btn_s_introduction">電影介紹</a>
			<a href="/movietime_result.html?id=%[2]s" class="btn_s_time">時刻表</a>
		</div>
	</div>
</li>`,
			baseUrl,
			m.ID,
			html.EscapeString(m.Poster),
			html.EscapeString(m.ChineseName),
			html.EscapeString(m.EnglishName),
			html.EscapeString(m.Expectation),
			html.EscapeString(m.Satisfaction),
			html.EscapeString(m.ReleaseDate),
			html.EscapeString(m.Synopsis),
		)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func DetailHtml(m Movie) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="movie_intro_info_r">`)
	fmt.Fprintf(&b, `<h1>%s</h1>`, html.EscapeString(m.ChineseName))
	fmt.Fprintf(&b, `<span>上映日期：%s</span>`, html.EscapeString(m.ReleaseDate))
	fmt.Fprintf(&b, `<span>片　　長：%s</span>`, html.EscapeString(m.Runtime))
	fmt.Fprintf(&b, `<span>發行公司：%s</span>`, html.EscapeString(m.Distributor))
	if m.Imdb != "" {
		fmt.Fprintf(&b, `<span>IMDb分數：%s</span>`, html.EscapeString(m.Imdb))
	}

	b.WriteString(`<div class="movie_intro_list">導演：</div>`)
	if m.DirectorLinked {
		fmt.Fprintf(&b, `<span class="movie_intro_list"><a href="/name/1">%s</a></span>`, html.EscapeString(m.Director))
	} else {
		fmt.Fprintf(&b, `<span class="movie_intro_list">導演：%s</span>`, html.EscapeString(m.Director))
	}

	b.WriteString(`<div class="movie_intro_list">演員：</div>`)
	if m.CastLinked {
		b.WriteString(`<span class="movie_intro_list">`)
		for i, name := range m.Cast {
			if i > 0 {
				b.WriteString("、")
			}
			fmt.Fprintf(&b, `<a href="/name/%d">%s</a>`, i+2, html.EscapeString(name))
		}
		b.WriteString(`</span>`)
	} else {
		fmt.Fprintf(&b, `<span class="movie_intro_list">演員：%s</span>`, html.EscapeString(strings.Join(m.Cast, "、")))
	}

	b.WriteString(`</div></body></html>`)
	return b.String()
}

func ScheduleView(baseUrl string, showings []Showing) string {
	byArea := map[string][]Showing{}
	var areas []string
	for _, s := range showings {
		if _, ok := byArea[s.Area]; !ok {
			areas = append(areas, s.Area)
		}
		byArea[s.Area] = append(byArea[s.Area], s)
	}

	var b strings.Builder
	for _, area := range areas {
		fmt.Fprintf(&b, `<div class="area_timebox"><div class="area_title">%s</div>`, html.EscapeString(area))
		for _, s := range byArea[area] {
			fmt.Fprintf(
				&b,
				`<ul data-theater_name="%s" data-theater_schedules="%s%s?id=%s">`,
				html.EscapeString(s.TheaterName), baseUrl, TheaterPath, s.TheaterID,
			)
			fmt.Fprintf(&b, `<li class="adds"><a>%s</a></li>`, html.EscapeString(s.TheaterName))
			for _, slot := range s.Slots {
				b.WriteString(`<li class="taps">`)
				for _, tag := range slot.Tags {
					fmt.Fprintf(&b, `<span class="tapR">%s</span>`, html.EscapeString(tag))
				}
				b.WriteString(`</li><li class="time _c"><div class="input_picker">`)
				for i, t := range slot.Times {
					fmt.Fprintf(&b, `<input type="radio" id="t%d"><label for="t%d">%s</label>`, i, i, html.EscapeString(t))
				}
				b.WriteString(`</div></li>`)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

func TheaterHtml(t Theater) string {
	return fmt.Sprintf(`<html><body><div class="theaterlist_area"><ul>
	<li>地址：%s</li>
	<li>電話：%s</li>
</ul></div></body></html>`, html.EscapeString(t.Address), html.EscapeString(t.Phone))
}
