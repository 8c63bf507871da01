package yahoo

import (
	"fmt"
	"strings"
	"yahoomovie/pkg/htmlutil"
)

// ScheduleResponse is the envelope returned by the schedule endpoint, the
// schedule itself is an html fragment in View.
type ScheduleResponse struct {
	View string `json:"view"`
}

// ParseSchedule parses the schedule fragment into per-theater showtimes, in
// the order areas, theaters and slots appear in the fragment.
func ParseSchedule(view string) ([]TheaterSchedule, error) {
	root, err := htmlutil.Parse(view)
	if err != nil {
		return nil, err
	}

	var out []TheaterSchedule
	for _, area := range root.FindAll("div.area_timebox") {
		for _, theater := range area.FindAll("ul") {
			schedule, err := parseTheaterSchedule(theater)
			if err != nil {
				return nil, err
			}
			out = append(out, schedule)
		}
	}
	return out, nil
}

func parseTheaterSchedule(theater htmlutil.Node) (TheaterSchedule, error) {
	name, err := theater.RequireAttr("data-theater_name")
	if err != nil {
		return TheaterSchedule{}, err
	}
	link, err := theater.RequireAttr("data-theater_schedules")
	if err != nil {
		return TheaterSchedule{}, err
	}
	id, err := ParseTheaterID(link)
	if err != nil {
		return TheaterSchedule{}, fmt.Errorf("theater %s: %w", name, err)
	}

	schedule := TheaterSchedule{
		TheaterID:   id,
		TheaterName: name,
		TheaterUrl:  link,
	}
	for _, taps := range theater.FindAll("li.taps") {
		var tags []string
		for _, span := range taps.FindAll("span") {
			tags = append(tags, span.Text())
		}

		times, err := taps.NextSibling("li.time._c").Require()
		if err != nil {
			return TheaterSchedule{}, fmt.Errorf("theater %s: %w", name, err)
		}
		slot := ScheduleSlot{Tag: strings.Join(tags, ", ")}
		for _, label := range times.FindAll("label") {
			slot.Times = append(slot.Times, label.Text())
		}
		schedule.Slots = append(schedule.Slots, slot)
	}
	return schedule, nil
}
