package facts

import (
	"sort"
	"strings"
	"time"
)

// TimelineEvent is a dated entry on the case timeline.
type TimelineEvent struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsDeadline  bool   `json:"isDeadline"`
}

// dateLayouts are tried in order when reading an event date. A partial
// date sorts at the start of its year or month.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01",
	"2006",
}

// ParseEventDate reads an event date in any of the accepted layouts.
func ParseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// eventBefore orders by date. Dates that do not parse sort after every
// dated event, keeping their relative order.
func eventBefore(a, b TimelineEvent) bool {
	ta, okA := ParseEventDate(a.Date)
	tb, okB := ParseEventDate(b.Date)
	switch {
	case !okA:
		return false
	case !okB:
		return true
	default:
		return ta.Before(tb)
	}
}

// InsertEvent returns a new timeline with ev inserted in date order. Events
// sharing a date keep insertion order.
func InsertEvent(timeline []TimelineEvent, ev TimelineEvent) []TimelineEvent {
	i := sort.Search(len(timeline), func(i int) bool {
		return eventBefore(ev, timeline[i])
	})
	out := make([]TimelineEvent, 0, len(timeline)+1)
	out = append(out, timeline[:i]...)
	out = append(out, ev)
	return append(out, timeline[i:]...)
}

// SortTimeline returns a date-ordered copy of timeline.
func SortTimeline(timeline []TimelineEvent) []TimelineEvent {
	out := append([]TimelineEvent{}, timeline...)
	sort.SliceStable(out, func(i, j int) bool { return eventBefore(out[i], out[j]) })
	return out
}

// RemoveEvent returns timeline without the event with the given id, and
// whether one was removed.
func RemoveEvent(timeline []TimelineEvent, id string) ([]TimelineEvent, bool) {
	out := make([]TimelineEvent, 0, len(timeline))
	found := false
	for _, ev := range timeline {
		if ev.ID == id {
			found = true
			continue
		}
		out = append(out, ev)
	}
	return out, found
}
