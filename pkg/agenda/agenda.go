package agenda

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/teambition/rrule-go"
	log "github.com/sirupsen/logrus"
)

// upcomingWindowDays bounds the "upcoming" highlight: events starting
// strictly between 0 and this many days out qualify. Events starting today
// or at the window edge do not.
const upcomingWindowDays = 5

// DateBucket groups the events occupying one calendar date.
type DateBucket struct {
	Date   time.Time
	Events []event.Event
}

// UpcomingEvent pairs an event with its distance from the reference date.
type UpcomingEvent struct {
	Event          event.Event
	DaysUntilStart int
}

// Countdown renders the distance as a human label, e.g. "tomorrow" or
// "in 3 days".
func (u UpcomingEvent) Countdown() string {
	return CountdownLabel(u.DaysUntilStart)
}

// View is the derived, read-only grouping of events by calendar date plus
// the upcoming shortlist. It holds no identity and is recomputed per read.
type View struct {
	ReferenceDate time.Time
	Buckets       []DateBucket
	Upcoming      []UpcomingEvent
}

// Build computes the temporal view for the given events and reference date.
// It is pure and safe to call concurrently.
//
// Events outside the feed filter (empty filter = all feeds) or ending before
// the reference date are dropped. Each surviving event lands in one bucket
// per date it spans, clipped so nothing appears before the reference date;
// a single-day event therefore occupies exactly one bucket.
func Build(events []event.Event, referenceDate time.Time, feedFilter []int) View {
	referenceDate = truncateToDate(referenceDate)
	// All calendar dates are observed in the reference date's location, so
	// events carrying different zones still share one bucket per day.
	loc := referenceDate.Location()

	allowed := make(map[int]bool, len(feedFilter))
	for _, id := range feedFilter {
		allowed[id] = true
	}

	buckets := make(map[time.Time][]event.Event)
	upcoming := make([]UpcomingEvent, 0)

	for _, e := range events {
		if len(allowed) > 0 && !allowed[e.FeedID] {
			continue
		}
		if dateIn(e.EndTime, loc).Before(referenceDate) {
			continue
		}

		for _, d := range spanDates(e, referenceDate) {
			buckets[d] = append(buckets[d], e)
		}

		days := daysBetween(referenceDate, dateIn(e.StartTime, loc))
		if days > 0 && days < upcomingWindowDays {
			upcoming = append(upcoming, UpcomingEvent{Event: e, DaysUntilStart: days})
		}
	}

	dates := make([]time.Time, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	ordered := make([]DateBucket, 0, len(dates))
	for _, d := range dates {
		events := buckets[d]
		sort.SliceStable(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
		ordered = append(ordered, DateBucket{Date: d, Events: events})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].DaysUntilStart != upcoming[j].DaysUntilStart {
			return upcoming[i].DaysUntilStart < upcoming[j].DaysUntilStart
		}
		return upcoming[i].Event.StartTime.Before(upcoming[j].Event.StartTime)
	})

	return View{ReferenceDate: referenceDate, Buckets: ordered, Upcoming: upcoming}
}

// spanDates enumerates every date the event occupies, from the reference
// date (never earlier) through its end date, as a daily recurrence.
func spanDates(e event.Event, referenceDate time.Time) []time.Time {
	loc := referenceDate.Location()
	first := dateIn(e.StartTime, loc)
	if first.Before(referenceDate) {
		first = referenceDate
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: first,
		Until:   dateIn(e.EndTime, loc),
	})
	if err != nil {
		log.Warnf("Could not enumerate dates for event %q: %v", e.Name, err)
		return []time.Time{first}
	}

	dates := rule.All()
	if len(dates) == 0 {
		// Until before Dtstart cannot happen after clipping, but a view
		// should never lose an event to a degenerate rule either.
		return []time.Time{first}
	}
	return dates
}

// CountdownLabel renders a day distance relative to today.
func CountdownLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%d days ago", -days)
	case days == -1:
		return "yesterday"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// daysBetween counts calendar days from one midnight to another, rounding
// so DST transitions cannot skew the count.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dateIn returns the calendar date of t as observed in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	return truncateToDate(t.In(loc))
}
