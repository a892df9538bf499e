package syncer

import (
	"errors"
	"time"

	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/m-J-K-b/chronoscope/pkg/ics"
)

const (
	defaultEventName        = "Untitled Event"
	defaultEventDescription = "No description provided"
)

// ErrMissingStart marks a VEVENT without a usable start value. Such a
// component is skipped; it never aborts the rest of the document.
var ErrMissingStart = errors.New("component has no start value")

// Normalize converts one raw VEVENT component into the canonical Event
// shape. It is pure: the same component always yields the same event.
//
// Rules, in order:
//  1. a missing end takes the start value;
//  2. an end earlier than the start is clamped to the start, so a malformed
//     component can never produce an event ending before it begins;
//  3. date-only values are already promoted to midnight-local timestamps by
//     the parser;
//  4. an exactly-one-day date gap collapses to a single day, correcting the
//     ICS convention of encoding all-day events with an exclusive DTEND one
//     day past the last active day (wider spans keep their full range);
//  5. missing summary/description fall back to placeholders.
func Normalize(rc ics.RawComponent, feedId int) (event.Event, error) {
	if rc.Start == nil {
		return event.Event{}, ErrMissingStart
	}

	start := rc.Start.Value
	end := start
	if rc.End != nil {
		end = rc.End.Value
	}
	if end.Before(start) {
		end = start
	}

	startDate := truncateToDate(start)
	endDate := truncateToDate(end)
	if endDate.Equal(startDate.AddDate(0, 0, 1)) {
		end = start
	}

	name := defaultEventName
	if rc.Summary != nil {
		name = *rc.Summary
	}
	description := defaultEventDescription
	if rc.Description != nil {
		description = *rc.Description
	}

	return event.Event{
		Name:        name,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		FeedID:      feedId,
	}, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
