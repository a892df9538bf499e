package ics

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

// RawTime is a weakly typed DTSTART/DTEND value: either a full timestamp or
// a bare calendar date. Date-only values carry no zone and are interpreted
// as midnight local time.
type RawTime struct {
	Value    time.Time
	DateOnly bool
}

// RawComponent is the fixed-shape intermediate record for one VEVENT. All
// fields except the component's presence itself are optional; the normalizer
// decides what missing values mean.
type RawComponent struct {
	Summary     *string
	Description *string
	Start       *RawTime
	End         *RawTime
}

// Parse decodes an ICS document into its VEVENT components. Components of
// any other type are ignored. A document with zero VEVENTs is a valid,
// empty result; only an undecodable document yields a *ParseError.
func Parse(url string, body []byte) ([]RawComponent, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		log.Warnf("Error parsing calendar feed from %s: %v", url, err)
		return nil, &ParseError{URL: url, Err: err}
	}

	components := make([]RawComponent, 0)
	for _, ve := range cal.Events() {
		components = append(components, parseVEvent(ve))
	}

	log.Debugf("Parsed %d VEVENT components from %s", len(components), url)
	return components, nil
}

func parseVEvent(ve *ical.VEvent) RawComponent {
	var rc RawComponent

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		value := p.Value
		rc.Summary = &value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil && p.Value != "" {
		value := p.Value
		rc.Description = &value
	}
	rc.Start = parseTimeProperty(ve.GetProperty(ical.ComponentPropertyDtStart))
	rc.End = parseTimeProperty(ve.GetProperty(ical.ComponentPropertyDtEnd))

	return rc
}

// parseTimeProperty interprets a DTSTART/DTEND property. Date-only values
// (VALUE=DATE or no time part) become midnight in local time; date-times
// honor a trailing Z or a TZID parameter, defaulting to local.
func parseTimeProperty(p *ical.IANAProperty) *RawTime {
	if p == nil || p.Value == "" {
		return nil
	}
	value := strings.TrimSpace(p.Value)

	dateOnly := !strings.Contains(value, "T")
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			dateOnly = true
		}
	}

	if dateOnly {
		t, err := time.ParseInLocation("20060102", value, time.Local)
		if err != nil {
			log.Warnf("Skipping unparsable date value %q: %v", value, err)
			return nil
		}
		return &RawTime{Value: t, DateOnly: true}
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse("20060102T150405Z", value)
		if err != nil {
			log.Warnf("Skipping unparsable UTC date-time value %q: %v", value, err)
			return nil
		}
		return &RawTime{Value: t}
	}

	loc := time.Local
	if params := p.ICalParameters; params != nil {
		if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
			if parsed, err := time.LoadLocation(tzs[0]); err == nil {
				loc = parsed
			} else {
				log.Warnf("Unknown TZID %q, falling back to local time", tzs[0])
			}
		}
	}

	t, err := time.ParseInLocation("20060102T150405", value, loc)
	if err != nil {
		log.Warnf("Skipping unparsable date-time value %q: %v", value, err)
		return nil
	}
	return &RawTime{Value: t}
}
