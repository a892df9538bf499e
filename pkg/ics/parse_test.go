package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func document(lines ...string) []byte {
	all := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//chronoscope tests//EN",
	}
	all = append(all, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func TestParse_VEventFields(t *testing.T) {
	body := document(
		"BEGIN:VEVENT",
		"UID:1",
		"SUMMARY:Team meeting",
		"DESCRIPTION:Quarterly review",
		"DTSTART:20240601T090000Z",
		"DTEND:20240601T100000Z",
		"END:VEVENT",
	)

	components, err := Parse("https://example.com/cal.ics", body)

	require.NoError(t, err)
	require.Len(t, components, 1)

	rc := components[0]
	require.NotNil(t, rc.Summary)
	assert.Equal(t, "Team meeting", *rc.Summary)
	require.NotNil(t, rc.Description)
	assert.Equal(t, "Quarterly review", *rc.Description)

	require.NotNil(t, rc.Start)
	assert.False(t, rc.Start.DateOnly)
	assert.True(t, rc.Start.Value.Equal(time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, rc.End)
	assert.True(t, rc.End.Value.Equal(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)))
}

func TestParse_DateOnlyValues(t *testing.T) {
	body := document(
		"BEGIN:VEVENT",
		"UID:1",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20240601",
		"DTEND;VALUE=DATE:20240602",
		"END:VEVENT",
	)

	components, err := Parse("https://example.com/cal.ics", body)

	require.NoError(t, err)
	require.Len(t, components, 1)

	rc := components[0]
	require.NotNil(t, rc.Start)
	assert.True(t, rc.Start.DateOnly)
	assert.True(t, rc.Start.Value.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)),
		"date-only values promote to midnight local time")
	require.NotNil(t, rc.End)
	assert.True(t, rc.End.DateOnly)
}

func TestParse_MissingOptionalFields(t *testing.T) {
	body := document(
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTART;VALUE=DATE:20240601",
		"END:VEVENT",
	)

	components, err := Parse("https://example.com/cal.ics", body)

	require.NoError(t, err)
	require.Len(t, components, 1)

	rc := components[0]
	assert.Nil(t, rc.Summary)
	assert.Nil(t, rc.Description)
	assert.Nil(t, rc.End)
	assert.NotNil(t, rc.Start)
}

func TestParse_EmptyDocumentIsNotAnError(t *testing.T) {
	components, err := Parse("https://example.com/cal.ics", document())

	require.NoError(t, err)
	assert.Empty(t, components, "zero VEVENT components is a normal, successful result")
}

func TestParse_MalformedDocument(t *testing.T) {
	_, err := Parse("https://example.com/cal.ics", []byte("definitely not a calendar"))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "https://example.com/cal.ics", parseErr.URL)
}
