package agenda

import (
	"strings"
	"testing"
	"time"

	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	meeting := dayEvent("Planning", 0, 0)
	meeting.StartTime = meeting.StartTime.Add(9 * time.Hour)
	meeting.EndTime = meeting.EndTime.Add(10 * time.Hour)
	meeting.Description = "Quarterly planning"
	span := dayEvent("Conference", 1, 2)
	span.FeedID = 2

	view := Build([]event.Event{meeting, span}, refDate, nil)

	out, err := RenderCSV(view)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,start,end,name,description,feedId", lines[0])
	assert.Equal(t, "2026-06-15,2026-06-15 09:00,2026-06-15 10:00,Planning,Quarterly planning,1", lines[1])
	assert.Equal(t, "2026-06-16,2026-06-16 00:00,2026-06-17 00:00,Conference,,2", lines[2])
	assert.Equal(t, "2026-06-17,2026-06-16 00:00,2026-06-17 00:00,Conference,,2", lines[3])
}

func TestRenderCSV_EmptyView(t *testing.T) {
	out, err := RenderCSV(Build(nil, refDate, nil))
	require.NoError(t, err)
	assert.Equal(t, "date,start,end,name,description,feedId\n", out)
}
