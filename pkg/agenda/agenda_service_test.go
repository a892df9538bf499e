package agenda

import (
	"context"
	"testing"
	"time"

	"github.com/m-J-K-b/chronoscope/internal/utils"
	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetView_ZeroDateUsesClock(t *testing.T) {
	repo := event.NewStubEventRepo()
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2026, 6, 15, 14, 30, 0, 0, time.Local))
	service := NewViewService(repo, clock)

	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	_, err := repo.StoreEvent(context.Background(), event.Event{
		Name:      "Today",
		StartTime: today.Add(9 * time.Hour),
		EndTime:   today.Add(10 * time.Hour),
		FeedID:    1,
	})
	require.NoError(t, err)

	view, err := service.GetView(context.Background(), time.Time{}, nil)
	require.NoError(t, err)

	assert.True(t, view.ReferenceDate.Equal(today))
	require.Len(t, view.Buckets, 1)
	assert.True(t, view.Buckets[0].Date.Equal(today))
}

func TestGetView_ExplicitDateOverridesClock(t *testing.T) {
	repo := event.NewStubEventRepo()
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local))
	service := NewViewService(repo, clock)

	future := time.Date(2026, 7, 1, 0, 0, 0, 0, time.Local)
	_, err := repo.StoreEvent(context.Background(), event.Event{
		Name:      "JulyFirst",
		StartTime: future,
		EndTime:   future,
		FeedID:    1,
	})
	require.NoError(t, err)

	view, err := service.GetView(context.Background(), future, nil)
	require.NoError(t, err)

	assert.True(t, view.ReferenceDate.Equal(future))
	require.Len(t, view.Buckets, 1)
}

func TestGetView_ExcludesEventsEndedBeforeReferenceDate(t *testing.T) {
	repo := event.NewStubEventRepo()
	clock := &utils.MockClock{}
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	clock.SetNow(today)
	service := NewViewService(repo, clock)

	_, err := repo.StoreEvent(context.Background(), event.Event{
		Name:      "LastWeek",
		StartTime: today.AddDate(0, 0, -7),
		EndTime:   today.AddDate(0, 0, -6),
		FeedID:    1,
	})
	require.NoError(t, err)

	view, err := service.GetView(context.Background(), time.Time{}, nil)
	require.NoError(t, err)
	assert.Empty(t, view.Buckets)
}

func TestGetView_AppliesFeedFilter(t *testing.T) {
	repo := event.NewStubEventRepo()
	clock := &utils.MockClock{}
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
	clock.SetNow(today)
	service := NewViewService(repo, clock)

	for feedId, name := range map[int]string{1: "FromA", 2: "FromB"} {
		_, err := repo.StoreEvent(context.Background(), event.Event{
			Name:      name,
			StartTime: today,
			EndTime:   today,
			FeedID:    feedId,
		})
		require.NoError(t, err)
	}

	view, err := service.GetView(context.Background(), time.Time{}, []int{2})
	require.NoError(t, err)
	require.Len(t, view.Buckets, 1)
	require.Len(t, view.Buckets[0].Events, 1)
	assert.Equal(t, "FromB", view.Buckets[0].Events[0].Name)
}
