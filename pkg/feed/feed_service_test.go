package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFeed_DerivesOwnership(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	imported, err := service.CreateFeed(context.Background(), "Holidays", "https://example.com/holidays.ics")
	require.NoError(t, err)
	assert.False(t, imported.Owned)

	owned, err := service.CreateFeed(context.Background(), "My calendar", "")
	require.NoError(t, err)
	assert.True(t, owned.Owned)
}

func TestCreateFeed_DuplicateIsRejected(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	_, err := service.CreateFeed(context.Background(), "Holidays", "https://example.com/holidays.ics")
	require.NoError(t, err)

	_, err = service.CreateFeed(context.Background(), "Holidays", "https://example.com/holidays.ics")
	assert.ErrorIs(t, err, ErrFeedAlreadyExists)
}

func TestCreateFeed_SameNameDifferentURLIsAllowed(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	_, err := service.CreateFeed(context.Background(), "Holidays", "https://example.com/a.ics")
	require.NoError(t, err)

	_, err = service.CreateFeed(context.Background(), "Holidays", "https://example.com/b.ics")
	assert.NoError(t, err)
}

func TestGetFeed_NotFound(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	_, err := service.GetFeed(context.Background(), 42)
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestDeleteFeed_NotFound(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	err := service.DeleteFeed(context.Background(), 42)
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestGetImportedFeeds_ExcludesOwned(t *testing.T) {
	service := NewFeedService(NewStubFeedRepo())

	_, err := service.CreateFeed(context.Background(), "Imported", "https://example.com/a.ics")
	require.NoError(t, err)
	_, err = service.CreateFeed(context.Background(), "Owned", "")
	require.NoError(t, err)

	imported, err := service.GetImportedFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "Imported", imported[0].Name)
}
