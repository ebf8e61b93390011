package articles

import (
	"context"
	"testing"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, svc *Service) []*models.Article {
	t.Helper()
	list := []*models.Article{
		{Title: "fed", URL: "https://n/fed", TimePublished: "20250923T140000"},
		{Title: "oil", URL: "https://n/oil", TimePublished: "20250923T090000"},
		{Title: "old", URL: "https://n/old", TimePublished: "20250922T230000"},
	}
	n, err := svc.Save(context.Background(), list)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return list
}

func TestService_SaveSkipsDuplicateURLs(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	seed(t, svc)

	n, err := svc.Save(context.Background(), []*models.Article{
		{Title: "fed again", URL: "https://n/fed", TimePublished: "20250923T150000"},
		{Title: "new", URL: "https://n/new", TimePublished: "20250923T150000"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_ForDay(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	seed(t, svc)

	day, err := models.ParseDay("20250923")
	require.NoError(t, err)
	list, err := svc.ForDay(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "fed", list[0].Title)
	assert.Equal(t, "oil", list[1].Title)

	empty, err := svc.ForDay(context.Background(), models.Day{Compact: "20240101"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestService_Get(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	list := seed(t, svc)

	got, err := svc.Get(context.Background(), list[1].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "oil", got.Title)

	_, err = svc.Get(context.Background(), "xyz")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.Get(context.Background(), "0123456789abcdef01234567")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_RecentClampsLimit(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	seed(t, svc)

	list, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "fed", list[0].Title)

	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, MaxListLimit, ClampLimit(1000))
	assert.Equal(t, 7, ClampLimit(7))
}
