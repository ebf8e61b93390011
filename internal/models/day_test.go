package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("20250923")
	require.NoError(t, err)
	assert.Equal(t, "20250923", d.Compact)
	assert.Equal(t, "2025-09-23", d.Dashed)

	d2, err := ParseDay("2025-09-23")
	require.NoError(t, err)
	assert.Equal(t, d, d2)
}

func TestParseDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025923", "2025/09/23", "20250923T000000", "abcdefgh", "20251399"} {
		_, err := ParseDay(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestDayOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	d := DayOf(time.Date(2025, 9, 23, 22, 0, 0, 0, loc))
	assert.Equal(t, "20250924", d.Compact)
	assert.Equal(t, time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), d.Start())
}

func TestFavoriteArticleID(t *testing.T) {
	f := &Favorite{Article: map[string]interface{}{"_id": "abc", "title": "T"}}
	assert.Equal(t, "abc", f.ArticleID())
	assert.Equal(t, "", ArticleIDOf(nil))
	assert.Equal(t, "", ArticleIDOf(map[string]interface{}{"_id": 12}))
}
