package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id string
	at time.Time
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	token, err := EncodeCursor(Cursor{ID: "abc", CreatedAt: at.Format(time.RFC3339Nano)})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	got, err := cursor.CursorTime()
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestBuildCursorPageInfo(t *testing.T) {
	now := time.Now().UTC()
	rows := []*row{{"1", now}, {"2", now}, {"3", now}}
	extract := func(r *row) Cursor { return Cursor{ID: r.id, CreatedAt: r.at.Format(time.RFC3339Nano)} }

	page, info := BuildCursorPageInfo(rows, 2, extract)
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)
	cursor, err := DecodeCursor(info.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, "2", cursor.ID)

	page, info = BuildCursorPageInfo(rows, 5, extract)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestNormalizeSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NormalizeSize(0))
	assert.Equal(t, MaxPageSize, NormalizeSize(1000))
	assert.Equal(t, 10, NormalizeSize(10))
}
