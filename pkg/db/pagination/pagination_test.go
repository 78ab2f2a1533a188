package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "abc", CreatedAt: "2025-06-01T00:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", cursor.ID)
	assert.Equal(t, "2025-06-01T00:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ id string }
	extract := func(r *row) string { return r.id }

	info := BuildCursorPageInfo(nil, 2, extract)
	require.NotNil(t, info)
	assert.False(t, info.HasMore)

	// limit+1 rows signal another page; the cursor points at the last
	// row actually returned.
	rows := []*row{{"a"}, {"b"}, {"c"}}
	info = BuildCursorPageInfo(rows, 2, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)

	rows = []*row{{"a"}, {"b"}}
	info = BuildCursorPageInfo(rows, 2, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)
}
