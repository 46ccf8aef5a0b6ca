package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestIndexRebuildExpandsQuantizedPoints(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild([]TimeWindow{{
		Start: mustTime(t, "2024-06-03T09:00:00Z"),
		End:   mustTime(t, "2024-06-03T10:00:00Z"),
	}})

	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T09:00:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T09:15:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T09:30:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T09:45:00Z")))

	// Unquantized points and the exclusive end are not bookable.
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T09:10:00Z")))
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T10:00:00Z")))
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T08:45:00Z")))

	assert.Equal(t, 4, ix.Size())
}

func TestIndexRebuildReplacesPriorState(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild([]TimeWindow{{
		Start: mustTime(t, "2024-06-03T09:00:00Z"),
		End:   mustTime(t, "2024-06-03T10:00:00Z"),
	}})
	ix.Rebuild([]TimeWindow{{
		Start: mustTime(t, "2024-06-04T14:00:00Z"),
		End:   mustTime(t, "2024-06-04T14:30:00Z"),
	}})

	// Nothing from the first schedule survives.
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T09:00:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-04T14:00:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-04T14:15:00Z")))
	assert.Equal(t, 2, ix.Size())
}

func TestIndexRebuildEmptySchedule(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild([]TimeWindow{{
		Start: mustTime(t, "2024-06-03T09:00:00Z"),
		End:   mustTime(t, "2024-06-03T10:00:00Z"),
	}})
	ix.Rebuild(nil)

	assert.Equal(t, 0, ix.Size())
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T09:00:00Z")))
}

func TestIndexMultipleWindows(t *testing.T) {
	ix := NewIndex()
	ix.Rebuild([]TimeWindow{
		{Start: mustTime(t, "2024-06-03T09:00:00Z"), End: mustTime(t, "2024-06-03T09:30:00Z")},
		{Start: mustTime(t, "2024-06-03T13:00:00Z"), End: mustTime(t, "2024-06-03T13:45:00Z")},
	})

	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T09:15:00Z")))
	assert.True(t, ix.IsBookable(mustTime(t, "2024-06-03T13:30:00Z")))
	assert.False(t, ix.IsBookable(mustTime(t, "2024-06-03T10:00:00Z")))
	assert.Equal(t, 5, ix.Size())
}
