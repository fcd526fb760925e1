package activities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	for in, want := range map[string]Sort{
		"":        SortNewest,
		"newest":  SortNewest,
		"soonest": SortSoonest,
		"nearest": SortNearest,
	} {
		got, err := ParseSort(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSort("closest")
	assert.Error(t, err)
}

func TestSortOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want string
	}{
		{
			name: "newest orders by creation time descending",
			sort: SortNewest,
			want: "created_at DESC",
		},
		{
			name: "soonest orders purely by date, distance breaks ties",
			sort: SortSoonest,
			want: "date ASC, distance_km ASC",
		},
		{
			name: "nearest orders by ascending distance, date breaks ties",
			sort: SortNearest,
			want: "distance_km ASC, date ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sort.orderBy())
		})
	}
}
