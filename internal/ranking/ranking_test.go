package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SortsDescending(t *testing.T) {
	list, err := Build([]Entry{
		{ID: "1", Score: -0.5},
		{ID: "2", Score: 3.2},
		{ID: "3", Score: 1.1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "3", "1"}, list.IDs())
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i].Score, list[i-1].Score)
	}
}

func TestBuild_TiesKeepInputOrder(t *testing.T) {
	list, err := Build([]Entry{
		{ID: "a", Score: 1.0},
		{ID: "b", Score: 2.0},
		{ID: "c", Score: 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, list.IDs())
}

func TestBuild_DuplicateIDsKeepFirst(t *testing.T) {
	list, err := Build([]Entry{
		{ID: "7157", Score: 2.0},
		{ID: "7157", Score: 5.0},
		{ID: "3845", Score: 1.0},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "7157", list[0].ID)
	assert.Equal(t, 2.0, list[0].Score)
}

func TestBuild_EmptyIsFatal(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)

	var emptyErr *EmptyRankingError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestIDSet(t *testing.T) {
	list, err := Build([]Entry{{ID: "1", Score: 1}, {ID: "2", Score: 2}})
	require.NoError(t, err)

	set := list.IDSet()
	assert.Len(t, set, 2)
	_, ok := set["1"]
	assert.True(t, ok)
}
