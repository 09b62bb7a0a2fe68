package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueIncrementsByOne(t *testing.T) {
	q := NewQueue()
	assert.Equal(t, 0, q.LastIssued())

	for want := 1; want <= 5; want++ {
		assert.Equal(t, want, q.Issue())
	}
	assert.Equal(t, 5, q.LastIssued())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, q.Waiting())
}

func TestServeNextIsFIFO(t *testing.T) {
	tests := []struct {
		issued int
		served int
	}{
		{1, 1},
		{3, 1},
		{5, 5},
		{10, 7},
	}

	for _, tt := range tests {
		q := NewQueue()
		var issued []int
		for i := 0; i < tt.issued; i++ {
			issued = append(issued, q.Issue())
		}
		for k := 0; k < tt.served; k++ {
			got, err := q.ServeNext()
			require.NoError(t, err)
			assert.Equal(t, issued[k], got)
		}
		assert.Equal(t, tt.issued-tt.served, q.Len())
	}
}

func TestServeNextOnEmptyQueue(t *testing.T) {
	q := NewQueue()
	_, err := q.ServeNext()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	q.Issue()
	_, err = q.ServeNext()
	require.NoError(t, err)

	_, err = q.ServeNext()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestCounterKeepsGrowingAfterDrain(t *testing.T) {
	q := NewQueue()
	q.Issue()
	q.Issue()
	_, _ = q.ServeNext()
	_, _ = q.ServeNext()

	assert.Equal(t, 3, q.Issue())
	next, err := q.ServeNext()
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestWaitingReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.Issue()
	snapshot := q.Waiting()
	snapshot[0] = 99

	next, err := q.ServeNext()
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestPosition(t *testing.T) {
	q := NewQueue()
	q.Issue()
	q.Issue()
	q.Issue()

	pos, err := q.Position(3)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	_, _ = q.ServeNext()
	pos, err = q.Position(3)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	_, err = q.Position(1)
	assert.ErrorIs(t, err, ErrTicketNotWaiting)
	_, err = q.Position(42)
	assert.ErrorIs(t, err, ErrTicketNotWaiting)
}
