package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_FIFOOrder(t *testing.T) {
	var q Queue[int]
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		assert.True(t, ok, "expected item, queue empty")
		assert.Equal(t, want, got)
	}

	_, ok := q.Pop()
	assert.False(t, ok, "expected empty queue")
}

func TestQueue_Len(t *testing.T) {
	var q Queue[string]
	assert.Equal(t, 0, q.Len())
	q.Push("a")
	q.Push("b")
	assert.Equal(t, 2, q.Len())
}

func TestQueue_DrainAll(t *testing.T) {
	var q Queue[int]
	q.Push(1)
	q.Push(2)

	drained := q.DrainAll()
	assert.Equal(t, []int{1, 2}, drained)
	assert.Equal(t, 0, q.Len())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "Idle"},
		{Writing, "Writing"},
		{Awaiting, "Awaiting"},
		{State(99), "Unknown(99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
	}
}
