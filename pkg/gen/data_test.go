package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopySlice(t *testing.T) {
	a := []int{1, 2, 3}
	b := CopySlice(a)
	require.Equal(t, a, b)
	b[0] = 99
	require.Equal(t, []int{1, 2, 3}, a)

	require.Empty(t, CopySlice([]int{}))
}

func TestDeleteFromSliceUnordered(t *testing.T) {
	a := []int{1, 2, 3, 4}
	a = DeleteFromSliceUnordered(a, 1)
	require.ElementsMatch(t, []int{1, 3, 4}, a)

	a = []int{5}
	a = DeleteFromSliceUnordered(a, 0)
	require.Empty(t, a)
}

func TestDrainChannelIntoSlice(t *testing.T) {
	ch := make(chan int, 8)
	ch <- 1
	ch <- 2
	ch <- 3
	require.Equal(t, []int{1, 2, 3}, DrainChannelIntoSlice(ch))
	require.Empty(t, DrainChannelIntoSlice(ch))
}
