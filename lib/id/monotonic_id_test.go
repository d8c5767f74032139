package id

import (
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)

	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		num := gen.Number()
		require.Greater(t, num, prev)
		prev = num
	}
	str := gen.Str()
	require.Equal(t, strconv.FormatUint(prev+1, 10), str)
}

func TestMonotonicNonZeroID_Overflow(t *testing.T) {
	src := &monotonicNonZeroID{val: math.MaxUint64 - 1}
	require.Equal(t, uint64(math.MaxUint64), src.next())
	require.Equal(t, uint64(1), src.next())
}

func TestMonotonicNonZeroID_Concurrent(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)

	const workers, perWorker = 8, 1000
	results := make(chan uint64, workers*perWorker)
	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- gen.Number()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]struct{}, workers*perWorker)
	for num := range results {
		_, dup := seen[num]
		require.False(t, dup)
		seen[num] = struct{}{}
	}
	require.Len(t, seen, workers*perWorker)
}
