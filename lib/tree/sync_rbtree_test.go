package tree

import (
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestSyncRBTree_ConcurrentInsertAndRead(t *testing.T) {
	tree := NewSyncRBTree[int]()
	writers, perWriter := 8, 2000

	wg := sync.WaitGroup{}
	wg.Add(writers * 2)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := tree.Insert(w*perWriter + i)
				require.NoError(t, err)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if node, ok := tree.Find(i); ok {
					require.Equal(t, i, node.Key())
				}
				_, _ = tree.Min()
				_ = tree.Len()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(writers*perWriter), tree.Len())
	require.Equal(t, lo.Range(writers*perWriter), tree.Keys())
	require.NoError(t, Validate[int](tree))
}

func TestSyncRBTree_ConcurrentRemove(t *testing.T) {
	tree := NewSyncRBTree[int]()
	total := 10000
	for i := 0; i < total; i++ {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}

	removers := 4
	wg := sync.WaitGroup{}
	wg.Add(removers)
	for r := 0; r < removers; r++ {
		go func(r int) {
			defer wg.Done()
			for i := r; i < total; i += removers * 2 {
				x, err := tree.Remove(i)
				require.NoError(t, err)
				require.Equal(t, i, x.Key())
			}
		}(r)
	}
	wg.Wait()

	require.Equal(t, int64(total/2), tree.Len())
	require.NoError(t, Validate[int](tree))
	tree.Foreach(func(idx int64, color RBColor, key int) bool {
		require.GreaterOrEqual(t, key%(removers*2), removers)
		return true
	})

	_min, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, removers, _min.Key())
	_max, err := tree.RemoveMax()
	require.NoError(t, err)
	require.Equal(t, total-1, _max.Key())
	require.NoError(t, tree.Erase(tree.Root()))
	require.Equal(t, int64(total/2-3), tree.Len())

	tree.Release()
	_, err = tree.Insert(1)
	require.ErrorIs(t, err, ErrRBTreeReleased)
}
