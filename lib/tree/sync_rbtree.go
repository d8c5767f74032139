package tree

import (
	"sync"

	"github.com/benz9527/xrbtree/lib/infra"
)

var _ RBTree[int] = (*syncRBTree[int])(nil)

// syncRBTree serializes all mutations by the exclusive lock and
// allows concurrent reads by the shared lock.
// The returned nodes are only valid until the next mutation.
type syncRBTree[K infra.OrderedKey] struct {
	lock sync.RWMutex
	tree *rbTree[K]
}

func (t *syncRBTree[K]) Len() int64 {
	return t.tree.Len()
}

func (t *syncRBTree[K]) Root() RBNode[K] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Root()
}

func (t *syncRBTree[K]) Compare(i, j K) int64 {
	return t.tree.Compare(i, j)
}

func (t *syncRBTree[K]) Insert(key K) (RBNode[K], error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.Insert(key)
}

func (t *syncRBTree[K]) Find(key K) (RBNode[K], bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Find(key)
}

func (t *syncRBTree[K]) Min() (RBNode[K], error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Min()
}

func (t *syncRBTree[K]) Max() (RBNode[K], error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Max()
}

func (t *syncRBTree[K]) Pred(node RBNode[K]) RBNode[K] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Pred(node)
}

func (t *syncRBTree[K]) Succ(node RBNode[K]) RBNode[K] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Succ(node)
}

func (t *syncRBTree[K]) Erase(node RBNode[K]) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.Erase(node)
}

func (t *syncRBTree[K]) Remove(key K) (RBNode[K], error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.Remove(key)
}

func (t *syncRBTree[K]) RemoveMin() (RBNode[K], error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.RemoveMin()
}

func (t *syncRBTree[K]) RemoveMax() (RBNode[K], error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.RemoveMax()
}

func (t *syncRBTree[K]) ExportOrdered(buf []K) (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.ExportOrdered(buf)
}

func (t *syncRBTree[K]) Keys() []K {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Keys()
}

// Foreach holds the shared lock during the whole traversal.
// The action must not mutate the tree, otherwise it is deadlocked.
func (t *syncRBTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	t.tree.Foreach(action)
}

func (t *syncRBTree[K]) Release() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.tree.Release()
}

func NewSyncRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	return &syncRBTree[K]{
		tree: newRBTree[K](opts...),
	}
}
