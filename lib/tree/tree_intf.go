package tree

import (
	"errors"

	"github.com/benz9527/xrbtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrRBTreeEmpty          = errors.New("[rbtree] empty tree")
	ErrRBTreeKeyNotFound    = errors.New("[rbtree] key not found")
	ErrRBTreeNodeNotFound   = errors.New("[rbtree] node not found")
	ErrRBTreeExportCapacity = errors.New("[rbtree] export buffer capacity is less than nodes")
	ErrRBTreeReleased       = errors.New("[rbtree] tree has been released")
)

// RBNode is a read only view of a tree node. A child or the parent
// which is absent is reported as nil.
// The node stays valid until it is erased or the tree is released.
type RBNode[K infra.OrderedKey] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

type RBTree[K infra.OrderedKey] interface {
	Len() int64
	Root() RBNode[K]
	Compare(i, j K) int64
	Insert(key K) (RBNode[K], error)
	Find(key K) (RBNode[K], bool)
	Min() (RBNode[K], error)
	Max() (RBNode[K], error)
	Pred(node RBNode[K]) RBNode[K]
	Succ(node RBNode[K]) RBNode[K]
	Erase(node RBNode[K]) error
	Remove(key K) (RBNode[K], error)
	RemoveMin() (RBNode[K], error)
	RemoveMax() (RBNode[K], error)
	ExportOrdered(buf []K) (int, error)
	Keys() []K
	Foreach(action func(idx int64, color RBColor, key K) bool)
	Release()
}
