package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

var (
	ErrRBTreeRootViolation  = errors.New("rbtree root violation")
	ErrRBTreeRedViolation   = errors.New("rbtree red violation")
	ErrRBTreeBlackViolation = errors.New("rbtree black violation")
	ErrRBTreeOrderViolation = errors.New("rbtree order violation")
)

func isBlack[K infra.OrderedKey](node RBNode[K]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K infra.OrderedKey](target, to RBNode[K]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// inorder visits all nodes by the public node view, so the validation
// does not depend on the engine internals.
func inorder[K infra.OrderedKey](tree RBTree[K], action func(node RBNode[K]) error) error {
	stack := make([]RBNode[K], 0, 64)
	defer func() {
		clear(stack)
	}()

	for aux := tree.Root(); len(stack) > 0 || aux != nil; {
		for ; aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := action(aux); err != nil {
			return err
		}
		aux = aux.Right()
	}
	return nil
}

func RootViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w: nil root with %d nodes", ErrRBTreeRootViolation, tree.Len())
		}
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root %v has parent", ErrRBTreeRootViolation, root.Key())
	}
	if root.Color() != Black {
		return fmt.Errorf("%w: root %v is %s", ErrRBTreeRootViolation, root.Key(), root.Color())
	}
	return nil
}

// Inorder traversal to validate no red node has a red child.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	return inorder[K](tree, func(node RBNode[K]) error {
		if isRed[K](node) && (isRed[K](node.Left()) || isRed[K](node.Right())) {
			return fmt.Errorf("%w: red node %v has a red child", ErrRBTreeRedViolation, node.Key())
		}
		return nil
	})
}

// BFS traversal to load all nodes with at least one absent child.
func bfsLeaves[K infra.OrderedKey](tree RBTree[K]) []RBNode[K] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[K], 0, tree.Len()>>1+1)
	queue := make([]RBNode[K], 0, tree.Len()>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* sentinel children, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	root := tree.Root()
	blackDepth := blackDepthTo[K](leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K](leaves[i], root); depth != blackDepth {
			return fmt.Errorf("%w: leaf %v black depth %d, leaf %v black depth %d",
				ErrRBTreeBlackViolation, leaves[0].Key(), blackDepth, leaves[i].Key(), depth)
		}
	}
	return nil
}

// OrderViolationValidate checks the binary search order, the parent
// back references and the number of reachable nodes.
func OrderViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	var (
		prev  RBNode[K]
		count int64
	)
	err := inorder[K](tree, func(node RBNode[K]) error {
		count++
		if prev != nil && tree.Compare(prev.Key(), node.Key()) > 0 {
			return fmt.Errorf("%w: %v is placed before %v", ErrRBTreeOrderViolation, prev.Key(), node.Key())
		}
		if l := node.Left(); l != nil && l.Parent() != node {
			return fmt.Errorf("%w: left child %v of %v with wrong parent", ErrRBTreeOrderViolation, l.Key(), node.Key())
		}
		if r := node.Right(); r != nil && r.Parent() != node {
			return fmt.Errorf("%w: right child %v of %v with wrong parent", ErrRBTreeOrderViolation, r.Key(), node.Key())
		}
		prev = node
		return nil
	})
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: %d reachable nodes, len %d", ErrRBTreeOrderViolation, count, tree.Len())
	}
	return nil
}

// Validate runs all the validations and combines their errors.
func Validate[K infra.OrderedKey](tree RBTree[K]) error {
	return multierr.Combine(
		RootViolationValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
		OrderViolationValidate[K](tree),
	)
}
