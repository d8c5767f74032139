package tree

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/xlog"
)

var (
	_ RBTree[int] = (*rbTree[int])(nil)
	_ RBNode[int] = (*rbNode[int])(nil)
)

type rbNode[K infra.OrderedKey] struct {
	parent *rbNode[K]
	left   *rbNode[K]
	right  *rbNode[K]
	tree   *rbTree[K] // owner, nil after the node is erased or released
	key    K
	color  RBColor
}

func (node *rbNode[K]) Key() K {
	return node.key
}

func (node *rbNode[K]) Color() RBColor {
	return node.color
}

func (node *rbNode[K]) Left() RBNode[K] {
	if !node.isAttached() || node.tree.isNil(node.left) {
		return nil
	}
	return node.left
}

func (node *rbNode[K]) Right() RBNode[K] {
	if !node.isAttached() || node.tree.isNil(node.right) {
		return nil
	}
	return node.right
}

func (node *rbNode[K]) Parent() RBNode[K] {
	if !node.isAttached() || node.tree.isNil(node.parent) {
		return nil
	}
	return node.parent
}

func (node *rbNode[K]) isAttached() bool {
	return node != nil && node.tree != nil
}

func (node *rbNode[K]) child(dir RBDirection) *rbNode[K] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] root direction without child")
}

func (node *rbNode[K]) detach() {
	node.parent, node.left, node.right = nil, nil, nil
	node.tree = nil
}

// rbTree uses a single black sentinel to represent all the absent
// children and the parent of root. The sentinel's parent is scratch
// space used by the remove rebalance.
type rbTree[K infra.OrderedKey] struct {
	root            *rbNode[K]
	sentinel        *rbNode[K]
	count           int64
	cmp             infra.OrderedKeyComparator[K]
	logger          xlog.XLogger
	stats           *rbTreeStats
	statsName       string
	isDesc          bool
	isDebugValidate bool
	isReleased      bool
}

func (tree *rbTree[K]) isNil(node *rbNode[K]) bool {
	return node == tree.sentinel
}

func (tree *rbTree[K]) Compare(i, j K) int64 {
	return tree.cmp(i, j)
}

func (tree *rbTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K]) Root() RBNode[K] {
	if tree.isNil(tree.root) {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K]) direction(node *rbNode[K]) RBDirection {
	if tree.isNil(node.parent) {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (tree *rbTree[K]) minimum(node *rbNode[K]) *rbNode[K] {
	aux := node
	for ; !tree.isNil(aux.left); aux = aux.left {
	}
	return aux
}

func (tree *rbTree[K]) maximum(node *rbNode[K]) *rbNode[K] {
	aux := node
	for ; !tree.isNil(aux.right); aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (tree *rbTree[K]) pred(x *rbNode[K]) *rbNode[K] {
	if !tree.isNil(x.left) {
		return tree.maximum(x.left)
	}
	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for !tree.isNil(aux) && x == aux.left {
		x, aux = aux, aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (tree *rbTree[K]) succ(x *rbNode[K]) *rbNode[K] {
	if !tree.isNil(x.right) {
		return tree.minimum(x.right)
	}
	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for !tree.isNil(aux) && x == aux.right {
		x, aux = aux, aux.parent
	}
	return aux
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black. The sentinel is black.
// p2. The root is black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   sentinel goes through the same number of black nodes. (black-violation)
// p5. Left subtree keys <= node key <= right subtree keys.
//   Equal keys are placed into the right subtree.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K]) leftRotate(x *rbNode[K]) {
	if tree.isNil(x) || tree.isNil(x.right) {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	x.right = y.left
	if !tree.isNil(y.left) {
		y.left.parent = x
	}

	switch tree.direction(x) {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
	}
	y.parent = x.parent
	y.left = x
	x.parent = y
	tree.stats.IncreaseRotateCount(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K]) rightRotate(x *rbNode[K]) {
	if tree.isNil(x) || tree.isNil(x.left) {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := x.left
	x.left = y.right
	if !tree.isNil(y.right) {
		y.right.parent = x
	}

	switch tree.direction(x) {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
	}
	y.parent = x.parent
	y.right = x
	x.parent = y
	tree.stats.IncreaseRotateCount(Right)
}

// rotate moves x down to the dir side.
func (tree *rbTree[K]) rotate(dir RBDirection, x *rbNode[K]) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown direction to rotate")
	}
}

// Insert never rejects a duplicate key. The duplicate is placed into
// the right subtree of the existed equal key.
func (tree *rbTree[K]) Insert(key K) (RBNode[K], error) {
	if tree.isReleased {
		return nil, ErrRBTreeReleased
	}

	var x, y = tree.root, tree.sentinel
	for !tree.isNil(x) {
		y = x
		if /* less */ tree.cmp(key, x.key) < 0 {
			x = x.left
		} else /* greater or equal */ {
			x = x.right
		}
	}

	z := &rbNode[K]{
		key:    key,
		color:  Red,
		parent: y,
		left:   tree.sentinel,
		right:  tree.sentinel,
		tree:   tree,
	}
	if tree.isNil(y) {
		tree.root = z
	} else if tree.cmp(key, y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}

	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	tree.stats.IncreaseInsertCount()
	tree.debugValidate("insert")
	return z, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or sentinel).

The loop runs while the parent P is red, so P is not the root and
the grandpa G exists and is black.

im1: Both the parent P and the uncle U are red.
Repaint P and U into black, G into red.
G may be red-violation now, recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The uncle U is black and X is opposite direction to P.
Rotate P to opposite direction, then X and P exchange their roles.
Must enter im3 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The uncle U is black and X is the same direction as P.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

Finally, the root is repainted into black.
*/
func (tree *rbTree[K]) insertRebalance(x *rbNode[K]) {
	for x.parent.color == Red {
		p := x.parent
		gp := p.parent
		dir := tree.direction(p)
		uncle := gp.child(-dir)

		if /* im1 */ uncle.color == Red {
			p.color = Black
			uncle.color = Black
			gp.color = Red
			x = gp
			tree.stats.IncreaseFixupCount(insertFixup, 1)
			continue
		}

		if /* im2 */ x == p.child(-dir) {
			x = p
			tree.rotate(dir, x)
			p = x.parent
			tree.stats.IncreaseFixupCount(insertFixup, 2)
		}

		/* im3 */
		p.color = Black
		gp.color = Red
		tree.rotate(-dir, gp)
		tree.stats.IncreaseFixupCount(insertFixup, 3)
	}
	tree.root.color = Black
}

func (tree *rbTree[K]) Find(key K) (RBNode[K], bool) {
	if x := tree.search(key); x != nil {
		return x, true
	}
	return nil, false
}

func (tree *rbTree[K]) search(key K) *rbNode[K] {
	for aux := tree.root; !tree.isNil(aux); {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K]) Min() (RBNode[K], error) {
	if tree.Len() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	return tree.minimum(tree.root), nil
}

func (tree *rbTree[K]) Max() (RBNode[K], error) {
	if tree.Len() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	return tree.maximum(tree.root), nil
}

func (tree *rbTree[K]) Pred(node RBNode[K]) RBNode[K] {
	x, ok := tree.owned(node)
	if !ok {
		return nil
	}
	if p := tree.pred(x); !tree.isNil(p) {
		return p
	}
	return nil
}

func (tree *rbTree[K]) Succ(node RBNode[K]) RBNode[K] {
	x, ok := tree.owned(node)
	if !ok {
		return nil
	}
	if s := tree.succ(x); !tree.isNil(s) {
		return s
	}
	return nil
}

// owned returns the node if it is still linked into the current tree.
func (tree *rbTree[K]) owned(node RBNode[K]) (*rbNode[K], bool) {
	x, ok := node.(*rbNode[K])
	if !ok || x == nil || x.tree != tree {
		return nil, false
	}
	return x, true
}

// transplant replaces the subtree rooted at u by the subtree rooted at v.
// v may be the sentinel, its parent is updated anyway.
func (tree *rbTree[K]) transplant(u, v *rbNode[K]) {
	switch tree.direction(u) {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
	}
	v.parent = u.parent
}

// Erase removes a node returned by the tree. A nil, stale or foreign
// node is a no-op and reported by ErrRBTreeNodeNotFound.
func (tree *rbTree[K]) Erase(node RBNode[K]) error {
	z, ok := tree.owned(node)
	if !ok {
		return ErrRBTreeNodeNotFound
	}
	tree.removeNode(z)
	return nil
}

/*
r1: Z has no left child. Replace Z by its right child X (maybe the sentinel).

r2: Z has no right child. Replace Z by its left child X.

r3: Z has both children. The succ Y (minimum of Z's right subtree) takes
over Z's position and color. The color removed from the tree is Y's
original color and X is Y's right child.

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   replace(Z)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  Y  ..                X  ..
	   \
	    X

If the removed color is black, the paths through X lost a black node.
(black-violation) Rebalance from X.
*/
func (tree *rbTree[K]) removeNode(z *rbNode[K]) {
	var x *rbNode[K]
	y, removedColor := z, z.color
	if /* r1 */ tree.isNil(z.left) {
		x = z.right
		tree.transplant(z, z.right)
	} else if /* r2 */ tree.isNil(z.right) {
		x = z.left
		tree.transplant(z, z.left)
	} else /* r3 */ {
		y = tree.minimum(z.right)
		removedColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			tree.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		tree.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	z.detach()
	atomic.AddInt64(&tree.count, -1)
	if removedColor == Black {
		tree.removeRebalance(x)
	}
	tree.sentinel.parent = tree.sentinel
	tree.stats.IncreaseEraseCount()
	tree.debugValidate("erase")
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).
{X} is either a RED node or a BLACK node.

X carries an extra black. S is X's sibling.
Sc is the same direction to X and it is S's child node.
Sd is the opposite direction to X and it is S's child node.

rm1: The sibling S is red, so the parent P, nephew node Sc and Sd
must be black. Repaint S into black, P into red, rotate P to X's side.
X's new sibling is black, enter rm2-rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: The sibling S, nephew node Sc and Sd are black.
Repaint S into red, the extra black moves up to P.
Recursive to handle P. (A red P ends the loop and is painted black.)

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: The sibling S is black, nephew node Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S to opposite side of X.
Enter into rm4 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: The sibling S is black and nephew node Sd is red.
S takes P's color, P and Sd are repainted into black, rotate P to X's
side. The extra black is discharged.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K]) removeRebalance(x *rbNode[K]) {
	for x != tree.root && x.color == Black {
		dir := tree.direction(x)
		p := x.parent
		sibling := p.child(-dir)

		if /* rm1 */ sibling.color == Red {
			sibling.color = Black
			p.color = Red
			tree.rotate(dir, p)
			sibling = p.child(-dir)
			tree.stats.IncreaseFixupCount(eraseFixup, 1)
		}

		sc, sd := sibling.child(dir), sibling.child(-dir)
		if /* rm2 */ sc.color == Black && sd.color == Black {
			sibling.color = Red
			x = p
			tree.stats.IncreaseFixupCount(eraseFixup, 2)
			continue
		}

		if /* rm3 */ sd.color == Black {
			sc.color = Black
			sibling.color = Red
			tree.rotate(-dir, sibling)
			sibling = p.child(-dir)
			sd = sibling.child(-dir)
			tree.stats.IncreaseFixupCount(eraseFixup, 3)
		}

		/* rm4 */
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		tree.rotate(dir, p)
		x = tree.root
		tree.stats.IncreaseFixupCount(eraseFixup, 4)
	}
	x.color = Black
}

func (tree *rbTree[K]) Remove(key K) (RBNode[K], error) {
	if tree.Len() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	z := tree.search(key)
	if z == nil {
		return nil, ErrRBTreeKeyNotFound
	}
	tree.removeNode(z)
	return z, nil
}

func (tree *rbTree[K]) RemoveMin() (RBNode[K], error) {
	if tree.Len() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	z := tree.minimum(tree.root)
	tree.removeNode(z)
	return z, nil
}

func (tree *rbTree[K]) RemoveMax() (RBNode[K], error) {
	if tree.Len() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	z := tree.maximum(tree.root)
	tree.removeNode(z)
	return z, nil
}

// ExportOrdered writes all keys in sorted order into buf.
// Nothing is written if the buf is shorter than the tree.
func (tree *rbTree[K]) ExportOrdered(buf []K) (int, error) {
	size := tree.Len()
	if int64(len(buf)) < size {
		return 0, infra.WrapErrorStackWithMessage(
			ErrRBTreeExportCapacity,
			fmt.Sprintf("[rbtree] export into %d slots, %d nodes", len(buf), size),
		)
	}
	n := 0
	tree.Foreach(func(idx int64, color RBColor, key K) bool {
		buf[idx] = key
		n++
		return true
	})
	return n, nil
}

func (tree *rbTree[K]) Keys() []K {
	keys := make([]K, tree.Len())
	n, _ := tree.ExportOrdered(keys)
	return keys[:n]
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	size := tree.Len()
	aux := tree.root
	if size <= 0 || tree.isNil(aux) {
		return
	}

	stack := make([]*rbNode[K], 0, 64)
	defer func() {
		clear(stack)
	}()

	idx := int64(0)
	for len(stack) > 0 || !tree.isNil(aux) {
		for ; !tree.isNil(aux); aux = aux.left {
			stack = append(stack, aux)
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !action(idx, aux.color, aux.key) {
			return
		}
		idx++
		aux = aux.right
	}
}

// Release detaches all nodes in post-order, then drops the sentinel.
// The tree is no longer able to insert.
func (tree *rbTree[K]) Release() {
	if tree.isReleased {
		return
	}

	released := int64(0)
	stack := make([]*rbNode[K], 0, 64)
	var aux, last = tree.root, tree.sentinel
	for len(stack) > 0 || !tree.isNil(aux) {
		if !tree.isNil(aux) {
			stack = append(stack, aux)
			aux = aux.left
			continue
		}
		top := stack[len(stack)-1]
		if !tree.isNil(top.right) && top.right != last {
			aux = top.right
			continue
		}
		stack = stack[:len(stack)-1]
		top.detach()
		last = top
		released++
	}
	clear(stack)

	atomic.AddInt64(&tree.count, -released)
	tree.stats.RecordNodeCount(-released)
	tree.sentinel.detach()
	tree.root, tree.sentinel = nil, nil
	tree.isReleased = true
	tree.logger.Debug("[rbtree] released", zap.Int64("nodes", released))
}

func (tree *rbTree[K]) debugValidate(op string) {
	if !tree.isDebugValidate {
		return
	}
	if err := Validate[K](tree); err != nil {
		tree.logger.ErrorStack(
			infra.WrapErrorStackWithMessage(err, "[rbtree] "+op+" violation"),
			"rbtree properties violated",
			zap.String("op", op),
			zap.Int64("len", tree.Len()),
		)
	}
}

type RBTreeOpt[K infra.OrderedKey] func(*rbTree[K])

func WithRBTreeDesc[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isDesc = true
	}
}

// WithRBTreeComparator takes precedence over WithRBTreeDesc.
func WithRBTreeComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.cmp = cmp
	}
}

func WithRBTreeLogger[K infra.OrderedKey](logger xlog.XLogger) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.logger = logger
	}
}

// WithRBTreeDebugValidate validates all properties after each
// insert and erase, and logs the violation. It is O(n) per mutation.
func WithRBTreeDebugValidate[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isDebugValidate = true
	}
}

func WithRBTreeStats[K infra.OrderedKey](name string) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.statsName = name
	}
}

func newRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) *rbTree[K] {
	sentinel := &rbNode[K]{
		color: Black,
	}
	sentinel.parent, sentinel.left, sentinel.right = sentinel, sentinel, sentinel
	tree := &rbTree[K]{
		root:     sentinel,
		sentinel: sentinel,
	}
	sentinel.tree = tree

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}

	if tree.cmp == nil {
		if tree.isDesc {
			tree.cmp = infra.DescKeyComparator[K]
		} else {
			tree.cmp = infra.AscKeyComparator[K]
		}
	}
	if tree.logger == nil {
		tree.logger = xlog.NewNopXLogger()
	}
	if len(tree.statsName) > 0 {
		tree.stats = newRBTreeStats(tree.statsName)
	}
	return tree
}

func NewRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	return newRBTree[K](opts...)
}
