// Package bintree provides a complete binary tree stored as a flat arena of
// nodes. Parent/child links are indexes into the arena, so the tree owns every
// node content exclusively and releasing the tree releases all of them.
package bintree

import (
	"errors"
	"fmt"
)

// None marks a missing parent or child link.
const None = -1

// ErrDepth is returned for a tree with less than one level.
var ErrDepth = errors.New("bintree: depth must be >= 1")

// Node is one arena record.
type Node[C any] struct {
	Parent int
	Left   int
	Right  int
	Depth  int // 0 at the root
	Lane   int // position among the nodes of the same depth
	C      C
}

// Tree is a complete binary tree with Levels() levels.
type Tree[C any] struct {
	nodes  []Node[C]
	levels int
	leaves []int // arena indexes of the leaves, left to right
}

// New builds a tree with the given number of levels. alloc is called once per
// node, root first, with the node depth and lane; its result becomes the node
// content.
func New[C any](levels int, alloc func(depth, lane int) C) (*Tree[C], error) {
	if levels < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrDepth, levels)
	}
	size := 1<<levels - 1
	t := &Tree[C]{
		nodes:  make([]Node[C], size),
		levels: levels,
		leaves: make([]int, 0, 1<<(levels-1)),
	}
	for i := 0; i < size; i++ {
		depth := 0
		for (1<<(depth+1))-1 <= i {
			depth++
		}
		n := &t.nodes[i]
		n.Depth = depth
		n.Lane = i - (1<<depth - 1)
		n.Parent, n.Left, n.Right = None, None, None
		if i > 0 {
			n.Parent = (i - 1) / 2
		}
		if depth < levels-1 {
			n.Left = 2*i + 1
			n.Right = 2*i + 2
		} else {
			t.leaves = append(t.leaves, i)
		}
		if alloc != nil {
			n.C = alloc(depth, n.Lane)
		}
	}
	return t, nil
}

// Root returns the arena index of the root.
func (t *Tree[C]) Root() int { return 0 }

// Levels returns the number of levels, log2(leaves)+1.
func (t *Tree[C]) Levels() int { return t.levels }

// Len returns the number of nodes in the arena.
func (t *Tree[C]) Len() int { return len(t.nodes) }

// Node returns the arena record at index i.
func (t *Tree[C]) Node(i int) *Node[C] { return &t.nodes[i] }

// Contents returns a pointer to the content owned by node i.
func (t *Tree[C]) Contents(i int) *C { return &t.nodes[i].C }

// IsLeaf reports whether node i has no children.
func (t *Tree[C]) IsLeaf(i int) bool { return t.nodes[i].Left == None }

// Leaves returns the arena indexes of the leaves in left-to-right order.
// The returned slice must not be modified.
func (t *Tree[C]) Leaves() []int { return t.leaves }

// Walk visits every node depth first, a node before its children and the
// left subtree before the right one.
func (t *Tree[C]) Walk(fn func(i int)) {
	t.walk(0, fn)
}

func (t *Tree[C]) walk(i int, fn func(i int)) {
	fn(i)
	if n := &t.nodes[i]; n.Left != None {
		t.walk(n.Left, fn)
		t.walk(n.Right, fn)
	}
}

// Release drops every node content. The tree must not be used afterwards.
func (t *Tree[C]) Release() {
	t.nodes = nil
	t.leaves = nil
}
