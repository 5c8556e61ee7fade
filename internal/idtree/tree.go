package idtree

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrNoRoot is the panic value raised when no parentless node exists.
	ErrNoRoot = errors.New("idtree: no root node")

	// ErrMultipleRoots is the panic value for a tree that was expected to
	// be connected but has more than one parentless node.
	ErrMultipleRoots = errors.New("idtree: more than one root node")
)

// NodeID is an index into the arena that created it. Ids are dense,
// start at 0 and are never reused.
type NodeID int

// None marks the absence of a node, e.g. the parent of the root.
const None NodeID = -1

func (id NodeID) String() string {
	if id == None {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d)", int(id))
}

// Node is one arena slot: the caller's payload plus its links.
type Node[T any] struct {
	ID   NodeID
	Data T

	parent   NodeID
	children []NodeID
}

// Parent returns the parent id and false for the root or a detached node.
func (n *Node[T]) Parent() (NodeID, bool) {
	return n.parent, n.parent != None
}

// Children returns the child ids in insertion order. The slice is owned by
// the node and must not be modified.
func (n *Node[T]) Children() []NodeID {
	return n.children
}

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool { return n.parent == None }

// Tree is the sole owner of its nodes.
type Tree[T any] struct {
	nodes []Node[T]
}

// New returns an empty arena.
func New[T any]() *Tree[T] {
	return &Tree[T]{}
}

// CreateNode appends a detached node holding data and returns its id.
func (t *Tree[T]) CreateNode(data T) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node[T]{ID: id, Data: data, parent: None})
	return id
}

// SetParentChild appends child to parent's children and records parent as
// the child's parent. The caller must not introduce a cycle or attach the
// same child twice; neither is checked.
func (t *Tree[T]) SetParentChild(parent, child NodeID) {
	t.check(parent)
	t.check(child)
	t.nodes[child].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// Get returns the node for id. It panics on an id this tree did not issue.
func (t *Tree[T]) Get(id NodeID) *Node[T] {
	t.check(id)
	return &t.nodes[id]
}

// Len is the number of nodes ever created.
func (t *Tree[T]) Len() int { return len(t.nodes) }

// All yields every node in creation order, not tree order.
func (t *Tree[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for i := range t.nodes {
			if !yield(&t.nodes[i]) {
				return
			}
		}
	}
}

// Ancestors yields id itself, then its parent, and so on up to and
// including the root.
func (t *Tree[T]) Ancestors(id NodeID) iter.Seq[*Node[T]] {
	t.check(id)
	return func(yield func(*Node[T]) bool) {
		for cur := id; cur != None; {
			n := &t.nodes[cur]
			if !yield(n) {
				return
			}
			cur = n.parent
		}
	}
}

// Descendants yields id and every node below it depth-first. A node is
// always produced before any of its descendants, and siblings come out in
// insertion order. The walk uses an explicit stack, so depth is bounded by
// memory rather than by the goroutine stack.
func (t *Tree[T]) Descendants(id NodeID) iter.Seq[*Node[T]] {
	t.check(id)
	return func(yield func(*Node[T]) bool) {
		stack := []NodeID{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := &t.nodes[cur]
			if !yield(n) {
				return
			}
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, n.children[i])
			}
		}
	}
}

// Root returns the first parentless node in creation order. It panics with
// ErrNoRoot when there is none.
func (t *Tree[T]) Root() NodeID {
	for i := range t.nodes {
		if t.nodes[i].parent == None {
			return t.nodes[i].ID
		}
	}
	panic(ErrNoRoot)
}

// Roots returns every parentless node in creation order. A connected tree
// has exactly one.
func (t *Tree[T]) Roots() []NodeID {
	var ids []NodeID
	for i := range t.nodes {
		if t.nodes[i].parent == None {
			ids = append(ids, t.nodes[i].ID)
		}
	}
	return ids
}

// Depth is the number of edges between id and the root.
func (t *Tree[T]) Depth(id NodeID) int {
	d := -1
	for range t.Ancestors(id) {
		d++
	}
	return d
}

// PathFromRoot returns the ids from the root down to id, inclusive.
func (t *Tree[T]) PathFromRoot(id NodeID) []NodeID {
	var ids []NodeID
	for n := range t.Ancestors(id) {
		ids = append(ids, n.ID)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

func (t *Tree[T]) check(id NodeID) {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("idtree: %v out of range (len %d)", id, len(t.nodes)))
	}
}
