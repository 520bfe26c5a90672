// Package taxonomy loads the CNJ movement tree (TPU) and flattens it into a
// lookup index from movement code to top-level group.
package taxonomy

import (
	"slices"

	"github.com/elliotchance/orderedmap/v2"
)

// Node is one entry of the taxonomy tree. A node without children is a leaf
// (a concrete movement code); a node with children is a named category.
// Children keep the key order of the source document.
type Node struct {
	Key      string
	Children *orderedmap.OrderedMap[string, *Node]
}

// NewNode creates a node with no children.
func NewNode(key string) *Node {
	return &Node{
		Key:      key,
		Children: orderedmap.NewOrderedMap[string, *Node](),
	}
}

// AddChild attaches child under its key. A child with the same key replaces the
// previous one in place.
func (n *Node) AddChild(child *Node) {
	n.Children.Set(child.Key, child)
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Children == nil || n.Children.Len() == 0
}

// DuplicatePolicy decides which group wins when a leaf id appears in more
// than one branch.
type DuplicatePolicy string

const (
	// DuplicateLast keeps the group seen last in traversal order.
	DuplicateLast DuplicatePolicy = "last"
	// DuplicateFirst keeps the group seen first in traversal order.
	DuplicateFirst DuplicatePolicy = "first"
)

// Duplicate records a leaf id found under more than one group.
type Duplicate struct {
	ID      int64
	Kept    string
	Dropped string
}

// Index maps leaf movement ids to their group label. It is immutable once
// built and safe for concurrent readers.
type Index struct {
	groups     map[int64]string
	order      []int64
	duplicates []Duplicate
}

// IndexFromMap builds an Index directly from id -> group pairs. A map has no
// source order, so ids are ordered ascending.
func IndexFromMap(m map[int64]string) *Index {
	ix := &Index{
		groups: make(map[int64]string, len(m)),
		order:  make([]int64, 0, len(m)),
	}
	for id, group := range m {
		ix.groups[id] = group
		ix.order = append(ix.order, id)
	}
	slices.Sort(ix.order)
	return ix
}

// Lookup returns the group for a movement id.
func (ix *Index) Lookup(id int64) (string, bool) {
	group, ok := ix.groups[id]
	return group, ok
}

// Len returns the number of leaf ids in the index.
func (ix *Index) Len() int {
	return len(ix.groups)
}

// IDs returns the leaf ids in the order they were first seen.
func (ix *Index) IDs() []int64 {
	return append([]int64(nil), ix.order...)
}

// Groups returns the distinct group labels, ordered by first appearance of
// one of their ids.
func (ix *Index) Groups() []string {
	seen := orderedmap.NewOrderedMap[string, struct{}]()
	for _, id := range ix.order {
		seen.Set(ix.groups[id], struct{}{})
	}
	return seen.Keys()
}

// Duplicates returns every leaf id that appeared under more than one group.
func (ix *Index) Duplicates() []Duplicate {
	return append([]Duplicate(nil), ix.duplicates...)
}
