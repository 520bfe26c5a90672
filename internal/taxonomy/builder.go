package taxonomy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dbsmedya/movenrich/internal/types"
)

// Builder flattens a taxonomy tree into an Index.
type Builder struct {
	root   *Node
	policy DuplicatePolicy
}

// Option configures a Builder.
type Option func(*Builder)

// WithDuplicatePolicy selects which group wins for leaf ids that appear in
// more than one branch. An empty policy keeps the default (last).
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(b *Builder) {
		if p != "" {
			b.policy = p
		}
	}
}

// NewBuilder creates a builder for the given tree root.
func NewBuilder(root *Node, opts ...Option) *Builder {
	b := &Builder{root: root, policy: DuplicateLast}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// frame is one pending node of the traversal together with the group it
// inherits from its ancestors.
type frame struct {
	node  *Node
	group string
}

// Build walks the tree depth-first in source order. Each leaf is labeled with
// the first named ancestor below the root, or types.OtherMovement when the
// leaf hangs directly off the root.
func (b *Builder) Build() (*Index, error) {
	if b.root == nil {
		return nil, &TaxonomyLoadError{Err: fmt.Errorf("taxonomy root is nil")}
	}
	if b.policy != DuplicateLast && b.policy != DuplicateFirst {
		return nil, fmt.Errorf("unknown duplicate policy %q (must be %q or %q)", b.policy, DuplicateLast, DuplicateFirst)
	}

	ix := &Index{groups: make(map[int64]string)}

	stack := pushChildren(nil, b.root, "")
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.node.IsLeaf() {
			group := f.group
			if group == "" {
				group = f.node.Key
			}
			stack = pushChildren(stack, f.node, group)
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(f.node.Key), 10, 64)
		if err != nil {
			return nil, &TaxonomyLoadError{Err: fmt.Errorf("leaf key %q is not a movement id", f.node.Key)}
		}

		group := f.group
		if group == "" {
			group = types.OtherMovement
		}
		ix.add(id, group, b.policy)
	}

	return ix, nil
}

// pushChildren appends the children of n in reverse so the first child is
// popped first.
func pushChildren(stack []frame, n *Node, group string) []frame {
	for el := n.Children.Back(); el != nil; el = el.Prev() {
		stack = append(stack, frame{node: el.Value, group: group})
	}
	return stack
}

func (ix *Index) add(id int64, group string, policy DuplicatePolicy) {
	prev, exists := ix.groups[id]
	if !exists {
		ix.groups[id] = group
		ix.order = append(ix.order, id)
		return
	}

	if policy == DuplicateFirst {
		ix.duplicates = append(ix.duplicates, Duplicate{ID: id, Kept: prev, Dropped: group})
		return
	}
	ix.groups[id] = group
	ix.duplicates = append(ix.duplicates, Duplicate{ID: id, Kept: group, Dropped: prev})
}

// BuildFromFile loads the taxonomy at path and flattens it. The raw tree is
// discarded once the index is built.
func BuildFromFile(path string, opts ...Option) (*Index, error) {
	root, err := Load(path)
	if err != nil {
		return nil, err
	}
	ix, err := NewBuilder(root, opts...).Build()
	if err != nil {
		if loadErr, ok := err.(*TaxonomyLoadError); ok {
			loadErr.Path = path
		}
		return nil, err
	}
	return ix, nil
}
