package skill

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrUnknownNode  = errors.New("unknown skill node")
	ErrBrokenChain  = errors.New("broken parent chain")
	ErrCorruptChain = errors.New("parent chain exceeds node count")
)

// Forest is a read-only index over a snapshot of the whole catalog.
type Forest struct {
	byID  map[uuid.UUID]Node
	order []uuid.UUID
}

func NewForest(nodes []Node) *Forest {
	f := &Forest{
		byID:  make(map[uuid.UUID]Node, len(nodes)),
		order: make([]uuid.UUID, 0, len(nodes)),
	}
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedSeq < sorted[j].CreatedSeq })
	for _, n := range sorted {
		f.byID[n.ID] = n
		f.order = append(f.order, n.ID)
	}
	return f
}

func (f *Forest) Len() int {
	return len(f.order)
}

func (f *Forest) Get(id uuid.UUID) (Node, bool) {
	n, ok := f.byID[id]
	return n, ok
}

// Roots returns parentless nodes in creation order.
func (f *Forest) Roots() []Node {
	out := make([]Node, 0)
	for _, id := range f.order {
		if n := f.byID[id]; n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

// Root walks parent links up from id. The walk is bounded by the node count
// so a corrupted chain cannot loop forever.
func (f *Forest) Root(id uuid.UUID) (Node, error) {
	cur, ok := f.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	for steps := 0; steps <= len(f.order); steps++ {
		if cur.ParentID == nil {
			return cur, nil
		}
		parent, ok := f.byID[*cur.ParentID]
		if !ok {
			return Node{}, fmt.Errorf("%w: %s has missing parent %s", ErrBrokenChain, cur.ID, *cur.ParentID)
		}
		cur = parent
	}
	return Node{}, fmt.Errorf("%w: starting at %s", ErrCorruptChain, id)
}

// Validate checks the structural invariants: parents exist, no cycles,
// ChildIDs mirror ParentID exactly, names are unique.
func (f *Forest) Validate() error {
	names := make(map[string]uuid.UUID, len(f.order))
	childCount := make(map[uuid.UUID]int, len(f.order))

	for _, id := range f.order {
		n := f.byID[id]
		if other, dup := names[n.Name]; dup {
			return fmt.Errorf("duplicate name %q on %s and %s", n.Name, other, n.ID)
		}
		names[n.Name] = n.ID

		if n.ParentID != nil {
			parent, ok := f.byID[*n.ParentID]
			if !ok {
				return fmt.Errorf("%w: %s has missing parent %s", ErrBrokenChain, n.ID, *n.ParentID)
			}
			if !containsID(parent.ChildIDs, n.ID) {
				return fmt.Errorf("parent %s does not list child %s", parent.ID, n.ID)
			}
			childCount[parent.ID]++
		}
		if _, err := f.Root(n.ID); err != nil {
			return err
		}
	}

	for _, id := range f.order {
		n := f.byID[id]
		if len(n.ChildIDs) != childCount[n.ID] {
			return fmt.Errorf("node %s lists %d children but %d point to it", n.ID, len(n.ChildIDs), childCount[n.ID])
		}
		for _, c := range n.ChildIDs {
			child, ok := f.byID[c]
			if !ok || child.ParentID == nil || *child.ParentID != n.ID {
				return fmt.Errorf("node %s lists child %s that does not point back", n.ID, c)
			}
		}
	}
	return nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
