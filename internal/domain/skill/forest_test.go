package skill

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func buildTree() (prog, backend, golang, design Node) {
	prog = Node{ID: uuid.New(), Name: "Programming", CreatedSeq: 1}
	backend = Node{ID: uuid.New(), Name: "Backend", ParentID: ptr(prog.ID), CreatedSeq: 2}
	golang = Node{ID: uuid.New(), Name: "Go", ParentID: ptr(backend.ID), CreatedSeq: 3}
	design = Node{ID: uuid.New(), Name: "Design", CreatedSeq: 4}
	prog.ChildIDs = []uuid.UUID{backend.ID}
	backend.ChildIDs = []uuid.UUID{golang.ID}
	return
}

func TestForest_RootsAndRoot(t *testing.T) {
	prog, backend, golang, design := buildTree()
	f := NewForest([]Node{design, golang, backend, prog})

	roots := f.Roots()
	if len(roots) != 2 || roots[0].ID != prog.ID || roots[1].ID != design.ID {
		t.Fatalf("unexpected roots order: %+v", roots)
	}

	root, err := f.Root(golang.ID)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root.ID != prog.ID {
		t.Fatalf("expected Programming root, got %s", root.Name)
	}

	if _, err := f.Root(uuid.New()); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestForest_BrokenChain(t *testing.T) {
	orphan := Node{ID: uuid.New(), Name: "Orphan", ParentID: ptr(uuid.New()), CreatedSeq: 1}
	f := NewForest([]Node{orphan})
	if _, err := f.Root(orphan.ID); !errors.Is(err, ErrBrokenChain) {
		t.Fatalf("expected ErrBrokenChain, got %v", err)
	}
}

func TestForest_CycleIsBounded(t *testing.T) {
	a := Node{ID: uuid.New(), Name: "A", CreatedSeq: 1}
	b := Node{ID: uuid.New(), Name: "B", CreatedSeq: 2}
	a.ParentID = ptr(b.ID)
	b.ParentID = ptr(a.ID)
	a.ChildIDs = []uuid.UUID{b.ID}
	b.ChildIDs = []uuid.UUID{a.ID}

	f := NewForest([]Node{a, b})
	if _, err := f.Root(a.ID); !errors.Is(err, ErrCorruptChain) {
		t.Fatalf("expected ErrCorruptChain, got %v", err)
	}
	if err := f.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a cycle")
	}
}

func TestForest_ValidateDetectsInconsistentChildren(t *testing.T) {
	prog, backend, golang, design := buildTree()
	prog.ChildIDs = append(prog.ChildIDs, design.ID)

	f := NewForest([]Node{prog, backend, golang, design})
	if err := f.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a child that does not point back")
	}
}

func TestForest_ValidateDetectsDuplicateNames(t *testing.T) {
	a := Node{ID: uuid.New(), Name: "Backend", CreatedSeq: 1}
	b := Node{ID: uuid.New(), Name: "Backend", CreatedSeq: 2}
	if err := NewForest([]Node{a, b}).Validate(); err == nil {
		t.Fatalf("expected Validate to reject duplicate names")
	}
}
