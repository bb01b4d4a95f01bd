package ir_test

import (
	"errors"
	"testing"

	"rhine/internal/ir"
)

func newBlocks(t *testing.T, g *ir.Graph, n int) []ir.Block {
	t.Helper()
	out := make([]ir.Block, n)
	for i := range out {
		b, err := g.CreateEmptyBlock()
		if err != nil {
			t.Fatalf("CreateEmptyBlock: %v", err)
		}
		out[i] = b
	}
	return out
}

// mustIndex unwraps a SuccIndex/PredIndex result:
//
//	got := mustIndex(t)(b.SuccIndex(target))
func mustIndex(t *testing.T) func(int, error) int {
	t.Helper()
	return func(idx int, err error) int {
		t.Helper()
		if err != nil {
			t.Fatalf("index lookup: %v", err)
		}
		return idx
	}
}

func TestAddSuccSymmetry(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 2)
	b1, b2 := bs[0], bs[1]

	if err := b1.AddSucc(b2, false); err != nil {
		t.Fatalf("AddSucc: %v", err)
	}
	if got := mustIndex(t)(b2.PredIndex(b1)); got != 0 {
		t.Errorf("b2.PredIndex(b1) = %d, want 0", got)
	}
	if got := mustIndex(t)(b1.SuccIndex(b2)); got != 0 {
		t.Errorf("b1.SuccIndex(b2) = %d, want 0", got)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddSuccRejectsParallelEdge(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 2)

	if err := bs[0].AddSucc(bs[1], false); err != nil {
		t.Fatalf("first AddSucc: %v", err)
	}
	err := bs[0].AddSucc(bs[1], false)
	if !errors.Is(err, ir.ErrDuplicateEdgeDisallowed) {
		t.Fatalf("second AddSucc: got %v, want DuplicateEdgeDisallowed", err)
	}
	if bs[0].NumSuccs() != 1 || bs[1].NumPreds() != 1 {
		t.Errorf("rejected edge changed the graph: succs=%v preds=%v", bs[0].Succs(), bs[1].Preds())
	}
}

func TestAddSuccSplitsParallelEdge(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 2)
	b1, b2 := bs[0], bs[1]

	if err := b1.AddSucc(b2, true); err != nil {
		t.Fatalf("first AddSucc: %v", err)
	}
	if err := b1.AddSucc(b2, true); err != nil {
		t.Fatalf("second AddSucc: %v", err)
	}

	succs := b1.Succs()
	if len(succs) != 2 {
		t.Fatalf("b1 succs = %v, want two", succs)
	}
	split := succs[0]
	if split == b2 || succs[1] != b2 {
		t.Fatalf("b1 succs = %v, want [split %s]", succs, b2)
	}
	if split.ID() != 4 || !split.IsEmpty() {
		t.Errorf("split block = %s (empty=%v), want empty bb4", split, split.IsEmpty())
	}
	if got := split.Succs(); len(got) != 1 || got[0] != b2 {
		t.Errorf("split succs = %v, want [%s]", got, b2)
	}
	if got := split.Preds(); len(got) != 1 || got[0] != b1 {
		t.Errorf("split preds = %v, want [%s]", got, b1)
	}
	if got := mustIndex(t)(b1.SuccIndex(b2)); got != 1 {
		t.Errorf("b1.SuccIndex(b2) = %d, want 1", got)
	}
	if got := mustIndex(t)(b2.PredIndex(b1)); got != 1 {
		t.Errorf("b2.PredIndex(b1) = %d, want 1", got)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// Mixed flags: a plain edge followed by a split request.
func TestAddSuccSplitAfterPlainEdge(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 2)
	b1, b2 := bs[0], bs[1]

	if err := b1.AddSucc(b2, false); err != nil {
		t.Fatal(err)
	}
	if err := b1.AddSucc(b2, true); err != nil {
		t.Fatal(err)
	}
	if got := mustIndex(t)(b2.PredIndex(b1)); got != 1 {
		t.Errorf("PredIndex = %d, want 1", got)
	}
	if got := mustIndex(t)(b1.SuccIndex(b2)); got != 1 {
		t.Errorf("SuccIndex = %d, want 1", got)
	}
}

func TestEdgeIndexErrors(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 3)

	if _, err := bs[0].SuccIndex(bs[2]); !errors.Is(err, ir.ErrEdgeNotFound) {
		t.Errorf("SuccIndex on missing edge: got %v", err)
	}
	if _, err := bs[2].PredIndex(bs[1]); !errors.Is(err, ir.ErrEdgeNotFound) {
		t.Errorf("PredIndex on missing edge: got %v", err)
	}
}

func TestReplaceSucc(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 4)
	a, b, c, d := bs[0], bs[1], bs[2], bs[3]

	for _, s := range []ir.Block{b, c} {
		if err := a.AddSucc(s, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.ReplaceSucc(b, d, false); err != nil {
		t.Fatalf("ReplaceSucc: %v", err)
	}
	if got := a.Succs(); len(got) != 2 || got[0] != d || got[1] != c {
		t.Errorf("a succs = %v, want [%s %s]", got, d, c)
	}
	if b.NumPreds() != 0 {
		t.Errorf("b preds = %v, want none", b.Preds())
	}
	if got := d.Preds(); len(got) != 1 || got[0] != a {
		t.Errorf("d preds = %v, want [%s]", got, a)
	}

	if err := a.ReplaceSucc(b, c, false); !errors.Is(err, ir.ErrEdgeNotFound) {
		t.Errorf("ReplaceSucc of non-successor: got %v", err)
	}
	if err := a.ReplaceSucc(d, c, false); !errors.Is(err, ir.ErrDuplicateEdgeDisallowed) {
		t.Errorf("ReplaceSucc onto existing successor: got %v", err)
	}
	if err := a.ReplaceSucc(c, c, false); err != nil {
		t.Errorf("ReplaceSucc with itself: %v", err)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReplaceSuccSplitsOntoExisting(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 3)
	a, b, c := bs[0], bs[1], bs[2]
	_ = a.AddSucc(b, false)
	_ = a.AddSucc(c, false)

	if err := a.ReplaceSucc(b, c, true); err != nil {
		t.Fatalf("ReplaceSucc: %v", err)
	}
	succs := a.Succs()
	if len(succs) != 2 || succs[0] != c || succs[1].ID() != 5 {
		t.Fatalf("a succs = %v, want [%s bb5]", succs, c)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReplacePred(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 3)
	a, b, c := bs[0], bs[1], bs[2]
	_ = a.AddSucc(c, false)

	if err := c.ReplacePred(a, b); err != nil {
		t.Fatalf("ReplacePred: %v", err)
	}
	if got := c.Preds(); len(got) != 1 || got[0] != b {
		t.Errorf("c preds = %v, want [%s]", got, b)
	}
	if a.NumSuccs() != 0 {
		t.Errorf("a succs = %v, want none", a.Succs())
	}
	if got := b.Succs(); len(got) != 1 || got[0] != c {
		t.Errorf("b succs = %v, want [%s]", got, c)
	}
	if err := c.ReplacePred(a, b); !errors.Is(err, ir.ErrEdgeNotFound) {
		t.Errorf("ReplacePred of non-predecessor: got %v", err)
	}
	_ = a.AddSucc(c, false)
	if err := c.ReplacePred(a, b); !errors.Is(err, ir.ErrDuplicateEdgeDisallowed) {
		t.Errorf("ReplacePred onto existing predecessor: got %v", err)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddInstFirstIsHeadAndTail(t *testing.T) {
	for _, appendInst := range []bool{true, false} {
		g := ir.NewGraph()
		b, _ := g.CreateEmptyBlock()
		inst, _ := g.CreateInstAdd()

		if err := b.AddInst(inst, appendInst); err != nil {
			t.Fatalf("append=%v: AddInst: %v", appendInst, err)
		}
		first, ok1 := b.FirstInst()
		last, ok2 := b.LastInst()
		if !ok1 || !ok2 || first != inst || last != inst {
			t.Errorf("append=%v: head=%v tail=%v, want %v for both", appendInst, first, last, inst)
		}
		if owner, ok := inst.Block(); !ok || owner != b {
			t.Errorf("append=%v: owner = %v, want %s", appendInst, owner, b)
		}
		if _, ok := inst.Prev(); ok {
			t.Errorf("append=%v: single instruction has prev", appendInst)
		}
		if _, ok := inst.Next(); ok {
			t.Errorf("append=%v: single instruction has next", appendInst)
		}
	}
}

func ids(insts []ir.Inst) []ir.InstID {
	out := make([]ir.InstID, len(insts))
	for i, in := range insts {
		out[i] = in.ID()
	}
	return out
}

func equalIDs(a, b []ir.InstID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddInstOrdering(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool // append flag per instruction, ids 1..n
		want  []ir.InstID
	}{
		{"append", []bool{true, true, true}, []ir.InstID{1, 2, 3}},
		// Prepends splice before the current head. This deliberately
		// differs from the earlier prototype, which anchored every splice
		// at the tail and only moved the head pointer on prepend.
		{"prepend", []bool{false, false, false}, []ir.InstID{3, 2, 1}},
		{"mixed", []bool{true, false, true, false}, []ir.InstID{4, 2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ir.NewGraph()
			b, _ := g.CreateEmptyBlock()
			for _, flag := range tt.flags {
				inst, err := g.CreateInstNop()
				if err != nil {
					t.Fatal(err)
				}
				if err := b.AddInst(inst, flag); err != nil {
					t.Fatalf("AddInst: %v", err)
				}
			}
			if got := ids(b.Insts()); !equalIDs(got, tt.want) {
				t.Errorf("sequence = %v, want %v", got, tt.want)
			}
			first, _ := b.FirstInst()
			last, _ := b.LastInst()
			if first.ID() != tt.want[0] || last.ID() != tt.want[len(tt.want)-1] {
				t.Errorf("head/tail = %d/%d, want %d/%d", first.ID(), last.ID(), tt.want[0], tt.want[len(tt.want)-1])
			}
			if err := ir.Validate(g); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestPrevNextLinks(t *testing.T) {
	g := ir.NewGraph()
	b, _ := g.CreateEmptyBlock()
	var insts []ir.Inst
	for range 3 {
		inst, _ := g.CreateInstAdd()
		_ = b.AddInst(inst, true)
		insts = append(insts, inst)
	}
	if next, ok := insts[0].Next(); !ok || next != insts[1] {
		t.Errorf("insts[0].Next = %v, %v", next, ok)
	}
	if prev, ok := insts[2].Prev(); !ok || prev != insts[1] {
		t.Errorf("insts[2].Prev = %v, %v", prev, ok)
	}
	if _, ok := insts[0].Prev(); ok {
		t.Errorf("head has prev")
	}
	if _, ok := insts[2].Next(); ok {
		t.Errorf("tail has next")
	}
}

func TestAddInstRejections(t *testing.T) {
	g := ir.NewGraph()
	bs := newBlocks(t, g, 2)
	phi, _ := g.CreateInstPhi()

	for _, flag := range []bool{true, false} {
		if err := bs[0].AddInst(phi, flag); !errors.Is(err, ir.ErrPhiInsertionRejected) {
			t.Errorf("AddInst(phi, %v): got %v, want PhiInsertionRejected", flag, err)
		}
	}
	if !bs[0].IsEmpty() {
		t.Errorf("rejected phi entered the sequence")
	}
	if _, ok := phi.Block(); ok {
		t.Errorf("rejected phi has an owner")
	}

	add, _ := g.CreateInstAdd()
	if err := bs[0].AddInst(add, true); err != nil {
		t.Fatal(err)
	}
	if err := bs[1].AddInst(add, true); !errors.Is(err, ir.ErrInstructionAlreadyPlaced) {
		t.Errorf("re-insert: got %v, want InstructionAlreadyPlaced", err)
	}
}

func TestPhiList(t *testing.T) {
	g := ir.NewGraph()
	b, _ := g.CreateEmptyBlock()
	if b.HasPhi() {
		t.Fatalf("fresh block has phi")
	}
	p1, _ := g.CreateInstPhi()
	p2, _ := g.CreateInstPhi()
	add, _ := g.CreateInstAdd()

	for _, p := range []ir.Inst{p1, p2} {
		if err := b.AddPhi(p); err != nil {
			t.Fatalf("AddPhi: %v", err)
		}
	}
	if err := b.AddPhi(add); !errors.Is(err, ir.ErrNotAPhi) {
		t.Errorf("AddPhi(add): got %v, want NotAPhi", err)
	}
	if err := b.AddPhi(p1); !errors.Is(err, ir.ErrInstructionAlreadyPlaced) {
		t.Errorf("AddPhi twice: got %v, want InstructionAlreadyPlaced", err)
	}
	if !b.HasPhi() {
		t.Fatalf("HasPhi = false after AddPhi")
	}
	if got := ids(b.Phis()); !equalIDs(got, []ir.InstID{1, 2}) {
		t.Errorf("Phis = %v, want [1 2]", got)
	}
	if !b.IsEmpty() {
		t.Errorf("phis leaked into the sequence")
	}
	if owner, ok := p2.Block(); !ok || owner != b {
		t.Errorf("phi owner = %v, %v", owner, ok)
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
