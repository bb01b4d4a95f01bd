package ir_test

import (
	"errors"
	"testing"

	"rhine/internal/ir"
)

func TestNewGraphReservedBlocks(t *testing.T) {
	g := ir.NewGraph()
	if g.NumBlocks() != 2 {
		t.Fatalf("NumBlocks = %d, want 2", g.NumBlocks())
	}
	start, end := g.StartBlock(), g.EndBlock()
	if start.ID() != 0 || !start.IsStart() || start.IsEnd() {
		t.Errorf("start block = %s (start=%v end=%v)", start, start.IsStart(), start.IsEnd())
	}
	if end.ID() != 1 || !end.IsEnd() || end.IsStart() {
		t.Errorf("end block = %s (start=%v end=%v)", end, end.IsStart(), end.IsEnd())
	}
	if _, err := g.CreateStartBlock(); !errors.Is(err, ir.ErrReservedBlockRedefined) {
		t.Errorf("second CreateStartBlock: got %v, want ReservedBlockRedefined", err)
	}
	if _, err := g.CreateEndBlock(); !errors.Is(err, ir.ErrReservedBlockRedefined) {
		t.Errorf("second CreateEndBlock: got %v, want ReservedBlockRedefined", err)
	}
}

func TestInstIDsAreMonotonic(t *testing.T) {
	g := ir.NewGraph()
	ops := []ir.Opcode{ir.OpcodeAdd, ir.OpcodeNot, ir.OpcodePhi, ir.OpcodeAlloc, ir.OpcodeNop}
	for i, op := range ops {
		inst, err := g.CreateInst(op)
		if err != nil {
			t.Fatalf("CreateInst(%s): %v", op, err)
		}
		if want := ir.InstID(i + 1); inst.ID() != want {
			t.Errorf("inst %d: ID = %d, want %d", i, inst.ID(), want)
		}
		if inst.Opcode() != op {
			t.Errorf("inst %d: Opcode = %s, want %s", i, inst.Opcode(), op)
		}
	}
	if g.NumInsts() != len(ops) {
		t.Errorf("NumInsts = %d, want %d", g.NumInsts(), len(ops))
	}
}

func TestGeneratedFactories(t *testing.T) {
	g := ir.NewGraph()
	tests := []struct {
		create func() (ir.Inst, error)
		op     ir.Opcode
		kind   ir.InstKind
	}{
		{g.CreateInstAdd, ir.OpcodeAdd, ir.KindBinary},
		{g.CreateInstCmp, ir.OpcodeCmp, ir.KindBinary},
		{g.CreateInstNeg, ir.OpcodeNeg, ir.KindUnary},
		{g.CreateInstAlloc, ir.OpcodeAlloc, ir.KindAlloc},
		{g.CreateInstPhi, ir.OpcodePhi, ir.KindPhi},
		{g.CreateInstReturnVoid, ir.OpcodeReturnVoid, ir.KindReturnVoid},
		{g.CreateInstNop, ir.OpcodeNop, ir.KindNop},
	}
	for _, tt := range tests {
		inst, err := tt.create()
		if err != nil {
			t.Fatalf("%s factory: %v", tt.op, err)
		}
		if inst.Opcode() != tt.op || inst.Kind() != tt.kind {
			t.Errorf("%s factory: got %s/%s, want %s/%s", tt.op, inst.Opcode(), inst.Kind(), tt.op, tt.kind)
		}
		if inst.Type() != ir.TypeUntyped {
			t.Errorf("%s factory: Type = %s, want untyped", tt.op, inst.Type())
		}
	}
}

func TestCreateInstRejectsInvalidOpcode(t *testing.T) {
	g := ir.NewGraph()
	if _, err := g.CreateInst(ir.OpcodeInvalid); !errors.Is(err, ir.ErrInvalidOpcode) {
		t.Fatalf("got %v, want InvalidOpcode", err)
	}
	if g.NumInsts() != 0 {
		t.Fatalf("failed create consumed an id")
	}
}

func TestBlockIDsFollowInsertionOrder(t *testing.T) {
	g := ir.NewGraph()
	for k := 1; k <= 5; k++ {
		b, err := g.CreateEmptyBlock()
		if err != nil {
			t.Fatalf("CreateEmptyBlock: %v", err)
		}
		if want := ir.BlockID(k + 1); b.ID() != want {
			t.Errorf("block %d: ID = %d, want %d", k, b.ID(), want)
		}
	}
}

func TestFirstUserBlockWiredToStart(t *testing.T) {
	g := ir.NewGraph()
	b1, _ := g.CreateEmptyBlock()
	b2, _ := g.CreateEmptyBlock()

	succs := g.StartBlock().Succs()
	if len(succs) != 1 || succs[0] != b1 {
		t.Fatalf("start succs = %v, want [%s]", succs, b1)
	}
	if preds := b1.Preds(); len(preds) != 1 || preds[0] != g.StartBlock() {
		t.Errorf("b1 preds = %v, want [bb0]", preds)
	}
	if b2.NumPreds() != 0 {
		t.Errorf("b2 preds = %v, want none", b2.Preds())
	}
}

func TestGraphLookup(t *testing.T) {
	g := ir.NewGraph()
	b, _ := g.CreateEmptyBlock()
	inst, _ := g.CreateInstAdd()

	got, err := g.Block(b.ID())
	if err != nil || got != b {
		t.Errorf("Block(%d) = %v, %v", b.ID(), got, err)
	}
	if _, err := g.Block(99); !errors.Is(err, ir.ErrUnknownBlockReference) {
		t.Errorf("Block(99): got %v, want UnknownBlockReference", err)
	}
	gotInst, err := g.Inst(inst.ID())
	if err != nil || gotInst != inst {
		t.Errorf("Inst(%d) = %v, %v", inst.ID(), gotInst, err)
	}
	for _, id := range []ir.InstID{ir.NoInst, 7} {
		if _, err := g.Inst(id); !errors.Is(err, ir.ErrUnknownInstructionReference) {
			t.Errorf("Inst(%d): got %v, want UnknownInstructionReference", id, err)
		}
	}
	if n := len(g.Blocks()); n != 3 {
		t.Errorf("len(Blocks) = %d, want 3", n)
	}
	if n := len(g.Insts()); n != 1 {
		t.Errorf("len(Insts) = %d, want 1", n)
	}
}

func TestReleaseMakesHandlesStale(t *testing.T) {
	g := ir.NewGraph()
	b, _ := g.CreateEmptyBlock()
	inst, _ := g.CreateInstAdd()
	if err := b.AddInst(inst, true); err != nil {
		t.Fatalf("AddInst: %v", err)
	}

	g.Release()
	g.Release()

	if !g.Released() {
		t.Fatalf("Released = false after Release")
	}
	if b.Valid() || inst.Valid() {
		t.Fatalf("handles still valid after Release")
	}
	if _, err := g.CreateEmptyBlock(); !errors.Is(err, ir.ErrGraphReleased) {
		t.Errorf("CreateEmptyBlock after Release: got %v", err)
	}
	if _, err := g.CreateInstAdd(); !errors.Is(err, ir.ErrGraphReleased) {
		t.Errorf("CreateInstAdd after Release: got %v", err)
	}
	if err := b.AddSucc(b, false); !errors.Is(err, ir.ErrGraphReleased) {
		t.Errorf("AddSucc after Release: got %v", err)
	}
	if g.StartBlock().Valid() {
		t.Errorf("StartBlock valid after Release")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ir.ErrGraphReleased) {
			t.Fatalf("Opcode on released handle: recovered %v", r)
		}
	}()
	_ = inst.Opcode()
}

func TestForeignHandleRejected(t *testing.T) {
	g1, g2 := ir.NewGraph(), ir.NewGraph()
	a, _ := g1.CreateEmptyBlock()
	b, _ := g2.CreateEmptyBlock()
	inst, _ := g2.CreateInstAdd()

	if err := a.AddSucc(b, false); !errors.Is(err, ir.ErrForeignHandle) {
		t.Errorf("AddSucc across graphs: got %v, want ForeignHandle", err)
	}
	if err := a.AddInst(inst, true); !errors.Is(err, ir.ErrForeignHandle) {
		t.Errorf("AddInst across graphs: got %v, want ForeignHandle", err)
	}
}

func TestZeroHandles(t *testing.T) {
	var b ir.Block
	var inst ir.Inst
	if b.Valid() || inst.Valid() {
		t.Fatalf("zero handles report valid")
	}
	if err := b.AddInst(inst, true); !errors.Is(err, ir.ErrStaleHandle) {
		t.Errorf("AddInst on zero block: got %v, want StaleHandle", err)
	}
	g := ir.NewGraph()
	blk, _ := g.CreateEmptyBlock()
	if err := blk.AddSucc(b, false); !errors.Is(err, ir.ErrStaleHandle) {
		t.Errorf("AddSucc to zero block: got %v, want StaleHandle", err)
	}
}

func TestErrorFormatting(t *testing.T) {
	err := ir.Errorf(ir.CodeDuplicateEdgeDisallowed, "AddSucc", "bb2 -> bb3")
	if got, want := err.Error(), "IR1006 DuplicateEdgeDisallowed: AddSucc: bb2 -> bb3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	wrapped := errors.Join(errors.New("context"), err)
	if ir.CodeOf(wrapped) != ir.CodeDuplicateEdgeDisallowed {
		t.Errorf("CodeOf(joined) = %s", ir.CodeOf(wrapped))
	}
	if ir.CodeOf(errors.New("plain")) != ir.CodeUnknown {
		t.Errorf("CodeOf(plain) should be Unknown")
	}
}
