package ir_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"rhine/internal/ir"
)

// diamond builds start -> a -> {l, r} -> m -> end with a few instructions.
func diamond(t *testing.T) *ir.Graph {
	t.Helper()
	g := ir.NewGraph()
	bs := newBlocks(t, g, 4)
	a, l, r, m := bs[0], bs[1], bs[2], bs[3]
	edges := [][2]ir.Block{{a, l}, {a, r}, {l, m}, {r, m}, {m, g.EndBlock()}}
	for _, e := range edges {
		if err := e[0].AddSucc(e[1], false); err != nil {
			t.Fatalf("AddSucc %s -> %s: %v", e[0], e[1], err)
		}
	}
	cmp, _ := g.CreateInstCmp()
	cmp.SetType(ir.TypeBool)
	alloc, _ := g.CreateInstAlloc()
	alloc.SetType(ir.TypeI64)
	_ = a.AddInst(cmp, true)
	_ = a.AddInst(alloc, false)
	phi, _ := g.CreateInstPhi()
	phi.SetType(ir.TypeI64)
	_ = m.AddPhi(phi)
	ret, _ := g.CreateInstReturnVoid()
	_ = m.AddInst(ret, true)
	return g
}

func TestExportImportRoundTrip(t *testing.T) {
	g := diamond(t)
	data, err := g.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if data.Schema != ir.SchemaVersion || len(data.Blocks) != 6 || len(data.Insts) != 4 {
		t.Fatalf("image = schema %d, %d blocks, %d insts", data.Schema, len(data.Blocks), len(data.Insts))
	}

	h, err := ir.Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	var want, got bytes.Buffer
	if err := ir.Dump(&want, g, ir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := ir.Dump(&got, h, ir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	if want.String() != got.String() {
		t.Fatalf("round trip changed the graph:\n--- before\n%s--- after\n%s", want.String(), got.String())
	}

	// New ids continue after the imported ones.
	next, err := h.CreateInstNop()
	if err != nil || next.ID() != 5 {
		t.Fatalf("CreateInstNop after import = %v, %v; want id 5", next, err)
	}
	b, err := h.CreateEmptyBlock()
	if err != nil || b.ID() != 6 {
		t.Fatalf("CreateEmptyBlock after import = %v, %v; want bb6", b, err)
	}
}

func TestImportRejectsBadImages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *ir.GraphData)
		want   error
	}{
		{"schema", func(d *ir.GraphData) { d.Schema = 9 }, ir.ErrInvalidGraph},
		{"start out of range", func(d *ir.GraphData) { d.Start = 50 }, ir.ErrUnknownBlockReference},
		{"start is end", func(d *ir.GraphData) { d.End = d.Start }, ir.ErrInvalidGraph},
		{"unknown opcode", func(d *ir.GraphData) { d.Insts[0].Opcode = "Jump" }, ir.ErrInvalidOpcode},
		{"bad type", func(d *ir.GraphData) { d.Insts[0].Type = "i7" }, ir.ErrInvalidGraph},
		{"shuffled ids", func(d *ir.GraphData) { d.Blocks[2].ID = 3 }, ir.ErrInvalidGraph},
		{"missing inst", func(d *ir.GraphData) { d.Blocks[2].Insts = append(d.Blocks[2].Insts, 40) }, ir.ErrUnknownInstructionReference},
		{"double placement", func(d *ir.GraphData) { d.Blocks[3].Insts = append(d.Blocks[3].Insts, 1) }, ir.ErrInstructionAlreadyPlaced},
		{"asymmetric edge", func(d *ir.GraphData) { d.Blocks[3].Preds = nil }, ir.ErrInvalidGraph},
		{"phi in sequence", func(d *ir.GraphData) {
			d.Blocks[5].Phis = nil
			d.Blocks[5].Insts = append([]ir.InstID{3}, d.Blocks[5].Insts...)
		}, ir.ErrInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := diamond(t).Export()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(data)
			if _, err := ir.Import(data); !errors.Is(err, tt.want) {
				t.Fatalf("Import: got %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := ir.Import(nil); !errors.Is(err, ir.ErrInvalidGraph) {
		t.Errorf("Import(nil): got %v", err)
	}
}

func TestExportReleased(t *testing.T) {
	g := ir.NewGraph()
	g.Release()
	if _, err := g.Export(); !errors.Is(err, ir.ErrGraphReleased) {
		t.Fatalf("got %v, want GraphReleased", err)
	}
}

func TestDumpListing(t *testing.T) {
	var buf bytes.Buffer
	if err := ir.Dump(&buf, diamond(t), ir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"graph blocks=6 insts=4\n",
		"bb0 [start]  preds=[] succs=[bb2]\n",
		"bb1 [end]  preds=[bb5] succs=[]\n",
		"bb2  preds=[bb0] succs=[bb3 bb4]\n",
		"bb5  preds=[bb3 bb4] succs=[bb1]\n",
		"  phi  ID: 3, Opcode: Phi",
		"ID: 2, Opcode: Alloc",
		"ID: 4, Opcode: ReturnVoid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	// Prepended alloc precedes cmp.
	if strings.Index(out, "Opcode: Alloc") > strings.Index(out, "Opcode: Cmp") {
		t.Errorf("alloc should be listed before cmp:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("uncolored dump contains escape codes")
	}
}
