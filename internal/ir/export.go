package ir

import (
	"errors"

	"fortio.org/safecast"
)

// SchemaVersion is the current GraphData layout version.
const SchemaVersion = 1

// GraphData is a plain-data image of a graph. Ids are positional: Blocks[i]
// has ID i and Insts[i] has ID i+1.
type GraphData struct {
	Schema int         `msgpack:"schema" json:"schema"`
	Start  BlockID     `msgpack:"start" json:"start"`
	End    BlockID     `msgpack:"end" json:"end"`
	Blocks []BlockData `msgpack:"blocks" json:"blocks"`
	Insts  []InstData  `msgpack:"insts" json:"insts"`
}

// BlockData is one block of a GraphData image.
type BlockData struct {
	ID    BlockID   `msgpack:"id" json:"id"`
	Succs []BlockID `msgpack:"succs" json:"succs"`
	Preds []BlockID `msgpack:"preds" json:"preds"`
	Insts []InstID  `msgpack:"insts,omitempty" json:"insts,omitempty"`
	Phis  []InstID  `msgpack:"phis,omitempty" json:"phis,omitempty"`
}

// InstData is one instruction of a GraphData image. Opcode and Type are
// stored by name so images survive catalog reordering.
type InstData struct {
	ID     InstID `msgpack:"id" json:"id"`
	Opcode string `msgpack:"op" json:"op"`
	Type   string `msgpack:"type,omitempty" json:"type,omitempty"`
}

// Export captures g as a GraphData image.
func (g *Graph) Export() (*GraphData, error) {
	const op = "Export"
	if err := g.usable(op); err != nil {
		return nil, err
	}
	if !g.hasStart || !g.hasEnd {
		return nil, Errorf(CodeInvalidGraph, op, "graph has no start or end block")
	}
	data := &GraphData{
		Schema: SchemaVersion,
		Start:  g.start,
		End:    g.end,
		Blocks: make([]BlockData, len(g.blocks)),
		Insts:  make([]InstData, len(g.insts)),
	}
	for i := range g.blocks {
		bd := &g.blocks[i]
		out := BlockData{
			ID:    BlockID(i),
			Succs: append([]BlockID{}, bd.succs...),
			Preds: append([]BlockID{}, bd.preds...),
			Phis:  append([]InstID(nil), bd.phis...),
		}
		for _, in := range g.blockHandle(BlockID(i)).Insts() {
			out.Insts = append(out.Insts, in.id)
		}
		data.Blocks[i] = out
	}
	for i := range g.insts {
		d := &g.insts[i]
		typ := ""
		if d.typ != TypeUntyped {
			typ = d.typ.String()
		}
		data.Insts[i] = InstData{ID: InstID(i + 1), Opcode: d.opcode.String(), Type: typ}
	}
	return data, nil
}

// Import rebuilds a graph from data and validates it.
func Import(data *GraphData, opts ...Option) (*Graph, error) {
	const op = "Import"
	if data == nil {
		return nil, Errorf(CodeInvalidGraph, op, "nil graph image")
	}
	if data.Schema != SchemaVersion {
		return nil, Errorf(CodeInvalidGraph, op, "unsupported schema %d (want %d)", data.Schema, SchemaVersion)
	}
	nb, err := safecast.Conv[uint32](len(data.Blocks))
	if err != nil {
		return nil, &Error{Code: CodeIDOverflow, Op: op, Detail: "too many blocks", Cause: err}
	}
	ni, err := safecast.Conv[uint32](len(data.Insts))
	if err != nil {
		return nil, &Error{Code: CodeIDOverflow, Op: op, Detail: "too many instructions", Cause: err}
	}
	if data.Start >= BlockID(nb) || data.End >= BlockID(nb) {
		return nil, Errorf(CodeUnknownBlockReference, op, "start %s or end %s out of range", data.Start, data.End)
	}
	if data.Start == data.End {
		return nil, Errorf(CodeInvalidGraph, op, "start and end are the same block %s", data.Start)
	}

	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	g.init()

	g.insts = make([]instData, ni)
	for i, in := range data.Insts {
		if in.ID != InstID(i+1) {
			return nil, Errorf(CodeInvalidGraph, op, "instruction at index %d has id %d", i, in.ID)
		}
		opc, ok := ParseOpcode(in.Opcode)
		if !ok {
			return nil, Errorf(CodeInvalidOpcode, op, "instruction %d: unknown opcode %q", in.ID, in.Opcode)
		}
		typ, err := ParseDataType(in.Type)
		if err != nil {
			return nil, &Error{Code: CodeInvalidGraph, Op: op, Detail: "instruction type", Cause: err}
		}
		g.insts[i] = instData{opcode: opc, typ: typ, block: NoBlock}
	}
	g.lastInst = InstID(ni)

	g.blocks = make([]blockData, nb)
	for i, bd := range data.Blocks {
		id := BlockID(i)
		if bd.ID != id {
			return nil, Errorf(CodeInvalidGraph, op, "block at index %d has id %s", i, bd.ID)
		}
		if err := g.importSequence(op, id, bd.Insts); err != nil {
			return nil, err
		}
		for _, p := range bd.Phis {
			if err := g.claim(op, id, p); err != nil {
				return nil, err
			}
		}
		g.blocks[i].succs = append([]BlockID(nil), bd.Succs...)
		g.blocks[i].preds = append([]BlockID(nil), bd.Preds...)
		g.blocks[i].phis = append([]InstID(nil), bd.Phis...)
	}
	g.start, g.hasStart = data.Start, true
	g.end, g.hasEnd = data.End, true

	if err := Validate(g); err != nil {
		return nil, errors.Join(Errorf(CodeInvalidGraph, op, "image failed validation"), err)
	}
	return g, nil
}

func (g *Graph) importSequence(op string, id BlockID, seq []InstID) error {
	prev := NoInst
	for _, cur := range seq {
		if err := g.claim(op, id, cur); err != nil {
			return err
		}
		d := g.inst(cur)
		d.prev = prev
		if prev != NoInst {
			g.inst(prev).next = cur
		}
		prev = cur
	}
	if len(seq) > 0 {
		g.blocks[id].head = seq[0]
		g.blocks[id].tail = prev
	}
	return nil
}

// claim records id as the owner of inst, rejecting double placement.
func (g *Graph) claim(op string, id BlockID, inst InstID) error {
	if inst == NoInst || int64(inst) > int64(len(g.insts)) {
		return Errorf(CodeUnknownInstructionReference, op, "%s references instruction %d", id, inst)
	}
	d := g.inst(inst)
	if d.block != NoBlock {
		return Errorf(CodeInstructionAlreadyPlaced, op, "instruction %d listed in %s and %s", inst, d.block, id)
	}
	d.block = id
	return nil
}
