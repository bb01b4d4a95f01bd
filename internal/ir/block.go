package ir

import (
	"slices"

	"rhine/internal/trace"
)

// Block is a handle to a basic block. The zero Block refers to nothing.
// Handles are comparable: two handles are equal when they name the same
// block of the same graph epoch.
type Block struct {
	g     *Graph
	id    BlockID
	epoch uint64
}

// ID returns the block id (its insertion order in the graph).
func (b Block) ID() BlockID { return b.id }

// Graph returns the owning graph.
func (b Block) Graph() *Graph { return b.g }

// Valid reports whether b refers to a live block.
func (b Block) Valid() bool {
	return b.g != nil && b.g.checkBlock("Valid", b) == nil
}

func (b Block) String() string {
	if b.g == nil {
		return "bb<nil>"
	}
	return b.id.String()
}

// data returns the block's storage or panics with the typed error.
// The pointer is only valid until the next block is created.
func (b Block) data(op string) *blockData {
	if b.g == nil {
		panic(Errorf(CodeStaleHandle, op, "zero Block handle"))
	}
	if err := b.g.checkBlock(op, b); err != nil {
		panic(err)
	}
	return &b.g.blocks[b.id]
}

// pair checks b and other and returns the shared graph.
func (b Block) pair(op string, other Block) (*Graph, error) {
	if b.g == nil {
		return nil, Errorf(CodeStaleHandle, op, "zero Block handle")
	}
	if err := b.g.checkBlock(op, b); err != nil {
		return nil, err
	}
	if err := b.g.checkBlock(op, other); err != nil {
		return nil, err
	}
	return b.g, nil
}

// IsStart reports whether b is the graph's start block.
func (b Block) IsStart() bool {
	b.data("IsStart")
	return b.g.hasStart && b.g.start == b.id
}

// IsEnd reports whether b is the graph's end block.
func (b Block) IsEnd() bool {
	b.data("IsEnd")
	return b.g.hasEnd && b.g.end == b.id
}

// Succs returns the successors in order.
func (b Block) Succs() []Block {
	return b.g.handles(b.data("Succs").succs)
}

// Preds returns the predecessors in order.
func (b Block) Preds() []Block {
	return b.g.handles(b.data("Preds").preds)
}

// NumSuccs returns the number of outgoing edges.
func (b Block) NumSuccs() int { return len(b.data("NumSuccs").succs) }

// NumPreds returns the number of incoming edges.
func (b Block) NumPreds() int { return len(b.data("NumPreds").preds) }

func (g *Graph) handles(ids []BlockID) []Block {
	out := make([]Block, len(ids))
	for i, id := range ids {
		out[i] = g.blockHandle(id)
	}
	return out
}

// AddSucc adds an edge b -> target.
//
// If the edge already exists and allowParallel is false the call fails with
// CodeDuplicateEdgeDisallowed. With allowParallel the existing edge is routed
// through a new empty block first, so b ends up with two distinct successors
// that both lead to target.
func (b Block) AddSucc(target Block, allowParallel bool) error {
	const op = "AddSucc"
	g, err := b.pair(op, target)
	if err != nil {
		return err
	}
	if slices.Contains(g.blocks[b.id].succs, target.id) {
		if !allowParallel {
			return Errorf(CodeDuplicateEdgeDisallowed, op,
				"%s -> %s: uncovered case where an empty block is needed to fix the CFG", b.id, target.id)
		}
		if _, err := g.splitEdge(op, b.id, target.id); err != nil {
			return err
		}
	}
	g.link(b.id, target.id)
	return nil
}

// ReplaceSucc redirects the edge b -> old to b -> replacement, keeping its
// position in b's successor list. An existing b -> replacement edge is
// handled as in AddSucc.
func (b Block) ReplaceSucc(old, replacement Block, allowParallel bool) error {
	const op = "ReplaceSucc"
	g, err := b.pair(op, old)
	if err != nil {
		return err
	}
	if err := g.checkBlock(op, replacement); err != nil {
		return err
	}
	idx := slices.Index(g.blocks[b.id].succs, old.id)
	if idx < 0 {
		return Errorf(CodeEdgeNotFound, op, "%s is not a successor of %s", old.id, b.id)
	}
	if old.id == replacement.id {
		return nil
	}
	if slices.Contains(g.blocks[b.id].succs, replacement.id) {
		if !allowParallel {
			return Errorf(CodeDuplicateEdgeDisallowed, op,
				"%s -> %s: uncovered case where an empty block is needed to fix the CFG", b.id, replacement.id)
		}
		if _, err := g.splitEdge(op, b.id, replacement.id); err != nil {
			return err
		}
	}
	if err := g.removePred(op, old.id, b.id); err != nil {
		return err
	}
	g.blocks[b.id].succs[idx] = replacement.id
	g.blocks[replacement.id].preds = append(g.blocks[replacement.id].preds, b.id)
	g.traceEdge("edge.replace", b.id, replacement.id)
	return nil
}

// ReplacePred redirects the edge old -> b to replacement -> b, keeping its
// position in b's predecessor list.
func (b Block) ReplacePred(old, replacement Block) error {
	const op = "ReplacePred"
	g, err := b.pair(op, old)
	if err != nil {
		return err
	}
	if err := g.checkBlock(op, replacement); err != nil {
		return err
	}
	idx := slices.Index(g.blocks[b.id].preds, old.id)
	if idx < 0 {
		return Errorf(CodeEdgeNotFound, op, "%s is not a predecessor of %s", old.id, b.id)
	}
	if old.id == replacement.id {
		return nil
	}
	if slices.Contains(g.blocks[b.id].preds, replacement.id) {
		return Errorf(CodeDuplicateEdgeDisallowed, op,
			"%s -> %s: uncovered case where an empty block is needed to fix the CFG", replacement.id, b.id)
	}
	if err := g.removeSucc(op, old.id, b.id); err != nil {
		return err
	}
	g.blocks[b.id].preds[idx] = replacement.id
	g.blocks[replacement.id].succs = append(g.blocks[replacement.id].succs, b.id)
	g.traceEdge("edge.replace", replacement.id, b.id)
	return nil
}

// SuccIndex returns the position of target in b's successor list.
func (b Block) SuccIndex(target Block) (int, error) {
	const op = "SuccIndex"
	g, err := b.pair(op, target)
	if err != nil {
		return 0, err
	}
	return edgeIndex(op, g.blocks[b.id].succs, target.id, b.id)
}

// PredIndex returns the position of target in b's predecessor list.
func (b Block) PredIndex(target Block) (int, error) {
	const op = "PredIndex"
	g, err := b.pair(op, target)
	if err != nil {
		return 0, err
	}
	return edgeIndex(op, g.blocks[b.id].preds, target.id, b.id)
}

func edgeIndex(op string, list []BlockID, target, owner BlockID) (int, error) {
	idx := slices.Index(list, target)
	if idx < 0 {
		return 0, Errorf(CodeEdgeNotFound, op, "%s has no edge to %s", owner, target)
	}
	// A two-entry list never names the same block twice.
	if len(list) == 2 && idx == 0 && list[1] == target {
		return 0, Errorf(CodeCorruptEdgeList, op, "%s lists %s twice", owner, target)
	}
	return idx, nil
}

// link appends the edge from -> to on both sides.
func (g *Graph) link(from, to BlockID) {
	g.blocks[from].succs = append(g.blocks[from].succs, to)
	g.blocks[to].preds = append(g.blocks[to].preds, from)
	g.traceEdge("edge.add", from, to)
}

// splitEdge reroutes the existing edge from -> to through a new empty block
// and returns it. Both list positions are preserved:
//
//	from --> to    becomes    from --> split --> to
func (g *Graph) splitEdge(op string, from, to BlockID) (BlockID, error) {
	si := slices.Index(g.blocks[from].succs, to)
	pi := slices.Index(g.blocks[to].preds, from)
	if si < 0 || pi < 0 {
		return NoBlock, Errorf(CodeCorruptEdgeList, op, "edge %s -> %s is only recorded on one side", from, to)
	}
	split, err := g.newBlock(op)
	if err != nil {
		return NoBlock, err
	}
	g.blocks[from].succs[si] = split.id
	g.blocks[to].preds[pi] = split.id
	g.blocks[split.id].preds = append(g.blocks[split.id].preds, from)
	g.blocks[split.id].succs = append(g.blocks[split.id].succs, to)
	g.traceEdge("edge.split", from, to, "via", split.id.String())
	return split.id, nil
}

func (g *Graph) removePred(op string, of, pred BlockID) error {
	idx := slices.Index(g.blocks[of].preds, pred)
	if idx < 0 {
		return Errorf(CodeCorruptEdgeList, op, "%s does not list %s as predecessor", of, pred)
	}
	g.blocks[of].preds = slices.Delete(g.blocks[of].preds, idx, idx+1)
	return nil
}

func (g *Graph) removeSucc(op string, of, succ BlockID) error {
	idx := slices.Index(g.blocks[of].succs, succ)
	if idx < 0 {
		return Errorf(CodeCorruptEdgeList, op, "%s does not list %s as successor", of, succ)
	}
	g.blocks[of].succs = slices.Delete(g.blocks[of].succs, idx, idx+1)
	return nil
}

// AddInst places inst into b's instruction sequence. The first instruction
// of an empty block becomes both head and tail regardless of appendInst;
// afterwards appendInst links after the tail and !appendInst links before
// the head. Phi instructions are rejected; use AddPhi.
func (b Block) AddInst(inst Inst, appendInst bool) error {
	const op = "AddInst"
	if b.g == nil {
		return Errorf(CodeStaleHandle, op, "zero Block handle")
	}
	g := b.g
	if err := g.checkBlock(op, b); err != nil {
		return err
	}
	if err := g.checkInst(op, inst); err != nil {
		return err
	}
	d := g.inst(inst.id)
	if d.opcode == OpcodePhi {
		return Errorf(CodePhiInsertionRejected, op, "instruction %d is a phi and cannot enter the sequence of %s", inst.id, b.id)
	}
	if d.block != NoBlock {
		return Errorf(CodeInstructionAlreadyPlaced, op, "instruction %d already belongs to %s", inst.id, d.block)
	}
	d.block = b.id

	bd := &g.blocks[b.id]
	switch {
	case bd.head == NoInst:
		bd.head, bd.tail = inst.id, inst.id
	case appendInst:
		g.inst(bd.tail).next = inst.id
		d.prev = bd.tail
		bd.tail = inst.id
	default:
		g.inst(bd.head).prev = inst.id
		d.next = bd.head
		bd.head = inst.id
	}
	return nil
}

// AddPhi appends a phi instruction to b's phi list.
func (b Block) AddPhi(inst Inst) error {
	const op = "AddPhi"
	if b.g == nil {
		return Errorf(CodeStaleHandle, op, "zero Block handle")
	}
	g := b.g
	if err := g.checkBlock(op, b); err != nil {
		return err
	}
	if err := g.checkInst(op, inst); err != nil {
		return err
	}
	d := g.inst(inst.id)
	if d.opcode != OpcodePhi {
		return Errorf(CodeNotAPhi, op, "instruction %d has opcode %s", inst.id, d.opcode)
	}
	if d.block != NoBlock {
		return Errorf(CodeInstructionAlreadyPlaced, op, "instruction %d already belongs to %s", inst.id, d.block)
	}
	d.block = b.id
	g.blocks[b.id].phis = append(g.blocks[b.id].phis, inst.id)
	return nil
}

// FirstInst returns the head of the instruction sequence.
func (b Block) FirstInst() (Inst, bool) {
	d := b.data("FirstInst")
	if d.head == NoInst {
		return Inst{}, false
	}
	return b.g.instHandle(d.head), true
}

// LastInst returns the tail of the instruction sequence.
func (b Block) LastInst() (Inst, bool) {
	d := b.data("LastInst")
	if d.tail == NoInst {
		return Inst{}, false
	}
	return b.g.instHandle(d.tail), true
}

// IsEmpty reports whether the instruction sequence is empty.
func (b Block) IsEmpty() bool {
	return b.data("IsEmpty").head == NoInst
}

// Insts walks the sequence from head to tail.
func (b Block) Insts() []Inst {
	d := b.data("Insts")
	var out []Inst
	for id := d.head; id != NoInst && len(out) <= len(b.g.insts); id = b.g.inst(id).next {
		out = append(out, b.g.instHandle(id))
	}
	return out
}

// Phis returns the phi list in insertion order.
func (b Block) Phis() []Inst {
	d := b.data("Phis")
	out := make([]Inst, len(d.phis))
	for i, id := range d.phis {
		out[i] = b.g.instHandle(id)
	}
	return out
}

// HasPhi reports whether the phi list is non-empty.
func (b Block) HasPhi() bool {
	return len(b.data("HasPhi").phis) > 0
}

func (g *Graph) traceEdge(name string, from, to BlockID, kv ...string) {
	if !g.tracer.Enabled() {
		return
	}
	pairs := append([]string{"from", from.String(), "to", to.String()}, kv...)
	trace.Point(g.tracer, trace.ScopeNode, name, g.traceParent, pairs...)
}
