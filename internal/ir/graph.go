package ir

import (
	"math"
	"strconv"
	"sync/atomic"

	"fortio.org/safecast"

	"rhine/internal/trace"
)

// BlockID is a block's 0-based insertion order within its graph.
type BlockID uint32

// InstID is an instruction's creation order within its graph, starting at 1.
type InstID uint32

const (
	// NoBlock marks an absent block reference.
	NoBlock BlockID = math.MaxUint32
	// NoInst marks an absent instruction reference.
	NoInst InstID = 0
)

// epochs hands out a distinct epoch to every graph and every release.
var epochs atomic.Uint64

type blockData struct {
	succs []BlockID
	preds []BlockID
	head  InstID
	tail  InstID
	phis  []InstID
}

type instData struct {
	opcode Opcode
	typ    DataType
	block  BlockID
	prev   InstID
	next   InstID
}

// Graph owns every block and instruction created through it. Blocks and
// instructions are stored by value and referenced through Block and Inst
// handles; Release drops both collections at once and invalidates every
// outstanding handle.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	blocks []blockData
	insts  []instData

	start    BlockID
	end      BlockID
	hasStart bool
	hasEnd   bool

	lastInst InstID // pre-incremented by CreateInst
	epoch    uint64
	released bool

	tracer      trace.Tracer
	traceParent uint64
}

// Option configures a Graph.
type Option func(*Graph)

// WithTracer reports node-level events (block/instruction creation, edges)
// to t.
func WithTracer(t trace.Tracer) Option {
	return func(g *Graph) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithTraceParent nests the graph's events under span id.
func WithTraceParent(id uint64) Option {
	return func(g *Graph) {
		g.traceParent = id
	}
}

// NewGraph returns a graph whose start (bb0) and end (bb1) blocks already
// exist.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	g.init()
	// Neither call can fail on a fresh graph.
	if _, err := g.CreateStartBlock(); err != nil {
		panic(err)
	}
	if _, err := g.CreateEndBlock(); err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) init() {
	if g.epoch == 0 {
		g.epoch = epochs.Add(1)
	}
	if g.tracer == nil {
		g.tracer = trace.Nop
	}
}

func (g *Graph) usable(op string) error {
	g.init()
	if g.released {
		return Errorf(CodeGraphReleased, op, "graph has been released")
	}
	return nil
}

// CreateEmptyBlock allocates a block with id equal to the current block
// count. The first user block created while the start block has no
// successors becomes the start block's successor.
func (g *Graph) CreateEmptyBlock() (Block, error) {
	b, err := g.newBlock("CreateEmptyBlock")
	if err != nil {
		return Block{}, err
	}
	if g.hasStart && b.id != g.start && len(g.blocks[g.start].succs) == 0 {
		g.link(g.start, b.id)
	}
	return b, nil
}

// CreateStartBlock creates the start block. It may be called once.
func (g *Graph) CreateStartBlock() (Block, error) {
	const op = "CreateStartBlock"
	if err := g.usable(op); err != nil {
		return Block{}, err
	}
	if g.hasStart {
		return Block{}, Errorf(CodeReservedBlockRedefined, op, "start block already exists (bb%d)", g.start)
	}
	b, err := g.newBlock(op)
	if err != nil {
		return Block{}, err
	}
	g.start, g.hasStart = b.id, true
	return b, nil
}

// CreateEndBlock creates the end block. It may be called once.
func (g *Graph) CreateEndBlock() (Block, error) {
	const op = "CreateEndBlock"
	if err := g.usable(op); err != nil {
		return Block{}, err
	}
	if g.hasEnd {
		return Block{}, Errorf(CodeReservedBlockRedefined, op, "end block already exists (bb%d)", g.end)
	}
	b, err := g.newBlock(op)
	if err != nil {
		return Block{}, err
	}
	g.end, g.hasEnd = b.id, true
	return b, nil
}

// newBlock registers an empty block without any wiring.
func (g *Graph) newBlock(op string) (Block, error) {
	if err := g.usable(op); err != nil {
		return Block{}, err
	}
	n, err := safecast.Conv[uint32](len(g.blocks))
	if err != nil || BlockID(n) == NoBlock {
		return Block{}, &Error{Code: CodeIDOverflow, Op: op, Detail: "block id space exhausted", Cause: err}
	}
	id := BlockID(n)
	g.blocks = append(g.blocks, blockData{})
	trace.Point(g.tracer, trace.ScopeNode, "block.create", g.traceParent, "block", id.String())
	return g.blockHandle(id), nil
}

// CreateInst allocates an instruction tagged with op and assigns it the
// next id. The instruction is not placed in any block.
func (g *Graph) CreateInst(op Opcode) (Inst, error) {
	const name = "CreateInst"
	if err := g.usable(name); err != nil {
		return Inst{}, err
	}
	if !op.Valid() {
		return Inst{}, Errorf(CodeInvalidOpcode, name, "opcode %d is not in the catalog", uint16(op))
	}
	if g.lastInst == math.MaxUint32 {
		return Inst{}, Errorf(CodeIDOverflow, name, "instruction id space exhausted")
	}
	g.lastInst++
	id := g.lastInst
	g.insts = append(g.insts, instData{opcode: op, block: NoBlock})
	trace.Point(g.tracer, trace.ScopeNode, "inst.create", g.traceParent,
		"inst", strconv.FormatUint(uint64(id), 10), "opcode", op.String())
	return g.instHandle(id), nil
}

// StartBlock returns the start block, or the zero Block if none exists.
func (g *Graph) StartBlock() Block {
	if !g.hasStart || g.released {
		return Block{}
	}
	return g.blockHandle(g.start)
}

// EndBlock returns the end block, or the zero Block if none exists.
func (g *Graph) EndBlock() Block {
	if !g.hasEnd || g.released {
		return Block{}
	}
	return g.blockHandle(g.end)
}

// NumBlocks returns the number of blocks owned by the graph.
func (g *Graph) NumBlocks() int { return len(g.blocks) }

// NumInsts returns the number of instructions owned by the graph.
func (g *Graph) NumInsts() int { return len(g.insts) }

// Blocks returns handles for every block in id order.
func (g *Graph) Blocks() []Block {
	out := make([]Block, len(g.blocks))
	for i := range g.blocks {
		out[i] = g.blockHandle(BlockID(i))
	}
	return out
}

// Insts returns handles for every instruction in id order.
func (g *Graph) Insts() []Inst {
	out := make([]Inst, len(g.insts))
	for i := range g.insts {
		out[i] = g.instHandle(InstID(i + 1))
	}
	return out
}

// Block returns the handle for id.
func (g *Graph) Block(id BlockID) (Block, error) {
	const op = "Block"
	if err := g.usable(op); err != nil {
		return Block{}, err
	}
	if int64(id) >= int64(len(g.blocks)) {
		return Block{}, Errorf(CodeUnknownBlockReference, op, "%s does not exist", id)
	}
	return g.blockHandle(id), nil
}

// Inst returns the handle for id.
func (g *Graph) Inst(id InstID) (Inst, error) {
	const op = "Inst"
	if err := g.usable(op); err != nil {
		return Inst{}, err
	}
	if id == NoInst || int64(id) > int64(len(g.insts)) {
		return Inst{}, Errorf(CodeUnknownInstructionReference, op, "instruction %d does not exist", id)
	}
	return g.instHandle(id), nil
}

// Release frees every block and instruction. Handles obtained before the
// call become stale. Calling Release twice is a no-op.
func (g *Graph) Release() {
	if g.released {
		return
	}
	trace.Point(g.tracer, trace.ScopeGraph, "graph.release", g.traceParent,
		"blocks", strconv.Itoa(len(g.blocks)), "insts", strconv.Itoa(len(g.insts)))
	g.insts = nil
	g.blocks = nil
	g.hasStart, g.hasEnd = false, false
	g.released = true
	g.epoch = epochs.Add(1)
}

// Released reports whether Release has been called.
func (g *Graph) Released() bool { return g.released }

func (g *Graph) blockHandle(id BlockID) Block {
	return Block{g: g, id: id, epoch: g.epoch}
}

func (g *Graph) instHandle(id InstID) Inst {
	return Inst{g: g, id: id, epoch: g.epoch}
}

// checkBlock verifies that b is a live handle into g.
func (g *Graph) checkBlock(op string, b Block) error {
	switch {
	case b.g == nil:
		return Errorf(CodeStaleHandle, op, "zero Block handle")
	case b.g != g:
		return Errorf(CodeForeignHandle, op, "%s belongs to another graph", b.id)
	case g.released:
		return Errorf(CodeGraphReleased, op, "graph has been released")
	case b.epoch != g.epoch:
		return Errorf(CodeStaleHandle, op, "%s handle predates the current epoch", b.id)
	case int64(b.id) >= int64(len(g.blocks)):
		return Errorf(CodeUnknownBlockReference, op, "%s does not exist", b.id)
	}
	return nil
}

// checkInst verifies that i is a live handle into g.
func (g *Graph) checkInst(op string, i Inst) error {
	switch {
	case i.g == nil:
		return Errorf(CodeStaleHandle, op, "zero Inst handle")
	case i.g != g:
		return Errorf(CodeForeignHandle, op, "instruction %d belongs to another graph", i.id)
	case g.released:
		return Errorf(CodeGraphReleased, op, "graph has been released")
	case i.epoch != g.epoch:
		return Errorf(CodeStaleHandle, op, "instruction %d handle predates the current epoch", i.id)
	case i.id == NoInst || int64(i.id) > int64(len(g.insts)):
		return Errorf(CodeUnknownInstructionReference, op, "instruction %d does not exist", i.id)
	}
	return nil
}

func (g *Graph) inst(id InstID) *instData {
	return &g.insts[id-1]
}

// String renders the id as "bb<n>".
func (id BlockID) String() string {
	if id == NoBlock {
		return "bb?"
	}
	return "bb" + strconv.FormatUint(uint64(id), 10)
}
