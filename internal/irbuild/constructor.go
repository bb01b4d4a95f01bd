// Package irbuild assembles ir graphs from symbolic block and instruction
// ids. Successor lists are recorded as ids while blocks are declared and
// turned into real edges by Finalize, so a block may name successors that
// are declared after it.
package irbuild

import (
	"context"
	"slices"
	"strconv"

	"rhine/internal/ir"
	"rhine/internal/trace"
)

// Reserved symbolic ids for the graph's start and end blocks.
const (
	EntryID uint32 = 0
	ExitID  uint32 = 1
)

// Option configures a Constructor.
type Option func(*Constructor)

// WithParallelEdges sets the allowParallel flag Finalize passes to
// ir.Block.AddSucc. When false, listing the same successor twice fails
// with ir.ErrDuplicateEdgeDisallowed.
func WithParallelEdges(allow bool) Option {
	return func(c *Constructor) {
		c.parallel = allow
	}
}

// Constructor builds one graph. Its fluent methods record the first error
// and turn every later call into a no-op; check Err or the Finalize result.
//
// A Constructor is not safe for concurrent use.
type Constructor struct {
	g         *ir.Graph
	span      *trace.Span
	spanEnded bool

	blocks map[uint32]ir.Block
	order  []uint32
	succs  map[uint32][]uint32
	insts  map[uint32]ir.Inst

	cur     uint32
	hasCur  bool
	inst    ir.Inst
	hasInst bool

	parallel  bool
	finalized bool
	err       error
}

// New returns a Constructor over a fresh graph. The tracer and parent span
// are taken from ctx.
func New(ctx context.Context, opts ...Option) *Constructor {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeGraph, "construct", trace.CurrentSpan(ctx))

	c := &Constructor{
		span:   span,
		blocks: make(map[uint32]ir.Block),
		succs:  make(map[uint32][]uint32),
		insts:  make(map[uint32]ir.Inst),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.g = ir.NewGraph(ir.WithTracer(tracer), ir.WithTraceParent(span.ID()))
	c.blocks[EntryID] = c.g.StartBlock()
	c.blocks[ExitID] = c.g.EndBlock()
	return c
}

// Graph returns the graph under construction.
func (c *Constructor) Graph() *ir.Graph { return c.g }

// Err returns the first error recorded by a fluent call.
func (c *Constructor) Err() error { return c.err }

func (c *Constructor) fail(err error) *Constructor {
	if c.err == nil {
		c.err = err
	}
	return c
}

// ready reports whether a mutating call may proceed.
func (c *Constructor) ready(op string) bool {
	if c.err != nil {
		return false
	}
	if c.finalized {
		c.fail(ir.Errorf(ir.CodeConstructorFinalized, op, "graph already finalized"))
		return false
	}
	return true
}

func reserved(id uint32) bool { return id == EntryID || id == ExitID }

// NewBlock declares block id and makes it current. The previous block must
// have been closed with ResetBlock.
func (c *Constructor) NewBlock(id uint32) *Constructor {
	const op = "NewBlock"
	if !c.ready(op) {
		return c
	}
	if reserved(id) {
		return c.fail(ir.Errorf(ir.CodeReservedBlockID, op, "block id %d is reserved for entry/exit", id))
	}
	if _, ok := c.blocks[id]; ok {
		return c.fail(ir.Errorf(ir.CodeDuplicateBlockID, op, "block id %d already declared", id))
	}
	if c.hasCur {
		return c.fail(ir.Errorf(ir.CodeBlockStillOpen, op, "block %d is still current; call ResetBlock first", c.cur))
	}
	b, err := c.g.CreateEmptyBlock()
	if err != nil {
		return c.fail(err)
	}
	c.blocks[id] = b
	c.order = append(c.order, id)
	c.cur, c.hasCur = id, true
	return c
}

// Inst creates an instruction with symbolic id and places it in the current
// block: phis go to the phi list, everything else is appended to the
// sequence. The instruction becomes current.
func (c *Constructor) Inst(id uint32, opcode ir.Opcode) *Constructor {
	const op = "Inst"
	if !c.ready(op) {
		return c
	}
	if _, ok := c.insts[id]; ok {
		return c.fail(ir.Errorf(ir.CodeDuplicateInstructionID, op, "instruction id %d already used", id))
	}
	if !c.hasCur {
		return c.fail(ir.Errorf(ir.CodeNoCurrentBlock, op, "instruction %d has no block to go into", id))
	}
	inst, err := c.g.CreateInst(opcode)
	if err != nil {
		return c.fail(err)
	}
	b := c.blocks[c.cur]
	if inst.IsPhi() {
		err = b.AddPhi(inst)
	} else {
		err = b.AddInst(inst, true)
	}
	if err != nil {
		return c.fail(err)
	}
	c.insts[id] = inst
	c.inst, c.hasInst = inst, true
	return c
}

// Succs records successor ids for the current block. Entry and exit cannot
// be named; blocks without successors are wired to exit by Finalize.
func (c *Constructor) Succs(ids ...uint32) *Constructor {
	const op = "Succs"
	if !c.ready(op) {
		return c
	}
	if !c.hasCur {
		return c.fail(ir.Errorf(ir.CodeNoCurrentBlock, op, "no current block"))
	}
	for _, id := range ids {
		if reserved(id) {
			return c.fail(ir.Errorf(ir.CodeReservedBlockID, op, "block %d: successor id %d is reserved", c.cur, id))
		}
	}
	c.succs[c.cur] = append(c.succs[c.cur], ids...)
	return c
}

// BasicBlock is NewBlock(id).Succs(succs...).
func (c *Constructor) BasicBlock(id uint32, succs ...uint32) *Constructor {
	return c.NewBlock(id).Succs(succs...)
}

// ResetBlock closes the current block.
func (c *Constructor) ResetBlock() *Constructor {
	c.hasCur = false
	return c.ResetInst()
}

// ResetInst clears the current instruction.
func (c *Constructor) ResetInst() *Constructor {
	c.inst, c.hasInst = ir.Inst{}, false
	return c
}

// Type annotates the current instruction.
func (c *Constructor) Type(t ir.DataType) *Constructor {
	const op = "Type"
	if !c.ready(op) {
		return c
	}
	if !c.hasInst {
		return c.fail(ir.Errorf(ir.CodeNoCurrentInstruction, op, "no current instruction to type as %s", t))
	}
	c.inst.SetType(t)
	return c
}

func (c *Constructor) U8() *Constructor      { return c.Type(ir.TypeU8) }
func (c *Constructor) U16() *Constructor     { return c.Type(ir.TypeU16) }
func (c *Constructor) U32() *Constructor     { return c.Type(ir.TypeU32) }
func (c *Constructor) U64() *Constructor     { return c.Type(ir.TypeU64) }
func (c *Constructor) I8() *Constructor      { return c.Type(ir.TypeI8) }
func (c *Constructor) I16() *Constructor     { return c.Type(ir.TypeI16) }
func (c *Constructor) I32() *Constructor     { return c.Type(ir.TypeI32) }
func (c *Constructor) I64() *Constructor     { return c.Type(ir.TypeI64) }
func (c *Constructor) Bool() *Constructor    { return c.Type(ir.TypeBool) }
func (c *Constructor) F32() *Constructor     { return c.Type(ir.TypeF32) }
func (c *Constructor) F64() *Constructor     { return c.Type(ir.TypeF64) }
func (c *Constructor) Void() *Constructor    { return c.Type(ir.TypeVoid) }
func (c *Constructor) Untyped() *Constructor { return c.Type(ir.TypeUntyped) }

// Block returns the block declared under id. EntryID and ExitID name the
// start and end blocks.
func (c *Constructor) Block(id uint32) (ir.Block, error) {
	b, ok := c.blocks[id]
	if !ok {
		return ir.Block{}, ir.Errorf(ir.CodeUnknownBlockReference, "Block", "block id %d not declared", id)
	}
	return b, nil
}

// Instruction returns the instruction created under id.
func (c *Constructor) Instruction(id uint32) (ir.Inst, error) {
	inst, ok := c.insts[id]
	if !ok {
		return ir.Inst{}, ir.Errorf(ir.CodeUnknownInstructionReference, "Instruction", "instruction id %d not created", id)
	}
	return inst, nil
}

// Succ returns the successor ids recorded for block id.
func (c *Constructor) Succ(id uint32) []uint32 {
	return slices.Clone(c.succs[id])
}

// Finalize resolves every recorded successor list into edges, in block
// declaration order, wires blocks that recorded none to exit, and
// validates the result. The Constructor accepts no further mutation.
func (c *Constructor) Finalize() (g *ir.Graph, err error) {
	const op = "Finalize"
	defer func() { c.endSpan(err) }()
	if c.err != nil {
		return nil, c.err
	}
	if c.finalized {
		return nil, ir.Errorf(ir.CodeConstructorFinalized, op, "graph already finalized")
	}
	c.ResetBlock()

	for _, id := range c.order {
		from := c.blocks[id]
		succs, ok := c.succs[id]
		if !ok || len(succs) == 0 {
			if err := from.AddSucc(c.g.EndBlock(), c.parallel); err != nil {
				return nil, c.fail(err).err
			}
			continue
		}
		for _, s := range succs {
			to, ok := c.blocks[s]
			if !ok {
				return nil, c.fail(ir.Errorf(ir.CodeUnknownBlockReference, op,
					"block %d names undeclared successor %d", id, s)).err
			}
			if err := from.AddSucc(to, c.parallel); err != nil {
				return nil, c.fail(err).err
			}
		}
	}

	if err := ir.Validate(c.g); err != nil {
		return nil, c.fail(err).err
	}
	c.finalized = true
	return c.g, nil
}

// endSpan closes the construct span on the first Finalize, successful or
// not.
func (c *Constructor) endSpan(err error) {
	if c.spanEnded {
		return
	}
	c.spanEnded = true
	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	c.span.WithExtra("blocks", strconv.Itoa(c.g.NumBlocks())).
		WithExtra("insts", strconv.Itoa(c.g.NumInsts())).
		End(detail)
}
