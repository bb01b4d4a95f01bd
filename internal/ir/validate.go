package ir

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of g and returns every
// violation joined into one error, or nil.
//
//  1. start and end blocks exist
//  2. edge endpoints exist and successor/predecessor lists are symmetric
//  3. no block lists the same successor twice
//  4. head and tail are both set or both empty
//  5. sequence links are consistent and owned by the block
//  6. phis live only in phi lists
func Validate(g *Graph) error {
	if g == nil {
		return nil
	}
	if g.released {
		return Errorf(CodeGraphReleased, "Validate", "graph has been released")
	}

	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, Errorf(CodeInvalidGraph, "Validate", format, args...))
	}

	if !g.hasStart {
		report("graph has no start block")
	}
	if !g.hasEnd {
		report("graph has no end block")
	}

	validateEdges(g, report)

	placed := make([]bool, len(g.insts))
	for i := range g.blocks {
		validateSequence(g, BlockID(i), placed, report)
		validatePhis(g, BlockID(i), placed, report)
	}

	for i := range g.insts {
		d := &g.insts[i]
		if d.block != NoBlock && !placed[i] {
			report("instruction %d claims %s but is not linked there", i+1, d.block)
		}
	}

	return errors.Join(errs...)
}

func validateEdges(g *Graph, report func(string, ...any)) {
	n := BlockID(len(g.blocks))
	for i := range g.blocks {
		id := BlockID(i)
		b := &g.blocks[i]
		seen := make(map[BlockID]bool, len(b.succs))
		for _, s := range b.succs {
			if s >= n {
				report("%s: successor %s out of range", id, s)
				continue
			}
			if seen[s] {
				report("%s: successor %s listed twice", id, s)
			}
			seen[s] = true
			if count(b.succs, s) != count(g.blocks[s].preds, id) {
				report("%s -> %s: edge not mirrored in predecessors of %s", id, s, s)
			}
		}
		for _, p := range b.preds {
			if p >= n {
				report("%s: predecessor %s out of range", id, p)
				continue
			}
			if count(b.preds, p) != count(g.blocks[p].succs, id) {
				report("%s <- %s: edge not mirrored in successors of %s", id, p, p)
			}
		}
	}
}

func validateSequence(g *Graph, id BlockID, placed []bool, report func(string, ...any)) {
	b := &g.blocks[id]
	if (b.head == NoInst) != (b.tail == NoInst) {
		report("%s: head %d and tail %d must both be set or both empty", id, b.head, b.tail)
		return
	}
	if b.head == NoInst {
		return
	}

	prev := NoInst
	for cur := b.head; cur != NoInst; cur = g.insts[cur-1].next {
		if int(cur) > len(g.insts) {
			report("%s: sequence references missing instruction %d", id, cur)
			return
		}
		if placed[cur-1] {
			report("%s: instruction %d reached twice", id, cur)
			return
		}
		placed[cur-1] = true
		d := &g.insts[cur-1]
		if d.block != id {
			report("%s: instruction %d claims block %s", id, cur, d.block)
		}
		if d.prev != prev {
			report("%s: instruction %d prev = %d, want %d", id, cur, d.prev, prev)
		}
		if d.opcode == OpcodePhi {
			report("%s: phi %d inside the instruction sequence", id, cur)
		}
		prev = cur
	}
	if prev != b.tail {
		report("%s: sequence ends at %d but tail is %d", id, prev, b.tail)
	}
}

func validatePhis(g *Graph, id BlockID, placed []bool, report func(string, ...any)) {
	for _, p := range g.blocks[id].phis {
		if p == NoInst || int(p) > len(g.insts) {
			report("%s: phi list references missing instruction %d", id, p)
			continue
		}
		d := &g.insts[p-1]
		if d.opcode != OpcodePhi {
			report("%s: %s instruction %d in phi list", id, d.opcode, p)
		}
		if d.block != id {
			report("%s: phi %d claims block %s", id, p, d.block)
		}
		if placed[p-1] {
			report("%s: phi %d placed twice", id, p)
		}
		placed[p-1] = true
	}
}

func count(list []BlockID, v BlockID) int {
	n := 0
	for _, x := range list {
		if x == v {
			n++
		}
	}
	return n
}

// MustValidate panics if g is invalid. Intended for tests and tools.
func MustValidate(g *Graph) {
	if err := Validate(g); err != nil {
		panic(fmt.Sprintf("invalid graph: %v", err))
	}
}
