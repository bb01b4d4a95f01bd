// Package ir is rhine's in-memory intermediate representation: a control
// flow graph of basic blocks, each holding a doubly linked sequence of
// instructions plus a separate list of phi instructions.
//
// A Graph owns everything it creates. Blocks and instructions are stored by
// value inside the graph and handed out as small Block and Inst handles that
// carry the graph's epoch; Graph.Release frees the whole graph and turns
// every handle stale.
//
// Blocks 0 and 1 are the start and end blocks. Edges are kept symmetric:
// every successor entry has a matching predecessor entry. A block never
// lists the same successor twice; a second edge to the same target is
// either rejected or routed through a fresh empty block.
//
// The opcode catalog lives in instructions.toml and is compiled into
// opcode_gen.go by cmd/irgen.
package ir
