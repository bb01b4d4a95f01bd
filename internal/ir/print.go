package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// DumpOptions configures graph dumping.
type DumpOptions struct {
	Color bool
}

type palette struct {
	block  *color.Color
	marker *color.Color
	opcode *color.Color
	typ    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		block:  color.New(color.FgCyan, color.Bold),
		marker: color.New(color.FgYellow),
		opcode: color.New(color.FgGreen),
		typ:    color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{p.block, p.marker, p.opcode, p.typ} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Dump writes a human-readable listing of g: one header line per block
// followed by its phis and its instruction sequence.
//
//	bb2  preds=[bb0] succs=[bb1]
//	  phi  ID: 3, Opcode: Phi         i32
//	       ID: 1, Opcode: Add         i32
func Dump(w io.Writer, g *Graph, opts DumpOptions) error {
	if w == nil || g == nil {
		return nil
	}
	if g.released {
		return Errorf(CodeGraphReleased, "Dump", "graph has been released")
	}
	p := newPalette(opts.Color)

	width := 0
	for i := range g.insts {
		if n := runewidth.StringWidth(instLabel(InstID(i+1), g.insts[i].opcode)); n > width {
			width = n
		}
	}

	if _, err := fmt.Fprintf(w, "graph blocks=%d insts=%d\n", len(g.blocks), len(g.insts)); err != nil {
		return err
	}
	for i := range g.blocks {
		id := BlockID(i)
		bd := &g.blocks[i]
		header := p.block.Sprint(id.String())
		switch {
		case g.hasStart && id == g.start:
			header += " " + p.marker.Sprint("[start]")
		case g.hasEnd && id == g.end:
			header += " " + p.marker.Sprint("[end]")
		}
		if _, err := fmt.Fprintf(w, "%s  preds=%s succs=%s\n",
			header, blockList(bd.preds), blockList(bd.succs)); err != nil {
			return err
		}
		for _, phi := range bd.phis {
			if err := dumpInst(w, g, p, "phi", phi, width); err != nil {
				return err
			}
		}
		for cur, n := bd.head, 0; cur != NoInst && n <= len(g.insts); cur, n = g.insts[cur-1].next, n+1 {
			if err := dumpInst(w, g, p, "", cur, width); err != nil {
				return err
			}
		}
	}
	return nil
}

func dumpInst(w io.Writer, g *Graph, p palette, prefix string, id InstID, width int) error {
	d := &g.insts[id-1]
	label := runewidth.FillRight(instLabel(id, d.opcode), width)
	label = strings.Replace(label, d.opcode.String(), p.opcode.Sprint(d.opcode.String()), 1)
	_, err := fmt.Fprintf(w, "  %-4s %s  %s\n", prefix, label, p.typ.Sprint(d.typ.String()))
	return err
}

func instLabel(id InstID, op Opcode) string {
	return fmt.Sprintf("ID: %d, Opcode: %s", id, op)
}

func blockList(ids []BlockID) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(id.String())
	}
	b.WriteByte(']')
	return b.String()
}
