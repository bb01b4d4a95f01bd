// Package script reads TOML graph descriptions and replays them through
// irbuild.
//
//	name = "diamond"
//	parallel_edges = false
//
//	[[block]]
//	id = 2
//	succs = [3, 4]
//
//	  [[block.inst]]
//	  id = 1
//	  op = "Cmp"
//	  type = "bool"
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rhine/internal/ir"
	"rhine/internal/irbuild"
)

// File is a decoded graph script.
type File struct {
	Path          string  `toml:"-"`
	Name          string  `toml:"name"`
	ParallelEdges *bool   `toml:"parallel_edges"`
	Blocks        []Block `toml:"block"`
}

// Block is one [[block]] entry.
type Block struct {
	ID    uint32   `toml:"id"`
	Succs []uint32 `toml:"succs"`
	Insts []Inst   `toml:"inst"`
}

// Inst is one [[block.inst]] entry.
type Inst struct {
	ID   uint32 `toml:"id"`
	Op   string `toml:"op"`
	Type string `toml:"type"`
}

// Load decodes the script at path. A missing name defaults to the file's
// base name without extension.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	f.Path = path
	if strings.TrimSpace(f.Name) == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := check(&f, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Parse decodes a script held in memory.
func Parse(name, src string) (*File, error) {
	var f File
	meta, err := toml.Decode(src, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = name
	}
	if err := check(&f, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

func check(f *File, meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for i, b := range f.Blocks {
		for j, in := range b.Insts {
			if _, ok := ir.ParseOpcode(in.Op); !ok {
				return fmt.Errorf("block[%d] (id %d) inst[%d]: unknown opcode %q", i, b.ID, j, in.Op)
			}
			if _, err := ir.ParseDataType(in.Type); err != nil {
				return fmt.Errorf("block[%d] (id %d) inst[%d]: %w", i, b.ID, j, err)
			}
		}
	}
	return nil
}

// Build replays f into a finalized graph. The script's parallel_edges
// setting, when present, overrides opts.
func Build(ctx context.Context, f *File, opts ...irbuild.Option) (*ir.Graph, error) {
	if f.ParallelEdges != nil {
		opts = append(opts, irbuild.WithParallelEdges(*f.ParallelEdges))
	}
	c := irbuild.New(ctx, opts...)
	for _, b := range f.Blocks {
		c.BasicBlock(b.ID, b.Succs...)
		for _, in := range b.Insts {
			// Checked by Load/Parse.
			op, _ := ir.ParseOpcode(in.Op)
			typ, _ := ir.ParseDataType(in.Type)
			c.Inst(in.ID, op).Type(typ)
		}
		c.ResetBlock()
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("%s: block %d: %w", f.Name, b.ID, err)
		}
	}
	g, err := c.Finalize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return g, nil
}
