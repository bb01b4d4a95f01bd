package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// kindByBase maps catalog base names to ir.InstKind constants.
var kindByBase = map[string]string{
	"UnaryOperation":  "KindUnary",
	"BinaryOperation": "KindBinary",
	"AllocInst":       "KindAlloc",
	"PhiInst":         "KindPhi",
	"ReturnVoidInst":  "KindReturnVoid",
	"NopInst":         "KindNop",
}

type catalogFile struct {
	Instructions []entrySpec `toml:"instruction"`
}

type entrySpec struct {
	Opcode string `toml:"opcode"`
	Base   string `toml:"base"`
}

type entry struct {
	Name  string
	Base  string
	Kind  string
	Lower string
}

type catalog struct {
	Entries []entry
}

func loadCatalog(path string) (*catalog, error) {
	var raw catalogFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown keys: %v", path, undecoded)
	}
	cat, err := buildCatalog(raw.Instructions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func buildCatalog(specs []entrySpec) (*catalog, error) {
	if len(specs) == 0 {
		return nil, errors.New("catalog has no [[instruction]] entries")
	}

	lower := cases.Lower(language.Und)
	seen := make(map[string]bool, len(specs))
	phis := 0
	cat := &catalog{Entries: make([]entry, 0, len(specs))}

	for i, s := range specs {
		name := strings.TrimSpace(s.Opcode)
		if !token.IsIdentifier(name) || !token.IsExported(name) {
			return nil, fmt.Errorf("entry %d: opcode %q is not an exported Go identifier", i, s.Opcode)
		}
		if name == "Invalid" {
			return nil, fmt.Errorf("entry %d: opcode name %q is reserved", i, name)
		}
		key := lower.String(name)
		if seen[key] {
			return nil, fmt.Errorf("entry %d: duplicate opcode %q", i, name)
		}
		seen[key] = true

		kind, ok := kindByBase[s.Base]
		if !ok {
			return nil, fmt.Errorf("entry %d: opcode %s has unknown base %q", i, name, s.Base)
		}
		if kind == "KindPhi" {
			if name != "Phi" {
				return nil, fmt.Errorf("entry %d: PhiInst must back the opcode named Phi, got %s", i, name)
			}
			phis++
		}

		cat.Entries = append(cat.Entries, entry{Name: name, Base: s.Base, Kind: kind, Lower: key})
	}

	if phis != 1 {
		return nil, fmt.Errorf("catalog must declare exactly one PhiInst opcode, found %d", phis)
	}
	return cat, nil
}

var sourceTmpl = template.Must(template.New("opcodes").Parse(`// Code generated by irgen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

// Opcode identifies the operation an instruction performs.
type Opcode uint16

const (
	OpcodeInvalid Opcode = iota
{{- range .Entries}}
	Opcode{{.Name}}
{{- end}}

	opcodeCount
)

var opcodeNames = [...]string{
	OpcodeInvalid: "Invalid",
{{- range .Entries}}
	Opcode{{.Name}}: "{{.Name}}",
{{- end}}
}

var opcodeKinds = [...]InstKind{
	OpcodeInvalid: KindInvalid,
{{- range .Entries}}
	Opcode{{.Name}}: {{.Kind}},
{{- end}}
}

var opcodesByLowerName = map[string]Opcode{
{{- range .Entries}}
	"{{.Lower}}": Opcode{{.Name}},
{{- end}}
}
{{range .Entries}}
// CreateInst{{.Name}} allocates a {{.Base}} tagged Opcode{{.Name}}.
func (g *Graph) CreateInst{{.Name}}() (Inst, error) {
	return g.CreateInst(Opcode{{.Name}})
}
{{end}}`))

func render(cat *catalog, pkg, source string) ([]byte, error) {
	var buf bytes.Buffer
	err := sourceTmpl.Execute(&buf, struct {
		Package string
		Source  string
		Entries []entry
	}{pkg, source, cat.Entries})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}
