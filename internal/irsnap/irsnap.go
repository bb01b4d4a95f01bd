// Package irsnap stores ir graph images on disk, as msgpack (.rir) or
// JSON (.json).
package irsnap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"rhine/internal/ir"
)

// Format selects the snapshot encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

// Extension returns the file extension written for f.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".rir"
}

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "msgpack"
}

// ParseFormat accepts "msgpack" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msgpack", "rir":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatMsgpack, fmt.Errorf("unknown snapshot format %q (expected: msgpack|json)", s)
	}
}

// FormatFromPath picks the format from the file extension; anything other
// than .json is msgpack.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMsgpack
}

// Encode writes data to w.
func Encode(w io.Writer, data *ir.GraphData, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return msgpack.NewEncoder(w).Encode(data)
	}
}

// Decode reads one image from r.
func Decode(r io.Reader, format Format) (*ir.GraphData, error) {
	var data ir.GraphData
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&data)
	default:
		err = msgpack.NewDecoder(r).Decode(&data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", format, err)
	}
	if data.Schema != ir.SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d is not supported (want %d)", data.Schema, ir.SchemaVersion)
	}
	return &data, nil
}

// WriteFile exports g and writes it to path atomically. The format follows
// the extension.
func WriteFile(path string, g *ir.Graph) (err error) {
	data, err := g.Export()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := Encode(f, data, FormatFromPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the snapshot at path and rebuilds the graph.
func ReadFile(path string, opts ...ir.Option) (*ir.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := ir.Import(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
