package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the decoded rhine.toml.
type Config struct {
	Build  BuildConfig  `toml:"build"`
	Output OutputConfig `toml:"output"`
	Trace  TraceConfig  `toml:"trace"`
}

// BuildConfig is the [build] section.
type BuildConfig struct {
	Scripts       []string `toml:"scripts"` // globs relative to the project root
	Jobs          int      `toml:"jobs"`
	Emit          string   `toml:"emit"`
	OutDir        string   `toml:"out_dir"`
	ParallelEdges bool     `toml:"parallel_edges"`
}

// OutputConfig is the [output] section.
type OutputConfig struct {
	Color string `toml:"color"`
}

// TraceConfig is the [trace] section.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

// Project is a located and decoded rhine.toml.
type Project struct {
	Path   string
	Root   string
	Config Config
}

var (
	// ErrInvalidJobs indicates a negative [build].jobs.
	ErrInvalidJobs = errors.New("[build].jobs must not be negative")
	// ErrScriptOutsideRoot indicates a [build].scripts entry escaping the project root.
	ErrScriptOutsideRoot = errors.New("[build].scripts entry escapes the project root")
)

// LoadConfig decodes the rhine.toml at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("build", "jobs") && cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: %w", path, ErrInvalidJobs)
	}
	if color := strings.TrimSpace(cfg.Output.Color); color != "" &&
		!slices.Contains([]string{"auto", "on", "off"}, color) {
		return Config{}, fmt.Errorf("%s: invalid [output].color %q (expected: auto|on|off)", path, color)
	}
	return cfg, nil
}

// Load finds rhine.toml above startDir and decodes it. ok is false when no
// file exists.
func Load(startDir string) (*Project, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Project{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Scripts expands [build].scripts into sorted, de-duplicated paths.
func (p *Project) Scripts() ([]string, error) {
	if p == nil {
		return nil, nil
	}
	var out []string
	for _, pattern := range p.Config.Build.Scripts {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if filepath.IsAbs(pattern) {
			return nil, fmt.Errorf("%s: invalid [build].scripts entry %q: must be relative", p.Path, pattern)
		}
		full := filepath.Join(p.Root, filepath.FromSlash(pattern))
		if !pathWithin(p.Root, full) {
			return nil, fmt.Errorf("%s: %q: %w", p.Path, pattern, ErrScriptOutsideRoot)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid [build].scripts pattern %q: %w", p.Path, pattern, err)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ResolveOutDir returns [build].out_dir relative to the project root, or ""
// when unset.
func (p *Project) ResolveOutDir() string {
	if p == nil || strings.TrimSpace(p.Config.Build.OutDir) == "" {
		return ""
	}
	dir := filepath.FromSlash(strings.TrimSpace(p.Config.Build.OutDir))
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Root, dir)
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
