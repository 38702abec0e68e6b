package bindgen

import (
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// Target names a binding flavour.
type Target string

const (
	TargetGo         Target = "go"
	TargetTypeScript Target = "typescript"
	TargetWIT        Target = "wit"
	TargetManifest   Target = "manifest"
)

// AllTargets lists every target in generation order.
var AllTargets = []Target{TargetGo, TargetTypeScript, TargetWIT, TargetManifest}

// ParseTargets converts target names, rejecting unknown ones.
func ParseTargets(names []string) ([]Target, error) {
	targets := make([]Target, 0, len(names))
	for _, n := range names {
		t := Target(strings.ToLower(strings.TrimSpace(n)))
		if !slices.Contains(AllTargets, t) {
			return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
				Value(n).
				Detail("unknown target %q", n).
				Build()
		}
		if !slices.Contains(targets, t) {
			targets = append(targets, t)
		}
	}
	return targets, nil
}

// Options controls binding generation.
type Options struct {
	// Name is the module name used for file names and top-level identifiers.
	Name string

	// Targets selects the outputs. Empty means AllTargets.
	Targets []Target

	// GoPackage is the package clause of the Go bindings. Default "bindings".
	GoPackage string
}

// File is one generated output, named relative to the output directory.
type File struct {
	Name string
	Data []byte
}

// Generate renders bindings for every exported function of m. When several
// exports share a name only the first is bound, matching wasm.Module.Function.
func Generate(m *wasm.Module, opts Options) ([]File, error) {
	if m == nil {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "nil module")
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	var files []File
	for _, t := range opts.Targets {
		var (
			out []File
			err error
		)
		switch t {
		case TargetGo:
			out, err = generateGo(m, opts)
		case TargetTypeScript:
			out, err = generateTypeScript(m, opts)
		case TargetWIT:
			out, err = generateWIT(m, opts)
		case TargetManifest:
			out, err = generateManifest(m, opts)
		}
		if err != nil {
			return nil, err
		}
		files = append(files, out...)
	}

	Logger().Debug("bindings rendered",
		zap.String("module", opts.Name),
		zap.Int("functions", len(m.ExportedFunctions)),
		zap.Int("files", len(files)),
	)
	return files, nil
}

func (o *Options) normalize() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.InvalidInput(errors.PhaseGenerate, "module name must not be empty")
	}
	if strings.ContainsAny(o.Name, `/\`) {
		return errors.InvalidInput(errors.PhaseGenerate, "module name must not contain a path separator")
	}
	if len(o.Targets) == 0 {
		o.Targets = AllTargets
	}
	for _, t := range o.Targets {
		if !slices.Contains(AllTargets, t) {
			return errors.InvalidInput(errors.PhaseGenerate, "unknown target "+string(t))
		}
	}
	if o.GoPackage == "" {
		o.GoPackage = "bindings"
	}
	if !token.IsIdentifier(o.GoPackage) {
		return errors.InvalidInput(errors.PhaseGenerate, "go package "+o.GoPackage+" is not a Go identifier")
	}
	return nil
}

// WriteFiles writes files into dir, creating it if needed. On error the
// paths written so far are returned with it.
func WriteFiles(dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO(errors.PhaseGenerate, "create output directory", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return paths, errors.IO(errors.PhaseGenerate, "write "+f.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// functions returns the exported functions to bind, first occurrence of
// each name only.
func functions(m *wasm.Module) []wasm.ExportedFunction {
	seen := make(map[string]bool, len(m.ExportedFunctions))
	out := make([]wasm.ExportedFunction, 0, len(m.ExportedFunctions))
	for _, f := range m.ExportedFunctions {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out
}

const generatedHeader = "Code generated by wasm-types. DO NOT EDIT."
