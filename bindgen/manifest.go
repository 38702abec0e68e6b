package bindgen

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// Manifest is the host-language-neutral summary written by the manifest
// target.
type Manifest struct {
	Module    string             `yaml:"module"`
	Functions []ManifestFunction `yaml:"functions"`
	Memory    *ManifestMemory    `yaml:"memory,omitempty"`
	Exports   []ManifestExport   `yaml:"exports,omitempty"`
}

// ManifestFunction describes one bound function.
type ManifestFunction struct {
	Name      string   `yaml:"name"`
	TypeIndex uint32   `yaml:"type_index"`
	Params    []string `yaml:"params,flow"`
	Results   []string `yaml:"results,flow"`
	Signature string   `yaml:"signature"`
}

// ManifestMemory names the exported linear memory.
type ManifestMemory struct {
	Name string `yaml:"name"`
}

// ManifestExport is one raw export record of any kind.
type ManifestExport struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Index uint32 `yaml:"index"`
}

// NewManifest summarizes m.
func NewManifest(name string, m *wasm.Module) *Manifest {
	man := &Manifest{Module: name, Functions: []ManifestFunction{}}
	for _, f := range functions(m) {
		man.Functions = append(man.Functions, ManifestFunction{
			Name:      f.Name,
			TypeIndex: f.TypeIndex,
			Params:    valueTypeNames(f.Signature.Params),
			Results:   valueTypeNames(f.Signature.Results),
			Signature: f.Signature.String(),
		})
	}
	if m.HasExportedMemory {
		man.Memory = &ManifestMemory{Name: m.MemoryName}
	}
	for _, e := range m.Exports {
		man.Exports = append(man.Exports, ManifestExport{Name: e.Name, Kind: e.Kind.String(), Index: e.Index})
	}
	return man
}

func valueTypeNames(types []wasm.ValueType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

// ParseManifest decodes a manifest written by the manifest target.
func ParseManifest(data []byte) (*Manifest, error) {
	var man Manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse manifest")
	}
	return &man, nil
}

func generateManifest(m *wasm.Module, opts Options) ([]File, error) {
	var buf bytes.Buffer
	buf.WriteString("# " + generatedHeader + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewManifest(opts.Name, m)); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "encode manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "encode manifest")
	}
	return []File{{Name: opts.Name + ".bindings.yaml", Data: buf.Bytes()}}, nil
}
