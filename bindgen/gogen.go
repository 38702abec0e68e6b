package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/runtime"
	"github.com/wippyai/wasm-types/wasm"
)

type goFunc struct {
	Export    string
	Method    string
	Signature string
	Params    []goParam
	Results   []string
}

type goParam struct {
	Name string
	Type string
}

func (f goFunc) ParamList() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Name + " " + p.Type
	}
	return strings.Join(parts, ", ")
}

func (f goFunc) ArgList() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Name
	}
	return strings.Join(parts, ", ")
}

func (f goFunc) ReturnList() string {
	if len(f.Results) == 0 {
		return "error"
	}
	return "(" + strings.Join(f.Results, ", ") + ", error)"
}

// ZeroReturns is the result list used on the error path, without the error.
func (f goFunc) ZeroReturns() string {
	zeros := make([]string, len(f.Results))
	for i := range zeros {
		zeros[i] = "0"
	}
	return strings.Join(zeros, ", ")
}

func (f goFunc) ResultExprs() string {
	parts := make([]string, len(f.Results))
	for i, t := range f.Results {
		parts[i] = fmt.Sprintf("res[%d].(%s)", i, t)
	}
	return strings.Join(parts, ", ")
}

var goTemplate = template.Must(template.New("go").Parse(`// {{.Header}}

package {{.Package}}

import (
{{- if .Funcs}}
	"context"
{{end}}
{{- if .HasMemory}}
	"github.com/tetratelabs/wazero/api"
{{end}}
	"github.com/wippyai/wasm-types/runtime"
)

// {{.Type}} calls the exports of {{.Name}}.wasm through a runtime instance.
type {{.Type}} struct {
	inst *runtime.Instance
}

// New{{.Type}} wraps an instance of {{.Name}}.wasm.
func New{{.Type}}(inst *runtime.Instance) *{{.Type}} {
	return &{{.Type}}{inst: inst}
}
{{range .Funcs}}
// {{.Method}} calls the {{printf "%q" .Export}} export: {{.Signature}}.
func (m *{{$.Type}}) {{.Method}}(ctx context.Context{{if .Params}}, {{.ParamList}}{{end}}) {{.ReturnList}} {
{{- if .Results}}
	res, err := m.inst.Call(ctx, {{printf "%q" .Export}}{{if .Params}}, {{.ArgList}}{{end}})
	if err != nil {
		return {{.ZeroReturns}}, err
	}
	return {{.ResultExprs}}, nil
{{- else}}
	_, err := m.inst.Call(ctx, {{printf "%q" .Export}}{{if .Params}}, {{.ArgList}}{{end}})
	return err
{{- end}}
}
{{end}}
{{- if .HasMemory}}
// Memory returns the {{printf "%q" .MemoryName}} linear memory export.
func (m *{{.Type}}) Memory() api.Memory {
	return m.inst.Memory()
}
{{end}}`))

func generateGo(m *wasm.Module, opts Options) ([]File, error) {
	typeName := goIdent(opts.Name)
	reserved := []string{}
	if m.HasExportedMemory {
		reserved = append(reserved, "Memory")
	}
	methods := newNamer(reserved...)

	var funcs []goFunc
	for _, f := range functions(m) {
		gf := goFunc{
			Export:    f.Name,
			Method:    methods.unique(goIdent(f.Name), ""),
			Signature: f.Signature.String(),
		}
		for i, p := range f.Signature.Params {
			gf.Params = append(gf.Params, goParam{
				Name: fmt.Sprintf("p%d", i),
				Type: runtime.GoType(p),
			})
		}
		for _, r := range f.Signature.Results {
			gf.Results = append(gf.Results, runtime.GoType(r))
		}
		funcs = append(funcs, gf)
	}

	var buf bytes.Buffer
	err := goTemplate.Execute(&buf, map[string]any{
		"Header":     generatedHeader,
		"Package":    opts.GoPackage,
		"Name":       opts.Name,
		"Type":       typeName,
		"Funcs":      funcs,
		"HasMemory":  m.HasExportedMemory,
		"MemoryName": m.MemoryName,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "render Go bindings")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "format Go bindings")
	}
	return []File{{Name: opts.Name + "_bindings.go", Data: src}}, nil
}
