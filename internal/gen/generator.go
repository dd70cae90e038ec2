package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strings"
	"text/template"

	"adapter-generator/internal/plan"
	"adapter-generator/internal/shape"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// WireImport is the import path of the wire-type package. Empty
	// means the wire types live in the generated package itself.
	WireImport string
	// GenerateComments enables per-field strategy comments.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:      "adapters",
		OutputDir:        "./generated",
		GenerateComments: true,
	}
}

// Generator generates Go adapter code from resolved conversion plans.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g. "track_adapter.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate produces one adapter file per aggregate and per enumeration.
// Output is deterministic: the same plans always yield the same bytes.
func (g *Generator) Generate(res *plan.Result) ([]GeneratedFile, error) {
	fallible := fallibleSet(res.Structs)

	var files []GeneratedFile

	for i := range res.Structs {
		sp := &res.Structs[i]

		file, err := g.generateStruct(sp, fallible)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", sp.Name, err)
		}

		files = append(files, *file)
	}

	for i := range res.Enums {
		ep := &res.Enums[i]

		file, err := g.generateEnum(ep)
		if err != nil {
			return nil, fmt.Errorf("generating enum %s: %w", ep.Name, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// fallibleSet computes which aggregates need a fallible wire-to-domain
// function. Fallibility propagates through nested conversions until the
// set is stable.
func fallibleSet(structs []plan.StructPlan) map[string]bool {
	fallible := make(map[string]bool, len(structs))

	for i := range structs {
		if structs[i].NeedsFallibleConversion {
			fallible[structs[i].Name] = true
		}
	}

	for changed := true; changed; {
		changed = false

		for i := range structs {
			sp := &structs[i]
			if fallible[sp.Name] {
				continue
			}

			for j := range sp.Fields {
				if fallible[referencedStruct(&sp.Fields[j])] {
					fallible[sp.Name] = true
					changed = true

					break
				}
			}
		}
	}

	return fallible
}

// referencedStruct names the nested aggregate a field plan converts
// through, or "" when the field needs no nested conversion.
func referencedStruct(fp *plan.FieldPlan) string {
	switch fp.Strategy {
	case plan.StrategyIgnore, plan.StrategyCustom,
		plan.StrategyDirectAssign, plan.StrategyCollectDirect:
		return ""
	}

	s := fp.Shape
	for s.Inner != nil && (s.Kind == shape.KindPointer || s.Kind == shape.KindSlice) {
		s = *s.Inner
	}

	if s.Kind != shape.KindStruct {
		return ""
	}

	return baseName(s.Name)
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

type structFileData struct {
	PackageName   string
	Imports       []importSpec
	ErrorTypeName string
	StructName    string
	WireType      string
	FromWireName  string
	ToWireName    string
	Fallible      bool
	FromWireStmts []string
	ToWireStmts   []string
}

func (g *Generator) generateStruct(sp *plan.StructPlan, fallible map[string]bool) (*GeneratedFile, error) {
	syn := &synthesizer{sp: sp, fallible: fallible, comments: g.config.GenerateComments}

	data := &structFileData{
		PackageName:   g.config.PackageName,
		ErrorTypeName: sp.GeneratedErrorTypeName,
		StructName:    sp.Name,
		WireType:      sp.Namespace + "." + sp.WireName,
		FromWireName:  sp.Name + "FromWire",
		ToWireName:    sp.Name + "ToWire",
		Fallible:      fallible[sp.Name],
		FromWireStmts: syn.fromWireBody(),
		ToWireStmts:   syn.toWireBody(),
	}

	data.Imports = g.fileImports(sp.Namespace, data.ErrorTypeName != "")

	return g.render(adapterTemplate, toSnake(sp.Name)+"_adapter.go", data)
}

type enumVariantData struct {
	DomainConst string
	WireConst   string
}

type enumFileData struct {
	PackageName string
	Imports     []importSpec
	EnumName    string
	WireType    string
	Variants    []enumVariantData
}

func (g *Generator) generateEnum(ep *plan.EnumPlan) (*GeneratedFile, error) {
	data := &enumFileData{
		PackageName: g.config.PackageName,
		EnumName:    ep.Name,
		WireType:    ep.Namespace + "." + ep.WireName,
	}

	for _, v := range ep.Variants {
		data.Variants = append(data.Variants, enumVariantData{
			DomainConst: domainConst(ep.Name, v.Name),
			WireConst:   ep.Namespace + "." + ep.WireName + "_" + v.WireName,
		})
	}

	// Enum adapters always panic on unknown values, which needs fmt.
	data.Imports = g.fileImports(ep.Namespace, true)

	return g.render(enumTemplate, toSnake(ep.Name)+"_enum_adapter.go", data)
}

// fileImports builds the sorted import block of one generated file.
func (g *Generator) fileImports(namespace string, needsFmt bool) []importSpec {
	var imports []importSpec

	if needsFmt {
		imports = append(imports, importSpec{Path: "fmt"})
	}

	if g.config.WireImport != "" {
		spec := importSpec{Path: g.config.WireImport}
		if path.Base(g.config.WireImport) != namespace {
			spec.Alias = namespace
		}

		imports = append(imports, spec)
	}

	sort.Slice(imports, func(i, j int) bool {
		return imports[i].Path < imports[j].Path
	})

	return imports
}

// render executes the template and formats the result. On a formatting
// failure the unformatted source is kept for debugging and the error
// is returned.
func (g *Generator) render(tmpl *template.Template, filename string, data any) (*GeneratedFile, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, filename, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: filename,
		Content:  formatted,
	}, nil
}

// domainConst names the domain constant of an enum variant. Variants
// already carrying the enum-name prefix keep it.
func domainConst(enum, variant string) string {
	if strings.HasPrefix(variant, enum) {
		return variant
	}

	return enum + variant
}

// toSnake maps a CamelCase type name to its snake_case filename stem.
// Consecutive capitals stay together ("TrackID" -> "track_id").
func toSnake(name string) string {
	var b strings.Builder

	prevUpper := false

	for i, r := range name {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if i > 0 && !prevUpper {
				b.WriteByte('_')
			}

			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}

		prevUpper = isUpper
	}

	return b.String()
}

var adapterTemplate = template.Must(template.New("adapter").Parse(`// Code generated by adapter-generator. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{if .ErrorTypeName}}
// {{.ErrorTypeName}} reports a required wire field that carried no value.
type {{.ErrorTypeName}} struct {
	Field string
}

func (e *{{.ErrorTypeName}}) Error() string {
	return fmt.Sprintf("{{.StructName}}: missing required wire field %s", e.Field)
}
{{end}}
// {{.FromWireName}} converts a {{.WireType}} wire message into {{.StructName}}.
func {{.FromWireName}}(in *{{.WireType}}) {{if .Fallible}}({{.StructName}}, error){{else}}{{.StructName}}{{end}} {
	out := {{.StructName}}{}
	if in == nil {
		return out{{if .Fallible}}, nil{{end}}
	}
{{range .FromWireStmts}}	{{.}}
{{end}}
	return out{{if .Fallible}}, nil{{end}}
}

// {{.ToWireName}} converts {{.StructName}} into its {{.WireType}} wire message.
func {{.ToWireName}}(in {{.StructName}}) *{{.WireType}} {
	out := &{{.WireType}}{}
{{range .ToWireStmts}}	{{.}}
{{end}}
	return out
}
`))

var enumTemplate = template.Must(template.New("enum").Parse(`// Code generated by adapter-generator. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
// {{.EnumName}}FromWire maps a wire {{.WireType}} value onto its domain variant.
func {{.EnumName}}FromWire(in {{.WireType}}) {{.EnumName}} {
	switch in {
{{range .Variants}}	case {{.WireConst}}:
		return {{.DomainConst}}
{{end}}	}

	panic(fmt.Sprintf("unknown wire {{.EnumName}} value: %d", in))
}

// {{.EnumName}}ToWire maps a domain {{.EnumName}} variant onto its wire value.
func {{.EnumName}}ToWire(in {{.EnumName}}) {{.WireType}} {
	switch in {
{{range .Variants}}	case {{.DomainConst}}:
		return {{.WireConst}}
{{end}}	}

	panic(fmt.Sprintf("unknown {{.EnumName}} variant: %d", in))
}
`))
