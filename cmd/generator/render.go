package main

import (
	"bytes"
	"fmt"
	"go/types"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/tools/imports"
)

const generatedHeader = "// Code generated by github.com/sportlog/di/cmd/generator. DO NOT EDIT."

var fileTemplate = template.Must(template.New("registry").Parse(`{{ .Header }}

package {{ .Package }}

import (
{{- range .Imports }}
	{{ .Alias }} "{{ .Path }}"
{{- end }}
)

func ({{ .Registry }}) Register(cat *{{ .DI }}.Catalog) {
{{- range .Abstracts }}
	{{ . }}
{{- end }}
{{- range .Components }}
{{- if .Comment }}
	// {{ .Comment }}
{{- end }}
	{{ .Statement }}
{{- end }}
}
`))

type (
	renderer struct {
		registry *RegistryDefinition
		imports  *importSet
		diAlias  string
	}

	fileData struct {
		Header     string
		Package    string
		Registry   string
		DI         string
		Imports    []importData
		Abstracts  []string
		Components []componentData
	}

	importData struct {
		Alias string
		Path  string
	}

	componentData struct {
		Comment   string
		Statement string
	}
)

func newRenderer(registry *RegistryDefinition) *renderer {
	r := &renderer{
		registry: registry,
		imports:  newImportSet(registry.PackageName, "cat"),
	}
	r.diAlias = r.imports.add(diImportPath)
	return r
}

// render generates the source of the file holding the Register method.
func (r *renderer) render(filename string, result *ScanResult) ([]byte, error) {
	data := fileData{
		Header:   generatedHeader,
		Package:  r.registry.PackageName,
		Registry: r.registry.StructName,
		DI:       r.diAlias,
	}

	abstracts := slices.Clone(result.Abstracts)
	slices.SortFunc(abstracts, func(a, b AbstractDefinition) int {
		return strings.Compare(a.ImportPath+"."+a.TypeName, b.ImportPath+"."+b.TypeName)
	})
	for _, a := range abstracts {
		data.Abstracts = append(data.Abstracts, r.abstractStatement(a))
	}

	components := slices.Clone(result.Components)
	slices.SortFunc(components, func(a, b ComponentDefinition) int {
		return strings.Compare(a.ImportPath+"."+a.FnName, b.ImportPath+"."+b.FnName)
	})
	for _, c := range components {
		statement, err := r.componentStatement(c)
		if err != nil {
			return nil, fmt.Errorf("unable to render component %s.%s:\n\t%w", c.ImportPath, c.FnName, err)
		}
		data.Components = append(data.Components, componentData{
			Comment:   firstLine(c.Description),
			Statement: statement,
		})
	}

	for path, alias := range r.imports.aliases {
		data.Imports = append(data.Imports, importData{Alias: alias, Path: path})
	}
	slices.SortFunc(data.Imports, func(a, b importData) int {
		return strings.Compare(a.Path, b.Path)
	})

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("unable to execute template:\n\t%w", err)
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to format generated code:\n\t%w\n%s", err, buf.String())
	}

	return formatted, nil
}

func (r *renderer) abstractStatement(a AbstractDefinition) string {
	opts := []string{r.di("Abstract()")}
	if a.Named != "" {
		opts = append(opts, r.di(fmt.Sprintf("Named(%q)", a.Named)))
	}
	return fmt.Sprintf("%s[%s](cat, %s)", r.di("MustDefine"), r.typeString(a.Type), strings.Join(opts, ", "))
}

func (r *renderer) componentStatement(c ComponentDefinition) (string, error) {
	fn := c.FnName
	if c.ImportPath != r.registry.ImportPath {
		fn = r.imports.add(c.ImportPath) + "." + fn
	}

	opts := []string{r.di(fmt.Sprintf("Constructor(%s)", fn))}
	if c.Named != "" {
		opts = append(opts, r.di(fmt.Sprintf("Named(%q)", c.Named)))
	}

	if len(c.Params) > 0 {
		names := make([]string, len(c.Params))
		for i, p := range c.Params {
			names[i] = strconv.Quote(p.Name)
		}
		opts = append(opts, r.di(fmt.Sprintf("ParamNames(%s)", strings.Join(names, ", "))))
	}

	for i, p := range c.Params {
		if named, found := p.Inject.Named(); found {
			opts = append(opts, r.di(fmt.Sprintf("Inject(%d, %q)", i, named)))
		}
		if raw, found := p.Inject.Default(); found {
			literal, err := r.defaultLiteral(raw, p.Type)
			if err != nil {
				return "", fmt.Errorf("invalid default for parameter %s:\n\t%w", p.Name, err)
			}
			opts = append(opts, r.di(fmt.Sprintf("Default(%d, %s)", i, literal)))
		}
	}

	return fmt.Sprintf("%s[%s](cat, %s)", r.di("MustDefine"), r.typeString(c.Result), strings.Join(opts, ", ")), nil
}

// defaultLiteral renders raw as a Go expression of type typ.
func (r *renderer) defaultLiteral(raw string, typ types.Type) (string, error) {
	if named, ok := typ.(*types.Named); ok && named.Obj().Pkg() != nil &&
		named.Obj().Pkg().Path() == "time" && named.Obj().Name() == "Duration" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%d)", r.typeString(typ), d.Nanoseconds()), nil
	}

	basic, ok := typ.Underlying().(*types.Basic)
	if !ok {
		return "", fmt.Errorf("default values are only supported for basic types, got %s", typ)
	}

	var literal string
	switch info := basic.Info(); {
	case info&types.IsString != 0:
		literal = strconv.Quote(raw)
	case info&types.IsBoolean != 0:
		if _, err := strconv.ParseBool(raw); err != nil {
			return "", err
		}
		literal = raw
	case info&types.IsInteger != 0:
		if _, err := strconv.ParseInt(raw, 0, 64); err != nil {
			return "", err
		}
		literal = raw
		if types.Identical(typ, types.Typ[types.Int]) {
			return literal, nil
		}
	case info&types.IsFloat != 0:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return "", err
		}
		literal = raw
	default:
		return "", fmt.Errorf("default values are not supported for %s", typ)
	}

	if types.Identical(typ, types.Typ[types.String]) || types.Identical(typ, types.Typ[types.Bool]) {
		return literal, nil
	}
	return fmt.Sprintf("%s(%s)", r.typeString(typ), literal), nil
}

func (r *renderer) typeString(typ types.Type) string {
	return types.TypeString(typ, r.qualifier)
}

func (r *renderer) qualifier(pkg *types.Package) string {
	if pkg.Path() == r.registry.ImportPath {
		return ""
	}
	return r.imports.add(pkg.Path())
}

func (r *renderer) di(expr string) string {
	return r.diAlias + "." + expr
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
