package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"
)

const diImportPath = "github.com/sportlog/di"

type (
	// ComponentDefinition is a constructor annotated with @component.
	ComponentDefinition struct {
		FnName      string
		Description string
		Named       string
		ImportPath  string

		Result types.Type
		Params []ParamDefinition
	}

	ParamDefinition struct {
		Name   string
		Type   types.Type
		Inject InjectAnnotation
	}

	// AbstractDefinition is a type annotated with @abstract.
	AbstractDefinition struct {
		TypeName   string
		Named      string
		ImportPath string
		Type       types.Type
	}

	// RegistryDefinition is the struct the Register method is generated for.
	RegistryDefinition struct {
		PackageName string
		ImportPath  string
		StructName  string
	}

	ScanResult struct {
		Registry   *RegistryDefinition
		Components []ComponentDefinition
		Abstracts  []AbstractDefinition
	}

	scanner struct {
		logger     zerolog.Logger
		targetFile string
	}
)

func (c ComponentDefinition) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = fmt.Sprintf("%s %s [%s]", p.Name, p.Type, p.Inject)
	}
	return fmt.Sprintf(
		`Component: %s
Description: %s
Import Path: %s
Named: %s
Result: %s
Params: [%s]`,
		c.FnName,
		c.Description,
		c.ImportPath,
		c.Named,
		c.Result,
		strings.Join(params, ", "),
	)
}

func newScanner(logger zerolog.Logger, targetFile string) *scanner {
	return &scanner{logger: logger, targetFile: targetFile}
}

// scan looks in pkgs for:
//   - functions annotated with @component
//   - types annotated with @abstract
//   - the struct embedding di.EmptyRegistry, in the target file only
func (s *scanner) scan(pkgs []*packages.Package) (*ScanResult, error) {
	result := &ScanResult{}

	for _, pkg := range pkgs {
		logger := s.logger.With().Str("package", pkg.PkgPath).Logger()
		logger.Debug().Msg("Scanning package")

		if pkg.TypesInfo == nil {
			logger.Warn().Msg("No type information, skipping package")
			continue
		}
		for _, err := range pkg.Errors {
			logger.Debug().Err(err).Msg("Package loaded with errors")
		}

		for _, file := range pkg.Syntax {
			if pkg.Fset.Position(file.Pos()).Filename == s.targetFile {
				if registry := findRegistry(file, pkg); registry != nil {
					logger.Debug().Str("struct", registry.StructName).Msg("=> Found registry")
					result.Registry = registry
				}
			}

			for _, decl := range file.Decls {
				switch decl := decl.(type) {
				case *ast.FuncDecl:
					if decl.Recv != nil || decl.Doc == nil || !hasAnnotation(decl.Doc.Text(), componentAnnotationTag) {
						continue
					}
					component, err := s.component(&logger, pkg, file, decl)
					if err != nil {
						return nil, err
					}
					result.Components = append(result.Components, component)

				case *ast.GenDecl:
					if decl.Tok != token.TYPE {
						continue
					}
					result.Abstracts = append(result.Abstracts, s.abstracts(&logger, pkg, decl)...)
				}
			}
		}
	}

	return result, nil
}

func (s *scanner) component(logger *zerolog.Logger, pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) (ComponentDefinition, error) {
	fnLogger := logger.With().Str("component", fn.Name.Name).Logger()
	fnLogger.Debug().Msg("=> Found component")

	obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	if !ok {
		return ComponentDefinition{}, fmt.Errorf("no type information for component %s.%s", pkg.PkgPath, fn.Name.Name)
	}
	if !fn.Name.IsExported() {
		return ComponentDefinition{}, fmt.Errorf("component %s.%s must be exported", pkg.PkgPath, fn.Name.Name)
	}
	sig := obj.Type().(*types.Signature)
	if sig.TypeParams().Len() > 0 {
		return ComponentDefinition{}, fmt.Errorf("component %s.%s cannot be generic", pkg.PkgPath, fn.Name.Name)
	}
	if err := checkResults(sig); err != nil {
		return ComponentDefinition{}, fmt.Errorf("invalid component %s.%s:\n\t%w", pkg.PkgPath, fn.Name.Name, err)
	}

	annotation := parseTypeAnnotation(&fnLogger, fn.Doc.Text(), componentAnnotationTag)
	named, _ := annotation.Named()

	component := ComponentDefinition{
		FnName:      fn.Name.Name,
		Description: annotation.description,
		Named:       named,
		ImportPath:  pkg.PkgPath,
		Result:      sig.Results().At(0).Type(),
	}

	idx := 0
	for _, field := range fn.Type.Params.List {
		comment := findCommentForParam(pkg.Fset, file, field)
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, name := range names {
			param := ParamDefinition{
				Type: sig.Params().At(idx).Type(),
			}
			if name != nil && name.Name != "_" {
				param.Name = name.Name
			}
			paramLogger := fnLogger.With().Str("param", param.Name).Logger()
			param.Inject = parseInjectAnnotation(&paramLogger, comment)
			component.Params = append(component.Params, param)
			idx++
		}
	}

	return component, nil
}

func (s *scanner) abstracts(logger *zerolog.Logger, pkg *packages.Package, decl *ast.GenDecl) []AbstractDefinition {
	var abstracts []AbstractDefinition
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		doc := typeSpec.Doc
		if doc == nil && len(decl.Specs) == 1 {
			doc = decl.Doc
		}
		if doc == nil || !hasAnnotation(doc.Text(), abstractAnnotationTag) {
			continue
		}

		typeLogger := logger.With().Str("type", typeSpec.Name.Name).Logger()
		if !typeSpec.Name.IsExported() {
			typeLogger.Warn().Msg("Abstract type is not exported, skipping it")
			continue
		}
		obj, ok := pkg.TypesInfo.Defs[typeSpec.Name].(*types.TypeName)
		if !ok {
			typeLogger.Warn().Msg("No type information for abstract type, skipping it")
			continue
		}
		typeLogger.Debug().Msg("=> Found abstract type")

		annotation := parseTypeAnnotation(&typeLogger, doc.Text(), abstractAnnotationTag)
		named, _ := annotation.Named()
		abstracts = append(abstracts, AbstractDefinition{
			TypeName:   typeSpec.Name.Name,
			Named:      named,
			ImportPath: pkg.PkgPath,
			Type:       obj.Type(),
		})
	}
	return abstracts
}

func checkResults(sig *types.Signature) error {
	results := sig.Results()
	switch {
	case results.Len() == 1:
		return nil
	case results.Len() == 2 && types.Identical(results.At(1).Type(), types.Universe.Lookup("error").Type()):
		return nil
	default:
		return fmt.Errorf("must return the component, or the component and an error")
	}
}

// findRegistry returns the struct of file embedding di.EmptyRegistry, if any.
func findRegistry(file *ast.File, pkg *packages.Package) *RegistryDefinition {
	alias, imported := importAlias(file, diImportPath)
	if !imported {
		return nil
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, field := range structType.Fields.List {
				if len(field.Names) > 0 {
					continue
				}
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				if ident, ok := sel.X.(*ast.Ident); ok && ident.Name == alias && sel.Sel.Name == "EmptyRegistry" {
					return &RegistryDefinition{
						PackageName: file.Name.Name,
						ImportPath:  pkg.PkgPath,
						StructName:  typeSpec.Name.Name,
					}
				}
			}
		}
	}
	return nil
}

func importAlias(file *ast.File, path string) (string, bool) {
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil || importPath != path {
			continue
		}
		if imp.Name != nil {
			return imp.Name.Name, true
		}
		return lastToken(importPath), true
	}
	return "", false
}

func findCommentForParam(fset *token.FileSet, file *ast.File, param *ast.Field) string {
	paramLine := fset.Position(param.Pos()).Line

	for _, commentGroup := range file.Comments {
		for _, comment := range commentGroup.List {
			if fset.Position(comment.Pos()).Line == paramLine {
				return comment.Text
			}
		}
	}
	return ""
}
