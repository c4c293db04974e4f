package main

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

const (
	appPath      = "example.com/app"
	helloPath    = "example.com/app/hello"
	registryFile = "/src/app/registry.go"
)

var fixtures = map[string]map[string]string{
	appPath: {
		registryFile: `package app

import "github.com/sportlog/di"

//go:generate go run github.com/sportlog/di/cmd/generator
type Registry struct {
	di.EmptyRegistry
}
`,
		"/src/app/server.go": `package app

// Port is the listening port.
type Port int

type Server struct {
	port  Port
	ratio float64
}

// NewServer builds the server.
// @component
func NewServer(
	port Port, // @inject default="8080"
	ratio float64, // @inject default="0.5"
	debug bool, // @inject default="true"
	label string, // @inject named="server.label"
) *Server {
	return &Server{port: port, ratio: ratio}
}

// @component
func (s *Server) Clone() *Server {
	return s
}
`,
	},
	helloPath: {
		"/src/app/hello/hello.go": `package hello

import "time"

// Greeter says hello.
// @abstract named="greeter"
type Greeter interface {
	Greet() string
}

type (
	// @abstract
	Clock interface {
		Now() time.Time
	}

	notAnnotated struct{}
)

type PoliteGreeter struct {
	name    string
	timeout time.Duration
	clock   Clock
}

func (g *PoliteGreeter) Greet() string {
	return "Dear " + g.name
}

// NewPoliteGreeter greets people politely.
// It is the default greeter.
// @component named="polite.greeter"
func NewPoliteGreeter(
	name string, // @inject default="world"
	timeout time.Duration, // @inject default="1m30s"
	clock Clock, // @inject named="clock.system"
) (*PoliteGreeter, error) {
	return &PoliteGreeter{name: name, timeout: timeout, clock: clock}, nil
}
`,
	},
}

// loadFixtures parses and type checks sources the way packages.Load would.
// Imports outside of the standard library are left unresolved.
func loadFixtures(t *testing.T, sources map[string]map[string]string) []*packages.Package {
	t.Helper()

	fset := token.NewFileSet()
	var pkgs []*packages.Package
	for path, files := range sources {
		var syntax []*ast.File
		for name, src := range files {
			file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
			require.NoError(t, err)
			syntax = append(syntax, file)
		}

		info := &types.Info{
			Defs:  make(map[*ast.Ident]types.Object),
			Uses:  make(map[*ast.Ident]types.Object),
			Types: make(map[ast.Expr]types.TypeAndValue),
		}
		conf := types.Config{
			Importer: importer.Default(),
			Error:    func(error) {},
		}
		typesPkg, _ := conf.Check(path, fset, syntax, info)

		pkgs = append(pkgs, &packages.Package{
			ID:        path,
			Name:      syntax[0].Name.Name,
			PkgPath:   path,
			Fset:      fset,
			Syntax:    syntax,
			Types:     typesPkg,
			TypesInfo: info,
		})
	}
	return pkgs
}
