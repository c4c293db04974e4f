package di

import (
	"fmt"
	"reflect"
	"strings"
)

type (
	aliasKind int

	// aliasEntry is either a redirect to another identifier or a factory.
	aliasEntry struct {
		kind   aliasKind
		target Identifier
		fn     reflect.Value
		deps   []Identifier
	}
)

const (
	redirectEntry aliasKind = iota
	factoryEntry
)

func newRedirect(target Identifier) aliasEntry {
	return aliasEntry{kind: redirectEntry, target: target}
}

func newFactory(fn any, deps []Identifier) (aliasEntry, error) {
	if err := validateFactorySignature(reflect.TypeOf(fn)); err != nil {
		return aliasEntry{}, err
	}
	for i, dep := range deps {
		if dep == "" {
			return aliasEntry{}, fmt.Errorf("dependency %d of the factory is an empty identifier", i)
		}
	}
	return aliasEntry{
		kind: factoryEntry,
		fn:   reflect.ValueOf(fn),
		deps: append([]Identifier(nil), deps...),
	}, nil
}

// requiredArgs is the number of arguments the factory cannot do without.
func (e aliasEntry) requiredArgs() int {
	typ := e.fn.Type()
	if typ.IsVariadic() {
		return typ.NumIn() - 1
	}
	return typ.NumIn()
}

func (e aliasEntry) String() string {
	if e.kind == redirectEntry {
		return "-> " + string(e.target)
	}
	deps := make([]string, len(e.deps))
	for i, d := range e.deps {
		deps[i] = string(d)
	}
	return fmt.Sprintf("factory %s [%s]", e.fn.Type(), strings.Join(deps, ", "))
}
