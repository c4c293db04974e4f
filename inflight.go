package di

import (
	"strings"

	"github.com/sportlog/di/set"
)

// inflight tracks the identifiers being resolved on the current call stack.
type inflight struct {
	members set.Set[Identifier]
	stack   []Identifier
}

func newInflight() *inflight {
	return &inflight{
		members: set.New[Identifier](),
	}
}

// push marks id in flight. If id is already in flight nothing is recorded and
// the chain leading back to id is returned.
func (f *inflight) push(id Identifier) (chain string, cyclic bool) {
	if !f.members.Add(id) {
		return f.chainTo(id), true
	}
	f.stack = append(f.stack, id)

	return "", false
}

func (f *inflight) pop() Identifier {
	if len(f.stack) == 0 {
		panic("inflight: pop from empty stack")
	}
	id := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	f.members.Remove(id)

	return id
}

func (f *inflight) len() int {
	return len(f.stack)
}

func (f *inflight) chainTo(id Identifier) string {
	start := len(f.stack) - 1
	for start > 0 && f.stack[start] != id {
		start--
	}

	var b strings.Builder
	for depth, step := range append(f.stack[start:len(f.stack):len(f.stack)], id) {
		b.WriteString(strings.Repeat("\t", depth))
		if depth > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(string(step))
		b.WriteByte('\n')
	}
	return b.String()
}
