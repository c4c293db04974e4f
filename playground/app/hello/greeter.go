package hello

import "fmt"

// Greeter builds greetings.
//
// @abstract
type Greeter interface {
	Greet() string
}

type PoliteGreeter struct {
	target      string
	punctuation string
}

// NewPoliteGreeter greets the configured target.
//
// @component
func NewPoliteGreeter(
	target string, // @inject named="greeting.target"
	punctuation string, // @inject default="!"
) *PoliteGreeter {
	return &PoliteGreeter{target: target, punctuation: punctuation}
}

func (g *PoliteGreeter) Greet() string {
	return fmt.Sprintf("Hello %s%s", g.target, g.punctuation)
}
