package registry

import "github.com/sportlog/di"

//go:generate go run github.com/sportlog/di/cmd/generator
type Registry struct {
	di.EmptyRegistry
}
