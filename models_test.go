package di

import (
	"errors"
	"sync/atomic"
)

// Fixtures shared by the container tests.

type (
	DummyInterface interface {
		Name() string
	}

	FooInterface interface {
		GetFoo() string
	}

	Dummy struct {
		optionalValue string
	}

	DummyUser struct{}

	Foo struct {
		dummy DummyInterface
	}

	DummyRecursive struct {
		dummy *DummyRecursive
	}

	Server struct {
		Port int
		Host string
	}

	Left struct {
		right *Right
	}

	Right struct {
		left *Left
	}

	Counted struct {
		ID int64
	}

	Handler struct {
		Dummy   DummyInterface `inject:""`
		Server  *Server        `inject:""`
		Name    string         `inject:"" default:"handler"`
		Retries int            `inject:"" default:"3"`
		Label   string         `inject:"label"`
		ignored string
	}

	Closing struct {
		name   string
		closed *[]string
		err    error
	}
)

func (d *Dummy) Name() string {
	return "dummy"
}

func (f *Foo) GetFoo() string {
	return "foo"
}

func (c *Closing) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func NewDummy(optionalValue string) *Dummy {
	return &Dummy{optionalValue: optionalValue}
}

func NewFoo(dummy DummyInterface) *Foo {
	return &Foo{dummy: dummy}
}

func NewDummyRecursive(dummy *DummyRecursive) *DummyRecursive {
	return &DummyRecursive{dummy: dummy}
}

func NewServer(port int, host string) *Server {
	return &Server{Port: port, Host: host}
}

func NewLeft(right *Right) *Left {
	return &Left{right: right}
}

func NewRight(left *Left) *Right {
	return &Right{left: left}
}

var errBoom = errors.New("boom")

func NewBrokenServer() (*Server, error) {
	return nil, errBoom
}

// newCounted returns a constructor counting its calls.
func newCounted(calls *atomic.Int64) func() *Counted {
	return func() *Counted {
		return &Counted{ID: calls.Add(1)}
	}
}

// newTestCatalog defines the fixtures the way a generated registry would.
func newTestCatalog() *Catalog {
	cat := NewCatalog()
	MustDefine[DummyInterface](cat)
	MustDefine[FooInterface](cat)
	MustDefine[*Dummy](cat, Constructor(NewDummy), ParamNames("optionalValue"), Default(0, ""))
	MustDefine[*Foo](cat, Constructor(NewFoo), ParamNames("dummy"))
	MustDefine[*DummyRecursive](cat, Constructor(NewDummyRecursive), ParamNames("dummy"))
	MustDefine[*Left](cat, Constructor(NewLeft))
	MustDefine[*Right](cat, Constructor(NewRight))
	return cat
}

var (
	dummyInterfaceID = IdentifierOf[DummyInterface]()
	fooInterfaceID   = IdentifierOf[FooInterface]()
	dummyID          = IdentifierOf[*Dummy]()
	fooID            = IdentifierOf[*Foo]()
	serverID         = IdentifierOf[*Server]()
)
