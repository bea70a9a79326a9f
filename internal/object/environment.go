package object

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// These errors are printed to users as-is, so they read as sentences.
var (
	ErrUndefined     = errors.New("Undefined variable")
	ErrUninitialized = errors.New("Accessing uninitialized variable")
)

var nextID atomic.Uint64

// Scope is one frame of bindings.
type Scope struct {
	ID       uint64
	Bindings map[string]Object
}

func newScope() *Scope {
	return &Scope{
		ID:       nextID.Add(1),
		Bindings: make(map[string]Object),
	}
}

// Environment is a stack of lexical scopes. The bottom frame is the global scope and
// lives as long as the Environment; inner frames are pushed and popped with block
// execution. Lookups resolve to the innermost frame holding a name.
type Environment struct {
	scopes []*Scope
}

func NewEnvironment() *Environment {
	return &Environment{scopes: []*Scope{newScope()}}
}

// Push opens a new innermost scope.
func (e *Environment) Push() {
	scope := newScope()
	e.scopes = append(e.scopes, scope)
	slog.Debug("------ new scope ------",
		slog.Uint64("scope", scope.ID),
		slog.Int("depth", len(e.scopes)))
}

// Pop discards the innermost scope. The global scope is never popped.
func (e *Environment) Pop() {
	if len(e.scopes) == 1 {
		panic("Attempted to pop the global scope")
	}
	e.scopes[len(e.scopes)-1] = nil
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Environment) Depth() int {
	return len(e.scopes)
}

func (e *Environment) current() *Scope {
	return e.scopes[len(e.scopes)-1]
}

// Define binds name in the innermost scope, replacing any binding already there.
func (e *Environment) Define(name string, val Object) {
	e.current().Bindings[name] = val
	slog.Debug("binding value",
		slog.String("name", name),
		slog.Any("type", val.Type()),
		slog.Int("depth", len(e.scopes)))
}

func (e *Environment) lookup(name string) (*Scope, Object, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if val, ok := e.scopes[i].Bindings[name]; ok {
			return e.scopes[i], val, true
		}
	}
	return nil, nil, false
}

func (e *Environment) Get(name string) (Object, error) {
	_, val, ok := e.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w '%s'.", ErrUndefined, name)
	}
	if val == BINDING_UNINITIALIZED {
		return nil, fmt.Errorf("%w '%s'.", ErrUninitialized, name)
	}
	return val, nil
}

// Assign overwrites the innermost existing binding of name. It never declares.
func (e *Environment) Assign(name string, val Object) error {
	scope, _, ok := e.lookup(name)
	if !ok {
		return fmt.Errorf("%w '%s'.", ErrUndefined, name)
	}
	scope.Bindings[name] = val
	slog.Debug("assigning bound value",
		slog.String("name", name),
		slog.Any("type", val.Type()),
		slog.Uint64("scope", scope.ID))
	return nil
}

// IsDefined reports whether any scope binds name.
func (e *Environment) IsDefined(name string) bool {
	_, _, ok := e.lookup(name)
	return ok
}
