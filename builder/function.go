// Package builder generates complete compilation units for kernel
// functions: it walks a function's call graph, renders each unique callee
// exactly once in dependency order, prepends a backend preamble, and hands
// the assembled source to the native build step.
package builder

import (
	"fmt"

	"github.com/mengjing120/kernelgen/types"
)

// Param is one declared kernel function parameter.
type Param struct {
	Name string
	Type types.KnownType
}

// Function is one device function: a name, a typed signature, and a body
// written in the backend C dialect. Functions are deduplicated by pointer
// identity, so define each one once and share the pointer.
type Function struct {
	Name   string
	Params []Param
	// Return is the C return type. Empty means void.
	Return string
	Body   string

	scope *Scope
}

// Scope resolves callee names for the functions defined in it. It plays
// the role of the defining module: call-site identifiers that are not
// builtins are looked up here.
type Scope struct {
	funcs map[string]*Function
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{funcs: make(map[string]*Function)}
}

// Define registers fn in the scope and returns it. Redefining a name is a
// programmer error.
func (s *Scope) Define(fn *Function) *Function {
	if fn.Name == "" {
		panic("function must have a name")
	}
	if _, exists := s.funcs[fn.Name]; exists {
		panic(fmt.Sprintf("function %s already defined in scope", fn.Name))
	}
	fn.scope = s
	s.funcs[fn.Name] = fn
	return fn
}

// Lookup resolves a function by name.
func (s *Scope) Lookup(name string) (*Function, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

// dependencies returns the functions fn calls, in order of first
// appearance, excluding builtins. Unresolvable names are an error: the
// function cannot be compiled without them.
func (fn *Function) dependencies() ([]*Function, error) {
	var deps []*Function
	for _, name := range callSites(fn.Body) {
		if isBuiltin(name) {
			continue
		}
		if fn.scope == nil {
			return nil, fmt.Errorf(
				"function %s calls %s but is not defined in any scope", fn.Name, name)
		}
		callee, ok := fn.scope.Lookup(name)
		if !ok {
			return nil, fmt.Errorf(
				"function %s calls %s, which is not defined in its scope", fn.Name, name)
		}
		deps = append(deps, callee)
	}
	return deps, nil
}
