// Package bindings maps a program's named arguments to concrete GPU
// resources. Bindings retain the resources they reference for as long as the
// binding set is alive, which keeps a resource's GPU memory valid while any
// in-flight command list may still read it.
package bindings

import (
	"fmt"

	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
)

// programBindings is the implementation of the ProgramBindings interface.
type programBindings struct {
	prog  program.Program
	bound map[string]resource.Resource
	// native caches the backend descriptor set / bind group, set by the
	// graphics context the first time the bindings are used in a command list.
	native any

	released bool
}

// ProgramBindings is an immutable argument-name-to-resource mapping for one
// program. Per-frame variants are derived with NewFrom, rebinding only the
// mutable arguments while sharing everything constant with the base set.
type ProgramBindings interface {
	// Program returns the program these bindings target.
	Program() program.Program

	// Resource looks up the resource bound to an argument name.
	//
	// Parameters:
	//   - name: the argument name
	//
	// Returns:
	//   - resource.Resource: the bound resource
	//   - bool: whether the argument is bound
	Resource(name string) (resource.Resource, bool)

	// Native returns the backend-native binding object, or nil before first use.
	Native() any

	// SetNative stores the backend-native binding object. Called by the
	// graphics context, not by user code.
	SetNative(native any)

	// Release drops the references held on all bound resources. The bindings
	// must not be used afterwards. Release is idempotent.
	Release()
}

var _ ProgramBindings = &programBindings{}

// New creates bindings for a program by resolving every declared argument
// against the given resource map. Resolution is all-or-nothing: a missing
// non-optional argument or a resource supplied for an undeclared name fails
// the whole construction and nothing is retained.
//
// Parameters:
//   - prog: the program whose arguments are bound
//   - resources: argument name to resource mapping
//
// Returns:
//   - ProgramBindings: the new binding set, holding a reference on each resource
//   - error: an error if the mapping does not satisfy the program's arguments
func New(prog program.Program, resources map[string]resource.Resource) (ProgramBindings, error) {
	for name := range resources {
		if _, ok := prog.Argument(name); !ok {
			return nil, fmt.Errorf("bindings for %q: argument %q is not declared by the program", prog.Label(), name)
		}
	}

	bound := make(map[string]resource.Resource, len(resources))
	for _, arg := range prog.Arguments() {
		res, ok := resources[arg.Name]
		if !ok || res == nil {
			if arg.Optional {
				continue
			}
			return nil, fmt.Errorf("bindings for %q: required argument %q is not bound", prog.Label(), arg.Name)
		}
		bound[arg.Name] = res
	}

	for _, res := range bound {
		res.AddRef()
	}
	return &programBindings{prog: prog, bound: bound}, nil
}

// NewFrom derives a binding set from a base one, rebinding the arguments named
// in overrides and sharing the rest. Constant arguments cannot be overridden;
// attempting to fails the whole construction.
//
// Parameters:
//   - base: the binding set to derive from
//   - overrides: argument name to replacement resource mapping
//
// Returns:
//   - ProgramBindings: the derived binding set
//   - error: an error if an override names an undeclared or constant argument
func NewFrom(base ProgramBindings, overrides map[string]resource.Resource) (ProgramBindings, error) {
	prog := base.Program()
	for name := range overrides {
		arg, ok := prog.Argument(name)
		if !ok {
			return nil, fmt.Errorf("bindings for %q: override %q is not declared by the program", prog.Label(), name)
		}
		if arg.Modifier == program.ArgumentModifierConstant {
			return nil, fmt.Errorf("bindings for %q: argument %q is constant and cannot be overridden", prog.Label(), name)
		}
	}

	merged := make(map[string]resource.Resource)
	for _, arg := range prog.Arguments() {
		if res, ok := base.Resource(arg.Name); ok {
			merged[arg.Name] = res
		}
	}
	for name, res := range overrides {
		if res == nil {
			delete(merged, name)
			continue
		}
		merged[name] = res
	}

	return New(prog, merged)
}

func (b *programBindings) Program() program.Program {
	return b.prog
}

func (b *programBindings) Resource(name string) (resource.Resource, bool) {
	res, ok := b.bound[name]
	return res, ok
}

func (b *programBindings) Native() any {
	return b.native
}

func (b *programBindings) SetNative(native any) {
	b.native = native
}

func (b *programBindings) Release() {
	if b.released {
		return
	}
	b.released = true
	for _, res := range b.bound {
		res.Release()
	}
	b.native = nil
}
