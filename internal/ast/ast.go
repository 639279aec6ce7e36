// Package ast carries the abstract syntax the semantic analyser and the
// code generator consume. The parser producing it is a separate component;
// everything here is plain data plus the builder for synthesised bodies.
package ast

import (
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// Package is one compilation unit as handed over by the parser.
type Package struct {
	Name source.StringID
	Span source.Span

	Extensions []*Extension
	ValueTypes []*types.TypeDefinition
	Classes    []*types.TypeDefinition
	Protocols  []*types.TypeDefinition
	Functions  []*types.Function

	// StartFlag is the 🏁 block, nil if the package does not define one.
	StartFlag *types.Function
}

// HasStartFlagFunction reports whether the package defines the program
// entry point.
func (p *Package) HasStartFlagFunction() bool {
	return p.StartFlag != nil
}

// Extension adds methods and conformances to a previously defined type.
type Extension struct {
	Target    *types.TypeDefinition
	Methods   []*types.Function
	Protocols []types.Type
	Span      source.Span
}

// Extend applies the extension to its target definition. The first
// duplicate method aborts the application.
func (e *Extension) Extend() error {
	for _, m := range e.Methods {
		if err := e.Target.AddMethod(m); err != nil {
			return err
		}
	}
	for _, p := range e.Protocols {
		e.Target.AddProtocol(p)
	}
	return nil
}
