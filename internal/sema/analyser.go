// Package sema performs whole-package semantic analysis: extension
// application, inheritance resolution, protocol conformance with boxing
// layer synthesis, and per-function analysis through a work queue.
package sema

import (
	"errors"
	"fmt"

	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/scoper"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// BoxingLayerBuilder shapes the body of a synthesised boxing layer.
type BoxingLayerBuilder interface {
	BuildBoxingLayerAst(layer *types.Function)
}

// HeirKey identifies a protocol method on one concrete type.
type HeirKey struct {
	On     *types.TypeDefinition
	Method *types.Function
}

// Analyser drives semantic analysis for one package. It owns the
// diagnostic reporter, the function work queue and the heir registry; it
// is passed explicitly wherever analysis happens, never ambient.
type Analyser struct {
	pkg      *ast.Package
	interner *source.Interner
	reporter diag.Reporter
	boxing   BoxingLayerBuilder

	queue []*types.Function

	heirs          map[HeirKey]*types.Function
	instanceScopes map[*types.TypeDefinition]*scoper.Scope
}

// New creates an analyser for the package.
func New(pkg *ast.Package, interner *source.Interner, reporter diag.Reporter) *Analyser {
	return &Analyser{
		pkg:            pkg,
		interner:       interner,
		reporter:       reporter,
		boxing:         ast.BoxingLayerBuilder{},
		heirs:          map[HeirKey]*types.Function{},
		instanceScopes: map[*types.TypeDefinition]*scoper.Scope{},
	}
}

// Analyse runs the whole-package pass. In executable mode the absence of a
// start flag block is a fatal error.
func (a *Analyser) Analyse(executable bool) {
	for _, extension := range a.pkg.Extensions {
		if err := extension.Extend(); err != nil {
			a.reportCaught(err)
		}
	}
	for _, vt := range a.pkg.ValueTypes {
		a.finalizeProtocols(types.MakeType(vt, false))
		a.declareInstanceVariables(vt)
		a.enqueueFunctionsOfTypeDefinition(vt)
	}
	for _, class := range a.pkg.Classes {
		class.Inherit()
		a.finalizeProtocols(types.MakeType(class, false))
		a.declareInstanceVariables(class)
		a.enqueueFunctionsOfTypeDefinition(class)
	}
	for _, function := range a.pkg.Functions {
		a.enqueueFunction(function)
	}
	if a.pkg.StartFlag != nil {
		a.enqueueFunction(a.pkg.StartFlag)
	}

	a.analyseQueue()

	if executable && !a.pkg.HasStartFlagFunction() {
		diag.Error(a.reporter, diag.SemaNoStartFlag, a.pkg.Span, "no 🏁 block was found")
	}
}

func (a *Analyser) analyseQueue() {
	for len(a.queue) > 0 {
		function := a.queue[0]
		a.queue = a.queue[1:]
		if err := newFunctionAnalyser(function, a).analyse(); err != nil {
			a.reportCaught(err)
		}
	}
}

// reportCaught converts a raised CompilerError into a bag entry so one bad
// function does not end the analysis.
func (a *Analyser) reportCaught(err error) {
	var ce *diag.CompilerError
	if errors.As(err, &ce) {
		diag.ReportCompilerError(a.reporter, ce)
		return
	}
	diag.Error(a.reporter, diag.UnknownCode, source.Span{}, err.Error())
}

func (a *Analyser) enqueueFunctionsOfTypeDefinition(def *types.TypeDefinition) {
	def.EachFunction(func(function *types.Function) {
		a.enqueueFunction(function)
	})
}

func (a *Analyser) enqueueFunction(function *types.Function) {
	if !function.External {
		a.queue = append(a.queue, function)
	}
}

// declareInstanceVariables materialises the declarations into the
// definition's instance scope.
func (a *Analyser) declareInstanceVariables(def *types.TypeDefinition) {
	instanceScope := scoper.NewInstanceScope()
	a.instanceScopes[def] = instanceScope
	for _, decl := range def.InstanceVariables {
		if _, err := instanceScope.DeclareVariable(decl.Name, decl.Type, false, decl.Span); err != nil {
			a.reportCaught(err)
		}
	}

	if len(def.InstanceVariables) > 0 && len(def.Initializers()) == 0 {
		diag.Warn(a.reporter, diag.SemaNoInitializers, def.Span,
			fmt.Sprintf("type defines %d instance variables but has no initializers", len(def.InstanceVariables)))
	}
}

// InstanceScope returns the materialised instance scope of the definition.
func (a *Analyser) InstanceScope(def *types.TypeDefinition) *scoper.Scope {
	return a.instanceScopes[def]
}

// appointHeir records the implementation a protocol method dispatches to
// on the concrete type. Lookup-only association; nothing owns anything.
func (a *Analyser) appointHeir(on *types.TypeDefinition, method, heir *types.Function) {
	a.heirs[HeirKey{On: on, Method: method}] = heir
}

// Heir returns the appointed heir of the protocol method on the type, or
// nil if conformance was not finalised.
func (a *Analyser) Heir(on *types.TypeDefinition, method *types.Function) *types.Function {
	return a.heirs[HeirKey{On: on, Method: method}]
}

// Interner exposes the identifier interner for collaborating phases.
func (a *Analyser) Interner() *source.Interner {
	return a.interner
}

// Reporter exposes the diagnostic sink.
func (a *Analyser) Reporter() diag.Reporter {
	return a.reporter
}
