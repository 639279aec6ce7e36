package sema

import (
	"fmt"

	"emojicode/internal/diag"
	"emojicode/internal/types"
)

// finalizeProtocols resolves every conformance the type claims.
func (a *Analyser) finalizeProtocols(t types.Type) {
	for _, protocol := range t.Def().Protocols {
		a.finalizeProtocol(t, protocol)
	}
}

// finalizeProtocol verifies one conformance. Every protocol method must
// have exactly one appointed heir on the type afterwards: the
// implementation itself when representations agree, a synthesised boxing
// layer otherwise.
func (a *Analyser) finalizeProtocol(t, protocol types.Type) {
	for _, method := range protocol.Def().Methods() {
		implementation := t.Def().LookupMethod(method.Name, method.Imperative)
		if implementation == nil {
			diag.Error(a.reporter, diag.SemaProtocolMethodMissing, t.Def().Span,
				fmt.Sprintf("%s does not conform to protocol %s: method %s not provided",
					t.Describe(a.interner), protocol.Describe(a.interner), a.interner.MustLookup(method.Name)))
			continue
		}

		implementation.CreateUnspecificReification()
		subContext := types.MakeTypeContext(t)
		superContext := types.MakeTypeContext(protocol)
		if a.enforcePromises(implementation, method, protocol, subContext, superContext) {
			a.appointHeir(t.Def(), method, implementation)
		} else {
			a.buildBoxingLayer(t, protocol, method, implementation)
		}
	}
}

// enforcePromises checks that sub keeps every promise super made. Errors
// are collected; a false return means the signatures are sound but their
// storage representations disagree and a boxing layer is required.
func (a *Analyser) enforcePromises(sub, super *types.Function, superSource types.Type,
	subContext, superContext types.TypeContext) bool {
	if super.Final {
		diag.Error(a.reporter, diag.SemaFinalOverride, sub.Span,
			fmt.Sprintf("%s's implementation of %s was marked 🔏",
				superSource.Describe(a.interner), a.interner.MustLookup(sub.Name)))
	}
	if sub.Access != super.Access {
		diag.Error(a.reporter, diag.SemaAccessMismatch, sub.Span,
			fmt.Sprintf("access level of %s's implementation of %s does not match",
				superSource.Describe(a.interner), a.interner.MustLookup(sub.Name)))
	}

	superReturnType := super.ReturnType.ResolveOn(superContext)
	subReturnType := sub.ReturnType.ResolveOn(subContext)
	if !subReturnType.CompatibleTo(superReturnType, subContext) {
		diag.Error(a.reporter, diag.SemaReturnPromise, sub.Span,
			fmt.Sprintf("return type %s of %s is not compatible to the return type defined in %s",
				subReturnType.Describe(a.interner), a.interner.MustLookup(sub.Name),
				superSource.Describe(a.interner)))
	}
	if subReturnType.StorageType() != superReturnType.StorageType() {
		return false // boxing layer required for the return value
	}

	return a.checkArgumentPromise(sub, super, subContext, superContext)
}

func (a *Analyser) checkArgumentPromise(sub, super *types.Function,
	subContext, superContext types.TypeContext) bool {
	if len(super.Arguments) != len(sub.Arguments) {
		diag.Error(a.reporter, diag.SemaArgumentCount, sub.Span, "argument count does not match")
		return true
	}

	compatible := true
	for i := range super.Arguments { // more general arguments are fine
		superArgumentType := super.Arguments[i].Type.ResolveOn(superContext)
		subArgumentType := sub.Arguments[i].Type.ResolveOn(subContext)
		if !superArgumentType.CompatibleTo(subArgumentType, subContext) {
			diag.Error(a.reporter, diag.SemaArgumentPromise, sub.Span,
				fmt.Sprintf("type %s of argument %d is not compatible with the promised argument type %s",
					subArgumentType.Describe(a.interner), i+1, superArgumentType.Describe(a.interner)))
		}
		if subArgumentType.StorageType() != superArgumentType.StorageType() {
			compatible = false // boxing layer required for parameter i
		}
	}
	return compatible
}

// buildBoxingLayer synthesises the storage adapter thunk: signature of the
// protocol method resolved in the protocol's context, body forwarding to
// the implementation. The thunk joins the type's method list and becomes
// the protocol method's appointed heir.
func (a *Analyser) buildBoxingLayer(t, protocol types.Type, method, implementation *types.Function) {
	superContext := types.MakeTypeContext(protocol)
	arguments := make([]types.Parameter, 0, len(method.Arguments))
	for _, arg := range method.Arguments {
		arguments = append(arguments, types.Parameter{
			Name: arg.Name,
			Type: arg.Type.ResolveOn(superContext),
		})
	}

	layerName := a.interner.Intern(fmt.Sprintf("%s🔲%s",
		protocol.Describe(a.interner), a.interner.MustLookup(method.Name)))
	layer := &types.Function{
		Name:         layerName,
		Imperative:   method.Imperative,
		Arguments:    arguments,
		ReturnType:   method.ReturnType.ResolveOn(superContext),
		Access:       method.Access,
		Span:         implementation.Span,
		BoxingTarget: implementation,
	}
	a.boxing.BuildBoxingLayerAst(layer)
	a.enqueueFunction(layer)
	if err := t.Def().AddMethod(layer); err != nil {
		a.reportCaught(err)
		return
	}
	a.appointHeir(t.Def(), method, layer)
}
