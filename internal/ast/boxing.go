package ast

import (
	"emojicode/internal/types"
)

// BoxingLayerBuilder synthesises thunk bodies for boxing layers: the
// analyser decides when a layer is needed, the builder shapes its AST.
type BoxingLayerBuilder struct{}

// BuildBoxingLayerAst fills in the body of a boxing layer. The thunk
// forwards every argument to the wrapped implementation, re-representing
// each argument whose storage type disagrees, and adapts the return value
// on the way out.
func (BoxingLayerBuilder) BuildBoxingLayerAst(layer *types.Function) {
	target := layer.BoxingTarget
	span := layer.Span

	args := make([]Expr, 0, len(layer.Arguments))
	for i, param := range layer.Arguments {
		var arg Expr = &ArgumentRef{Index: i, Type: param.Type, Span: span}
		want := target.Arguments[i].Type
		if param.Type.StorageType() != want.StorageType() {
			arg = &StorageAdapt{Value: arg, From: param.Type, To: want, Span: span}
		}
		args = append(args, arg)
	}

	var call Expr = &MethodCall{
		Callee:     &This{Type: types.MakeType(target.Owner, false), Span: span},
		CalleeType: types.MakeType(target.Owner, false),
		Kind:       CallStatic,
		Method:     target,
		Args:       args,
		Span:       span,
	}
	if layer.ReturnType.Valid() && layer.ReturnType.StorageType() != target.ReturnType.StorageType() {
		call = &StorageAdapt{Value: call, From: target.ReturnType, To: layer.ReturnType, Span: span}
	}

	layer.Body = &Block{
		Stmts: []Stmt{&Return{Value: call, Span: span}},
		Span:  span,
	}
}
