package sema

import (
	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/scoper"
	"emojicode/internal/types"
)

// FunctionAnalyser analyses one function body: it drives the scoper,
// resolves variable accesses to dense ids, and records the id count on the
// function's unspecific reification for lowering.
type FunctionAnalyser struct {
	fn *types.Function
	an *Analyser
	sc *scoper.SemanticScoper
}

func newFunctionAnalyser(fn *types.Function, an *Analyser) *FunctionAnalyser {
	var sc *scoper.SemanticScoper
	if fn.Owner != nil {
		sc = scoper.NewWithInstanceScope(an.InstanceScope(fn.Owner))
	} else {
		sc = scoper.New()
	}
	return &FunctionAnalyser{fn: fn, an: an, sc: sc}
}

func (fa *FunctionAnalyser) analyse() error {
	reification := fa.fn.CreateUnspecificReification()

	block, ok := fa.fn.Body.(*ast.Block)
	if !ok || block == nil {
		return nil
	}

	if _, err := fa.sc.PushArgumentsScope(fa.fn.Arguments, fa.fn.Span); err != nil {
		return err
	}
	err := fa.analyseBlock(block)
	fa.sc.PopScope(fa.an.reporter, fa.an.interner)
	reification.VariableCount = fa.sc.VariableIDCount()
	return err
}

func (fa *FunctionAnalyser) analyseBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := fa.analyseStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (fa *FunctionAnalyser) analyseStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		fa.sc.CheckForShadowing(s.Name, fa.an.interner, s.Span, fa.an.reporter)
		if s.Init != nil {
			if err := fa.analyseExpr(s.Init); err != nil {
				return err
			}
		}
		v, err := fa.sc.CurrentScope().DeclareVariable(s.Name, s.Type, s.Frozen, s.Span)
		if err != nil {
			return err
		}
		s.ID = v.ID
		s.Resolved = true
		if s.Init != nil {
			v.Initialize(fa.sc.MaxInitializationLevel())
		}
		return nil
	case *ast.Assignment:
		if err := fa.analyseExpr(s.Value); err != nil {
			return err
		}
		resolved, err := fa.sc.GetVariable(s.Name, fa.an.interner, s.Span)
		if err != nil {
			return err
		}
		if resolved.Variable.Frozen {
			return diag.Errorf(diag.SemaAssignFrozen, s.Span,
				"cannot assign to frozen variable %s", fa.an.interner.MustLookup(s.Name))
		}
		resolved.Variable.Mutated = true
		resolved.Variable.Initialize(fa.sc.MaxInitializationLevel())
		s.ID = resolved.Variable.ID
		s.Resolved = true
		return nil
	case *ast.Return:
		if s.Value != nil {
			return fa.analyseExpr(s.Value)
		}
		return nil
	case *ast.ExprStmt:
		return fa.analyseExpr(s.Expr)
	case *ast.Block:
		fa.sc.PushScope()
		err := fa.analyseBlock(s)
		fa.sc.PopScope(fa.an.reporter, fa.an.interner)
		return err
	default:
		return diag.Errorf(diag.UnknownCode, stmt.StmtSpan(), "unsupported statement %T", stmt)
	}
}

func (fa *FunctionAnalyser) analyseExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.VariableAccess:
		resolved, err := fa.sc.GetVariable(e.Name, fa.an.interner, e.Span)
		if err != nil {
			return err
		}
		e.ID = resolved.Variable.ID
		e.InInstanceScope = resolved.InInstanceScope
		e.Type = resolved.Variable.Type
		e.Resolved = true
		if resolved.InInstanceScope && fa.fn.Initializer &&
			!resolved.Variable.IsInitialized(fa.sc.MaxInitializationLevel()) {
			return diag.Errorf(diag.SemaUninitializedSelf, e.Span,
				"instance variable %s read before initialization",
				fa.an.interner.MustLookup(e.Name))
		}
		return nil
	case *ast.MethodCall:
		if err := fa.analyseExpr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := fa.analyseExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.StorageAdapt:
		return fa.analyseExpr(e.Value)
	case *ast.IntegerLiteral, *ast.BooleanLiteral, *ast.DoubleLiteral, *ast.This, *ast.ArgumentRef:
		return nil
	default:
		return diag.Errorf(diag.UnknownCode, expr.ExprSpan(), "unsupported expression %T", expr)
	}
}
