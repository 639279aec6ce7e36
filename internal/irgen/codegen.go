package irgen

import (
	"fortio.org/safecast"

	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// HeirResolver looks up the appointed heir of a protocol method on a
// concrete type. The semantic analyser implements it.
type HeirResolver interface {
	Heir(on *types.TypeDefinition, method *types.Function) *types.Function
}

// FunctionCodeGenerator lowers one analysed function body into a Func.
type FunctionCodeGenerator struct {
	fn       *types.Function
	interner *source.Interner
	heirs    HeirResolver
	b        *Builder
}

// NewFunctionCodeGenerator prepares lowering of fn. The function must have
// been analysed: lowering reads resolved variable ids and the reification's
// variable count.
func NewFunctionCodeGenerator(fn *types.Function, interner *source.Interner, heirs HeirResolver) *FunctionCodeGenerator {
	f := &Func{
		Name:   interner.MustLookup(fn.Name),
		Params: len(fn.Arguments),
	}
	if r := fn.UnspecificReification(); r != nil {
		f.Locals = r.VariableCount
	}
	return &FunctionCodeGenerator{
		fn:       fn,
		interner: interner,
		heirs:    heirs,
		b:        NewBuilder(f),
	}
}

// Builder exposes the instruction builder.
func (fg *FunctionCodeGenerator) Builder() *Builder {
	return fg.b
}

// Generate lowers the body and returns the finished Func.
func (fg *FunctionCodeGenerator) Generate() (*Func, error) {
	block, ok := fg.fn.Body.(*ast.Block)
	if ok && block != nil {
		if err := fg.generateBlock(block); err != nil {
			return nil, err
		}
	}
	if n := len(fg.b.fn.Instrs); n == 0 || fg.b.fn.Instrs[n-1].Kind != InstrRet {
		fg.b.CreateRetVoid()
	}
	return fg.b.fn, nil
}

func (fg *FunctionCodeGenerator) generateBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := fg.generateStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (fg *FunctionCodeGenerator) generateStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Init == nil {
			return nil
		}
		v, err := fg.generateExpr(s.Init)
		if err != nil {
			return err
		}
		if !s.Resolved {
			return diag.Errorf(diag.UnknownCode, s.Span, "declaration was not analysed")
		}
		fg.b.CreateStoreVar(s.ID, v)
		return nil
	case *ast.Assignment:
		v, err := fg.generateExpr(s.Value)
		if err != nil {
			return err
		}
		if !s.Resolved {
			return diag.Errorf(diag.UnknownCode, s.Span, "assignment was not analysed")
		}
		fg.b.CreateStoreVar(s.ID, v)
		return nil
	case *ast.Return:
		if s.Value == nil {
			fg.b.CreateRetVoid()
			return nil
		}
		v, err := fg.generateExpr(s.Value)
		if err != nil {
			return err
		}
		fg.b.CreateRet(v)
		return nil
	case *ast.ExprStmt:
		_, err := fg.generateExpr(s.Expr)
		return err
	case *ast.Block:
		return fg.generateBlock(s)
	default:
		return diag.Errorf(diag.UnknownCode, stmt.StmtSpan(), "cannot lower statement %T", stmt)
	}
}

func (fg *FunctionCodeGenerator) generateExpr(expr ast.Expr) (ValueID, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return fg.b.ConstInt(e.Value), nil
	case *ast.BooleanLiteral:
		if e.Value {
			return fg.b.GetTrue(), nil
		}
		return fg.b.GetFalse(), nil
	case *ast.DoubleLiteral:
		return fg.b.ConstDouble(e.Value), nil
	case *ast.This:
		return fg.b.CreateThis(), nil
	case *ast.VariableAccess:
		if !e.Resolved {
			return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "variable access was not analysed")
		}
		return fg.b.CreateLoadVar(e.ID), nil
	case *ast.ArgumentRef:
		index, err := safecast.Conv[uint32](e.Index)
		if err != nil {
			return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "argument index overflow: %v", err)
		}
		return fg.b.CreateLoadArg(index), nil
	case *ast.StorageAdapt:
		v, err := fg.generateExpr(e.Value)
		if err != nil {
			return NoValue, err
		}
		return fg.adaptStorage(v, e.From, e.To), nil
	case *ast.MethodCall:
		return fg.generateMethodCall(e)
	default:
		return NoValue, diag.Errorf(diag.UnknownCode, expr.ExprSpan(), "cannot lower expression %T", expr)
	}
}

// adaptStorage re-represents v between storage types: into a box, out of a
// box, or a bare representation change for the presence-flag cases.
func (fg *FunctionCodeGenerator) adaptStorage(v ValueID, from, to types.Type) ValueID {
	switch {
	case to.StorageType() == types.StorageBox && from.StorageType() != types.StorageBox:
		return fg.b.CreateBox(v, from)
	case from.StorageType() == types.StorageBox && to.StorageType() != types.StorageBox:
		return fg.b.CreateUnbox(v, to)
	default:
		return fg.b.CreateBitCast(v, to)
	}
}

// exprType is the statically known type of an expression, NoType when the
// node does not carry one.
func exprType(expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return e.Type
	case *ast.BooleanLiteral:
		return e.Type
	case *ast.DoubleLiteral:
		return e.Type
	case *ast.This:
		return e.Type
	case *ast.VariableAccess:
		return e.Type
	case *ast.ArgumentRef:
		return e.Type
	case *ast.StorageAdapt:
		return e.To
	case *ast.MethodCall:
		if e.Method != nil {
			return e.Method.ReturnType
		}
	}
	return types.NoType
}
