package irgen

import (
	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/types"
)

// generateMethodCall lowers a method invocation. Built-in primitives
// bypass call emission entirely: the callee is evaluated once and the
// result drives a direct lowering to machine-level instructions.
func (fg *FunctionCodeGenerator) generateMethodCall(e *ast.MethodCall) (ValueID, error) {
	if e.BuiltIn != ast.BuiltInNone {
		v, err := fg.generateExpr(e.Callee)
		if err != nil {
			return NoValue, err
		}
		switch e.BuiltIn {
		case ast.BuiltInIntegerNot:
			return fg.b.CreateNot(v), nil
		case ast.BuiltInIntegerToDouble:
			return fg.b.CreateSIToFP(v), nil
		case ast.BuiltInBooleanNegate:
			return fg.b.CreateICmpEQ(fg.b.GetFalse(), v), nil
		case ast.BuiltInStore:
			t, err := fg.builtInType(e)
			if err != nil {
				return NoValue, err
			}
			if len(e.Args) < 2 {
				return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "store expects a value and an offset")
			}
			offset, err := fg.generateExpr(e.Args[1])
			if err != nil {
				return NoValue, err
			}
			ptr := fg.buildMemoryAddress(v, offset, t)
			val, err := fg.generateExpr(e.Args[0])
			if err != nil {
				return NoValue, err
			}
			fg.b.CreateStore(val, ptr)
			if t.Managed() {
				if t.ManagedByReference() {
					fg.b.CreateRetain(ptr, t, true)
				} else {
					fg.b.CreateRetain(val, t, false)
				}
			}
			return NoValue, nil
		case ast.BuiltInLoad:
			t, err := fg.builtInType(e)
			if err != nil {
				return NoValue, err
			}
			if len(e.Args) < 1 {
				return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "load expects an offset")
			}
			offset, err := fg.generateExpr(e.Args[0])
			if err != nil {
				return NoValue, err
			}
			ptr := fg.buildMemoryAddress(v, offset, t)
			val := fg.b.CreateLoad(ptr)
			if t.Managed() {
				if t.ManagedByReference() {
					fg.b.CreateRetain(ptr, t, true)
				} else {
					fg.b.CreateRetain(val, t, false)
				}
			}
			return val, nil
		case ast.BuiltInRelease:
			t, err := fg.builtInType(e)
			if err != nil {
				return NoValue, err
			}
			if len(e.Args) < 1 {
				return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "release expects an offset")
			}
			if t.Managed() {
				offset, err := fg.generateExpr(e.Args[0])
				if err != nil {
					return NoValue, err
				}
				ptr := fg.buildMemoryAddress(v, offset, t)
				if t.ManagedByReference() {
					fg.b.CreateRelease(ptr, t, true)
				} else {
					fg.b.CreateRelease(fg.b.CreateLoad(ptr), t, false)
				}
			}
			return NoValue, nil
		case ast.BuiltInMultiprotocol:
			return fg.generateCall(e, v)
		}
	}

	v, err := fg.generateExpr(e.Callee)
	if err != nil {
		return NoValue, err
	}
	result, err := fg.generateCall(e, v)
	if err != nil {
		return NoValue, err
	}
	return fg.handleResult(e, result), nil
}

// generateCall emits the call through the kind's dispatch. Protocol calls
// on a statically concrete receiver devirtualise through the appointed
// heir chain.
func (fg *FunctionCodeGenerator) generateCall(e *ast.MethodCall, callee ValueID) (ValueID, error) {
	method := e.Method
	kind := e.Kind
	if method == nil {
		return NoValue, diag.Errorf(diag.UnknownCode, e.Span, "call has no resolved method")
	}

	if (kind == ast.CallProtocol || kind == ast.CallMultiprotocol) &&
		e.CalleeType.Valid() && e.CalleeType.Def().Kind != types.KindProtocol {
		if heir := fg.heirs.Heir(e.CalleeType.Def(), method); heir != nil {
			method = heir
			kind = ast.CallStatic
		}
	}

	args := make([]ValueID, 0, len(e.Args)+1)
	args = append(args, callee)
	for i, argExpr := range e.Args {
		v, err := fg.generateExpr(argExpr)
		if err != nil {
			return NoValue, err
		}
		// Boxing where the method's type context disagrees with the
		// argument's static representation.
		if i < len(method.Arguments) {
			want := method.Arguments[i].Type
			have := exprType(argExpr)
			if want.Valid() && have.Valid() && want.StorageType() != have.StorageType() {
				v = fg.adaptStorage(v, have, want)
			}
		}
		args = append(args, v)
	}

	tableIndex := 0
	if kind == ast.CallMultiprotocol {
		tableIndex = e.MultiprotocolN
	}
	return fg.b.CreateCall(kind, method, tableIndex, args), nil
}

// handleResult post-processes the produced value; managed returns get a
// temporary root so a collection between the call and the consumer cannot
// free them.
func (fg *FunctionCodeGenerator) handleResult(e *ast.MethodCall, v ValueID) ValueID {
	if v == NoValue || e.Method == nil {
		return v
	}
	if e.Method.ReturnType.Valid() && e.Method.ReturnType.Managed() {
		fg.b.CreateTempRoot(v)
	}
	return v
}

// buildMemoryAddress computes mem + off + sizeof(header pointer) and
// bit-casts the sum to a pointer to t. The header pointer at offset zero
// of every managed area is skipped unconditionally.
func (fg *FunctionCodeGenerator) buildMemoryAddress(memory, offset ValueID, t types.Type) ValueID {
	adOffset := fg.b.CreateAdd(offset, fg.b.ConstInt(HeaderPointerSize))
	return fg.b.CreateBitCast(fg.b.CreateGEP(memory, adOffset), t)
}

// builtInType is the generic argument the built-ins Store, Load and
// Release are parameterised with.
func (fg *FunctionCodeGenerator) builtInType(e *ast.MethodCall) (types.Type, error) {
	if len(e.GenericArgs) == 0 {
		return types.NoType, diag.Errorf(diag.UnknownCode, e.Span, "built-in requires a generic argument type")
	}
	return e.GenericArgs[0], nil
}
