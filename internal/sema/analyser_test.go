package sema

import (
	"strings"
	"testing"

	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

type testEnv struct {
	in  *source.Interner
	bag *diag.Bag
	r   diag.Reporter
}

func newEnv() *testEnv {
	bag := diag.NewBag(50)
	return &testEnv{
		in:  source.NewInterner(),
		bag: bag,
		r:   diag.BagReporter{Bag: bag},
	}
}

func (e *testEnv) span(offset uint32) source.Span {
	return source.Span{File: 0, Start: offset, End: offset + 4}
}

func (e *testEnv) intType() types.Type {
	def := types.NewValueType(e.in.Intern("🔢"), e.span(0), true, false)
	return types.MakeType(def, false)
}

func (e *testEnv) method(name string, args []types.Parameter, ret types.Type, opts ...func(*types.Function)) *types.Function {
	f := &types.Function{
		Name:       e.in.Intern(name),
		Imperative: true,
		Arguments:  args,
		ReturnType: ret,
		Access:     types.AccessPublic,
		Span:       e.span(100),
		Body:       &ast.Block{Span: e.span(100)},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (e *testEnv) analyse(pkg *ast.Package, executable bool) *Analyser {
	a := New(pkg, e.in, e.r)
	a.Analyse(executable)
	return a
}

func (e *testEnv) countCode(code diag.Code) int {
	n := 0
	for _, d := range e.bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestConformingMethodBecomesHeir(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", nil, intT)
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}

	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	cFoo := e.method("🦶", nil, intT)
	if err := class.AddMethod(cFoo); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	a := e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if e.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", e.bag.Items())
	}
	if heir := a.Heir(class, pFoo); heir != cFoo {
		t.Fatalf("heir = %v, want the class implementation", heir)
	}
	if cFoo.UnspecificReification() == nil {
		t.Fatal("implementation has no unspecific reification")
	}
}

func TestStorageMismatchSynthesisesBoxingLayer(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	// The protocol promises an optional integer; the class returns a bare
	// one. Covariance holds, the storage types disagree.
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", nil, intT.Optionalized())
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}

	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	cFoo := e.method("🦶", nil, intT)
	if err := class.AddMethod(cFoo); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	before := len(class.Methods())
	a := e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if e.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", e.bag.Items())
	}
	heir := a.Heir(class, pFoo)
	if heir == nil || heir == cFoo {
		t.Fatalf("heir = %v, want a synthesised layer", heir)
	}
	if !heir.IsBoxingLayer() || heir.BoxingTarget != cFoo {
		t.Fatalf("heir is not a boxing layer onto the implementation")
	}
	if len(class.Methods()) != before+1 {
		t.Fatalf("class has %d methods, want %d (implementation and layer)",
			len(class.Methods()), before+1)
	}

	// The layer's body forwards to the implementation and adapts the
	// result.
	block, ok := heir.Body.(*ast.Block)
	if !ok || len(block.Stmts) != 1 {
		t.Fatalf("layer body = %#v", heir.Body)
	}
	ret, ok := block.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("layer body statement = %#v", block.Stmts[0])
	}
	adapt, ok := ret.Value.(*ast.StorageAdapt)
	if !ok {
		t.Fatalf("layer return = %#v, want a storage adaptation", ret.Value)
	}
	call, ok := adapt.Value.(*ast.MethodCall)
	if !ok || call.Method != cFoo {
		t.Fatalf("layer does not forward to the implementation: %#v", adapt.Value)
	}
}

func TestParameterStorageMismatchSynthesisesBoxingLayer(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	carrier := types.NewProtocol(e.in.Intern("📦"), e.span(0))
	box := types.NewClass(e.in.Intern("🎁"), e.span(4), nil)
	box.AddProtocol(types.MakeType(carrier, false))

	// The protocol takes the concrete class (simple storage); the class
	// implementation accepts anything conforming (box storage).
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(8))
	pFoo := e.method("🦶", []types.Parameter{
		{Name: e.in.Intern("x"), Type: types.MakeType(box, false)},
	}, intT)
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}

	class := types.NewClass(e.in.Intern("🐩"), e.span(12), nil)
	cFoo := e.method("🦶", []types.Parameter{
		{Name: e.in.Intern("x"), Type: types.MakeType(carrier, false)},
	}, intT)
	if err := class.AddMethod(cFoo); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	a := e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if e.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", e.bag.Items())
	}
	heir := a.Heir(class, pFoo)
	if heir == nil || !heir.IsBoxingLayer() {
		t.Fatalf("heir = %v, want a boxing layer for the parameter", heir)
	}
	if len(heir.Arguments) != 1 || heir.Arguments[0].Type.Def() != box {
		t.Fatalf("layer signature does not match the protocol: %#v", heir.Arguments)
	}
}

func TestMissingProtocolMethodNamesBoth(t *testing.T) {
	e := newEnv()
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	if err := protocol.AddMethod(e.method("🦶", nil, e.intType())); err != nil {
		t.Fatal(err)
	}
	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	class.AddProtocol(types.MakeType(protocol, false))

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if got := e.countCode(diag.SemaProtocolMethodMissing); got != 1 {
		t.Fatalf("missing-method errors = %d, want 1", got)
	}
	msg := e.bag.Items()[0].Message
	for _, name := range []string{"🐩", "🐕", "🦶"} {
		if !strings.Contains(msg, name) {
			t.Fatalf("error %q does not name %s", msg, name)
		}
	}
}

func TestFinalMethodOverrideErrors(t *testing.T) {
	e := newEnv()
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", nil, e.intType(), func(f *types.Function) { f.Final = true })
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}
	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	cFoo := e.method("🦶", nil, e.intType())
	if err := class.AddMethod(cFoo); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if got := e.countCode(diag.SemaFinalOverride); got != 1 {
		t.Fatalf("final-override errors = %d, want 1", got)
	}
	for _, d := range e.bag.Items() {
		if d.Code == diag.SemaFinalOverride && d.Primary != cFoo.Span {
			t.Fatalf("error at %v, want the subtype's method position %v", d.Primary, cFoo.Span)
		}
	}
}

func TestAccessLevelMismatchErrors(t *testing.T) {
	e := newEnv()
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	if err := protocol.AddMethod(e.method("🦶", nil, e.intType())); err != nil {
		t.Fatal(err)
	}
	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	private := e.method("🦶", nil, e.intType(), func(f *types.Function) { f.Access = types.AccessPrivate })
	if err := class.AddMethod(private); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if got := e.countCode(diag.SemaAccessMismatch); got != 1 {
		t.Fatalf("access-mismatch errors = %d, want 1", got)
	}
}

func TestArgumentCountMismatchErrors(t *testing.T) {
	e := newEnv()
	intT := e.intType()
	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", []types.Parameter{{Name: e.in.Intern("x"), Type: intT}}, intT)
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}
	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	if err := class.AddMethod(e.method("🦶", nil, intT)); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if got := e.countCode(diag.SemaArgumentCount); got != 1 {
		t.Fatalf("argument-count errors = %d, want 1", got)
	}
}

func TestArgumentPromiseNamesBothTypes(t *testing.T) {
	e := newEnv()
	intT := e.intType()
	other := types.MakeType(types.NewClass(e.in.Intern("🪨"), e.span(2), nil), false)

	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", []types.Parameter{{Name: e.in.Intern("x"), Type: other}}, intT)
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}
	class := types.NewClass(e.in.Intern("🐩"), e.span(10), nil)
	cFoo := e.method("🦶", []types.Parameter{{Name: e.in.Intern("x"), Type: intT}}, intT)
	if err := class.AddMethod(cFoo); err != nil {
		t.Fatal(err)
	}
	class.AddProtocol(types.MakeType(protocol, false))

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	found := false
	for _, d := range e.bag.Items() {
		if d.Code != diag.SemaArgumentPromise {
			continue
		}
		found = true
		// Sub-type and super-type appear distinctly.
		if !strings.Contains(d.Message, "🔢") || !strings.Contains(d.Message, "🪨") {
			t.Fatalf("message %q does not name both types", d.Message)
		}
	}
	if !found {
		t.Fatal("no argument-promise error")
	}
}

func TestExecutableWithoutStartFlagIsFatal(t *testing.T) {
	e := newEnv()
	e.analyse(&ast.Package{Span: e.span(0)}, true)
	if got := e.countCode(diag.SemaNoStartFlag); got != 1 {
		t.Fatalf("start-flag errors = %d, want 1", got)
	}

	lib := newEnv()
	lib.analyse(&ast.Package{Span: lib.span(0)}, false)
	if lib.bag.HasErrors() {
		t.Fatalf("library build errored: %v", lib.bag.Items())
	}
}

func TestInstanceVariablesWithoutInitializersWarn(t *testing.T) {
	e := newEnv()
	intT := e.intType()
	vt := types.NewValueType(e.in.Intern("🧱"), e.span(0), false, false)
	vt.InstanceVariables = []types.InstanceVariable{
		{Name: e.in.Intern("a"), Type: intT, Span: e.span(2)},
	}
	e.analyse(&ast.Package{ValueTypes: []*types.TypeDefinition{vt}}, false)

	if got := e.countCode(diag.SemaNoInitializers); got != 1 {
		t.Fatalf("warnings = %d, want 1", got)
	}

	// With an initializer the warning disappears.
	e2 := newEnv()
	vt2 := types.NewValueType(e2.in.Intern("🧱"), e2.span(0), false, false)
	vt2.InstanceVariables = []types.InstanceVariable{
		{Name: e2.in.Intern("a"), Type: e2.intType(), Span: e2.span(2)},
	}
	vt2.AddInitializer(e2.method("🆕", nil, types.NoType))
	e2.analyse(&ast.Package{ValueTypes: []*types.TypeDefinition{vt2}}, false)
	if got := e2.countCode(diag.SemaNoInitializers); got != 0 {
		t.Fatalf("warnings = %d, want 0", got)
	}
}

func TestExtensionDuplicateMethodReported(t *testing.T) {
	e := newEnv()
	class := types.NewClass(e.in.Intern("🐩"), e.span(0), nil)
	if err := class.AddMethod(e.method("🦶", nil, e.intType())); err != nil {
		t.Fatal(err)
	}
	ext := &ast.Extension{
		Target:  class,
		Methods: []*types.Function{e.method("🦶", nil, e.intType())},
		Span:    e.span(20),
	}
	e.analyse(&ast.Package{
		Extensions: []*ast.Extension{ext},
		Classes:    []*types.TypeDefinition{class},
	}, false)

	if got := e.countCode(diag.SemaDuplicateMethod); got != 1 {
		t.Fatalf("duplicate-method errors = %d, want 1", got)
	}
}

func TestInheritedMethodSatisfiesProtocol(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	protocol := types.NewProtocol(e.in.Intern("🐕"), e.span(0))
	pFoo := e.method("🦶", nil, intT)
	if err := protocol.AddMethod(pFoo); err != nil {
		t.Fatal(err)
	}

	super := types.NewClass(e.in.Intern("🐕‍🦺"), e.span(4), nil)
	superFoo := e.method("🦶", nil, intT)
	if err := super.AddMethod(superFoo); err != nil {
		t.Fatal(err)
	}

	sub := types.NewClass(e.in.Intern("🐩"), e.span(8), super)
	sub.AddProtocol(types.MakeType(protocol, false))

	a := e.analyse(&ast.Package{Classes: []*types.TypeDefinition{super, sub}}, false)

	if e.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", e.bag.Items())
	}
	if heir := a.Heir(sub, pFoo); heir != superFoo {
		t.Fatalf("heir = %v, want the inherited implementation", heir)
	}
}

func TestFunctionBodyAnalysisAssignsVariableIDs(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	decl := &ast.VariableDeclaration{
		Name: e.in.Intern("🔤"),
		Type: intT,
		Init: &ast.IntegerLiteral{Value: 5, Type: intT, Span: e.span(30)},
		Span: e.span(30),
	}
	fn := e.method("🏃", []types.Parameter{{Name: e.in.Intern("x"), Type: intT}}, intT)
	fn.Body = &ast.Block{Stmts: []ast.Stmt{decl}, Span: e.span(28)}

	e.analyse(&ast.Package{Functions: []*types.Function{fn}}, false)

	if e.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", e.bag.Items())
	}
	if !decl.Resolved || decl.ID != 1 {
		t.Fatalf("declaration id = %d (resolved=%t), want 1 after the argument", decl.ID, decl.Resolved)
	}
	r := fn.UnspecificReification()
	if r == nil || r.VariableCount != 2 {
		t.Fatalf("reification variable count = %v, want 2", r)
	}
}

func TestAssignToFrozenArgumentErrors(t *testing.T) {
	e := newEnv()
	intT := e.intType()
	fn := e.method("🏃", []types.Parameter{{Name: e.in.Intern("x"), Type: intT}}, intT)
	fn.Body = &ast.Block{Stmts: []ast.Stmt{
		&ast.Assignment{
			Name:  e.in.Intern("x"),
			Value: &ast.IntegerLiteral{Value: 1, Type: intT, Span: e.span(30)},
			Span:  e.span(30),
		},
	}, Span: e.span(28)}

	e.analyse(&ast.Package{Functions: []*types.Function{fn}}, false)

	if got := e.countCode(diag.SemaAssignFrozen); got != 1 {
		t.Fatalf("frozen-assignment errors = %d, want 1", got)
	}
}

func TestInitializerDetectsEarlySelfRead(t *testing.T) {
	e := newEnv()
	intT := e.intType()
	class := types.NewClass(e.in.Intern("🐩"), e.span(0), nil)
	field := e.in.Intern("🧮")
	class.InstanceVariables = []types.InstanceVariable{
		{Name: field, Type: intT, Span: e.span(2)},
	}
	init := e.method("🆕", nil, types.NoType)
	init.Body = &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{
			Expr: &ast.VariableAccess{Name: field, Span: e.span(40)},
			Span: e.span(40),
		},
	}, Span: e.span(38)}
	class.AddInitializer(init)

	e.analyse(&ast.Package{Classes: []*types.TypeDefinition{class}}, false)

	if got := e.countCode(diag.SemaUninitializedSelf); got != 1 {
		t.Fatalf("uninitialized-self errors = %d, want 1", got)
	}
}

func TestQueueSurvivesBadFunction(t *testing.T) {
	e := newEnv()
	intT := e.intType()

	bad := e.method("💥", nil, intT)
	bad.Body = &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{
			Expr: &ast.VariableAccess{Name: e.in.Intern("👻"), Span: e.span(20)},
			Span: e.span(20),
		},
	}, Span: e.span(18)}

	good := e.method("🏃", nil, intT)
	decl := &ast.VariableDeclaration{
		Name: e.in.Intern("ok"),
		Type: intT,
		Init: &ast.IntegerLiteral{Value: 1, Type: intT, Span: e.span(40)},
		Span: e.span(40),
	}
	good.Body = &ast.Block{Stmts: []ast.Stmt{decl}, Span: e.span(38)}

	e.analyse(&ast.Package{Functions: []*types.Function{bad, good}}, false)

	if got := e.countCode(diag.SemaVariableNotFound); got != 1 {
		t.Fatalf("variable-not-found errors = %d, want 1", got)
	}
	if !decl.Resolved {
		t.Fatal("the bad function suppressed analysis of the good one")
	}
}
