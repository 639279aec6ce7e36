package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

type fakeParser struct {
	build func(in *source.Interner) *ast.Package
}

func (p fakeParser) ParsePackage(_ *source.FileSet, _ []source.FileID,
	in *source.Interner, _ diag.Reporter) (*ast.Package, error) {
	return p.build(in), nil
}

func writeProject(t *testing.T, kind string) string {
	t.Helper()
	dir := t.TempDir()
	manifest := "[package]\nname = \"🧺\"\nversion = \"0.1.0\"\nkind = \"" + kind + "\"\n"
	if err := os.WriteFile(filepath.Join(dir, "emojicode.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.emojic"), []byte("🏁 🍇 🍉"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func span() source.Span {
	return source.Span{File: 0, Start: 0, End: 4}
}

func simplePackage(withStartFlag bool) func(in *source.Interner) *ast.Package {
	return func(in *source.Interner) *ast.Package {
		intT := types.MakeType(types.NewValueType(in.Intern("🔢"), span(), true, false), false)
		class := types.NewClass(in.Intern("🐩"), span(), nil)
		method := &types.Function{
			Name:       in.Intern("🦶"),
			Imperative: true,
			ReturnType: intT,
			Access:     types.AccessPublic,
			Span:       span(),
			Body: &ast.Block{
				Stmts: []ast.Stmt{&ast.Return{
					Value: &ast.IntegerLiteral{Value: 1, Type: intT, Span: span()},
					Span:  span(),
				}},
				Span: span(),
			},
		}
		_ = class.AddMethod(method)

		pkg := &ast.Package{
			Name:    in.Intern("🧺"),
			Span:    span(),
			Classes: []*types.TypeDefinition{class},
		}
		if withStartFlag {
			pkg.StartFlag = &types.Function{
				Name:       in.Intern("🏁"),
				Imperative: true,
				Access:     types.AccessPublic,
				Span:       span(),
				Body:       &ast.Block{Span: span()},
			}
		}
		return pkg
	}
}

func TestPipelineExecutableWithoutStartFlag(t *testing.T) {
	dir := writeProject(t, "executable")
	res, err := Run(context.Background(), dir, Options{
		Parser: fakeParser{build: simplePackage(false)},
	})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.SemaNoStartFlag {
			found = true
		}
	}
	if !found {
		t.Fatalf("no start-flag error: %v", res.Bag.Items())
	}
	if len(res.Funcs) != 0 {
		t.Fatal("lowering ran despite errors")
	}
}

func TestPipelineLibraryBuildSucceeds(t *testing.T) {
	dir := writeProject(t, "library")
	res, err := Run(context.Background(), dir, Options{
		Parser: fakeParser{build: simplePackage(false)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("library build errored: %v", res.Bag.Items())
	}
	if len(res.Funcs) != 1 {
		t.Fatalf("lowered %d functions, want 1", len(res.Funcs))
	}
}

func TestPipelineExecutableWithStartFlag(t *testing.T) {
	dir := writeProject(t, "executable")
	res, err := Run(context.Background(), dir, Options{
		Parser: fakeParser{build: simplePackage(true)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}
	// The class method and the start flag block both lower.
	if len(res.Funcs) != 2 {
		t.Fatalf("lowered %d functions, want 2", len(res.Funcs))
	}
}

func TestPipelineWithoutParser(t *testing.T) {
	dir := writeProject(t, "library")
	res, err := Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Bag.Items(); len(got) != 1 || got[0].Code != diag.PrjParserMissing {
		t.Fatalf("diagnostics = %v, want one parser-missing error", got)
	}
}

func TestPipelineMissingManifest(t *testing.T) {
	res, err := Run(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("missing manifest did not error")
	}
}

func TestPipelineWritesInterfaceCache(t *testing.T) {
	dir := writeProject(t, "library")
	cache, err := OpenInterfaceCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), dir, Options{
		Parser: fakeParser{build: simplePackage(false)},
		Cache:  cache,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}

	payload, ok, err := cache.Get("🧺")
	if err != nil || !ok {
		t.Fatalf("cache miss: ok=%t err=%v", ok, err)
	}
	if payload.Kind != "library" || len(payload.Types) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Types[0].Name != "🐩" || len(payload.Types[0].Methods) != 1 {
		t.Fatalf("type interface = %+v", payload.Types[0])
	}
	if payload.Types[0].Methods[0].Return != "🔢" {
		t.Fatalf("method interface = %+v", payload.Types[0].Methods[0])
	}
}

func TestPipelineEmitsEvents(t *testing.T) {
	dir := writeProject(t, "library")
	events := make(chan Event, 64)
	done := make(chan []Event, 1)
	go func() {
		var got []Event
		for ev := range events {
			got = append(got, ev)
		}
		done <- got
	}()
	_, err := Run(context.Background(), dir, Options{
		Parser: fakeParser{build: simplePackage(false)},
		Events: events,
	})
	if err != nil {
		t.Fatal(err)
	}
	got := <-done
	if len(got) == 0 {
		t.Fatal("no events emitted")
	}
	last := got[len(got)-1]
	if last.Stage != StageDone {
		t.Fatalf("last stage = %v, want done", last.Stage)
	}
}
