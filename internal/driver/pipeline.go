// Package driver wires project loading, parsing, semantic analysis and
// lowering into one pipeline and persists package interfaces for
// dependents.
package driver

import (
	"context"
	"errors"

	"emojicode/internal/ast"
	"emojicode/internal/diag"
	"emojicode/internal/irgen"
	"emojicode/internal/project"
	"emojicode/internal/sema"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageLoad Stage = iota
	StageParse
	StageAnalyse
	StageLower
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageParse:
		return "parse"
	case StageAnalyse:
		return "analyse"
	case StageLower:
		return "lower"
	case StageDone:
		return "done"
	default:
		return "invalid"
	}
}

// Event is one progress notification.
type Event struct {
	Stage Stage
	Path  string
}

// Parser turns loaded source files into a package. Lexing and parsing are
// a separate component; this is the seam it plugs into.
type Parser interface {
	ParsePackage(fileSet *source.FileSet, files []source.FileID,
		interner *source.Interner, reporter diag.Reporter) (*ast.Package, error)
}

// Options configures a pipeline run.
type Options struct {
	Parser         Parser
	MaxDiagnostics int
	// Events receives progress notifications when non-nil. The channel is
	// closed when the run finishes.
	Events chan<- Event
	// Cache receives the package interface on a clean run, when non-nil.
	Cache *InterfaceCache
}

// Result carries everything a run produced.
type Result struct {
	Manifest *project.Manifest
	FileSet  *source.FileSet
	Interner *source.Interner
	Bag      *diag.Bag
	Package  *ast.Package
	Funcs    []*irgen.Func
}

// Run drives the pipeline for the project at dir.
func Run(ctx context.Context, dir string, opts Options) (*Result, error) {
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	res := &Result{
		FileSet:  source.NewFileSet(),
		Interner: source.NewInterner(),
		Bag:      diag.NewBag(maxDiagnostics),
	}
	reporter := diag.BagReporter{Bag: res.Bag}
	emit := func(stage Stage, path string) {
		if opts.Events != nil {
			opts.Events <- Event{Stage: stage, Path: path}
		}
	}
	defer func() {
		if opts.Events != nil {
			close(opts.Events)
		}
	}()

	manifest, ok, err := project.LoadManifest(dir)
	if err != nil {
		diag.Error(reporter, diag.PrjManifestInvalid, source.Span{}, err.Error())
		return res, nil
	}
	if !ok {
		diag.Error(reporter, diag.PrjManifestMissing, source.Span{},
			"no "+project.ManifestName+" found")
		return res, nil
	}
	res.Manifest = manifest

	paths, err := project.DiscoverSources(manifest.SourceDir())
	if err != nil {
		diag.Error(reporter, diag.PrjFileRead, source.Span{}, err.Error())
		return res, nil
	}
	if len(paths) == 0 {
		diag.Error(reporter, diag.PrjNoSources, source.Span{},
			"no "+project.SourceExtension+" files in "+manifest.SourceDir())
		return res, nil
	}
	for _, p := range paths {
		emit(StageLoad, p)
	}
	files, err := project.LoadSources(ctx, res.FileSet, paths)
	if err != nil {
		diag.Error(reporter, diag.PrjFileRead, source.Span{}, err.Error())
		return res, nil
	}

	emit(StageParse, "")
	if opts.Parser == nil {
		diag.Error(reporter, diag.PrjParserMissing, source.Span{},
			"no parser is linked into this build")
		return res, nil
	}
	pkg, err := opts.Parser.ParsePackage(res.FileSet, files, res.Interner, reporter)
	if err != nil {
		reportCaught(reporter, err)
		return res, nil
	}
	res.Package = pkg

	emit(StageAnalyse, "")
	analyser := sema.New(pkg, res.Interner, reporter)
	analyser.Analyse(manifest.Config.Package.Kind == project.KindExecutable)

	if res.Bag.HasErrors() {
		return res, nil
	}

	emit(StageLower, "")
	res.Funcs = lowerPackage(pkg, res.Interner, analyser, reporter)

	if opts.Cache != nil && !res.Bag.HasErrors() {
		payload := BuildInterface(pkg, res.Interner, manifest, res.FileSet, files)
		if err := opts.Cache.Put(payload); err != nil {
			diag.Warn(reporter, diag.UnknownCode, source.Span{},
				"failed to write package interface: "+err.Error())
		}
	}
	emit(StageDone, "")
	return res, nil
}

// lowerPackage lowers every analysed, non-external function.
func lowerPackage(pkg *ast.Package, interner *source.Interner,
	analyser *sema.Analyser, reporter diag.Reporter) []*irgen.Func {
	var funcs []*irgen.Func
	lower := func(f *types.Function) {
		if f.External {
			return
		}
		fg := irgen.NewFunctionCodeGenerator(f, interner, analyser)
		lowered, err := fg.Generate()
		if err != nil {
			reportCaught(reporter, err)
			return
		}
		funcs = append(funcs, lowered)
	}
	for _, def := range pkg.ValueTypes {
		def.EachFunction(lower)
	}
	for _, def := range pkg.Classes {
		def.EachFunction(lower)
	}
	for _, f := range pkg.Functions {
		lower(f)
	}
	if pkg.StartFlag != nil {
		lower(pkg.StartFlag)
	}
	return funcs
}

func reportCaught(reporter diag.Reporter, err error) {
	var ce *diag.CompilerError
	if errors.As(err, &ce) {
		diag.ReportCompilerError(reporter, ce)
		return
	}
	diag.Error(reporter, diag.UnknownCode, source.Span{}, err.Error())
}
