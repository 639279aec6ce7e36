package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"emojicode/internal/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), `
[package]
name = "🧺"
version = "0.1.0"
kind = "executable"
sources = "src"
`)
	m, ok, err := LoadManifest(dir)
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if m.Config.Package.Name != "🧺" || m.Config.Package.Kind != KindExecutable {
		t.Fatalf("parsed %+v", m.Config.Package)
	}
	if m.SourceDir() != filepath.Join(dir, "src") {
		t.Fatalf("source dir = %q", m.SourceDir())
	}
}

func TestLoadManifestSearchesUpwards(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "[package]\nname = \"p\"\n")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("upward search failed: ok=%t err=%v", ok, err)
	}
	if m.Root != dir {
		t.Fatalf("root = %q, want %q", m.Root, dir)
	}
}

func TestLoadManifestDefaultsAndValidation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "[package]\nname = \"p\"\n")
	m, _, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Package.Kind != KindLibrary {
		t.Fatalf("default kind = %q, want library", m.Config.Package.Kind)
	}

	bad := t.TempDir()
	writeFile(t, filepath.Join(bad, ManifestName), "[package]\nname = \"p\"\nkind = \"plugin\"\n")
	if _, _, err := LoadManifest(bad); err == nil {
		t.Fatal("invalid kind accepted")
	}

	missing := t.TempDir()
	writeFile(t, filepath.Join(missing, ManifestName), "[package]\n")
	if _, _, err := LoadManifest(missing); err == nil {
		t.Fatal("missing name accepted")
	}
}

func TestDiscoverAndLoadSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.emojic"), "🍉")
	writeFile(t, filepath.Join(dir, "a.emojic"), "🍇")
	writeFile(t, filepath.Join(dir, "sub", "c.emojic"), "🏁")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "x")

	paths, err := DiscoverSources(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("discovered %d files: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "a.emojic" {
		t.Fatalf("not sorted: %v", paths)
	}

	fs := source.NewFileSet()
	ids, err := LoadSources(context.Background(), fs, paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("loaded %d files", len(ids))
	}
	if got := string(fs.Get(ids[0]).Content); got != "🍇" {
		t.Fatalf("first file content = %q", got)
	}
}
