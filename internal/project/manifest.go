// Package project locates and loads package manifests and source files.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the loader searches for.
const ManifestName = "emojicode.toml"

// Kind selects the build product.
type Kind string

const (
	KindExecutable Kind = "executable"
	KindLibrary    Kind = "library"
)

// Manifest is a located and parsed package manifest.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML structure.
type Config struct {
	Package PackageConfig `toml:"package"`
}

// PackageConfig describes the package being built.
type PackageConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Kind    Kind   `toml:"kind"`
	// Sources is the source directory relative to the manifest, "." when
	// empty.
	Sources string `toml:"sources"`
}

// FindManifest walks from startDir upwards until it finds a manifest.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the manifest governing startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Package.Name == "" {
		return nil, true, fmt.Errorf("%s: package.name must be set", path)
	}
	switch cfg.Package.Kind {
	case "":
		cfg.Package.Kind = KindLibrary
	case KindExecutable, KindLibrary:
	default:
		return nil, true, fmt.Errorf("%s: package.kind must be %q or %q", path, KindExecutable, KindLibrary)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// SourceDir resolves the source directory of the manifest.
func (m *Manifest) SourceDir() string {
	if m.Config.Package.Sources == "" {
		return m.Root
	}
	return filepath.Join(m.Root, m.Config.Package.Sources)
}
