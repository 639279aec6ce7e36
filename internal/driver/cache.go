package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"emojicode/internal/ast"
	"emojicode/internal/project"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// Current schema version - increment when InterfacePayload format changes.
const interfaceCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content digest.
type Digest [32]byte

// MethodInterface is one method signature of an exported definition.
type MethodInterface struct {
	Name       string
	Imperative bool
	Return     string
	Params     []string
}

// TypeInterface is one exported type definition.
type TypeInterface struct {
	Name    string
	Kind    uint8
	Methods []MethodInterface
}

// InterfacePayload stores the package interface dependents compile
// against, plus a digest of the sources it was built from. Get checks
// only the schema version; it does not compare the digest.
type InterfacePayload struct {
	Schema uint16

	Name    string
	Version string
	Kind    string

	Types []TypeInterface

	// ContentHash aggregates the digests of every source file.
	ContentHash Digest
}

// InterfaceCache хранит интерфейсы пакетов на диске.
// Thread-safe for concurrent access.
type InterfaceCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenInterfaceCache initializes the cache at the standard location.
func OpenInterfaceCache(app string) (*InterfaceCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &InterfaceCache{dir: dir}, nil
}

// OpenInterfaceCacheAt initializes the cache at an explicit directory.
func OpenInterfaceCacheAt(dir string) (*InterfaceCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &InterfaceCache{dir: dir}, nil
}

func (c *InterfaceCache) pathFor(name string) string {
	sum := sha256.Sum256([]byte(name))
	hexKey := hex.EncodeToString(sum[:])
	// Подкаталог "pkgs" для удобства очистки.
	return filepath.Join(c.dir, "pkgs", hexKey+".mp")
}

// Put serializes and atomically writes a payload.
func (c *InterfaceCache) Put(payload *InterfacePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(payload.Name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	payload.Schema = interfaceCacheSchemaVersion
	data, err := msgpack.Marshal(payload)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload for the package name; ok is false on a miss or a
// schema mismatch.
func (c *InterfaceCache) Get(name string) (*InterfacePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var payload InterfacePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("corrupt interface cache entry: %w", err)
	}
	if payload.Schema != interfaceCacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// Clear removes every cached interface.
func (c *InterfaceCache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "pkgs"))
}

// Dir returns the cache root.
func (c *InterfaceCache) Dir() string {
	return c.dir
}

// BuildInterface assembles the payload for an analysed package.
func BuildInterface(pkg *ast.Package, interner *source.Interner,
	manifest *project.Manifest, fileSet *source.FileSet, files []source.FileID) *InterfacePayload {
	payload := &InterfacePayload{
		Name:    manifest.Config.Package.Name,
		Version: manifest.Config.Package.Version,
		Kind:    string(manifest.Config.Package.Kind),
	}

	describe := func(def *types.TypeDefinition) {
		ti := TypeInterface{
			Name: interner.MustLookup(def.Name),
			Kind: uint8(def.Kind),
		}
		for _, m := range def.Methods() {
			if m.Access != types.AccessPublic {
				continue
			}
			mi := MethodInterface{
				Name:       interner.MustLookup(m.Name),
				Imperative: m.Imperative,
				Return:     m.ReturnType.Describe(interner),
			}
			for _, p := range m.Arguments {
				mi.Params = append(mi.Params, p.Type.Describe(interner))
			}
			ti.Methods = append(ti.Methods, mi)
		}
		payload.Types = append(payload.Types, ti)
	}
	for _, def := range pkg.ValueTypes {
		describe(def)
	}
	for _, def := range pkg.Classes {
		describe(def)
	}
	for _, def := range pkg.Protocols {
		describe(def)
	}

	hasher := sha256.New()
	for _, id := range files {
		if f := fileSet.Get(id); f != nil {
			hasher.Write(f.Hash[:])
		}
	}
	copy(payload.ContentHash[:], hasher.Sum(nil))
	return payload
}
