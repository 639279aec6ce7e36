package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"emojicode/internal/source"
)

// SourceExtension marks source files of the language.
const SourceExtension = ".emojic"

// DiscoverSources возвращает отсортированный список всех исходников в
// директории.
func DiscoverSources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), SourceExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

type loadedFile struct {
	path    string
	content []byte
}

// LoadSources reads every file concurrently and registers them in the
// FileSet in path order. The FileSet itself is not safe for concurrent
// use, so registration stays sequential.
func LoadSources(ctx context.Context, fileSet *source.FileSet, paths []string) ([]source.FileID, error) {
	loaded := make([]loadedFile, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			// #nosec G304 -- paths come from DiscoverSources
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			loaded[i] = loadedFile{path: path, content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]source.FileID, 0, len(loaded))
	for _, f := range loaded {
		ids = append(ids, fileSet.Add(f.path, f.content, 0))
	}
	return ids, nil
}
