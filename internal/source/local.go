package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names never descended into when collecting
// Solidity files from a tree.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"artifacts":    true,
	"cache":        true,
	"out":          true,
}

// ReadLocal loads Solidity documents from a file or directory. A single
// file is returned as-is regardless of extension; a directory is walked
// for *.sol files, sorted by path for deterministic audit order.
func ReadLocal(path string) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return []Document{{Name: filepath.Base(path), Content: string(data)}}, nil
	}

	var docs []Document
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".sol") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			rel = p
		}
		docs = append(docs, Document{Name: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no .sol files found under %s", path)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
