package main

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"unicode"
)

//go:embed embed/version.txt
var embedVersion string

//go:embed embed/tile_pools.json
var embeddedTilePoolJSON []byte

//go:embed embed/sql
var embeddedSQLFS embed.FS

//go:embed embed/static
var embeddedStaticFS embed.FS

// embedParameters contains the embedded files the server is run with.
type embedParameters struct {
	version  string
	poolJSON []byte
	staticFS fs.FS
	sqlFS    fs.FS
}

// newEmbedParameters validates the embedded version and resolves the embedded file systems.
func newEmbedParameters(version string, poolJSON []byte, staticFS, sqlFS fs.FS) (*embedParameters, error) {
	v, err := cleanVersion(version)
	if err != nil {
		return nil, fmt.Errorf("reading embedded version: %w", err)
	}
	unembeddedStaticFS, err := unembedFS(staticFS, "embed/static")
	if err != nil {
		return nil, fmt.Errorf("unembedding static file system: %w", err)
	}
	unembeddedSQLFS, err := unembedFS(sqlFS, "embed/sql")
	if err != nil {
		return nil, fmt.Errorf("unembedding sql file system: %w", err)
	}
	e := embedParameters{
		version:  v,
		poolJSON: poolJSON,
		staticFS: unembeddedStaticFS,
		sqlFS:    unembeddedSQLFS,
	}
	return &e, nil
}

// cleanVersion returns the version without surrounding whitespace.
// An error is returned if the version is empty or contains inner whitespace.
func cleanVersion(v string) (string, error) {
	cleaned := strings.TrimSpace(v)
	switch {
	case len(cleaned) == 0:
		return "", fmt.Errorf("no words in version")
	case strings.IndexFunc(cleaned, unicode.IsSpace) >= 0:
		return "", fmt.Errorf("version must be a single word")
	}
	return cleaned, nil
}

// unembedFS returns the directory of the file system as its own file system.
func unembedFS(fsys fs.FS, dir string) (fs.FS, error) {
	return fs.Sub(fsys, dir)
}

// sqlFiles opens the setup queries of the embedded sql file system.
func (e embedParameters) sqlFiles() ([]io.Reader, error) {
	fileNames, err := fs.Glob(e.sqlFS, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("globbing sql files: %w", err)
	}
	files := make([]io.Reader, 0, len(fileNames))
	for _, n := range fileNames {
		f, err := e.sqlFS.Open(n)
		if err != nil {
			return nil, fmt.Errorf("opening setup query file %v: %w", n, err)
		}
		files = append(files, f)
	}
	return files, nil
}
