// Package workspace stores editable snippet files grouped by dialect folder.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid path")
)

// Group lists the snippet files of one folder.
type Group struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
}

// Workspace is rooted at a directory holding one subdirectory per folder.
type Workspace struct {
	root    string
	folders []string
}

func New(root string, folders []string) *Workspace {
	return &Workspace{root: root, folders: slices.Clone(folders)}
}

func (w *Workspace) Root() string { return w.root }

// Folders returns the configured folder names.
func (w *Workspace) Folders() []string { return slices.Clone(w.folders) }

func isSnippet(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".js" || ext == ".ts"
}

// List returns every folder with its .js and .ts files, sorted by name. A
// folder that does not exist yet lists as empty.
func (w *Workspace) List() ([]Group, error) {
	groups := make([]Group, 0, len(w.folders))
	for _, folder := range w.folders {
		g := Group{Folder: folder, Files: []string{}}
		entries, err := os.ReadDir(filepath.Join(w.root, folder))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing %s: %w", folder, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && isSnippet(e.Name()) {
				g.Files = append(g.Files, e.Name())
			}
		}
		sort.Strings(g.Files)
		groups = append(groups, g)
	}
	return groups, nil
}

// path resolves folder/file, rejecting anything outside the configured
// folders or any name that is not a plain snippet file name.
func (w *Workspace) path(folder, file string) (string, error) {
	if !slices.Contains(w.folders, folder) {
		return "", fmt.Errorf("%w: unknown folder %q", ErrInvalidPath, folder)
	}
	if file == "" || file != filepath.Base(file) || strings.ContainsAny(file, `/\`) || strings.HasPrefix(file, ".") {
		return "", fmt.Errorf("%w: bad file name %q", ErrInvalidPath, file)
	}
	if !isSnippet(file) {
		return "", fmt.Errorf("%w: %q is not a .js or .ts file", ErrInvalidPath, file)
	}
	return filepath.Join(w.root, folder, file), nil
}

// Read returns the contents of folder/file.
func (w *Workspace) Read(folder, file string) (string, error) {
	p, err := w.path(folder, file)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s/%s: %w", folder, file, err)
	}
	return string(data), nil
}

// Save writes code to folder/file, creating the folder when needed.
func (w *Workspace) Save(folder, file, code string) error {
	p, err := w.path(folder, file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", folder, err)
	}
	if err := os.WriteFile(p, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s/%s: %w", folder, file, err)
	}
	return nil
}
