// Package vault organizes a tree of documents by semantic similarity of
// precomputed content embeddings. It builds a folder tree from flat file
// paths, aggregates embeddings bottom-up into per-folder centroids, clusters
// ungrouped files, detects files that diverge from their folder's theme, and
// produces ranked relocation suggestions. It never touches the filesystem.
package vault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidPath is returned when a file path is empty, absolute, or
// contains a parent-directory segment.
var ErrInvalidPath = errors.New("invalid file path")

// ErrDimensionMismatch is returned when embeddings of different dimensions
// are mixed within one run.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// FileNode is a document in the vault with its embedding.
type FileNode struct {
	Path      string
	Embedding []float32
	Parent    *FolderNode // non-owning, for path lookups only
}

// Name returns the final path segment.
func (f *FileNode) Name() string {
	if i := strings.LastIndexByte(f.Path, '/'); i >= 0 {
		return f.Path[i+1:]
	}
	return f.Path
}

// FolderNode is a folder in the vault. Its embedding stays nil until
// aggregation runs (or a cached layer is applied); a folder with no
// descendant embeddings keeps a nil embedding.
type FolderNode struct {
	Path       string // empty for the root
	Files      []*FileNode
	Subfolders []*FolderNode
	Embedding  []float32
	Parent     *FolderNode // non-owning
}

// Name returns the final path segment, or "<root>" for the root.
func (n *FolderNode) Name() string {
	if n.Path == "" {
		return "<root>"
	}
	if i := strings.LastIndexByte(n.Path, '/'); i >= 0 {
		return n.Path[i+1:]
	}
	return n.Path
}

// IsLeaf reports whether the folder has no subfolders.
func (n *FolderNode) IsLeaf() bool {
	return len(n.Subfolders) == 0
}

// TotalFiles counts all files in the subtree rooted at n.
func (n *FolderNode) TotalFiles() int {
	count := len(n.Files)
	for _, sub := range n.Subfolders {
		count += sub.TotalFiles()
	}
	return count
}

// BuildTree builds a folder tree from a flat path→embedding mapping. Every
// ancestor folder is created lazily and exactly once, regardless of input
// order. An empty mapping yields a bare root. All embeddings must share one
// dimension. Children are ordered lexicographically by path, so two runs
// over the same input produce identical trees.
func BuildTree(embeddings map[string][]float32) (*FolderNode, error) {
	root := &FolderNode{}
	folders := map[string]*FolderNode{"": root}

	paths := make([]string, 0, len(embeddings))
	for p := range embeddings {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	dim := -1
	for _, p := range paths {
		if err := validatePath(p); err != nil {
			return nil, err
		}
		emb := embeddings[p]
		if dim < 0 {
			dim = len(emb)
		} else if len(emb) != dim {
			return nil, fmt.Errorf("%w: %q has dimension %d, want %d", ErrDimensionMismatch, p, len(emb), dim)
		}

		parent := getOrCreateFolder(folders, parentPath(p))
		parent.Files = append(parent.Files, &FileNode{Path: p, Embedding: emb, Parent: parent})
	}

	sortTree(root)
	return root, nil
}

func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: absolute path %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: parent-directory segment in %q", ErrInvalidPath, p)
		}
	}
	return nil
}

// parentPath returns the directory portion of p, or "" for a top-level path.
func parentPath(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// getOrCreateFolder returns the folder at path, creating it and any missing
// ancestors. The memo map guarantees each folder is created exactly once.
func getOrCreateFolder(folders map[string]*FolderNode, path string) *FolderNode {
	if node, ok := folders[path]; ok {
		return node
	}
	parent := getOrCreateFolder(folders, parentPath(path))
	node := &FolderNode{Path: path, Parent: parent}
	parent.Subfolders = append(parent.Subfolders, node)
	folders[path] = node
	return node
}

// sortTree orders every child list lexicographically by path.
func sortTree(n *FolderNode) {
	sort.Slice(n.Files, func(i, j int) bool { return n.Files[i].Path < n.Files[j].Path })
	sort.Slice(n.Subfolders, func(i, j int) bool { return n.Subfolders[i].Path < n.Subfolders[j].Path })
	for _, sub := range n.Subfolders {
		sortTree(sub)
	}
}

// Folders flattens the tree to a pre-order list of all folders, excluding
// the root itself.
func Folders(root *FolderNode) []*FolderNode {
	var out []*FolderNode
	var walk func(*FolderNode)
	walk = func(n *FolderNode) {
		if n.Path != "" {
			out = append(out, n)
		}
		for _, sub := range n.Subfolders {
			walk(sub)
		}
	}
	walk(root)
	return out
}

// Files flattens the tree to a pre-order list of all files.
func Files(root *FolderNode) []*FileNode {
	var out []*FileNode
	var walk func(*FolderNode)
	walk = func(n *FolderNode) {
		out = append(out, n.Files...)
		for _, sub := range n.Subfolders {
			walk(sub)
		}
	}
	walk(root)
	return out
}
