package domain

import (
	"path/filepath"
	"slices"
	"strings"

	"peaklab/internal/platform/kind"
)

type NodeKind int

const (
	FileNode NodeKind = iota
	DirectoryNode
)

func (k NodeKind) String() string {
	if k == DirectoryNode {
		return "directory"
	}
	return "file"
}

type State int

const (
	StateUnknown State = iota
	StatePresent
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

type Node struct {
	Name     string
	Path     string
	Kind     NodeKind
	State    State
	Parent   *Node
	Children []*Node
}

// ID names one of the four trees: raw or saved data of a domain.
type ID struct {
	Kind  kind.Kind
	Saved bool
}

func (id ID) String() string {
	if id.Saved {
		return "saved/" + id.Kind.String()
	}
	return "data/" + id.Kind.String()
}

// Tree mirrors the directory rooted at Root.Path. Files are only tracked
// when their extension is listed in Extensions.
type Tree struct {
	ID         ID
	Root       *Node
	Extensions []string
	index      map[string]*Node
}

func NewTree(id ID, rootPath string, extensions []string) *Tree {
	rootPath = filepath.Clean(rootPath)
	root := &Node{Name: filepath.Base(rootPath), Path: rootPath, Kind: DirectoryNode}
	return &Tree{
		ID:         id,
		Root:       root,
		Extensions: extensions,
		index:      map[string]*Node{rootPath: root},
	}
}

func (t *Tree) Find(path string) (*Node, bool) {
	n, ok := t.index[filepath.Clean(path)]
	return n, ok
}

func (t *Tree) Len() int {
	return len(t.index) - 1
}

func (t *Tree) Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(t.Extensions, ext)
}

// Contains reports whether path lies inside the tree root.
func (t *Tree) Contains(path string) bool {
	rel, err := filepath.Rel(t.Root.Path, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Insert adds a child under parent keeping siblings ordered by name.
func (t *Tree) Insert(parent *Node, name string, k NodeKind) *Node {
	path := filepath.Join(parent.Path, name)
	display := name
	if k == FileNode {
		display = strings.TrimSuffix(name, filepath.Ext(name))
	}
	n := &Node{Name: display, Path: path, Kind: k, State: StateUnknown, Parent: parent}
	at, _ := slices.BinarySearchFunc(parent.Children, path, func(c *Node, target string) int {
		return strings.Compare(filepath.Base(c.Path), filepath.Base(target))
	})
	parent.Children = slices.Insert(parent.Children, at, n)
	t.index[path] = n
	return n
}

// Detach unlinks n from its parent and marks its whole subtree removed.
// The root cannot be detached.
func (t *Tree) Detach(n *Node) {
	if n == nil || n == t.Root || n.State == StateRemoved {
		return
	}
	if p := n.Parent; p != nil {
		if i := slices.Index(p.Children, n); i >= 0 {
			p.Children = slices.Delete(p.Children, i, i+1)
		}
	}
	n.Parent = nil
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.State = StateRemoved
		if t.index[cur.Path] == cur {
			delete(t.index, cur.Path)
		}
		stack = append(stack, cur.Children...)
	}
}

// Walk returns every node below the root in depth-first pre-order.
func (t *Tree) Walk() []*Node {
	var out []*Node
	stack := make([]*Node, 0, len(t.Root.Children))
	for i := len(t.Root.Children) - 1; i >= 0; i-- {
		stack = append(stack, t.Root.Children[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// Depth is the number of edges between n and the tree root.
func (t *Tree) Depth(n *Node) int {
	d := 0
	for cur := n; cur != nil && cur != t.Root; cur = cur.Parent {
		d++
	}
	return d
}
