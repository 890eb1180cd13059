package main

import (
	"sort"
	"strings"
)

// treeNode is a directory in the rendered file tree.
type treeNode struct {
	dirs  map[string]*treeNode
	files []string
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: make(map[string]*treeNode)}
}

// renderTree renders slash-separated file paths below root as an indented
// tree, directories before files at each level.
func renderTree(root string, files []string) string {
	top := newTreeNode()
	for _, f := range files {
		parts := strings.Split(f, "/")
		node := top
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node.dirs[dir]
			if !ok {
				child = newTreeNode()
				node.dirs[dir] = child
			}
			node = child
		}
		node.files = append(node.files, parts[len(parts)-1])
	}

	var sb strings.Builder
	sb.WriteString(root)
	sb.WriteString("\n")
	top.render(&sb, "")
	return sb.String()
}

func (n *treeNode) render(sb *strings.Builder, prefix string) {
	names := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.Strings(n.files)

	total := len(names) + len(n.files)
	i := 0
	for _, name := range names {
		i++
		branch, next := "├── ", "│   "
		if i == total {
			branch, next = "└── ", "    "
		}
		sb.WriteString(prefix + branch + name + "/\n")
		n.dirs[name].render(sb, prefix+next)
	}
	for _, name := range n.files {
		i++
		branch := "├── "
		if i == total {
			branch = "└── "
		}
		sb.WriteString(prefix + branch + name + "\n")
	}
}
