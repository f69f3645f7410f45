package ui

import (
	"fmt"
	"strings"

	tree "github.com/charmbracelet/lipgloss/tree"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
)

// generateTreeLinesLabeled renders nodes as a tree using a caller-provided
// label function and returns the lines. Sibling order is kept.
func generateTreeLinesLabeled(nodes []hierarchy.Node, labelFn func(n hierarchy.Node) string) []string {
	if len(nodes) == 0 {
		return []string{}
	}

	tr := tree.New()
	for _, n := range nodes {
		tr.Child(buildSubtree(n, labelFn))
	}

	lines := strings.Split(tr.String(), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func buildSubtree(n hierarchy.Node, labelFn func(n hierarchy.Node) string) *tree.Tree {
	t := tree.Root(labelFn(n))
	for _, c := range n.Children {
		t.Child(buildSubtree(c, labelFn))
	}
	return t
}

// generateTreeLines renders nodes with the default label.
func generateTreeLines(nodes []hierarchy.Node) []string {
	return generateTreeLinesLabeled(nodes, displayNode)
}

// displayNode shows the name and a [+] marker when children can be added.
func displayNode(n hierarchy.Node) string {
	name := n.Name
	if name == "" {
		name = n.Identifier
	}
	label := fmt.Sprintf("%s %s", symbolForNode(n), name)
	if n.ShowButton {
		label += " " + subtleStyle.Render("[+]")
	}
	return label
}

func symbolForNode(n hierarchy.Node) string {
	if n.MimeType == hierarchy.CollectionMimeType {
		return symbolCollection
	}
	return symbolContent
}

// RenderTree renders nodes the way the tree view shows them.
func RenderTree(nodes []hierarchy.Node) string {
	return strings.Join(generateTreeLines(nodes), "\n")
}

// countUnits returns the number of nodes at any depth and how many of them
// accept any child type.
func countUnits(nodes []hierarchy.Node) (total, addable int) {
	hierarchy.Walk(nodes, func(n hierarchy.Node, _ *hierarchy.Node) {
		total++
		if n.ShowButton {
			addable++
		}
	})
	return total, addable
}
