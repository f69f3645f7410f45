package hierarchy

import (
	"fmt"

	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

const (
	// CollectionMimeType marks structural container nodes (units).
	CollectionMimeType = "application/vnd.ekstep.content-collection"
	// VisibilityParent marks nodes owned by their parent collection.
	VisibilityParent = "Parent"
)

// Node is one projected hierarchy entry.
type Node struct {
	Identifier     string   `json:"identifier"`
	Name           string   `json:"name"`
	ContentType    string   `json:"contentType,omitempty"`
	Topic          []string `json:"topic,omitempty"`
	Status         string   `json:"status,omitempty"`
	Creator        string   `json:"creator,omitempty"`
	CreatedBy      *string  `json:"createdBy"`
	ParentID       *string  `json:"parentId"`
	OrganisationID *string  `json:"organisationId"`
	PrevStatus     *string  `json:"prevStatus"`
	Visibility     string   `json:"visibility,omitempty"`
	MimeType       string   `json:"mimeType,omitempty"`
	Level          int      `json:"level"`
	ShowButton     bool     `json:"showButton"`
	Children       []Node   `json:"children"`
}

// IsContainer reports whether n is a parent-owned collection unit.
func (n Node) IsContainer() bool {
	return n.Visibility == VisibilityParent && n.MimeType == CollectionMimeType
}

// LevelRule is the editor configuration of one hierarchy level.
type LevelRule struct {
	Name     string              `mapstructure:"name" json:"name,omitempty"`
	Children map[string][]string `mapstructure:"children" json:"children,omitempty"`
}

// LevelConfig maps "level1", "level2", ... to their rules.
type LevelConfig map[string]LevelRule

// ChildTypes returns the allowlist of child types configured for level.
func (c LevelConfig) ChildTypes(level int) map[string][]string {
	if c == nil {
		return nil
	}
	return c[fmt.Sprintf("level%d", level)].Children
}

// AllowsAnyChild is true when no child restriction is configured for level.
func (c LevelConfig) AllowsAnyChild(level int) bool {
	return len(c.ChildTypes(level)) == 0
}

// BuildTree projects the children of root into annotated nodes. The root sits
// at level 0 so its direct children are level 1. Below the first level only
// parent-owned collection units are kept; leaf content is summarised by its
// unit and not listed again. root is never modified.
func BuildTree(root Document, collectionID string, levels LevelConfig) []Node {
	tree := buildLevel(root, 0, levels)
	if tree == nil {
		tree = []Node{}
	}
	logx.Debugf("hierarchy %s: %d first-level nodes", collectionID, len(tree))
	return tree
}

func buildLevel(parent Document, parentLevel int, levels LevelConfig) []Node {
	children := parent.Children()
	if len(children) == 0 {
		return nil
	}
	level := parentLevel + 1
	out := make([]Node, 0, len(children))
	for _, child := range children {
		n := project(child)
		n.Level = level
		n.ShowButton = levels.AllowsAnyChild(level)
		n.Children = containers(buildLevel(child, level, levels))
		out = append(out, n)
	}
	return out
}

func containers(nodes []Node) []Node {
	var kept []Node
	for _, n := range nodes {
		if n.IsContainer() {
			kept = append(kept, n)
		}
	}
	return kept
}

func project(d Document) Node {
	return Node{
		Identifier:     d.String("identifier"),
		Name:           d.String("name"),
		ContentType:    d.String("contentType"),
		Topic:          d.Values("topic"),
		Status:         d.String("status"),
		Creator:        d.String("creator"),
		CreatedBy:      d.OptString("createdBy"),
		ParentID:       d.OptString("parent"),
		OrganisationID: d.Present("organisationId"),
		PrevStatus:     d.OptString("prevStatus"),
		Visibility:     d.String("visibility"),
		MimeType:       d.String("mimeType"),
	}
}

// Walk visits every node depth-first, parents before children.
func Walk(nodes []Node, fn func(n Node, parent *Node)) {
	var walk func(ns []Node, parent *Node)
	walk = func(ns []Node, parent *Node) {
		for i := range ns {
			fn(ns[i], parent)
			walk(ns[i].Children, &ns[i])
		}
	}
	walk(nodes, nil)
}
