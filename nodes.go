package caravan

import (
	"slices"
	"strings"
)

// Node is a named location of the trading world. The name is the join key of
// routes, it is unique and case-sensitive.
type Node struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// DefaultNodes is the built-in set of nodes.
var DefaultNodes = []Node{
	{ID: "1", Name: "Aela", Region: "The Riverlands"},
	{ID: "2", Name: "Dünheim", Region: "The Mountains"},
	{ID: "3", Name: "Garen", Region: "The Riverlands"},
	{ID: "4", Name: "Oakhaven", Region: "The Forest"},
	{ID: "5", Name: "Rivers End", Region: "The Riverlands"},
	{ID: "6", Name: "Whitepeak", Region: "The Mountains"},
	{ID: "7", Name: "Carphin", Region: "The Swamps"},
	{ID: "8", Name: "Verra", Region: "The Coast"},
	{ID: "9", Name: "Heartwood", Region: "The Forest"},
	{ID: "10", Name: "Sandstone", Region: "The Desert"},
	{ID: "11", Name: "Frostfall", Region: "Tundra"},
	{ID: "12", Name: "Ironhold", Region: "Mountains"},
	{ID: "13", Name: "Seabrash", Region: "Coast"},
	{ID: "14", Name: "Marshgate", Region: "Swamps"},
	{ID: "15", Name: "Highcliff", Region: "Cliffs"},
}

// MergeNodes merges the overlay into the default set. Overlay nodes whose name
// already exists are dropped. The result is sorted by name.
func MergeNodes(defaults, overlay []Node) []Node {
	merged := slices.Clone(defaults)
	for _, n := range overlay {
		if !containsNode(merged, n.Name) {
			merged = append(merged, n)
		}
	}
	slices.SortStableFunc(merged, func(a, b Node) int { return strings.Compare(a.Name, b.Name) })
	return merged
}

func containsNode(nodes []Node, name string) bool {
	return slices.ContainsFunc(nodes, func(n Node) bool { return n.Name == name })
}
