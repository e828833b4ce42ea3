package flow

import "strings"

// EdgeID derives a deterministic id for a connection.
func EdgeID(c Connection) string {
	var b strings.Builder
	b.WriteString("e-")
	b.WriteString(c.Source)
	if c.SourceHandle != "" {
		b.WriteString(":" + c.SourceHandle)
	}
	b.WriteString("-")
	b.WriteString(c.Target)
	if c.TargetHandle != "" {
		b.WriteString(":" + c.TargetHandle)
	}
	return b.String()
}

// Connects reports whether e joins the same endpoints as c.
func (e Edge) Connects(c Connection) bool {
	return e.Source == c.Source && e.Target == c.Target &&
		e.SourceHandle == c.SourceHandle && e.TargetHandle == c.TargetHandle
}

// Touches reports whether e has id as source or target.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// AddEdge appends an edge for c unless an edge with the same endpoints
// already exists. It returns the (possibly unchanged) slice and whether an
// edge was added. The input slice is never modified.
func AddEdge(edges []Edge, c Connection, edgeType string) ([]Edge, bool) {
	if c.Source == "" || c.Target == "" {
		return edges, false
	}
	id := EdgeID(c)
	for _, e := range edges {
		if e.Connects(c) || e.ID == id {
			return edges, false
		}
	}
	out := make([]Edge, len(edges), len(edges)+1)
	copy(out, edges)
	return append(out, Edge{
		ID:           id,
		Source:       c.Source,
		SourceHandle: c.SourceHandle,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
		Type:         edgeType,
	}), true
}

// ConnectedEdges returns the edges touching any of the given node ids.
func ConnectedEdges(edges []Edge, nodeIDs map[string]bool) []Edge {
	var out []Edge
	for _, e := range edges {
		if nodeIDs[e.Source] || nodeIDs[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
