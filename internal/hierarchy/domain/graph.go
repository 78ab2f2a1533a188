package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Graph is an in-memory adjacency view over one agency's agents.
// Traversals are breadth-first with a visited set and the MaxDepth
// ceiling, so they terminate even when the stored edges form a cycle.
type Graph struct {
	nodes    map[uuid.UUID]Node
	children map[uuid.UUID][]uuid.UUID
}

func NewGraph(nodes []Node) *Graph {
	g := &Graph{
		nodes:    make(map[uuid.UUID]Node, len(nodes)),
		children: make(map[uuid.UUID][]uuid.UUID, len(nodes)),
	}
	for _, node := range nodes {
		g.nodes[node.ID] = node
		if node.UplineID != nil {
			g.children[*node.UplineID] = append(g.children[*node.UplineID], node.ID)
		}
	}
	return g
}

func (g *Graph) Node(id uuid.UUID) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// UplineChain walks from the agent's direct upline toward the root,
// nearest first. The agent itself is not included. The second return
// reports whether the walk was cut off at the depth ceiling.
func (g *Graph) UplineChain(agentID uuid.UUID) ([]ChainEntry, bool) {
	var chain []ChainEntry
	visited := map[uuid.UUID]struct{}{agentID: {}}

	current, ok := g.nodes[agentID]
	if !ok {
		return nil, false
	}

	for level := 1; current.UplineID != nil; level++ {
		if level > MaxDepth {
			return chain, true
		}
		next, ok := g.nodes[*current.UplineID]
		if !ok {
			break
		}
		if _, seen := visited[next.ID]; seen {
			return chain, true
		}
		visited[next.ID] = struct{}{}
		chain = append(chain, ChainEntry{
			AgentID:    next.ID,
			PositionID: next.PositionID,
			Level:      level,
		})
		current = next
	}
	return chain, false
}

// Downline returns all strict descendants of the agent via frontier
// expansion. maxDepth <= 0 or > MaxDepth falls back to MaxDepth. The
// second return reports depth-ceiling truncation.
func (g *Graph) Downline(agentID uuid.UUID, maxDepth int) ([]uuid.UUID, bool) {
	if maxDepth <= 0 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	var out []uuid.UUID
	visited := map[uuid.UUID]struct{}{agentID: {}}
	frontier := []uuid.UUID{agentID}
	truncated := false

	for depth := 1; len(frontier) > 0; depth++ {
		if depth > maxDepth {
			truncated = g.hasUnvisitedChildren(frontier, visited)
			break
		}
		var next []uuid.UUID
		for _, parent := range frontier {
			for _, child := range g.children[parent] {
				if _, seen := visited[child]; seen {
					continue
				}
				visited[child] = struct{}{}
				out = append(out, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return out, truncated
}

func (g *Graph) hasUnvisitedChildren(ids []uuid.UUID, visited map[uuid.UUID]struct{}) bool {
	for _, id := range ids {
		for _, child := range g.children[id] {
			if _, seen := visited[child]; !seen {
				return true
			}
		}
	}
	return false
}

// IsDescendant reports whether candidate is a strict descendant of
// ancestor. An agent is never a descendant of itself.
func (g *Graph) IsDescendant(ancestorID, candidateID uuid.UUID) bool {
	if ancestorID == candidateID {
		return false
	}
	descendants, _ := g.Downline(ancestorID, MaxDepth)
	for _, id := range descendants {
		if id == candidateID {
			return true
		}
	}
	return false
}

// SortByName orders ids by surname then given name for human-facing output.
func (g *Graph) SortByName(ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := g.nodes[ids[i]], g.nodes[ids[j]]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return ids[i].String() < ids[j].String()
	})
}
