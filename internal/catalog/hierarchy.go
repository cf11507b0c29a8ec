// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog enforces the write rules of the category forest and
// the product catalog: cycle-free parent moves, cascading deletes and
// the constraints that keep live products sellable.
package catalog

import "github.com/google/uuid"

// childrenIndex inverts a parents map into parent -> children.
func childrenIndex(parents map[uuid.UUID]*uuid.UUID) map[uuid.UUID][]uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID, len(parents))
	for id, parent := range parents {
		if parent != nil {
			children[*parent] = append(children[*parent], id)
		}
	}
	return children
}

// DescendantIDs returns every category transitively under root, not
// including root itself. The walk is an iterative BFS with a visited
// set, so a corrupted forest with a loop in it cannot hang it.
func DescendantIDs(parents map[uuid.UUID]*uuid.UUID, root uuid.UUID) []uuid.UUID {
	children := childrenIndex(parents)

	visited := map[uuid.UUID]bool{root: true}
	queue := append([]uuid.UUID(nil), children[root]...)
	var out []uuid.UUID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, id)
		queue = append(queue, children[id]...)
	}
	return out
}

// IsDescendant reports whether candidate sits in ancestor's subtree.
// A category counts as its own descendant, which is exactly what the
// parent-move check needs: moving a category under itself or under
// anything below it would close a cycle. The upward walk carries a
// visited set so a pre-existing loop reads as "yes" instead of spinning.
func IsDescendant(parents map[uuid.UUID]*uuid.UUID, candidate, ancestor uuid.UUID) bool {
	if candidate == ancestor {
		return true
	}

	visited := make(map[uuid.UUID]bool)
	current := parents[candidate]
	for current != nil {
		if *current == ancestor {
			return true
		}
		if visited[*current] {
			return true
		}
		visited[*current] = true
		current = parents[*current]
	}
	return false
}
