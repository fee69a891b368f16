package compiler

import (
	"github.com/satishbabariya/fnsql-go/dsl/diagnostics"
)

// Graph is the test dependency graph. Nodes are the test-annotated
// definitions and every definition they name as a prerequisite; an edge runs
// from a prerequisite to its dependent.
type Graph struct {
	nodes []*Definition
	// prereqs maps a dependent to its prerequisites, in listed order.
	prereqs map[string][]*Definition
}

// BuildGraph builds the graph over defs, which must be in declaration order
// and have resolved prerequisites.
func BuildGraph(defs []*Definition) *Graph {
	g := &Graph{prereqs: make(map[string][]*Definition)}

	member := make(map[string]bool)
	for _, d := range defs {
		if !d.Tested() {
			continue
		}
		member[d.Name] = true
		g.prereqs[d.Name] = d.Prerequisites
		for _, p := range d.Prerequisites {
			member[p.Name] = true
		}
	}
	for _, d := range defs {
		if member[d.Name] {
			g.nodes = append(g.nodes, d)
		}
	}
	return g
}

// Prerequisites returns the direct prerequisites of the named node.
func (g *Graph) Prerequisites(name string) []*Definition { return g.prereqs[name] }

type visitState int

const (
	unvisited visitState = iota
	onStack
	done
)

// Order returns the nodes in test order: a depth-first post-order that visits
// roots in declaration order and prerequisites in listed order. Every
// prerequisite precedes its dependents, and nodes without a constraint
// between them keep declaration order. The first cycle found fails the order
// with a CyclicDependency error naming its path.
func (g *Graph) Order() ([]*Definition, error) {
	var (
		order []*Definition
		state = make(map[string]visitState, len(g.nodes))
		stack []*Definition
	)

	var visit func(d *Definition) *diagnostics.Error
	visit = func(d *Definition) *diagnostics.Error {
		switch state[d.Name] {
		case done:
			return nil
		case onStack:
			return cycleError(stack, d)
		}
		state[d.Name] = onStack
		stack = append(stack, d)
		for _, p := range g.prereqs[d.Name] {
			if err := visit(p); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[d.Name] = done
		order = append(order, d)
		return nil
	}

	for _, n := range g.nodes {
		if err := visit(n); err != nil {
			return nil, diagnostics.ErrorList{err}
		}
	}
	return order, nil
}

// cycleError reports the cycle closed by the back edge to d. The path runs
// along prerequisite edges from d back to d.
func cycleError(stack []*Definition, d *Definition) *diagnostics.Error {
	start := 0
	for i, s := range stack {
		if s.Name == d.Name {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		path = append(path, s.Name)
	}
	path = append(path, d.Name)
	return diagnostics.NewCyclicDependencyError(path, d.Attributes.Test.Span)
}
