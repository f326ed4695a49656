// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph models the nodes of an already-parsed dataflow graph and the
// value map that carries tensors along its edges during interpretation.
//
// Parsing a serialized graph into Nodes is a collaborator's job: this package
// only defines the read-only node surface the executor consumes -- the
// operation kind (OpType), positional input edges and typed attributes --
// plus the generic attribute accessors Attr and AttrOr.
//
// Attribute keys follow the snake_case convention of the source graph format
// (`frame_name`, `dtype`, `element_shape`, `dynamic_size`, `clear_after_read`,
// `identical_element_shapes`, `tensor_array_name`, `component_types`,
// `shapes`, `capacity`, `container`, `shared_name`). Input edge order is
// documented per operation on the OpType constants.
package graph

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/tfgraph/types/tensors"
)

// Node is one node of the dataflow graph, consumed read-only by the executor.
type Node struct {
	// Name of the node, unique within the graph.
	Name string

	// Op is the operation kind.
	Op OpType

	// Inputs are the names of the edges feeding this node, positional per
	// the operation (see the OpType constants).
	Inputs []string

	// Attrs are the node's attributes, already decoded to Go values: int,
	// bool, string, float64, []int, dtypes.DType, shapes.Shape,
	// []dtypes.DType or []shapes.Shape depending on the attribute.
	Attrs map[string]any
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.Op.String() + "(" + n.Name + ")"
}

// Attr returns the node's attribute under the given key, asserting its type.
// It panics (an exceptions panic, converted to an error at the executor
// boundary) if the attribute is missing or holds a different type.
func Attr[T any](n *Node, key string) T {
	valueAny, found := n.Attrs[key]
	if !found {
		exceptions.Panicf("node %s has no attribute %q", n, key)
	}
	value, ok := valueAny.(T)
	if !ok {
		var want T
		exceptions.Panicf("node %s attribute %q is a %T, wanted %T", n, key, valueAny, want)
	}
	return value
}

// AttrOr is like Attr, but returns the given default when the attribute is
// absent. It still panics on a type mismatch: a mistyped attribute is a graph
// bug, not an omission.
func AttrOr[T any](n *Node, key string, defaultValue T) T {
	if _, found := n.Attrs[key]; !found {
		return defaultValue
	}
	return Attr[T](n, key)
}

// ValueMap carries the tensors produced on the graph's edges so far in one
// execution, keyed by edge name. The scheduler owns it; the executor only
// reads operands from it.
type ValueMap map[string]*tensors.Tensor

// Get returns the tensor on the given edge, or nil if the edge has not
// produced a value yet (or structurally carries none, as the untaken branch
// of a Switch).
func (m ValueMap) Get(edge string) *tensors.Tensor {
	return m[edge]
}
