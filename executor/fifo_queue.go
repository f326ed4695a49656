// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package executor

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/gomlx/tfgraph/types/shapes"
	"github.com/gomlx/tfgraph/types/tensors"
)

// FIFOQueue is a bounded (or unbounded) first-in-first-out store of tensor
// tuples, each tuple matching a fixed per-column dtype/shape schema.
//
// Created by the fifoQueue op; consumed destructively, in FIFO order, by
// queueDequeueUpTo. This interpreter has no enqueue op: Enqueue is the path
// for the external collaborator that produces the queue's contents.
type FIFOQueue struct {
	id        int
	name      string
	container string

	componentDTypes []dtypes.DType

	// componentShapes has one entry per column; an entry may be
	// shapes.Invalid() to leave that column unconstrained.
	componentShapes []shapes.Shape

	// capacity 0 means unbounded.
	capacity int

	tuples [][]*tensors.Tensor
}

// NewFIFOQueue creates an empty queue with the given column schema.
// componentShapes may be nil (all columns unconstrained) or must have one
// entry per column. A capacity of 0 means unbounded; negative capacities
// panic.
func NewFIFOQueue(name, container string, componentDTypes []dtypes.DType,
	componentShapes []shapes.Shape, capacity int) *FIFOQueue {
	if len(componentDTypes) == 0 {
		exceptions.Panicf("NewFIFOQueue(%q): schema needs at least one column", name)
	}
	if capacity < 0 {
		exceptions.Panicf("NewFIFOQueue(%q): negative capacity %d", name, capacity)
	}
	if componentShapes == nil {
		componentShapes = make([]shapes.Shape, len(componentDTypes))
		for ii := range componentShapes {
			componentShapes[ii] = shapes.Invalid()
		}
	}
	if len(componentShapes) != len(componentDTypes) {
		exceptions.Panicf("NewFIFOQueue(%q): %d column dtypes but %d column shapes",
			name, len(componentDTypes), len(componentShapes))
	}
	return &FIFOQueue{
		name:            name,
		container:       container,
		componentDTypes: componentDTypes,
		componentShapes: componentShapes,
		capacity:        capacity,
	}
}

// Name of the queue, for diagnostics.
func (q *FIFOQueue) Name() string { return q.name }

// NumComponents returns the number of columns in the schema.
func (q *FIFOQueue) NumComponents() int { return len(q.componentDTypes) }

// ComponentDTypes returns the per-column dtypes of the schema.
func (q *FIFOQueue) ComponentDTypes() []dtypes.DType { return q.componentDTypes }

// Size returns the number of tuples currently held.
func (q *FIFOQueue) Size() int { return len(q.tuples) }

// String implements fmt.Stringer.
func (q *FIFOQueue) String() string {
	return fmt.Sprintf("FIFOQueue(#%d, %q, %d columns, size=%d, capacity=%d)",
		q.id, q.name, len(q.componentDTypes), len(q.tuples), q.capacity)
}

// Enqueue appends one tuple to the back of the queue, copying the components
// in. It fails if the tuple doesn't match the column schema, or if a bounded
// queue is full -- there is no blocking or backpressure.
func (q *FIFOQueue) Enqueue(components ...*tensors.Tensor) error {
	if len(components) != len(q.componentDTypes) {
		return errors.Wrapf(ErrInvalidState, "Enqueue of %d components into FIFOQueue #%d with %d columns",
			len(components), q.id, len(q.componentDTypes))
	}
	if q.capacity > 0 && len(q.tuples) >= q.capacity {
		return errors.Wrapf(ErrInvalidState, "Enqueue into full FIFOQueue #%d (capacity %d)", q.id, q.capacity)
	}
	for col, component := range components {
		if component.DType() != q.componentDTypes[col] {
			return errors.Wrapf(ErrInvalidState, "Enqueue into FIFOQueue #%d: column %d is %s, schema wants %s",
				q.id, col, component.DType(), q.componentDTypes[col])
		}
		if q.componentShapes[col].Ok() && !component.Shape().Equal(q.componentShapes[col]) {
			return errors.Wrapf(ErrInvalidState, "Enqueue into FIFOQueue #%d: column %d has shape %s, schema wants %s",
				q.id, col, component.Shape(), q.componentShapes[col])
		}
	}
	tuple := make([]*tensors.Tensor, len(components))
	for col, component := range components {
		tuple[col] = component.Clone()
	}
	q.tuples = append(q.tuples, tuple)
	return nil
}

// DequeueUpTo removes up to n tuples from the front of the queue -- fewer,
// possibly zero, when the queue holds less; it never blocks -- and returns
// one tensor per column, stacking the dequeued tuples' values for that
// column along a new leading axis, in FIFO order. With zero tuples dequeued
// the returned tensors have a leading dimension of 0.
func (q *FIFOQueue) DequeueUpTo(n int) ([]*tensors.Tensor, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidState, "DequeueUpTo(%d) of FIFOQueue #%d: negative count", n, q.id)
	}
	take := min(n, len(q.tuples))
	columns := make([]*tensors.Tensor, len(q.componentDTypes))
	if take == 0 {
		for col := range columns {
			columns[col] = q.emptyColumn(col)
		}
		return columns, nil
	}
	taken := q.tuples[:take]
	for col := range columns {
		values := make([]*tensors.Tensor, take)
		for row, tuple := range taken {
			values[row] = tuple[col]
		}
		// Stack copies, so the stored tuples can be released below.
		columns[col] = tensors.Stack(values)
	}
	for _, tuple := range taken {
		for _, component := range tuple {
			component.FinalizeAll()
		}
	}
	q.tuples = q.tuples[take:]
	return columns, nil
}

// emptyColumn builds the zero-tuple result for one column: leading dimension
// 0 followed by the column's element shape when the schema constrains it.
func (q *FIFOQueue) emptyColumn(col int) *tensors.Tensor {
	dims := []int{0}
	if q.componentShapes[col].Ok() {
		dims = append(dims, q.componentShapes[col].Dimensions...)
	}
	return tensors.FromShape(shapes.Make(q.componentDTypes[col], dims...))
}
