// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package executor

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/gomlx/tfgraph/types/shapes"
	"github.com/gomlx/tfgraph/types/tensors"
)

// TensorArray is an index-addressable, optionally dynamically-growing ordered
// collection of tensor slots, used to represent loop-carried array-like
// state. Each slot is either empty or holds one tensor, always a private copy
// of what was written; reads hand out copies as well, so no caller ever
// aliases the array's storage.
//
// Created by the tensorArray op and registered in a Context; destroyed by
// tensorArrayClose, after which every operation fails.
type TensorArray struct {
	id   int
	name string

	dtype dtypes.DType

	// elementShape is the per-element shape constraint; Invalid() when
	// unconstrained. Under identicalElementShapes an unconstrained shape is
	// pinned by the first write.
	elementShape shapes.Shape

	dynamicSize            bool
	clearAfterRead         bool
	identicalElementShapes bool

	slots  []*tensors.Tensor
	closed bool
}

// NewTensorArray creates a TensorArray with size slots. elementShape may be
// shapes.Invalid() to leave elements unconstrained. It panics on a negative
// size.
func NewTensorArray(name string, dtype dtypes.DType, size int, elementShape shapes.Shape,
	dynamicSize, clearAfterRead, identicalElementShapes bool) *TensorArray {
	if size < 0 {
		exceptions.Panicf("NewTensorArray(%q): negative size %d", name, size)
	}
	return &TensorArray{
		name:                   name,
		dtype:                  dtype,
		elementShape:           elementShape,
		dynamicSize:            dynamicSize,
		clearAfterRead:         clearAfterRead,
		identicalElementShapes: identicalElementShapes,
		slots:                  make([]*tensors.Tensor, size),
	}
}

// Name of the array, for diagnostics.
func (ta *TensorArray) Name() string { return ta.name }

// DType of the array's elements.
func (ta *TensorArray) DType() dtypes.DType { return ta.dtype }

// Size returns the array's logical size: its configured (or dynamically
// grown) capacity, not the count of non-empty slots.
func (ta *TensorArray) Size() int { return len(ta.slots) }

// Memory returns the bytes held by all non-empty slots.
func (ta *TensorArray) Memory() (total uintptr) {
	for _, slot := range ta.slots {
		if slot != nil {
			total += slot.Memory()
		}
	}
	return
}

// String implements fmt.Stringer.
func (ta *TensorArray) String() string {
	if ta.closed {
		return fmt.Sprintf("TensorArray(#%d, %q, closed)", ta.id, ta.name)
	}
	return fmt.Sprintf("TensorArray(#%d, %q, %s, size=%d, memory=%s)",
		ta.id, ta.name, ta.dtype, len(ta.slots), humanize.Bytes(uint64(ta.Memory())))
}

func (ta *TensorArray) checkOpen(op string) error {
	if ta.closed {
		return errors.Wrapf(ErrInvalidState, "%s on closed TensorArray #%d (%q)", op, ta.id, ta.name)
	}
	return nil
}

// Write stores a copy of t in slot index. Writing past the current size grows
// the array if it was created with dynamicSize, and fails otherwise.
func (ta *TensorArray) Write(index int, t *tensors.Tensor) error {
	if err := ta.checkOpen("Write"); err != nil {
		return err
	}
	return ta.writeOwned(index, t.Clone())
}

// writeOwned is Write for tensors the array may take ownership of (freshly
// created chunks from Scatter/Split), skipping the defensive copy.
func (ta *TensorArray) writeOwned(index int, t *tensors.Tensor) error {
	if index < 0 {
		return errors.Wrapf(ErrInvalidState, "Write to negative index %d of TensorArray #%d", index, ta.id)
	}
	if index >= len(ta.slots) {
		if !ta.dynamicSize {
			return errors.Wrapf(ErrInvalidState, "Write to index %d out of range of TensorArray #%d (size %d, and not dynamic)",
				index, ta.id, len(ta.slots))
		}
		ta.slots = append(ta.slots, make([]*tensors.Tensor, index+1-len(ta.slots))...)
	}
	if t.DType() != ta.dtype {
		return errors.Wrapf(ErrInvalidState, "Write of %s tensor to TensorArray #%d of dtype %s",
			t.DType(), ta.id, ta.dtype)
	}
	if ta.identicalElementShapes {
		if !ta.elementShape.Ok() {
			ta.elementShape = t.Shape().Clone()
		} else if !t.Shape().Equal(ta.elementShape) {
			return errors.Wrapf(ErrInvalidState,
				"Write of shape %s to TensorArray #%d whose elements are constrained to shape %s",
				t.Shape(), ta.id, ta.elementShape)
		}
	}
	ta.slots[index] = t
	return nil
}

// Read returns a copy of the tensor in slot index. It fails on empty slots
// and out-of-range indices. If the array was created with clearAfterRead,
// the slot becomes empty afterward.
func (ta *TensorArray) Read(index int) (*tensors.Tensor, error) {
	if err := ta.checkOpen("Read"); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ta.slots) {
		return nil, errors.Wrapf(ErrInvalidState, "Read of index %d out of range of TensorArray #%d (size %d)",
			index, ta.id, len(ta.slots))
	}
	slot := ta.slots[index]
	if slot == nil {
		return nil, errors.Wrapf(ErrInvalidState, "Read of empty slot %d of TensorArray #%d", index, ta.id)
	}
	result := slot.Clone()
	if ta.clearAfterRead {
		slot.FinalizeAll()
		ta.slots[index] = nil
	}
	return result, nil
}

// Gather returns one tensor stacking the elements at the given indices, in
// the order given, along a new leading axis. It fails if any indexed slot is
// empty. It reads through the same path as Read, so clearAfterRead applies.
func (ta *TensorArray) Gather(indices []int) (*tensors.Tensor, error) {
	if err := ta.checkOpen("Gather"); err != nil {
		return nil, err
	}
	elements := make([]*tensors.Tensor, 0, len(indices))
	for _, index := range indices {
		element, err := ta.Read(index)
		if err != nil {
			return nil, errors.WithMessagef(err, "Gather of TensorArray #%d", ta.id)
		}
		elements = append(elements, element)
	}
	if len(elements) == 0 {
		return nil, errors.Wrapf(ErrInvalidState, "Gather of TensorArray #%d with no indices", ta.id)
	}
	return tensors.Stack(elements), nil
}

// Scatter slices t along its leading axis and writes slice k into the slot
// named by indices[k]. The leading dimension must match len(indices).
func (ta *TensorArray) Scatter(indices []int, t *tensors.Tensor) error {
	if err := ta.checkOpen("Scatter"); err != nil {
		return err
	}
	if t.Rank() == 0 {
		return errors.Wrapf(ErrInvalidState, "Scatter into TensorArray #%d requires rank >= 1, got scalar", ta.id)
	}
	if t.Shape().Dimensions[0] != len(indices) {
		return errors.Wrapf(ErrInvalidState,
			"Scatter into TensorArray #%d: %d indices but value's leading dimension is %d",
			ta.id, len(indices), t.Shape().Dimensions[0])
	}
	for k, index := range indices {
		if err := ta.writeOwned(index, tensors.SliceLeadingAxis(t, k)); err != nil {
			return errors.WithMessagef(err, "Scatter into TensorArray #%d", ta.id)
		}
	}
	return nil
}

// Concat returns one tensor concatenating all non-empty slots, in ascending
// index order, along their leading axis. It fails if the array holds no
// values. It reads through the same path as Read, so clearAfterRead applies.
func (ta *TensorArray) Concat() (*tensors.Tensor, error) {
	if err := ta.checkOpen("Concat"); err != nil {
		return nil, err
	}
	var elements []*tensors.Tensor
	for index, slot := range ta.slots {
		if slot == nil {
			continue
		}
		if slot.Rank() == 0 {
			return nil, errors.Wrapf(ErrInvalidState,
				"Concat of TensorArray #%d requires elements of rank >= 1, slot %d is a scalar", ta.id, index)
		}
		element, err := ta.Read(index)
		if err != nil {
			return nil, errors.WithMessagef(err, "Concat of TensorArray #%d", ta.id)
		}
		elements = append(elements, element)
	}
	if len(elements) == 0 {
		return nil, errors.Wrapf(ErrInvalidState, "Concat of TensorArray #%d with no values", ta.id)
	}
	return tensors.Concatenate(elements), nil
}

// Split splits t along its leading axis into contiguous chunks with the
// given lengths -- which must partition the leading dimension exactly -- and
// writes chunk k into slot k, overwriting existing content.
func (ta *TensorArray) Split(lengths []int, t *tensors.Tensor) error {
	if err := ta.checkOpen("Split"); err != nil {
		return err
	}
	if t.Rank() == 0 {
		return errors.Wrapf(ErrInvalidState, "Split into TensorArray #%d requires rank >= 1, got scalar", ta.id)
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	if total != t.Shape().Dimensions[0] {
		return errors.Wrapf(ErrInvalidState,
			"Split into TensorArray #%d: lengths %v sum to %d, but value's leading dimension is %d",
			ta.id, lengths, total, t.Shape().Dimensions[0])
	}
	for k, chunk := range tensors.SplitLeadingAxis(t, lengths) {
		if err := ta.writeOwned(k, chunk); err != nil {
			return errors.WithMessagef(err, "Split into TensorArray #%d", ta.id)
		}
	}
	return nil
}

// Close releases all slot contents and marks the array closed; every
// subsequent operation on it fails.
func (ta *TensorArray) Close() {
	for _, slot := range ta.slots {
		if slot != nil {
			slot.FinalizeAll()
		}
	}
	ta.slots = nil
	ta.closed = true
}
