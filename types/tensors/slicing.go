// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

// Leading-axis kernels used by the control-flow interpreter: stacking,
// concatenating and splitting tensors along their first axis. Tensors are
// stored row-major, so rows along the leading axis are contiguous in the flat
// data and these are plain byte copies.
//
// All functions return freshly-owned tensors and never alias their inputs.

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/tfgraph/types/shapes"
)

// Stack creates a new tensor with one extra leading axis, whose rows are the
// given tensors, in order. All tensors must have the same shape (dtype
// included). Scalars stack into a 1D tensor.
//
// It panics on an empty list or mismatching shapes.
func Stack(ts []*Tensor) *Tensor {
	if len(ts) == 0 {
		exceptions.Panicf("tensors.Stack requires at least one tensor")
	}
	elemShape := ts[0].Shape()
	for ii, t := range ts {
		if !t.Shape().Equal(elemShape) {
			exceptions.Panicf("tensors.Stack: tensor #%d has shape %s, want %s", ii, t.Shape(), elemShape)
		}
	}
	outShape := shapes.Make(elemShape.DType, append([]int{len(ts)}, elemShape.Dimensions...)...)
	out := FromShape(outShape)
	elemBytes := int(elemShape.Memory())
	out.MutableBytes(func(outData []byte) {
		for ii, t := range ts {
			t.ConstBytes(func(data []byte) {
				copy(outData[ii*elemBytes:], data)
			})
		}
	})
	return out
}

// Concatenate creates a new tensor joining the given tensors along their
// (existing) leading axis. All tensors must have rank >= 1, the same dtype
// and the same trailing dimensions.
//
// It panics on an empty list or mismatching shapes.
func Concatenate(ts []*Tensor) *Tensor {
	if len(ts) == 0 {
		exceptions.Panicf("tensors.Concatenate requires at least one tensor")
	}
	first := ts[0].Shape()
	if first.Rank() == 0 {
		exceptions.Panicf("tensors.Concatenate requires tensors of rank >= 1, got scalar")
	}
	leading := 0
	for ii, t := range ts {
		s := t.Shape()
		if s.Rank() != first.Rank() || s.DType != first.DType ||
			!slices.Equal(s.Dimensions[1:], first.Dimensions[1:]) {
			exceptions.Panicf("tensors.Concatenate: tensor #%d has shape %s, incompatible with %s", ii, s, first)
		}
		leading += s.Dimensions[0]
	}
	outShape := shapes.Make(first.DType, append([]int{leading}, first.Dimensions[1:]...)...)
	out := FromShape(outShape)
	out.MutableBytes(func(outData []byte) {
		pos := 0
		for _, t := range ts {
			t.ConstBytes(func(data []byte) {
				copy(outData[pos:], data)
				pos += len(data)
			})
		}
	})
	return out
}

// SplitLeadingAxis splits the tensor along its leading axis into contiguous
// chunks with the given lengths, which must partition the leading dimension
// exactly. Chunk k has shape [lengths[k], trailing dimensions...].
//
// It panics if t is a scalar or the lengths don't add up.
func SplitLeadingAxis(t *Tensor, lengths []int) []*Tensor {
	s := t.Shape()
	if s.Rank() == 0 {
		exceptions.Panicf("tensors.SplitLeadingAxis requires rank >= 1, got scalar")
	}
	total := 0
	for _, l := range lengths {
		if l < 0 {
			exceptions.Panicf("tensors.SplitLeadingAxis: negative length %d", l)
		}
		total += l
	}
	if total != s.Dimensions[0] {
		exceptions.Panicf("tensors.SplitLeadingAxis: lengths %v sum to %d, but leading dimension is %d",
			lengths, total, s.Dimensions[0])
	}
	rowBytes := rowMemory(s)
	chunks := make([]*Tensor, len(lengths))
	t.ConstBytes(func(data []byte) {
		pos := 0
		for ii, l := range lengths {
			chunk := FromShape(shapes.Make(s.DType, append([]int{l}, s.Dimensions[1:]...)...))
			chunk.MutableBytes(func(chunkData []byte) {
				copy(chunkData, data[pos:pos+l*rowBytes])
			})
			pos += l * rowBytes
			chunks[ii] = chunk
		}
	})
	return chunks
}

// SliceLeadingAxis returns row i of the tensor's leading axis, with that axis
// removed: a tensor of the trailing dimensions.
//
// It panics if t is a scalar or the index is out of range.
func SliceLeadingAxis(t *Tensor, i int) *Tensor {
	s := t.Shape()
	if s.Rank() == 0 {
		exceptions.Panicf("tensors.SliceLeadingAxis requires rank >= 1, got scalar")
	}
	if i < 0 || i >= s.Dimensions[0] {
		exceptions.Panicf("tensors.SliceLeadingAxis: index %d out of range for shape %s", i, s)
	}
	row := FromShape(shapes.Make(s.DType, s.Dimensions[1:]...))
	rowBytes := rowMemory(s)
	t.ConstBytes(func(data []byte) {
		row.MutableBytes(func(rowData []byte) {
			copy(rowData, data[i*rowBytes:(i+1)*rowBytes])
		})
	})
	return row
}

// rowMemory returns the number of bytes of one row along the leading axis.
func rowMemory(s shapes.Shape) int {
	return int(shapes.Make(s.DType, s.Dimensions[1:]...).Memory())
}
