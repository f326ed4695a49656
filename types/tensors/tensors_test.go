// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/tfgraph/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float64, 2, 3))
	assert.Equal(t, 6, tensor.Size())
	assert.Equal(t, dtypes.Float64, tensor.DType())
	ConstFlatData(tensor, func(flat []float64) {
		for _, v := range flat {
			assert.Equal(t, 0.0, v)
		}
	})
	require.Panics(t, func() { FromShape(shapes.Invalid()) })
}

func TestFromValue(t *testing.T) {
	tensor := FromValue([][]float32{{0, 1, 2}, {3, 4, 5}})
	assert.True(t, tensor.Shape().Equal(shapes.Make(dtypes.Float32, 2, 3)))
	assert.Equal(t, [][]float32{{0, 1, 2}, {3, 4, 5}}, tensor.Value())

	scalar := FromValue(int32(7))
	assert.True(t, scalar.IsScalar())
	assert.Equal(t, int32(7), ToScalar[int32](scalar))

	pred := FromScalar(true)
	assert.Equal(t, dtypes.Bool, pred.DType())
	assert.Equal(t, true, ToScalar[bool](pred))

	// Irregular sub-slices must be rejected.
	require.Panics(t, func() { FromAnyValue([][]float32{{0, 1}, {2}}) })
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]int8{1, 2, 3, 4}, 2, 2)
	assert.Equal(t, [][]int8{{1, 2}, {3, 4}}, tensor.Value())
	require.Panics(t, func() { FromFlatDataAndDimensions([]int8{1, 2, 3}, 2, 2) })

	fromInts := FromFlatDataAndDimensions([]int{1, 2}, 2)
	assert.Equal(t, 2, fromInts.Size())
}

func TestFromScalarAndDimensions(t *testing.T) {
	tensor := FromScalarAndDimensions(float32(1.5), 3, 2)
	assert.Equal(t, [][]float32{{1.5, 1.5}, {1.5, 1.5}, {1.5, 1.5}}, tensor.Value())
}

func TestCloneIsIndependent(t *testing.T) {
	tensor := FromValue([]int64{1, 2, 3})
	clone := tensor.Clone()
	require.True(t, tensor.Equal(clone))

	MutableFlatData(tensor, func(flat []int64) { flat[0] = 100 })
	assert.False(t, tensor.Equal(clone))
	assert.Equal(t, []int64{1, 2, 3}, clone.Value())
}

func TestEqual(t *testing.T) {
	a := FromValue([][]float64{{1, 2}, {3, 4}})
	b := FromValue([][]float64{{1, 2}, {3, 4}})
	c := FromValue([][]float64{{1, 2}, {3, 5}})
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(FromValue([]float64{1, 2})))
}

func TestHalfPrecision(t *testing.T) {
	f16 := FromScalar(float16.Fromfloat32(3.0))
	assert.Equal(t, dtypes.Float16, f16.DType())
	assert.Equal(t, float32(3.0), ToScalar[float16.Float16](f16).Float32())

	bf16 := FromValue([]bfloat16.BFloat16{bfloat16.FromFloat32(1), bfloat16.FromFloat32(2)})
	assert.Equal(t, dtypes.BFloat16, bf16.DType())
	assert.Equal(t, 2, bf16.Size())
}

func TestToScalarChecks(t *testing.T) {
	tensor := FromValue([]float32{1, 2})
	require.Panics(t, func() { ToScalar[float32](tensor) })
	scalar := FromScalar(float32(1))
	require.Panics(t, func() { ToScalar[float64](scalar) })
}

func TestFinalize(t *testing.T) {
	tensor := FromScalar(int32(1))
	assert.False(t, tensor.IsFinalized())
	tensor.FinalizeAll()
	assert.True(t, tensor.IsFinalized())
	require.Panics(t, func() { tensor.AssertValid() })
}

func TestCopyFlatDataAndStrides(t *testing.T) {
	tensor := FromValue([][]int32{{1, 2, 3}, {4, 5, 6}})
	flat := CopyFlatData[int32](tensor)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, flat)
	flat[0] = 42
	assert.Equal(t, [][]int32{{1, 2, 3}, {4, 5, 6}}, tensor.Value())
	assert.Equal(t, []int{3, 1}, tensor.LayoutStrides())
}
