// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package executor

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/tfgraph/types/shapes"
)

func TestFrameStack(t *testing.T) {
	ec := New()
	assert.Equal(t, 0, ec.Depth())
	assert.Nil(t, ec.CurrentFrame())

	ec.EnterFrame("while/outer")
	ec.EnterFrame("while/inner")
	assert.Equal(t, 2, ec.Depth())
	assert.Equal(t, "while/inner", ec.CurrentFrame().Name)
	assert.Equal(t, 0, ec.CurrentFrame().Iteration)

	require.NoError(t, ec.NextIteration())
	require.NoError(t, ec.NextIteration())
	assert.Equal(t, 2, ec.CurrentFrame().Iteration)

	require.NoError(t, ec.ExitFrame())
	assert.Equal(t, "while/outer", ec.CurrentFrame().Name)
	// The outer frame's counter is untouched by the inner frame's advances.
	assert.Equal(t, 0, ec.CurrentFrame().Iteration)

	require.NoError(t, ec.ExitFrame())
	err := ec.ExitFrame()
	require.ErrorIs(t, err, ErrInvalidState)
	err = ec.NextIteration()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRegistries(t *testing.T) {
	ec := New()
	ta := NewTensorArray("ta", dtypes.Float32, 2, shapes.Invalid(), false, false, false)
	q := NewFIFOQueue("q", "", []dtypes.DType{dtypes.Int32}, nil, 0)

	taID := ec.RegisterTensorArray(ta)
	qID := ec.RegisterFIFOQueue(q)
	assert.NotEqual(t, taID, qID, "ids are drawn from one counter")

	got, err := ec.TensorArray(taID)
	require.NoError(t, err)
	assert.Same(t, ta, got)
	gotQ, err := ec.FIFOQueue(qID)
	require.NoError(t, err)
	assert.Same(t, q, gotQ)

	// Ids are not interchangeable between the registries.
	_, err = ec.TensorArray(qID)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = ec.FIFOQueue(taID)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = ec.TensorArray(1000)
	require.ErrorIs(t, err, ErrInvalidState)
}
