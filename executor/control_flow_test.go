// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package executor

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/tfgraph/graph"
	"github.com/gomlx/tfgraph/types/tensors"
)

// run executes a node against the value map and registers its outputs back
// under "<name>" (single output) or "<name>:<i>".
func run(t *testing.T, ec *Context, values graph.ValueMap, node *graph.Node) []*tensors.Tensor {
	t.Helper()
	outputs := must.M1(ExecuteOp(node, values, ec))
	if len(outputs) == 1 {
		values[node.Name] = outputs[0]
		return outputs
	}
	for i, out := range outputs {
		values[fmt.Sprintf("%s:%d", node.Name, i)] = out
	}
	return outputs
}

func TestLoopCondAndSwitch(t *testing.T) {
	ec := New()
	values := graph.ValueMap{
		"pred": tensors.FromScalar(true),
		"data": tensors.FromValue([]float32{1, 2}),
	}

	outputs := run(t, ec, values, &graph.Node{
		Name: "cond", Op: graph.OpTypeLoopCond, Inputs: []string{"pred"}})
	require.Len(t, outputs, 1)
	assert.Equal(t, true, outputs[0].Value())

	sw := &graph.Node{Name: "sw", Op: graph.OpTypeSwitch, Inputs: []string{"cond", "data"}}
	outputs = run(t, ec, values, sw)
	require.Len(t, outputs, 2)
	assert.Nil(t, outputs[0], "false branch of a true Switch carries no value")
	require.NotNil(t, outputs[1])
	assert.Equal(t, []float32{1, 2}, outputs[1].Value())

	// The output is a copy: mutating the input leaves it untouched.
	tensors.MutableFlatData(values["data"], func(flat []float32) { flat[0] = -1 })
	assert.Equal(t, []float32{1, 2}, outputs[1].Value())

	values["cond"] = tensors.FromScalar(false)
	outputs = run(t, ec, values, sw)
	require.NotNil(t, outputs[0])
	assert.Nil(t, outputs[1])
}

func TestMerge(t *testing.T) {
	ec := New()
	values := graph.ValueMap{}
	merge := &graph.Node{Name: "m", Op: graph.OpTypeMerge, Inputs: []string{"a", "b"}}

	// No input defined yet: a nil marker, not an error.
	outputs := must.M1(ExecuteOp(merge, values, ec))
	require.Len(t, outputs, 1)
	assert.Nil(t, outputs[0])

	values["b"] = tensors.FromScalar(int32(2))
	outputs = must.M1(ExecuteOp(merge, values, ec))
	assert.Equal(t, int32(2), outputs[0].Value())

	// With both defined the first declared input wins.
	values["a"] = tensors.FromScalar(int32(1))
	outputs = must.M1(ExecuteOp(merge, values, ec))
	assert.Equal(t, int32(1), outputs[0].Value())
}

func TestWhileLoopScript(t *testing.T) {
	// The control-flow skeleton of `for i := 0; i < 3; i++`, driven the way
	// a scheduler would: Enter, then Merge/Switch/NextIteration visits per
	// iteration, then Exit.
	ec := New()
	values := graph.ValueMap{"i0": tensors.FromScalar(int32(0))}

	run(t, ec, values, &graph.Node{
		Name: "enter", Op: graph.OpTypeEnter, Inputs: []string{"i0"},
		Attrs: map[string]any{"frame_name": "while"}})
	require.Equal(t, 1, ec.Depth())

	values["next"] = nil
	merge := &graph.Node{Name: "i", Op: graph.OpTypeMerge, Inputs: []string{"enter", "next"}}
	sw := &graph.Node{Name: "sw", Op: graph.OpTypeSwitch, Inputs: []string{"cond", "i"}}
	next := &graph.Node{Name: "next", Op: graph.OpTypeNextIteration, Inputs: []string{"body"}}
	exit := &graph.Node{Name: "exit", Op: graph.OpTypeExit, Inputs: []string{"sw:0"}}

	for {
		run(t, ec, values, merge)
		i := tensors.ToScalar[int32](values["i"])
		values["cond"] = tensors.FromScalar(i < 3)
		run(t, ec, values, sw)
		if values["sw:1"] == nil {
			break
		}
		values["body"] = tensors.FromScalar(i + 1)
		run(t, ec, values, next)
		// Merge must see the fresh value, not the Enter output.
		values["enter"] = nil
	}
	require.Equal(t, 3, ec.CurrentFrame().Iteration)

	run(t, ec, values, exit)
	assert.Equal(t, 0, ec.Depth())
	assert.Equal(t, int32(3), values["exit"].Value())
}

func TestExitWithoutEnter(t *testing.T) {
	ec := New()
	values := graph.ValueMap{"x": tensors.FromScalar(int32(1))}
	_, err := ExecuteOp(&graph.Node{
		Name: "exit", Op: graph.OpTypeExit, Inputs: []string{"x"}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = ExecuteOp(&graph.Node{
		Name: "next", Op: graph.OpTypeNextIteration, Inputs: []string{"x"}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestTensorArrayOps(t *testing.T) {
	ec := New()
	values := graph.ValueMap{
		"size":  tensors.FromScalar(int32(3)),
		"v0":    tensors.FromValue([]float32{1, 2}),
		"idx":   tensors.FromScalar(int32(0)),
		"order": tensors.FromValue([]int32{0}),
	}

	outputs := run(t, ec, values, &graph.Node{
		Name: "ta", Op: graph.OpTypeTensorArray, Inputs: []string{"size"},
		Attrs: map[string]any{"dtype": dtypes.Float32}})
	require.Len(t, outputs, 2, "create returns a handle and a flow token")
	handle := "ta:0"

	run(t, ec, values, &graph.Node{
		Name: "write", Op: graph.OpTypeTensorArrayWrite,
		Inputs: []string{handle, "idx", "v0"}})

	outputs = run(t, ec, values, &graph.Node{
		Name: "read", Op: graph.OpTypeTensorArrayRead,
		Inputs: []string{handle, "idx"}})
	assert.Equal(t, []float32{1, 2}, outputs[0].Value())

	outputs = run(t, ec, values, &graph.Node{
		Name: "size_op", Op: graph.OpTypeTensorArraySize,
		Inputs: []string{handle}})
	assert.Equal(t, int32(3), outputs[0].Value())

	outputs = run(t, ec, values, &graph.Node{
		Name: "gather", Op: graph.OpTypeTensorArrayGather,
		Inputs: []string{handle, "order"},
		Attrs:  map[string]any{"dtype": dtypes.Float32}})
	assert.Equal(t, [][]float32{{1, 2}}, outputs[0].Value())

	// A mismatched dtype attribute is rejected before touching the array.
	_, err := ExecuteOp(&graph.Node{
		Name: "bad_gather", Op: graph.OpTypeTensorArrayGather,
		Inputs: []string{handle, "order"},
		Attrs:  map[string]any{"dtype": dtypes.Int32}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)

	outputs = run(t, ec, values, &graph.Node{
		Name: "close", Op: graph.OpTypeTensorArrayClose,
		Inputs: []string{handle}})
	assert.Empty(t, outputs)

	_, err = ExecuteOp(&graph.Node{
		Name: "late_read", Op: graph.OpTypeTensorArrayRead,
		Inputs: []string{handle, "idx"}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)

	// Size is an operation like any other: rejected after close, it never
	// reports the released (empty) capacity.
	_, err = ExecuteOp(&graph.Node{
		Name: "late_size", Op: graph.OpTypeTensorArraySize,
		Inputs: []string{handle}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestTensorArrayScatterSplitConcat(t *testing.T) {
	ec := New()
	values := graph.ValueMap{
		"size":    tensors.FromScalar(int32(2)),
		"rows":    tensors.FromValue([][]float32{{1, 1}, {2, 2}}),
		"indices": tensors.FromValue([]int64{1, 0}),
		"flat":    tensors.FromValue([]float32{5, 6, 7}),
		"lengths": tensors.FromValue([]int64{1, 2}),
	}

	run(t, ec, values, &graph.Node{
		Name: "ta", Op: graph.OpTypeTensorArray, Inputs: []string{"size"},
		Attrs: map[string]any{"dtype": dtypes.Float32}})

	run(t, ec, values, &graph.Node{
		Name: "scatter", Op: graph.OpTypeTensorArrayScatter,
		Inputs: []string{"ta:0", "indices", "rows"}})
	outputs := run(t, ec, values, &graph.Node{
		Name: "concat", Op: graph.OpTypeTensorArrayConcat,
		Inputs: []string{"ta:0"}})
	assert.Equal(t, [][]float32{{2, 2}, {1, 1}}, outputs[0].Value())

	run(t, ec, values, &graph.Node{
		Name: "split", Op: graph.OpTypeTensorArraySplit,
		Inputs: []string{"ta:0", "flat", "lengths"}})
	outputs = run(t, ec, values, &graph.Node{
		Name: "concat2", Op: graph.OpTypeTensorArrayConcat,
		Inputs: []string{"ta:0"}})
	assert.Equal(t, []float32{5, 6, 7}, outputs[0].Value())
}

func TestFIFOQueueOps(t *testing.T) {
	ec := New()
	values := graph.ValueMap{"n": tensors.FromScalar(int32(10))}

	outputs := run(t, ec, values, &graph.Node{
		Name: "q", Op: graph.OpTypeFIFOQueue,
		Attrs: map[string]any{"component_types": []dtypes.DType{dtypes.Int32}}})
	require.Len(t, outputs, 2)

	// The graph has no enqueue operation; producers feed the queue through
	// the Go API.
	id := int(tensors.ToScalar[int32](outputs[0]))
	q := must.M1(ec.FIFOQueue(id))
	require.NoError(t, q.Enqueue(tensors.FromScalar(int32(7))))
	require.NoError(t, q.Enqueue(tensors.FromScalar(int32(8))))

	outputs = run(t, ec, values, &graph.Node{
		Name: "deq", Op: graph.OpTypeQueueDequeueUpTo,
		Inputs: []string{"q:0", "n"},
		Attrs:  map[string]any{"component_types": []dtypes.DType{dtypes.Int32}}})
	require.Len(t, outputs, 1)
	assert.Equal(t, []int32{7, 8}, outputs[0].Value())

	_, err := ExecuteOp(&graph.Node{
		Name: "bad_deq", Op: graph.OpTypeQueueDequeueUpTo,
		Inputs: []string{"q:0", "n"},
		Attrs:  map[string]any{"component_types": []dtypes.DType{dtypes.Float32}}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestQueueDequeueComponentTypesArity(t *testing.T) {
	ec := New()
	values := graph.ValueMap{"n": tensors.FromScalar(int32(1))}

	run(t, ec, values, &graph.Node{
		Name: "q", Op: graph.OpTypeFIFOQueue,
		Attrs: map[string]any{
			"component_types": []dtypes.DType{dtypes.Int32, dtypes.Float32}}})
	q := must.M1(ec.FIFOQueue(int(tensors.ToScalar[int32](values["q:0"]))))
	require.NoError(t, q.Enqueue(tensors.FromScalar(int32(1)), tensors.FromScalar(float32(2))))

	// Declaring only a prefix of the schema is a mismatch: the node would
	// receive more output tensors than it declares.
	_, err := ExecuteOp(&graph.Node{
		Name: "deq", Op: graph.OpTypeQueueDequeueUpTo,
		Inputs: []string{"q:0", "n"},
		Attrs:  map[string]any{"component_types": []dtypes.DType{dtypes.Int32}}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)

	// The full schema dequeues both columns.
	outputs := run(t, ec, values, &graph.Node{
		Name: "deq2", Op: graph.OpTypeQueueDequeueUpTo,
		Inputs: []string{"q:0", "n"},
		Attrs: map[string]any{
			"component_types": []dtypes.DType{dtypes.Int32, dtypes.Float32}}})
	require.Len(t, outputs, 2)
	assert.Equal(t, []int32{1}, outputs[0].Value())
}

func TestExecuteOpErrors(t *testing.T) {
	ec := New()
	values := graph.ValueMap{}

	_, err := ExecuteOp(&graph.Node{Name: "x", Op: graph.OpTypeInvalid}, values, ec)
	require.ErrorIs(t, err, ErrUnsupportedOp)
	assert.Contains(t, err.Error(), "Invalid")

	// A missing operand surfaces as an error, not a panic.
	_, err = ExecuteOp(&graph.Node{
		Name: "sw", Op: graph.OpTypeSwitch, Inputs: []string{"pred"}}, values, ec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sw")

	// Unknown resource ids are invalid state.
	values["id"] = tensors.FromScalar(int32(99))
	_, err = ExecuteOp(&graph.Node{
		Name: "size_op", Op: graph.OpTypeTensorArraySize, Inputs: []string{"id"}}, values, ec)
	require.ErrorIs(t, err, ErrInvalidState)
}
