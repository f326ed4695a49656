// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package executor

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/gomlx/tfgraph/graph"
	"github.com/gomlx/tfgraph/types/shapes"
	"github.com/gomlx/tfgraph/types/tensors"
	"github.com/gomlx/tfgraph/types/xslices"
)

// Category identifies this executor's domain in a scheduler's dispatch
// table.
const Category = "control"

// ExecuteOp interprets one visit of a control-flow node and returns its
// output values, in the node's declared output order. A nil entry is the
// explicit "no value" marker: the untaken branch of a Switch, or a Merge
// whose inputs are all still undefined (not an error -- the scheduler should
// revisit the node later).
//
// Every tensor returned is an independent copy of whatever input or resource
// slot it was derived from, so no two graph edges ever alias mutable state.
//
// Errors wrap ErrUnsupportedOp for operation kinds outside the enumeration,
// and ErrInvalidState for operations against missing/closed resources,
// out-of-range indices, empty frame stacks and dtype/shape violations.
func ExecuteOp(node *graph.Node, values graph.ValueMap, ec *Context) (outputs []*tensors.Tensor, err error) {
	caught := exceptions.TryCatch[error](func() {
		outputs, err = executeOp(node, values, ec)
	})
	if caught != nil {
		return nil, errors.WithMessagef(caught, "executing node %s", node)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "executing node %s", node)
	}
	if klog.V(1).Enabled() {
		klog.Infof("executor: %s -> %d output(s)", node, len(outputs))
	}
	return outputs, nil
}

func executeOp(node *graph.Node, values graph.ValueMap, ec *Context) ([]*tensors.Tensor, error) {
	switch node.Op {
	case graph.OpTypeLoopCond:
		// Purely structural: routes the predicate to Switch/Exit nodes.
		return []*tensors.Tensor{operand(node, values, 0).Clone()}, nil

	case graph.OpTypeSwitch:
		// Materializing the predicate's data is the one synchronization
		// point of the interpreter.
		pred := tensors.ToScalar[bool](operand(node, values, 0))
		data := operand(node, values, 1)
		if pred {
			return []*tensors.Tensor{nil, data.Clone()}, nil
		}
		return []*tensors.Tensor{data.Clone(), nil}, nil

	case graph.OpTypeMerge:
		for _, edge := range node.Inputs {
			if t := values.Get(edge); t != nil {
				return []*tensors.Tensor{t.Clone()}, nil
			}
		}
		// No input defined yet: not ready, not an error.
		return []*tensors.Tensor{nil}, nil

	case graph.OpTypeEnter:
		ec.EnterFrame(graph.Attr[string](node, "frame_name"))
		return []*tensors.Tensor{operand(node, values, 0).Clone()}, nil

	case graph.OpTypeExit:
		if err := ec.ExitFrame(); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{operand(node, values, 0).Clone()}, nil

	case graph.OpTypeNextIteration:
		if err := ec.NextIteration(); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{operand(node, values, 0).Clone()}, nil

	case graph.OpTypeTensorArray:
		return executeTensorArrayCreate(node, values, ec)

	case graph.OpTypeTensorArrayWrite:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := ta.Write(intOperand(node, values, 1), operand(node, values, 2)); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{flagTensor()}, nil

	case graph.OpTypeTensorArrayRead:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		t, err := ta.Read(intOperand(node, values, 1))
		if err != nil {
			return nil, err
		}
		return []*tensors.Tensor{t}, nil

	case graph.OpTypeTensorArrayGather:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := checkDType(node, ta.DType()); err != nil {
			return nil, err
		}
		t, err := ta.Gather(intsOperand(node, values, 1))
		if err != nil {
			return nil, err
		}
		return []*tensors.Tensor{t}, nil

	case graph.OpTypeTensorArrayScatter:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := ta.Scatter(intsOperand(node, values, 1), operand(node, values, 2)); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{flagTensor()}, nil

	case graph.OpTypeTensorArrayConcat:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := checkDType(node, ta.DType()); err != nil {
			return nil, err
		}
		t, err := ta.Concat()
		if err != nil {
			return nil, err
		}
		return []*tensors.Tensor{t}, nil

	case graph.OpTypeTensorArraySplit:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := ta.Split(intsOperand(node, values, 2), operand(node, values, 1)); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{flagTensor()}, nil

	case graph.OpTypeTensorArraySize:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		if err := ta.checkOpen("tensorArraySize"); err != nil {
			return nil, err
		}
		return []*tensors.Tensor{tensors.FromScalar(int32(ta.Size()))}, nil

	case graph.OpTypeTensorArrayClose:
		ta, err := ec.TensorArray(intOperand(node, values, 0))
		if err != nil {
			return nil, err
		}
		ta.Close()
		return []*tensors.Tensor{}, nil

	case graph.OpTypeFIFOQueue:
		return executeFIFOQueueCreate(node, ec)

	case graph.OpTypeQueueDequeueUpTo:
		id := intOperand(node, values, 0)
		q, err := ec.FIFOQueue(id)
		if err != nil {
			return nil, err
		}
		if componentTypes := graph.AttrOr(node, "component_types", []dtypes.DType(nil)); componentTypes != nil {
			if len(componentTypes) != q.NumComponents() {
				return nil, errors.Wrapf(ErrInvalidState,
					"component_types %v don't match FIFOQueue #%d schema %v",
					componentTypes, id, q.ComponentDTypes())
			}
			for col, dtype := range componentTypes {
				if dtype != q.ComponentDTypes()[col] {
					return nil, errors.Wrapf(ErrInvalidState,
						"component_types %v don't match FIFOQueue #%d schema %v",
						componentTypes, id, q.ComponentDTypes())
				}
			}
		}
		return q.DequeueUpTo(intOperand(node, values, 1))

	default:
		return nil, errors.Wrapf(ErrUnsupportedOp, "%q is not a control-flow operation", node.Op)
	}
}

func executeTensorArrayCreate(node *graph.Node, values graph.ValueMap, ec *Context) ([]*tensors.Tensor, error) {
	size := intOperand(node, values, 0)
	name := graph.AttrOr(node, "tensor_array_name", "")
	if name == "" {
		name = fmt.Sprintf("tensor_array_%s", uuid.NewString())
	}
	ta := NewTensorArray(name,
		graph.Attr[dtypes.DType](node, "dtype"),
		size,
		graph.AttrOr(node, "element_shape", shapes.Invalid()),
		graph.AttrOr(node, "dynamic_size", false),
		graph.AttrOr(node, "clear_after_read", false),
		graph.AttrOr(node, "identical_element_shapes", false))
	id := ec.RegisterTensorArray(ta)
	return []*tensors.Tensor{tensors.FromScalar(int32(id)), flagTensor()}, nil
}

func executeFIFOQueueCreate(node *graph.Node, ec *Context) ([]*tensors.Tensor, error) {
	name := graph.AttrOr(node, "shared_name", "")
	if name == "" {
		name = fmt.Sprintf("fifo_queue_%s", uuid.NewString())
	}
	q := NewFIFOQueue(name,
		graph.AttrOr(node, "container", ""),
		graph.Attr[[]dtypes.DType](node, "component_types"),
		graph.AttrOr(node, "shapes", []shapes.Shape(nil)),
		graph.AttrOr(node, "capacity", 0))
	id := ec.RegisterFIFOQueue(q)
	return []*tensors.Tensor{tensors.FromScalar(int32(id)), flagTensor()}, nil
}

// flagTensor is the conventional "succeeded" output of resource-mutating
// operations.
func flagTensor() *tensors.Tensor {
	return tensors.FromScalar(float32(1))
}

// checkDType verifies the node's declared dtype attribute, when present,
// against the resource's element dtype.
func checkDType(node *graph.Node, dtype dtypes.DType) error {
	declared := graph.AttrOr(node, "dtype", dtypes.InvalidDType)
	if declared != dtypes.InvalidDType && declared != dtype {
		return errors.Wrapf(ErrInvalidState, "node %s declares dtype %s, but the TensorArray holds %s",
			node, declared, dtype)
	}
	return nil
}

// operand returns the tensor on the node's i-th input edge, panicking (an
// exceptions panic, converted to an error by ExecuteOp) when the edge is
// missing or carries no value -- except for Merge, which handles absent
// inputs itself.
func operand(node *graph.Node, values graph.ValueMap, i int) *tensors.Tensor {
	if i >= len(node.Inputs) {
		exceptions.Panicf("node %s requires at least %d inputs, has %d", node, i+1, len(node.Inputs))
	}
	t := values.Get(node.Inputs[i])
	if t == nil {
		exceptions.Panicf("node %s input %q carries no value", node, node.Inputs[i])
	}
	return t
}

// intOperand reads an integer scalar operand (Int32 or Int64).
func intOperand(node *graph.Node, values graph.ValueMap, i int) int {
	t := operand(node, values, i)
	switch t.DType() {
	case dtypes.Int32:
		return int(tensors.ToScalar[int32](t))
	case dtypes.Int64:
		return int(tensors.ToScalar[int64](t))
	default:
		exceptions.Panicf("node %s input %q must be an integer scalar, got %s",
			node, node.Inputs[i], t.Shape())
	}
	return 0
}

// intsOperand reads a rank-1 integer operand (Int32 or Int64) as []int.
func intsOperand(node *graph.Node, values graph.ValueMap, i int) []int {
	t := operand(node, values, i)
	if t.Rank() != 1 {
		exceptions.Panicf("node %s input %q must be a vector of integers, got shape %s",
			node, node.Inputs[i], t.Shape())
	}
	switch t.DType() {
	case dtypes.Int32:
		return toInts(tensors.CopyFlatData[int32](t))
	case dtypes.Int64:
		return toInts(tensors.CopyFlatData[int64](t))
	default:
		exceptions.Panicf("node %s input %q must be a vector of integers, got shape %s",
			node, node.Inputs[i], t.Shape())
	}
	return nil
}

func toInts[T constraints.Integer](flat []T) []int {
	return xslices.Map(flat, func(v T) int { return int(v) })
}
