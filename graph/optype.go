// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

// OpType is the closed enumeration of control-flow operations this
// interpreter understands. A Node carrying any other value is rejected by the
// executor with an unsupported-operation error.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota

	// OpTypeLoopCond passes the loop predicate through unchanged.
	// Inputs: [pred].
	OpTypeLoopCond

	// OpTypeSwitch routes data to one of two output edges based on a scalar
	// boolean predicate: output 0 is the "false" branch, output 1 the "true"
	// branch; the branch not taken carries no value.
	// Inputs: [pred, data].
	OpTypeSwitch

	// OpTypeMerge returns the first of its inputs that carries a value, or no
	// value at all if none is ready yet.
	// Inputs: all declared edges, in priority order.
	OpTypeMerge

	// OpTypeEnter pushes a new frame onto the context's frame stack and
	// forwards its input. Inputs: [tensor]; attrs: frame_name.
	OpTypeEnter

	// OpTypeExit pops the innermost frame and forwards its input.
	// Inputs: [tensor].
	OpTypeExit

	// OpTypeNextIteration advances the innermost frame's iteration counter
	// and forwards its input. Inputs: [tensor].
	OpTypeNextIteration

	// OpTypeTensorArray creates a TensorArray resource.
	// Inputs: [size]; attrs: dtype, element_shape, dynamic_size,
	// clear_after_read, identical_element_shapes, tensor_array_name.
	OpTypeTensorArray

	// OpTypeTensorArrayWrite writes a tensor into one slot.
	// Inputs: [handle, index, value].
	OpTypeTensorArrayWrite

	// OpTypeTensorArrayRead reads one slot. Inputs: [handle, index].
	OpTypeTensorArrayRead

	// OpTypeTensorArrayGather stacks the slots at the given indices along a
	// new leading axis. Inputs: [handle, indices]; attrs: dtype.
	OpTypeTensorArrayGather

	// OpTypeTensorArrayScatter slices the value along its leading axis and
	// writes each slice to the slot named by the corresponding index.
	// Inputs: [handle, indices, value].
	OpTypeTensorArrayScatter

	// OpTypeTensorArrayConcat concatenates all non-empty slots, ascending,
	// along their leading axis. Inputs: [handle]; attrs: dtype.
	OpTypeTensorArrayConcat

	// OpTypeTensorArraySplit splits the value along its leading axis into
	// chunks per lengths, written to slots 0..k. Inputs: [handle, value,
	// lengths].
	OpTypeTensorArraySplit

	// OpTypeTensorArraySize returns the array's logical size.
	// Inputs: [handle].
	OpTypeTensorArraySize

	// OpTypeTensorArrayClose releases the array's contents and rejects
	// further operations. Inputs: [handle].
	OpTypeTensorArrayClose

	// OpTypeFIFOQueue creates a FIFOQueue resource. Attrs: component_types,
	// shapes, capacity, container, shared_name.
	OpTypeFIFOQueue

	// OpTypeQueueDequeueUpTo dequeues up to n tuples (fewer if the queue
	// holds less, never blocking), returning one stacked tensor per column.
	// Inputs: [handle, n]; attrs: component_types.
	OpTypeQueueDequeueUpTo
)
