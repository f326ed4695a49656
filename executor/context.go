// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package executor interprets the control-flow operations of a dataflow
// graph: the Switch/Merge/Enter/Exit/NextIteration/LoopCond encoding of
// conditionals and loops, plus the TensorArray and FIFOQueue stateful
// resources they manipulate.
//
// The entry point is ExecuteOp, invoked once per node visit by an external
// scheduler that owns the topological traversal and supplies each node's
// input values. ExecuteOp mutates and consults a Context, which tracks loop
// nesting (frames), per-frame iteration counters and the registries of live
// TensorArray and FIFOQueue instances.
//
// One Context serves exactly one graph execution and must not be shared
// across concurrent runs. Within a run the caller must not dispatch two node
// visits touching the same resource id concurrently; the package performs no
// internal locking of resources.
package executor

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/tfgraph/types/xslices"
)

var (
	// ErrUnsupportedOp is returned (wrapped) when a node's operation kind is
	// not in the control-flow enumeration.
	ErrUnsupportedOp = errors.New("unsupported operation")

	// ErrInvalidState is returned (wrapped) for operations against missing or
	// closed resources, out-of-range indices, empty frame stacks, and
	// dtype/shape violations.
	ErrInvalidState = errors.New("invalid state")
)

// Frame is one level of loop nesting. Its iteration counter is advanced by
// NextIteration and lets the value-resolution collaborator tell values
// produced on different iterations of the same node apart.
type Frame struct {
	Name      string
	Iteration int
}

// Context is the execution context of one graph run: the frame stack and the
// registries of TensorArray and FIFOQueue instances, keyed by integer id.
//
// Create one with New per run and discard it at the end; registries only
// grow during a run.
type Context struct {
	// runID tags log messages; graph executions are otherwise anonymous.
	runID string

	frames []*Frame

	// nextID is shared by both registries, so an id can never be looked up in
	// the wrong one.
	nextID       int
	tensorArrays map[int]*TensorArray
	queues       map[int]*FIFOQueue
}

// New creates an empty execution context for one graph run.
func New() *Context {
	ec := &Context{
		runID:        uuid.NewString(),
		tensorArrays: make(map[int]*TensorArray),
		queues:       make(map[int]*FIFOQueue),
	}
	klog.V(2).Infof("executor: new context (run %s)", ec.runID)
	return ec
}

// EnterFrame pushes a new frame with the given name onto the frame stack,
// marking entry into a loop body.
func (ec *Context) EnterFrame(name string) {
	ec.frames = append(ec.frames, &Frame{Name: name})
	klog.V(2).Infof("executor: run %s entered frame %q (depth %d)", ec.runID, name, len(ec.frames))
}

// ExitFrame pops the innermost frame, marking departure from a loop body.
// It fails if the frame stack is empty.
func (ec *Context) ExitFrame() error {
	if len(ec.frames) == 0 {
		return errors.Wrap(ErrInvalidState, "Exit with an empty frame stack")
	}
	var frame *Frame
	frame, ec.frames = xslices.Pop(ec.frames)
	klog.V(2).Infof("executor: run %s exited frame %q (depth %d)", ec.runID, frame.Name, len(ec.frames))
	return nil
}

// NextIteration advances the iteration counter of the innermost frame. It
// fails if no frame is active: an iteration advance outside any loop is a
// malformed graph.
func (ec *Context) NextIteration() error {
	if len(ec.frames) == 0 {
		return errors.Wrap(ErrInvalidState, "NextIteration with no active frame")
	}
	frame := xslices.Last(ec.frames)
	frame.Iteration++
	klog.V(2).Infof("executor: run %s frame %q advanced to iteration %d", ec.runID, frame.Name, frame.Iteration)
	return nil
}

// CurrentFrame returns the innermost active frame, or nil if the graph is
// not inside any loop.
func (ec *Context) CurrentFrame() *Frame {
	if len(ec.frames) == 0 {
		return nil
	}
	return xslices.Last(ec.frames)
}

// Depth returns the number of active frames.
func (ec *Context) Depth() int { return len(ec.frames) }

// RegisterTensorArray registers the TensorArray under a fresh id, which is
// returned and also recorded on the TensorArray itself.
func (ec *Context) RegisterTensorArray(ta *TensorArray) int {
	id := ec.nextID
	ec.nextID++
	ta.id = id
	ec.tensorArrays[id] = ta
	klog.V(2).Infof("executor: run %s registered %s", ec.runID, ta)
	return id
}

// TensorArray returns the TensorArray registered under id.
func (ec *Context) TensorArray(id int) (*TensorArray, error) {
	ta, found := ec.tensorArrays[id]
	if !found {
		return nil, errors.Wrapf(ErrInvalidState, "no TensorArray with id %d", id)
	}
	return ta, nil
}

// RegisterFIFOQueue registers the FIFOQueue under a fresh id, which is
// returned and also recorded on the FIFOQueue itself.
func (ec *Context) RegisterFIFOQueue(q *FIFOQueue) int {
	id := ec.nextID
	ec.nextID++
	q.id = id
	ec.queues[id] = q
	klog.V(2).Infof("executor: run %s registered %s", ec.runID, q)
	return id
}

// FIFOQueue returns the FIFOQueue registered under id.
func (ec *Context) FIFOQueue(id int) (*FIFOQueue, error) {
	q, found := ec.queues[id]
	if !found {
		return nil, errors.Wrapf(ErrInvalidState, "no FIFOQueue with id %d", id)
	}
	return q, nil
}
