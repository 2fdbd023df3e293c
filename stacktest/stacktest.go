// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package stacktest provides support code for constructing and testing
// filter stacks.
package stacktest

import (
	"fmt"
	"sync"

	"github.com/creachadair/filterstack"
)

// NewChannelStack allocates a buffer of the queried layout size and
// initializes a channel stack over the given filters. It is a convenience
// for callers that do not manage the stack's allocation themselves.
func NewChannelStack(filters []filterstack.Filter, args filterstack.ChannelArgs, meta any) (*filterstack.ChannelStack, error) {
	cs := new(filterstack.ChannelStack)
	buf := make([]byte, filterstack.ChannelStackSize(filters))
	if err := cs.Init(buf, filters, args, meta); err != nil {
		return nil, err
	}
	return cs, nil
}

// NewCallStack allocates a buffer of the precomputed call layout size and
// initializes a call stack derived from parent.
func NewCallStack(parent *filterstack.ChannelStack, transport any, initial *filterstack.CallOp) (*filterstack.CallStack, error) {
	call := new(filterstack.CallStack)
	buf := make([]byte, parent.CallStackSize())
	if err := call.Init(buf, parent, transport, initial); err != nil {
		return nil, err
	}
	return call, nil
}

// A Log is an append-only event log safe for concurrent use. Multiple
// recorders may share one Log to capture a pipeline-wide event ordering.
type Log struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event to the log.
func (lg *Log) Add(event string) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.events = append(lg.events, event)
}

// Events returns a copy of the events recorded so far, in order.
func (lg *Log) Events() []string {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	out := make([]string, len(lg.events))
	copy(out, lg.events)
	return out
}

// Reset discards all recorded events.
func (lg *Log) Reset() {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.events = nil
}

// A Recorder is a filter that records every hook invocation it observes
// into a Log, and keeps copies of the operations delivered to it. Use
// NewRecorder to construct one.
//
// Recorder state is kept outside the stack data blocks; its data sizes
// exist to exercise the packed layout.
type Recorder struct {
	// Forward, if true, forwards each call operation to the next element
	// after recording it. Leave it false on the last filter of a stack.
	Forward bool

	info   filterstack.FilterInfo
	events *Log

	mu   sync.Mutex
	ops  []filterstack.CallOp
	cops []filterstack.ChannelOp
}

// NewRecorder constructs a recorder filter with the given name and data
// sizes that records into lg.
func NewRecorder(name string, channelSize, callSize int, lg *Log) *Recorder {
	return &Recorder{
		info: filterstack.FilterInfo{
			Name:            name,
			ChannelDataSize: channelSize,
			CallDataSize:    callSize,
		},
		events: lg,
	}
}

// Ops returns copies of the call operations delivered to r so far.
func (r *Recorder) Ops() []filterstack.CallOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]filterstack.CallOp, len(r.ops))
	copy(out, r.ops)
	return out
}

// ChannelOps returns copies of the channel operations delivered to r so far.
func (r *Recorder) ChannelOps() []filterstack.ChannelOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]filterstack.ChannelOp, len(r.cops))
	copy(out, r.cops)
	return out
}

func (r *Recorder) record(format string, args ...any) {
	r.events.Add(r.info.Name + ": " + fmt.Sprintf(format, args...))
}

// Info implements part of the filterstack.Filter interface.
func (r *Recorder) Info() filterstack.FilterInfo { return r.info }

// InitChannel implements part of the filterstack.Filter interface.
func (r *Recorder) InitChannel(elem *filterstack.ChannelElem, args filterstack.ChannelArgs, meta any, first, last bool) error {
	r.record("init-channel %d first=%v last=%v", elem.Index(), first, last)
	return nil
}

// DestroyChannel implements part of the filterstack.Filter interface.
func (r *Recorder) DestroyChannel(elem *filterstack.ChannelElem) {
	r.record("destroy-channel %d", elem.Index())
}

// InitCall implements part of the filterstack.Filter interface.
func (r *Recorder) InitCall(elem *filterstack.CallElem, transport any, initial *filterstack.CallOp) error {
	r.record("init-call %d", elem.Index())
	return nil
}

// DestroyCall implements part of the filterstack.Filter interface.
func (r *Recorder) DestroyCall(elem *filterstack.CallElem) {
	r.record("destroy-call %d", elem.Index())
}

// StartCallOp implements part of the filterstack.Filter interface.
func (r *Recorder) StartCallOp(elem *filterstack.CallElem, op *filterstack.CallOp) {
	r.record("call-op %d", elem.Index())
	r.mu.Lock()
	r.ops = append(r.ops, *op)
	r.mu.Unlock()
	if r.Forward {
		filterstack.CallNextOp(elem, op)
	}
}

// ChannelOp implements part of the filterstack.Filter interface. Channel
// operations are recorded and not propagated further.
func (r *Recorder) ChannelOp(elem, from *filterstack.ChannelElem, op *filterstack.ChannelOp) {
	r.record("channel-op %d from %d %v", elem.Index(), from.Index(), op.Type)
	r.mu.Lock()
	r.cops = append(r.cops, *op)
	r.mu.Unlock()
}

// FailInit is a filter whose init hooks report the given error, for testing
// partial-initialization rollback. Its other hooks do nothing.
type FailInit struct {
	Name       string
	ChannelErr error // reported by InitChannel if non-nil
	CallErr    error // reported by InitCall if non-nil
}

// Info implements part of the filterstack.Filter interface.
func (f FailInit) Info() filterstack.FilterInfo {
	return filterstack.FilterInfo{Name: f.Name}
}

// InitChannel implements part of the filterstack.Filter interface.
func (f FailInit) InitChannel(*filterstack.ChannelElem, filterstack.ChannelArgs, any, bool, bool) error {
	return f.ChannelErr
}

// DestroyChannel implements part of the filterstack.Filter interface.
func (FailInit) DestroyChannel(*filterstack.ChannelElem) {}

// InitCall implements part of the filterstack.Filter interface.
func (f FailInit) InitCall(*filterstack.CallElem, any, *filterstack.CallOp) error {
	return f.CallErr
}

// DestroyCall implements part of the filterstack.Filter interface.
func (FailInit) DestroyCall(*filterstack.CallElem) {}

// StartCallOp implements part of the filterstack.Filter interface.
func (FailInit) StartCallOp(*filterstack.CallElem, *filterstack.CallOp) {}

// ChannelOp implements part of the filterstack.Filter interface.
func (FailInit) ChannelOp(_, _ *filterstack.ChannelElem, _ *filterstack.ChannelOp) {}
