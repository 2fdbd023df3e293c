// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package filters provides adapters to the filterstack.Filter interface for
// filters built from plain functions.
//
// A filter rarely needs all six hooks. The Funcs adapter lets a caller
// supply only the hooks it cares about and receive safe defaults for the
// rest.
package filters

import "github.com/creachadair/filterstack"

// Funcs adapts a collection of optional hook functions to a
// filterstack.Filter.
//
// A nil hook gets a safe default: init hooks succeed without effect,
// destroy hooks do nothing, a call operation is forwarded to the next
// element if one exists, and a channel operation is stepped along its
// declared direction while a neighbor exists there. With the defaults, the
// filter is a transparent pass-through anywhere in a stack.
type Funcs struct {
	FilterInfo filterstack.FilterInfo

	OnInitChannel    func(elem *filterstack.ChannelElem, args filterstack.ChannelArgs, meta any, first, last bool) error
	OnDestroyChannel func(elem *filterstack.ChannelElem)
	OnInitCall       func(elem *filterstack.CallElem, transport any, initial *filterstack.CallOp) error
	OnDestroyCall    func(elem *filterstack.CallElem)
	OnStartCallOp    func(elem *filterstack.CallElem, op *filterstack.CallOp)
	OnChannelOp      func(elem, from *filterstack.ChannelElem, op *filterstack.ChannelOp)
}

// Info implements part of the filterstack.Filter interface.
func (f Funcs) Info() filterstack.FilterInfo { return f.FilterInfo }

// InitChannel implements part of the filterstack.Filter interface.
func (f Funcs) InitChannel(elem *filterstack.ChannelElem, args filterstack.ChannelArgs, meta any, first, last bool) error {
	if f.OnInitChannel != nil {
		return f.OnInitChannel(elem, args, meta, first, last)
	}
	return nil
}

// DestroyChannel implements part of the filterstack.Filter interface.
func (f Funcs) DestroyChannel(elem *filterstack.ChannelElem) {
	if f.OnDestroyChannel != nil {
		f.OnDestroyChannel(elem)
	}
}

// InitCall implements part of the filterstack.Filter interface.
func (f Funcs) InitCall(elem *filterstack.CallElem, transport any, initial *filterstack.CallOp) error {
	if f.OnInitCall != nil {
		return f.OnInitCall(elem, transport, initial)
	}
	return nil
}

// DestroyCall implements part of the filterstack.Filter interface.
func (f Funcs) DestroyCall(elem *filterstack.CallElem) {
	if f.OnDestroyCall != nil {
		f.OnDestroyCall(elem)
	}
}

// StartCallOp implements part of the filterstack.Filter interface. If no
// OnStartCallOp hook is set, the operation is forwarded to the next element
// if one exists, and otherwise discarded.
func (f Funcs) StartCallOp(elem *filterstack.CallElem, op *filterstack.CallOp) {
	if f.OnStartCallOp != nil {
		f.OnStartCallOp(elem, op)
		return
	}
	if elem.Index()+1 < elem.Stack().Count() {
		filterstack.CallNextOp(elem, op)
	}
}

// ChannelOp implements part of the filterstack.Filter interface. If no
// OnChannelOp hook is set, the operation continues in its declared
// direction if a neighbor exists there, and is otherwise discarded.
func (f Funcs) ChannelOp(elem, from *filterstack.ChannelElem, op *filterstack.ChannelOp) {
	if f.OnChannelOp != nil {
		f.OnChannelOp(elem, from, op)
		return
	}
	if next := elem.Index() + int(op.Dir); next >= 0 && next < elem.Stack().Count() {
		filterstack.ChannelNextOp(elem, op)
	}
}

// NoOp returns a transparent pass-through filter with the given name and
// data sizes, whose hooks all take the default behaviors of Funcs.
func NoOp(name string, channelSize, callSize int) filterstack.Filter {
	return Funcs{FilterInfo: filterstack.FilterInfo{
		Name:            name,
		ChannelDataSize: channelSize,
		CallDataSize:    callSize,
	}}
}
