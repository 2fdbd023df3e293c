// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package filterstack implements the filter pipeline used by an RPC
// transport layer to compose cross-cutting behaviors such as compression,
// authentication, retry, and tracing.
//
// A pipeline is an ordered sequence of filters laid out along two
// lifetimes: a long-lived channel, one per logical connection, and a
// short-lived call, one per in-flight RPC. Each filter contributes private
// data at both lifetimes and a set of lifecycle and operation hooks. The
// pipeline lays out, initializes, traverses, and tears down the sequence as
// a single packed region with deterministic per-filter data offsets,
// computed once from the filter metadata.
//
// # Filters
//
// The core contract is the [Filter] interface. A Filter is static metadata
// ([FilterInfo]) plus six hooks: channel init/destroy, call init/destroy,
// a call operation hook, and a channel operation hook. One Filter value
// describes every instance of its kind; all per-instance state lives in the
// data blocks the stacks hand out, so a Filter must be safe to share.
//
// The filters subpackage provides adapters from plain functions to the
// Filter interface, in the manner of a handler mux.
//
// # Stacks
//
// A [ChannelStack] is built once per channel from an ordered filter list.
// The caller queries [ChannelStackSize] for the exact number of bytes the
// packed layout needs and supplies a buffer of that size to Init; the
// pipeline itself never allocates the data region:
//
//	buf := make([]byte, filterstack.ChannelStackSize(filters))
//	var cs filterstack.ChannelStack
//	if err := cs.Init(buf, filters, args, mdctx); err != nil {
//	   log.Fatalf("Channel init failed: %v", err)
//	}
//
// Every element's data block begins at a multiple of [MaxAlignment], and
// Init verifies that the layout it walks agrees byte-for-byte with the size
// query.
//
// A [CallStack] is derived from its channel stack for each RPC. It reuses
// the channel stack's filter ordering and channel data by reference, and
// gives each filter a fresh call-scoped block from a caller-supplied buffer
// of exactly [ChannelStack.CallStackSize] bytes:
//
//	cbuf := make([]byte, cs.CallStackSize())
//	var call filterstack.CallStack
//	if err := call.Init(cbuf, &cs, tdata, nil); err != nil {
//	   log.Fatalf("Call init failed: %v", err)
//	}
//
// Both stacks are destroyed exactly once, in ascending element order, when
// their owner is done with them. If an init hook fails partway, the
// elements already initialized are destroyed in reverse order and Init
// reports the error.
//
// # Operations
//
// A [CallOp] travels strictly toward the transport: a filter's StartCallOp
// hook delegates to its neighbor with [CallNextOp]. A [ChannelOp] declares
// its own [Direction] and moves either toward the transport or toward the
// application via [ChannelNextOp]. [SendCancel] injects a cancellation
// below a given element.
//
// The dispatch primitives do not bounds-check their hot path: dispatching
// past the end of a stack is a caller error. A filter initialized with
// last=true must terminate call operations rather than forward them.
//
// # Tracing
//
// Use [ChannelStack.LogEvents] to install a [TraceLogger] before Init. The
// logger observes element init and destroy for both lifetimes and every
// dispatched operation, on the channel stack and all call stacks derived
// from it. There is no global trace flag.
//
// # Metrics
//
// Stacks maintain a collection of expvar metrics while running; use
// [Metrics] to obtain the map. The metrics currently exported include:
//
//   - channel_stacks_built: counter of channel stacks initialized
//   - channel_stacks_destroyed: counter of channel stacks destroyed
//   - call_stacks_built: counter of call stacks initialized
//   - call_stacks_destroyed: counter of call stacks destroyed
//   - init_failures: counter of stacks abandoned by a failed init hook
//   - call_ops: counter of call operations dispatched
//   - channel_ops: counter of channel operations dispatched
//   - cancels_sent: counter of cancellations injected
//
// Additional metrics may be added in the future. It is safe for the caller
// to modify the metrics map to add, update, and remove entries.
//
// # Concurrency
//
// The pipeline is concurrency-agnostic: hooks run synchronously on
// whichever goroutine drives the stack, and the core takes no locks. A
// channel stack is read-only after Init apart from the filters' own channel
// data, which concurrent calls may share; guarding that data is each
// filter's responsibility. A call stack belongs to exactly one in-flight
// call.
package filterstack
