// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

// FilterInfo carries the static metadata describing a filter kind.  A
// FilterInfo is immutable once published and safe to share by reference
// across any number of channels and calls.
type FilterInfo struct {
	Name            string // diagnostic name, reported in trace events
	ChannelDataSize int    // bytes of channel-scoped private data
	CallDataSize    int    // bytes of call-scoped private data
}

// A Filter is one composable unit of cross-cutting behavior in a stack.
// One Filter value describes every instance of its kind; per-instance state
// lives entirely in the element data blocks, so a Filter must be safe for
// concurrent (read-only) use from any number of stacks.
//
// Hooks run synchronously on whatever goroutine drives the stack; the
// pipeline itself has no suspension points and takes no locks. The
// channel-scoped data block may be touched by multiple concurrent calls,
// and synchronizing access to it is the owning filter's responsibility.
type Filter interface {
	// Info reports the filter's static metadata.
	Info() FilterInfo

	// InitChannel initializes the filter's channel-scoped data in elem.
	// The args and meta values are those given to ChannelStack.Init,
	// passed through unchanged. The first and last flags report the
	// element's position in the pipeline, so a filter can tell whether it
	// faces the application or the transport without global state.
	InitChannel(elem *ChannelElem, args ChannelArgs, meta any, first, last bool) error

	// DestroyChannel releases any resources held in elem's channel data.
	DestroyChannel(elem *ChannelElem)

	// InitCall initializes the filter's call-scoped data in elem. The
	// transport value is the opaque per-call bootstrap supplied by the
	// transport layer; initial is the first operation for the call, or
	// nil if there is none.
	InitCall(elem *CallElem, transport any, initial *CallOp) error

	// DestroyCall releases any resources held in elem's call data.
	DestroyCall(elem *CallElem)

	// StartCallOp advances op at elem. The filter may complete the
	// operation itself, or observe or transform it before delegating to
	// the next element with CallNextOp.
	StartCallOp(elem *CallElem, op *CallOp)

	// ChannelOp handles a channel-level control operation arriving at
	// elem from its neighbor from. The filter may consume the operation
	// or pass it along with ChannelNextOp.
	ChannelOp(elem, from *ChannelElem, op *ChannelOp)
}

// A ChannelArg is a single named configuration setting for a channel.
type ChannelArg struct {
	Key   string
	Value any
}

// ChannelArgs is an ordered list of channel configuration settings. The
// pipeline does not interpret the settings; it hands the list to each
// filter's InitChannel hook unchanged.
type ChannelArgs []ChannelArg

// Lookup returns the value of the first argument with the given key, and
// reports whether one was present.
func (a ChannelArgs) Lookup(key string) (any, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return nil, false
}
