// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import "fmt"

/* Memory layouts.

   A channel stack is laid out as: {
     header (count, call stack size)
     padding to MaxAlignment
     element table
     per-filter channel data, each block aligned to MaxAlignment
   }

   A call stack is laid out as: {
     header (count)
     padding to MaxAlignment
     element table
     per-filter call data, each block aligned to MaxAlignment
   }

   The size queries and the Init methods walk this layout with the same
   arithmetic, and Init asserts that the two agree. */

// MaxAlignment is the boundary, in bytes, to which the stack header, the
// element table, and each filter's private data block are individually
// rounded in the packed layout. It must be a power of two.
const MaxAlignment = 16

// maxAlignment is the working copy of MaxAlignment. It exists only so the
// tests can exercise the power-of-two check.
var maxAlignment = MaxAlignment

// Fixed overhead charged by the size queries for the header and each entry
// of the element table.
const (
	channelHeaderSize = 16 // element count, derived call stack size
	callHeaderSize    = 8  // element count
	channelElemSize   = 24 // filter reference, data offset and length
	callElemSize      = 40 // filter and channel references, data offset and length
)

// checkAlignment panics if the alignment boundary is not a power of two.
// That is a build configuration error, not a runtime condition.
func checkAlignment() {
	if maxAlignment <= 0 || maxAlignment&(maxAlignment-1) != 0 {
		panic(fmt.Sprintf("alignment %d is not a power of two", maxAlignment))
	}
}

// roundUp rounds n up to the next multiple of the alignment boundary.
func roundUp(n int) int { return (n + maxAlignment - 1) &^ (maxAlignment - 1) }

// ChannelStackSize reports the number of bytes a channel stack over the
// given filters requires: the header, the element table, and every filter's
// channel data block, each rounded up to MaxAlignment. The caller must pass
// ChannelStack.Init a buffer of exactly this size; the pipeline never
// allocates the region itself.
func ChannelStackSize(filters []Filter) int {
	checkAlignment()

	// Always need the header, and room for the element table.
	size := roundUp(channelHeaderSize) + roundUp(len(filters)*channelElemSize)
	for _, f := range filters {
		size += roundUp(f.Info().ChannelDataSize)
	}
	return size
}

// A ChannelStack is an ordered pipeline of filter instances sharing the
// lifetime of one channel. It is built once when the channel is configured
// and destroyed once when the channel closes; its membership never changes
// in between. A zero ChannelStack is ready for use, but must not be copied
// after any method has been called.
type ChannelStack struct {
	elems         []ChannelElem
	data          []byte // the packed buffer supplied to Init
	callStackSize int    // derived size of each call stack, precomputed by Init
	trace         TraceLogger
}

// LogEvents registers a callback that is invoked for each lifecycle and
// dispatch event on the stack and on every call stack derived from it. To
// observe initialization events it must be called before Init. Passing nil
// disables event logging. LogEvents returns s to permit chaining.
//
// The callback runs synchronously with the event it reports, so it must not
// call back into the stack.
func (s *ChannelStack) LogEvents(f TraceLogger) *ChannelStack { s.trace = f; return s }

// Init initializes s over the given filters, in ascending order. The buffer
// must have length exactly ChannelStackSize(filters); s carves each
// filter's channel data block out of it and retains it until Destroy. A
// mismatched buffer or a non-power-of-two alignment is a fatal
// configuration error and panics.
//
// The args and meta values are passed through to each filter's InitChannel
// hook unchanged.
//
// If a filter's InitChannel hook reports an error, the elements already
// initialized are destroyed in reverse order, Init reports the error, and
// s is left ready for another Init.
func (s *ChannelStack) Init(buf []byte, filters []Filter, args ChannelArgs, meta any) error {
	if s.elems != nil {
		panic("stack is already initialized")
	}
	checkAlignment()
	if want := ChannelStackSize(filters); len(buf) != want {
		panic(fmt.Sprintf("buffer is %d bytes, layout needs %d", len(buf), want))
	}

	offset := roundUp(channelHeaderSize) + roundUp(len(filters)*channelElemSize)
	callSize := roundUp(callHeaderSize) + roundUp(len(filters)*callElemSize)

	s.elems = make([]ChannelElem, len(filters))
	s.data = buf
	for i, f := range filters {
		size := f.Info().ChannelDataSize
		s.elems[i] = ChannelElem{
			stack:  s,
			index:  i,
			filter: f,
			data:   buf[offset : offset+size : offset+size],
		}
		s.traceEvent("init", false, i, f)
		if err := f.InitChannel(&s.elems[i], args, meta, i == 0, i == len(filters)-1); err != nil {
			for j := i - 1; j >= 0; j-- {
				s.traceEvent("destroy", false, j, s.elems[j].filter)
				s.elems[j].filter.DestroyChannel(&s.elems[j])
			}
			s.elems, s.data = nil, nil
			metrics.initFail.Add(1)
			return fmt.Errorf("init channel filter %d (%s): %w", i, f.Info().Name, err)
		}
		offset += roundUp(size)
		callSize += roundUp(f.Info().CallDataSize)
	}

	// The data cursor must land exactly on the queried size; anything else
	// means the layout arithmetic has drifted.
	if offset != len(buf) {
		panic(fmt.Sprintf("layout drift: data cursor %d, stack size %d", offset, len(buf)))
	}

	s.callStackSize = callSize
	metrics.channelBuilt.Add(1)
	return nil
}

// Destroy invokes each filter's DestroyChannel hook in ascending order and
// releases the buffer. Destroy assumes every element was successfully
// initialized. After Destroy, s is ready for another Init.
func (s *ChannelStack) Destroy() {
	for i := range s.elems {
		s.traceEvent("destroy", false, i, s.elems[i].filter)
		s.elems[i].filter.DestroyChannel(&s.elems[i])
	}
	s.elems, s.data, s.callStackSize = nil, nil, 0
	metrics.channelFreed.Add(1)
}

// Count reports the number of elements in the stack.
func (s *ChannelStack) Count() int { return len(s.elems) }

// Element returns the element at the given index. It panics if index is out
// of range.
func (s *ChannelStack) Element(index int) *ChannelElem { return &s.elems[index] }

// LastElement returns the element nearest the transport.
func (s *ChannelStack) LastElement() *ChannelElem { return &s.elems[len(s.elems)-1] }

// CallStackSize reports the number of bytes every call stack derived from s
// requires. The value is precomputed during Init.
func (s *ChannelStack) CallStackSize() int { return s.callStackSize }

func (s *ChannelStack) traceEvent(op string, call bool, index int, f Filter) {
	if s.trace != nil {
		s.trace(TraceEvent{Op: op, Call: call, Index: index, Filter: f.Info().Name})
	}
}

// A ChannelElem is one filter's instantiation within a channel stack,
// pairing the filter with its channel-scoped private data.
type ChannelElem struct {
	stack  *ChannelStack
	index  int
	filter Filter
	data   []byte
}

// Filter returns the filter this element instantiates.
func (e *ChannelElem) Filter() Filter { return e.filter }

// Index reports the element's position within its stack.
func (e *ChannelElem) Index() int { return e.index }

// Data returns the filter's channel-scoped private data block. The block is
// shared with every call derived from the channel; only the owning filter
// may write to it, and synchronization is that filter's concern.
func (e *ChannelElem) Data() []byte { return e.data }

// Stack returns the stack that owns e. It is valid only for elements
// obtained from a stack accessor, not for copies of them.
func (e *ChannelElem) Stack() *ChannelStack { return e.stack }
