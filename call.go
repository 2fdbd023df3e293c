// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import "fmt"

// A CallStack is an ordered pipeline of filter instances sharing the
// lifetime of one call. Its layout, filter ordering and data sizes alike,
// is entirely determined by the channel stack it derives from; only the
// call-scoped data contents are per-call. A call stack is owned exclusively
// by the call that created it and must not outlive it. A zero CallStack is
// ready for use, but must not be copied after any method has been called.
type CallStack struct {
	channel *ChannelStack
	elems   []CallElem
	data    []byte // the packed buffer supplied to Init
}

// Init initializes c from its parent channel stack, in ascending order. The
// buffer must have length exactly parent.CallStackSize(); c carves each
// filter's call data block out of it and retains it until Destroy. A
// mismatched buffer is a fatal configuration error and panics.
//
// Each element copies its filter and shares the channel data reference of
// the parent element at the same index. The transport value is the opaque
// per-call bootstrap supplied by the transport layer, and initial is the
// first operation of the call, if any; both are passed to each filter's
// InitCall hook unchanged.
//
// If a filter's InitCall hook reports an error, the elements already
// initialized are destroyed in reverse order, Init reports the error, and
// c is left ready for another Init.
func (c *CallStack) Init(buf []byte, parent *ChannelStack, transport any, initial *CallOp) error {
	if c.elems != nil {
		panic("stack is already initialized")
	}
	if len(buf) != parent.CallStackSize() {
		panic(fmt.Sprintf("buffer is %d bytes, layout needs %d", len(buf), parent.CallStackSize()))
	}

	count := parent.Count()
	offset := roundUp(callHeaderSize) + roundUp(count*callElemSize)

	c.channel = parent
	c.elems = make([]CallElem, count)
	c.data = buf
	for i := range c.elems {
		ce := parent.Element(i)
		size := ce.filter.Info().CallDataSize
		c.elems[i] = CallElem{
			stack:   c,
			index:   i,
			filter:  ce.filter,
			channel: ce,
			data:    buf[offset : offset+size : offset+size],
		}
		parent.traceEvent("init", true, i, ce.filter)
		if err := ce.filter.InitCall(&c.elems[i], transport, initial); err != nil {
			for j := i - 1; j >= 0; j-- {
				parent.traceEvent("destroy", true, j, c.elems[j].filter)
				c.elems[j].filter.DestroyCall(&c.elems[j])
			}
			c.channel, c.elems, c.data = nil, nil, nil
			metrics.initFail.Add(1)
			return fmt.Errorf("init call filter %d (%s): %w", i, ce.filter.Info().Name, err)
		}
		offset += roundUp(size)
	}

	// As for channel stacks, the cursor must agree with the precomputed size.
	if offset != len(buf) {
		panic(fmt.Sprintf("layout drift: data cursor %d, stack size %d", offset, len(buf)))
	}

	metrics.callBuilt.Add(1)
	return nil
}

// Destroy invokes each filter's DestroyCall hook in ascending order and
// releases the buffer. Destroy assumes every element was successfully
// initialized. After Destroy, c is ready for another Init.
func (c *CallStack) Destroy() {
	for i := range c.elems {
		c.channel.traceEvent("destroy", true, i, c.elems[i].filter)
		c.elems[i].filter.DestroyCall(&c.elems[i])
	}
	c.channel, c.elems, c.data = nil, nil, nil
	metrics.callFreed.Add(1)
}

// Channel returns the channel stack c was derived from.
func (c *CallStack) Channel() *ChannelStack { return c.channel }

// Count reports the number of elements in the stack.
func (c *CallStack) Count() int { return len(c.elems) }

// Element returns the element at the given index. It panics if index is out
// of range.
func (c *CallStack) Element(index int) *CallElem { return &c.elems[index] }

// LastElement returns the element nearest the transport.
func (c *CallStack) LastElement() *CallElem { return &c.elems[len(c.elems)-1] }

// A CallElem is one filter's instantiation within a call stack. It pairs
// the filter with the call's own call-scoped data and a non-owning
// reference to the corresponding channel element, whose channel-scoped data
// it shares with every other call on the channel.
type CallElem struct {
	stack   *CallStack
	index   int
	filter  Filter
	channel *ChannelElem
	data    []byte
}

// Filter returns the filter this element instantiates.
func (e *CallElem) Filter() Filter { return e.filter }

// Index reports the element's position within its stack.
func (e *CallElem) Index() int { return e.index }

// Data returns the filter's call-scoped private data block, exclusive to
// this call.
func (e *CallElem) Data() []byte { return e.data }

// ChannelData returns the filter's channel-scoped data block, shared with
// the parent channel element and all concurrent calls on the channel.
func (e *CallElem) ChannelData() []byte { return e.channel.data }

// ChannelElem returns the channel element this element was derived from.
// The reference is non-owning: the call stack never frees the channel data.
func (e *CallElem) ChannelElem() *ChannelElem { return e.channel }

// Stack returns the stack that owns e. It is valid only for elements
// obtained from a stack accessor, not for copies of them.
func (e *CallElem) Stack() *CallStack { return e.stack }
