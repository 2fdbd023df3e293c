// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import (
	"fmt"

	"github.com/creachadair/mds/value"
)

// A TraceLogger logs lifecycle and dispatch events for a stack. Install one
// with ChannelStack.LogEvents; the stack holds no other tracing state, and
// there is no process-wide trace switch.
type TraceLogger func(ev TraceEvent)

// A TraceEvent records a single lifecycle or dispatch event on a stack.
type TraceEvent struct {
	Op     string // what happened: "init", "destroy", "call-op", "channel-op"
	Call   bool   // whether a call stack (true) or a channel stack was concerned
	Index  int    // the index of the element concerned
	Filter string // the name of the element's filter
}

// String returns a human-friendly rendering of the event.
func (e TraceEvent) String() string {
	return fmt.Sprintf("%s %s[%d] (%s)", e.Op, value.Cond(e.Call, "call", "channel"), e.Index, e.Filter)
}
