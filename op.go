// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import (
	"errors"
	"fmt"
)

// A StatusCode reports the disposition of a call. The values mirror the
// transport's status enumeration; only the codes the pipeline itself uses
// are named here.
type StatusCode int

const (
	StatusOK        StatusCode = 0 // the call completed normally
	StatusCancelled StatusCode = 1 // the call was cancelled
)

func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("status code %d", int(s))
	}
}

// A CallOp is a unit of work traveling along a call stack toward the
// transport. The zero value is an empty operation. A filter receiving an
// operation may complete it, or observe or transform it before delegating
// to its neighbor with CallNextOp.
type CallOp struct {
	Data         []byte     // message payload, if any
	Flags        uint32     // transport-specific flags
	CancelStatus StatusCode // if nonzero, cancel the call with this status
}

// Direction reports which way a channel operation travels along the stack.
type Direction int

const (
	Down Direction = 1  // toward the transport
	Up   Direction = -1 // toward the application
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("direction %+d", int(d))
	}
}

// A ChannelOpType identifies a channel-level control operation.
type ChannelOpType int

const (
	OpGoAway          ChannelOpType = iota + 1 // the peer asked the channel to wind down
	OpDisconnect                               // the application asked to drop the connection
	OpTransportClosed                          // the transport reported closure
	OpAcceptCall                               // the transport delivered a new inbound call
)

func (t ChannelOpType) String() string {
	switch t {
	case OpGoAway:
		return "GOAWAY"
	case OpDisconnect:
		return "DISCONNECT"
	case OpTransportClosed:
		return "TRANSPORT_CLOSED"
	case OpAcceptCall:
		return "ACCEPT_CALL"
	default:
		return fmt.Sprintf("op type %d", int(t))
	}
}

// A ChannelOp is a channel-level control operation propagating along the
// element chain in the direction it declares.
type ChannelOp struct {
	Type    ChannelOpType
	Dir     Direction
	Payload any // operation-specific data, opaque to the pipeline
}

// CallNextOp delivers op to the element following elem in its call stack,
// by invoking that element's StartCallOp hook. Call operations travel
// strictly toward the transport; there is no reverse primitive.
//
// The element following elem must exist: CallNextOp must not be invoked
// from the last element of a stack, and panics if it is.
func CallNextOp(elem *CallElem, op *CallOp) {
	next := elem.stack.Element(elem.index + 1)
	elem.stack.channel.traceEvent("call-op", true, next.index, next.filter)
	metrics.callOps.Add(1)
	next.filter.StartCallOp(next, op)
}

// ChannelNextOp delivers op to the neighbor of elem in the direction op
// declares, by invoking that element's ChannelOp hook with elem as the
// sender.
//
// The neighbor in the declared direction must exist; ChannelNextOp panics
// if it does not.
func ChannelNextOp(elem *ChannelElem, op *ChannelOp) {
	next := elem.stack.Element(elem.index + int(op.Dir))
	elem.stack.traceEvent("channel-op", false, next.index, next.filter)
	metrics.channelOps.Add(1)
	next.filter.ChannelOp(next, elem, op)
}

// SendCancel injects a cancellation below elem: a zero operation whose
// CancelStatus is StatusCancelled, delivered to the next element as by
// CallNextOp.
func SendCancel(elem *CallElem) {
	metrics.cancels.Add(1)
	CallNextOp(elem, &CallOp{CancelStatus: StatusCancelled})
}

// ErrRecvStatusUnimplemented is reported by RecvStatus for all inputs.
var ErrRecvStatusUnimplemented = errors.New("receive status is not implemented")

// RecvStatus is reserved to deliver a call's final status to the elements
// above elem. No upward call-level primitive exists yet, so it reports
// ErrRecvStatusUnimplemented regardless of its arguments.
//
// TODO: Implement status receipt once an upward call-level dispatch path
// is defined.
func RecvStatus(elem *CallElem, code StatusCode, message string) error {
	return ErrRecvStatusUnimplemented
}
