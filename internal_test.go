// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack

import (
	"strings"
	"testing"

	"github.com/creachadair/mds/mtest"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{0, 0},
		{1, MaxAlignment},
		{MaxAlignment - 1, MaxAlignment},
		{MaxAlignment, MaxAlignment},
		{MaxAlignment + 1, 2 * MaxAlignment},
		{5 * MaxAlignment, 5 * MaxAlignment},
		{5*MaxAlignment + 3, 6 * MaxAlignment},
	}
	for _, tc := range tests {
		if got := roundUp(tc.input); got != tc.want {
			t.Errorf("roundUp(%d): got %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestAlignmentCheck(t *testing.T) {
	save := maxAlignment
	defer func() { maxAlignment = save }()
	maxAlignment = 12 // not a power of two

	got := mtest.MustPanic(t, func() {
		ChannelStackSize([]Filter{testFilter{channel: 8}})
	}).(string)
	if !strings.Contains(got, "power of two") {
		t.Errorf("ChannelStackSize: got panic %q, want power of two", got)
	}
}

func TestDataBlockAlignment(t *testing.T) {
	fs := []Filter{
		testFilter{channel: 1, call: 3},
		testFilter{channel: 0, call: 17},
		testFilter{channel: 31, call: 0},
		testFilter{channel: 64, call: 64},
	}
	var s ChannelStack
	if err := s.Init(make([]byte, ChannelStackSize(fs)), fs, nil, nil); err != nil {
		t.Fatalf("Init: unexpected error: %v", err)
	}
	defer s.Destroy()

	// Walk the packed layout independently and verify that each element's
	// data block begins at the expected, aligned offset of the buffer.
	offset := roundUp(channelHeaderSize) + roundUp(len(fs)*channelElemSize)
	for i, f := range fs {
		if offset%maxAlignment != 0 {
			t.Errorf("Element %d: offset %d is not %d-byte aligned", i, offset, maxAlignment)
		}
		if n := f.Info().ChannelDataSize; n != 0 {
			if &s.data[offset] != &s.elems[i].data[0] {
				t.Errorf("Element %d: data block does not begin at offset %d", i, offset)
			}
			offset += roundUp(n)
		}
	}
	if offset != len(s.data) {
		t.Errorf("Layout end: got offset %d, want %d", offset, len(s.data))
	}

	var c CallStack
	if err := c.Init(make([]byte, s.CallStackSize()), &s, nil, nil); err != nil {
		t.Fatalf("Call init: unexpected error: %v", err)
	}
	defer c.Destroy()

	offset = roundUp(callHeaderSize) + roundUp(len(fs)*callElemSize)
	for i, f := range fs {
		if offset%maxAlignment != 0 {
			t.Errorf("Call element %d: offset %d is not %d-byte aligned", i, offset, maxAlignment)
		}
		if n := f.Info().CallDataSize; n != 0 {
			if &c.data[offset] != &c.elems[i].data[0] {
				t.Errorf("Call element %d: data block does not begin at offset %d", i, offset)
			}
			offset += roundUp(n)
		}
	}
	if offset != len(c.data) {
		t.Errorf("Call layout end: got offset %d, want %d", offset, len(c.data))
	}
}

// testFilter is a minimal no-op filter for layout tests.
type testFilter struct{ channel, call int }

func (f testFilter) Info() FilterInfo {
	return FilterInfo{Name: "test", ChannelDataSize: f.channel, CallDataSize: f.call}
}
func (testFilter) InitChannel(*ChannelElem, ChannelArgs, any, bool, bool) error { return nil }
func (testFilter) DestroyChannel(*ChannelElem)                                  {}
func (testFilter) InitCall(*CallElem, any, *CallOp) error                       { return nil }
func (testFilter) DestroyCall(*CallElem)                                        {}
func (testFilter) StartCallOp(*CallElem, *CallOp)                               {}
func (testFilter) ChannelOp(_, _ *ChannelElem, _ *ChannelOp)                    {}
