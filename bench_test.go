// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package filterstack_test

import (
	"fmt"
	"testing"

	"github.com/creachadair/filterstack"
	"github.com/creachadair/filterstack/filters"
	"github.com/creachadair/filterstack/stacktest"
)

func BenchmarkCallStack(b *testing.B) {
	for _, n := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("Filters-%d", n), func(b *testing.B) {
			var fs []filterstack.Filter
			for i := 0; i < n; i++ {
				fs = append(fs, filters.NoOp(fmt.Sprintf("f%d", i), 32, 48))
			}
			cs, err := stacktest.NewChannelStack(fs, nil, nil)
			if err != nil {
				b.Fatal(err)
			}
			defer cs.Destroy()

			// One buffer reused for every call, as a transport would.
			buf := make([]byte, cs.CallStackSize())
			for b.Loop() {
				var call filterstack.CallStack
				if err := call.Init(buf, cs, nil, nil); err != nil {
					b.Fatal(err)
				}
				call.Destroy()
			}
		})
	}
}

func BenchmarkDispatch(b *testing.B) {
	var fs []filterstack.Filter
	for i := 0; i < 8; i++ {
		fs = append(fs, filters.NoOp(fmt.Sprintf("f%d", i), 0, 16))
	}
	cs, err := stacktest.NewChannelStack(fs, nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer cs.Destroy()

	call, err := stacktest.NewCallStack(cs, nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer call.Destroy()

	op := &filterstack.CallOp{Data: []byte("fuzzy wuzzy was a bear")}
	head := call.Element(0)
	for b.Loop() {
		head.Filter().StartCallOp(head, op)
	}
}
