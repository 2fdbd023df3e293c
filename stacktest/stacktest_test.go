// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package stacktest_test

import (
	"errors"
	"testing"

	"github.com/creachadair/filterstack"
	"github.com/creachadair/filterstack/stacktest"
	"github.com/google/go-cmp/cmp"
)

func TestConstructors(t *testing.T) {
	lg := new(stacktest.Log)
	fs := []filterstack.Filter{
		stacktest.NewRecorder("a", 8, 8, lg),
		stacktest.NewRecorder("b", 0, 32, lg),
	}
	cs, err := stacktest.NewChannelStack(fs, nil, nil)
	if err != nil {
		t.Fatalf("NewChannelStack: %v", err)
	}
	call, err := stacktest.NewCallStack(cs, "bootstrap", nil)
	if err != nil {
		t.Fatalf("NewCallStack: %v", err)
	}
	if got, want := call.Count(), len(fs); got != want {
		t.Errorf("Count: got %d, want %d", got, want)
	}
	call.Destroy()
	cs.Destroy()

	want := []string{
		"a: init-channel 0 first=true last=false",
		"b: init-channel 1 first=false last=true",
		"a: init-call 0",
		"b: init-call 1",
		"a: destroy-call 0",
		"b: destroy-call 1",
		"a: destroy-channel 0",
		"b: destroy-channel 1",
	}
	if diff := cmp.Diff(want, lg.Events()); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestConstructorError(t *testing.T) {
	bad := errors.New("bad filter")
	if _, err := stacktest.NewChannelStack([]filterstack.Filter{
		stacktest.FailInit{Name: "broken", ChannelErr: bad},
	}, nil, nil); !errors.Is(err, bad) {
		t.Errorf("NewChannelStack: got error %v, want %v", err, bad)
	}
}

func TestLog(t *testing.T) {
	lg := new(stacktest.Log)
	if got := lg.Events(); len(got) != 0 {
		t.Errorf("Empty log events: got %v, want none", got)
	}
	lg.Add("one")
	lg.Add("two")
	if diff := cmp.Diff([]string{"one", "two"}, lg.Events()); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}

	// The returned slice is a copy, not an alias of the log.
	ev := lg.Events()
	ev[0] = "mutated"
	if diff := cmp.Diff([]string{"one", "two"}, lg.Events()); diff != "" {
		t.Errorf("Events after mutation (-want, +got):\n%s", diff)
	}

	lg.Reset()
	if got := lg.Events(); len(got) != 0 {
		t.Errorf("Events after reset: got %v, want none", got)
	}
}
