// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program filterstack is a command-line utility for inspecting the packed
// layout of filter stacks.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/creachadair/command"
	"github.com/creachadair/filterstack"
	"github.com/creachadair/filterstack/filters"
	"github.com/creachadair/flax"
)

var layoutFlags struct {
	Trace bool `flag:"trace,Log stack lifecycle events to stderr"`
}

func main() {
	root := &command.C{
		Name: filepath.Base(os.Args[0]),
		Help: "Utilities for inspecting filter stack layouts.",
		Commands: []*command.C{
			{
				Name:  "layout",
				Usage: "<name:channel-size:call-size>...",
				Help: `Compute the packed layout for a stack of filters.

Each argument describes one filter as a colon-separated triple of a
diagnostic name, the size in bytes of its channel-scoped private data,
and the size in bytes of its call-scoped private data. The command
reports each filter's rounded data block sizes and the total number of
bytes a channel stack and each derived call stack require.

With -trace, the stack is also initialized and torn down with a trial
call, logging each lifecycle event to stderr.`,
				SetFlags: command.Flags(flax.MustBind, &layoutFlags),
				Run:      runLayout,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func runLayout(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("Missing filter specs")
	}
	var fs []filterstack.Filter
	for _, arg := range env.Args {
		f, err := parseSpec(arg)
		if err != nil {
			return fmt.Errorf("invalid filter spec %q: %w", arg, err)
		}
		fs = append(fs, f)
	}

	var cs filterstack.ChannelStack
	if layoutFlags.Trace {
		cs.LogEvents(func(ev filterstack.TraceEvent) { fmt.Fprintln(os.Stderr, ev) })
	}
	if err := cs.Init(make([]byte, filterstack.ChannelStackSize(fs)), fs, nil, nil); err != nil {
		return fmt.Errorf("initializing stack: %w", err)
	}
	defer cs.Destroy()
	if layoutFlags.Trace {
		call := new(filterstack.CallStack)
		if err := call.Init(make([]byte, cs.CallStackSize()), &cs, nil, nil); err != nil {
			return fmt.Errorf("initializing call stack: %w", err)
		}
		call.Destroy()
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tCHANNEL\tCALL")
	for i := 0; i < cs.Count(); i++ {
		info := cs.Element(i).Filter().Info()
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", i, info.Name,
			alignUp(info.ChannelDataSize), alignUp(info.CallDataSize))
	}
	fmt.Fprintf(tw, "\talignment\t%d\t\n", filterstack.MaxAlignment)
	fmt.Fprintf(tw, "\ttotal bytes\t%d\t%d\n",
		filterstack.ChannelStackSize(fs), cs.CallStackSize())
	return tw.Flush()
}

// alignUp rounds n up to the next multiple of the stack alignment, the
// rounding the packed layout applies to each data block.
func alignUp(n int) int {
	return (n + filterstack.MaxAlignment - 1) &^ (filterstack.MaxAlignment - 1)
}

// parseSpec parses a name:channel:call filter description.
func parseSpec(s string) (filterstack.Filter, error) {
	name, rest, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("want name:channel-size:call-size")
	}
	cstr, dstr, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("want name:channel-size:call-size")
	}
	csize, err := strconv.Atoi(cstr)
	if err != nil || csize < 0 {
		return nil, fmt.Errorf("invalid channel size %q", cstr)
	}
	dsize, err := strconv.Atoi(dstr)
	if err != nil || dsize < 0 {
		return nil, fmt.Errorf("invalid call size %q", dstr)
	}
	return filters.NoOp(name, csize, dsize), nil
}
