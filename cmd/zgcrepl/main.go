// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The zgcrepl tool is an interactive shell over a single gc.Collector: it
// lets a user allocate objects, root and unroot them, and trigger
// collections one command at a time, and print the generation table with
// the stats command.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/chzyer/readline"

	"github.com/lumiknit/zgc/gc"
	"github.com/lumiknit/zgc/internal/core"
)

const help = `commands:
  alloc <np> <p>        allocate np non-pointer + p pointer cells, print its address
  tuple <tag> <dim>     allocate a tagged tuple, print its address
  root <idx> <addr>     store addr into bottom-frame slot idx (hex address, or "nil")
  unroot <idx>          clear bottom-frame slot idx
  get <idx>             print the address held in bottom-frame slot idx
  rungc                 run an incremental (minor) collection
  fullgc                run a full collection
  stats                 print the generation table
  help                  print this message
  exit                  quit
`

func main() {
	minor := 1 << 12
	root := 16
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil {
			minor = n
		}
	}

	c, err := gc.New(gc.Options{RootFrameSize: root, MinorHeapSize: minor})
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating collector: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "zgc> ",
		HistoryFile:     os.TempDir() + "/zgcrepl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprint(rl.Stderr(), help)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		dispatch(rl, c, strings.Fields(line))
	}
}

func dispatch(rl *readline.Instance, c *gc.Collector, fields []string) {
	if len(fields) == 0 {
		return
	}
	out := rl.Stderr()
	switch fields[0] {
	case "help":
		fmt.Fprint(out, help)

	case "exit", "quit":
		os.Exit(0)

	case "alloc":
		np, p, ok := twoInts(fields)
		if !ok {
			fmt.Fprintln(out, "usage: alloc <np> <p>")
			return
		}
		addr, err := c.Alloc(np, p)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%#x\n", addr)

	case "tuple":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: tuple <tag> <dim>")
			return
		}
		tag, err1 := strconv.Atoi(fields[1])
		dim, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			fmt.Fprintln(out, "usage: tuple <tag> <dim>")
			return
		}
		addr, err := c.AllocTuple(core.Value(tag), dim)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%#x\n", addr)

	case "root":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: root <idx> <addr>")
			return
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(out, "usage: root <idx> <addr>")
			return
		}
		if fields[2] == "nil" {
			c.SetBotSlot(idx, 0, false)
			return
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "0x"), 16, 64)
		if err != nil {
			fmt.Fprintln(out, "addr must be hex, or \"nil\"")
			return
		}
		c.SetBotSlot(idx, core.AddrValue(core.Address(n)), false)

	case "unroot":
		idx, err := strconv.Atoi(strArg(fields, 1))
		if err != nil {
			fmt.Fprintln(out, "usage: unroot <idx>")
			return
		}
		c.SetBotSlot(idx, 0, false)

	case "get":
		idx, err := strconv.Atoi(strArg(fields, 1))
		if err != nil {
			fmt.Fprintln(out, "usage: get <idx>")
			return
		}
		fmt.Fprintf(out, "%#x\n", c.BotSlot(idx).Addr())

	case "rungc":
		result, err := c.RunGC()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s\n", result)

	case "fullgc":
		result, err := c.FullGC()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s\n", result)

	case "stats":
		printStats(out, c)

	default:
		fmt.Fprintf(out, "unknown command %q; try \"help\"\n", fields[0])
	}
}

func twoInts(fields []string) (a, b int, ok bool) {
	if len(fields) != 3 {
		return 0, 0, false
	}
	var err1, err2 error
	a, err1 = strconv.Atoi(fields[1])
	b, err2 = strconv.Atoi(fields[2])
	return a, b, err1 == nil && err2 == nil
}

func strArg(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func printStats(w io.Writer, c *gc.Collector) {
	t := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(t, "gen\treserved\tleft\tallocated\t\n")
	stats := c.Stats()
	for _, g := range stats.Generations {
		fmt.Fprintf(t, "%d\t%d\t%d\t%d\t\n", g.Index, g.Reserved, g.Left, g.Allocated)
	}
	fmt.Fprintf(t, "collections\t%d\t\t\t\n", stats.Collections)
	t.Flush()
}
