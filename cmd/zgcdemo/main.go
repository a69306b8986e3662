// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The zgcdemo tool drives a gc.Collector through a handful of scripted
// allocation patterns and prints the resulting generation table. Run
// "zgcdemo help" for a list of scenarios.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumiknit/zgc/gc"
	"github.com/lumiknit/zgc/internal/core"
)

var (
	minorHeapSize int
	rootFrameSize int
	minMajorSize  int
)

func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func newCollector() *gc.Collector {
	c, err := gc.New(gc.Options{RootFrameSize: rootFrameSize, MinorHeapSize: minorHeapSize})
	if err != nil {
		exitf("creating collector: %v\n", err)
	}
	if minMajorSize > 0 {
		c.SetMinMajorSize(minMajorSize)
	}
	return c
}

func printStats(label string, c *gc.Collector) {
	t := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(t, "%s\n", label)
	fmt.Fprintf(t, "gen\treserved\tleft\tallocated\t\n")
	stats := c.Stats()
	for _, g := range stats.Generations {
		fmt.Fprintf(t, "%d\t%d\t%d\t%d\t\n", g.Index, g.Reserved, g.Left, g.Allocated)
	}
	fmt.Fprintf(t, "collections\t%d\t\t\t\n", stats.Collections)
	t.Flush()
}

func main() {
	root := &cobra.Command{
		Use:   "zgcdemo",
		Short: "Drive a gc.Collector through scripted allocation scenarios",
	}
	root.PersistentFlags().IntVar(&minorHeapSize, "minor", 1<<12, "minor heap size in cells")
	root.PersistentFlags().IntVar(&rootFrameSize, "rootframe", 16, "bottom root frame size in slots")
	root.PersistentFlags().IntVar(&minMajorSize, "minmajor", 0, "floor for newly created major generations (0 = default)")

	root.AddCommand(tupleCmd())
	root.AddCommand(exhaustionCmd())
	root.AddCommand(cyclicCmd())
	root.AddCommand(stringsCmd())
	root.AddCommand(framesCmd())

	if err := root.Execute(); err != nil {
		exitf("%v\n", err)
	}
}

func tupleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tuple",
		Short: "Allocate a single tagged tuple and print heap occupancy",
		Run: func(cmd *cobra.Command, args []string) {
			c := newCollector()
			defer c.Close()
			addr, err := c.AllocTuple(0, 4)
			if err != nil {
				exitf("AllocTuple: %v\n", err)
			}
			c.SetTopSlot(0, core.AddrValue(addr), false)
			printStats("after allocating one 4-slot tuple", c)
		},
	}
}

func exhaustionCmd() *cobra.Command {
	var count int
	var size int
	cmd := &cobra.Command{
		Use:   "exhaustion",
		Short: "Allocate --count unrooted objects of --size cells; the minor heap collects whenever it fills",
		Run: func(cmd *cobra.Command, args []string) {
			c := newCollector()
			defer c.Close()
			for i := 0; i < count; i++ {
				if _, err := c.Alloc(size, 0); err != nil {
					exitf("Alloc #%d: %v\n", i+1, err)
				}
			}
			printStats(fmt.Sprintf("after %d unrooted allocations of size %d", count, size), c)
		},
	}
	cmd.Flags().IntVar(&count, "count", 14, "number of objects to allocate")
	cmd.Flags().IntVar(&size, "size", 10, "cells per object")
	return cmd
}

func cyclicCmd() *cobra.Command {
	var enable bool
	cmd := &cobra.Command{
		Use:   "cyclic",
		Short: "Write an elder-to-younger pointer and show whether it survives a collection",
		Run: func(cmd *cobra.Command, args []string) {
			mode := gc.CyclicDisable
			if enable {
				mode = gc.CyclicEnable
			}
			c, err := gc.New(gc.Options{RootFrameSize: rootFrameSize, MinorHeapSize: minorHeapSize, Cyclic: mode})
			if err != nil {
				exitf("creating collector: %v\n", err)
			}
			defer c.Close()
			if minMajorSize > 0 {
				c.SetMinMajorSize(minMajorSize)
			}

			x, err := c.Alloc(0, 3)
			if err != nil {
				exitf("Alloc x: %v\n", err)
			}
			c.SetCell(x, 0, core.AddrValue(x))
			c.SetTopSlot(0, core.AddrValue(x), false)
			if _, err := c.RunGC(); err != nil {
				exitf("RunGC: %v\n", err)
			}
			x = c.TopSlot(0).Addr()

			y, err := c.Alloc(0, 3)
			if err != nil {
				exitf("Alloc y: %v\n", err)
			}
			c.SetCell(y, 0, core.AddrValue(x))
			c.SetCell(y, 2, 0x88)
			c.SetCell(x, 1, core.AddrValue(y))
			if _, err := c.RunGC(); err != nil {
				exitf("RunGC: %v\n", err)
			}
			x = c.TopSlot(0).Addr()
			survived := false
			if x1, err := c.Cell(x, 1); err == nil && !x1.Addr().IsNil() {
				tag, err := c.Cell(x1.Addr(), 2)
				survived = err == nil && tag == 0x88
			}
			printStats(fmt.Sprintf("cyclic enabled=%v: x[1] survived=%v", enable, survived), c)
		},
	}
	cmd.Flags().BoolVar(&enable, "enable", false, "enable the cyclic-reference assumption")
	return cmd
}

func stringsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strings",
		Short: "Allocate five strings, drop two roots, and run a full collection",
		Run: func(cmd *cobra.Command, args []string) {
			c := newCollector()
			defer c.Close()
			sizes := []int{13, 600, 660, 600, 660}
			for i, sz := range sizes {
				addr, err := c.AllocString(sz)
				if err != nil {
					exitf("AllocString(%d): %v\n", sz, err)
				}
				c.SetTopSlot(i, core.AddrValue(addr), false)
			}
			c.SetTopSlot(1, 0, false)
			c.SetTopSlot(2, 0, false)
			printStats("before FullGC", c)
			if _, err := c.FullGC(); err != nil {
				exitf("FullGC: %v\n", err)
			}
			printStats("after FullGC", c)
		},
	}
}

func framesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frames",
		Short: "Push two root frames, mix pointer and non-pointer slots, and collect",
		Run: func(cmd *cobra.Command, args []string) {
			c := newCollector()
			defer c.Close()
			a, _ := c.AllocTuple(0xA, 0)
			b, _ := c.AllocTuple(0xB, 0)
			c.PushFrame(2)
			c.SetTopSlot(0, core.AddrValue(a), false)
			c.SetTopSlot(1, core.AddrValue(b), false)
			c.PushFrame(2)
			d, _ := c.AllocTuple(0xD, 0)
			c.SetTopSlot(0, core.AddrValue(d), false)
			c.SetTopSlot(1, core.AddrValue(a), true)
			if _, err := c.RunGC(); err != nil {
				exitf("RunGC: %v\n", err)
			}
			printStats("after collecting two pushed frames", c)
		},
	}
}
