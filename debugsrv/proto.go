// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package debugsrv provides read-only RPC access to a running gc.Collector,
// for external tools that want to observe generation sizes without
// instrumenting the program itself.
package debugsrv

import "github.com/lumiknit/zgc/gc"

// For regularity, each method has its own Request and Response type even
// when not strictly necessary.

// StatsRequest asks for a snapshot of every generation's size.
type StatsRequest struct{}

// StatsResponse carries the snapshot.
type StatsResponse struct {
	Stats gc.CollectorStats
}
