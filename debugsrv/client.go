// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugsrv

import (
	"net/rpc"

	"github.com/lumiknit/zgc/gc"
	"github.com/lumiknit/zgc/internal/socket"
)

// Client is a thin net/rpc client over the Unix-domain socket a Serve call
// listens on.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the debug socket of the process identified by uid/pid.
func Dial(uid, pid int) (*Client, error) {
	conn, err := socket.Dial(uid, pid)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: rpc.NewClient(conn)}, nil
}

// Stats fetches a snapshot of the remote collector's generation sizes.
func (c *Client) Stats() (gc.CollectorStats, error) {
	var resp StatsResponse
	err := c.rpc.Call("Server.Stats", &StatsRequest{}, &resp)
	return resp.Stats, err
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
