// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugsrv

import (
	"net/rpc"

	"github.com/lumiknit/zgc/gc"
	"github.com/lumiknit/zgc/internal/socket"
)

type call struct {
	resp *StatsResponse
	errc chan error
}

// Server answers Stats RPCs about a single Collector. Every call is
// funneled through a single goroutine (loop) so that concurrent RPC
// clients never observe the collector mid-cycle — the Collector itself
// has no internal locking and assumes a single mutator thread.
type Server struct {
	c  *gc.Collector
	cc chan call
}

// New starts the serialization goroutine for c. The returned Server must
// be registered with an *rpc.Server (see Serve) before it answers calls.
func New(c *gc.Collector) *Server {
	s := &Server{c: c, cc: make(chan call)}
	go s.loop()
	return s
}

func (s *Server) loop() {
	for req := range s.cc {
		req.resp.Stats = s.c.Stats()
		req.errc <- nil
	}
}

// Stats implements the net/rpc method Server.Stats.
func (s *Server) Stats(_ *StatsRequest, resp *StatsResponse) error {
	errc := make(chan error, 1)
	s.cc <- call{resp: resp, errc: errc}
	return <-errc
}

// Serve registers s under the name "Server" and accepts connections on this
// process's debug socket until the listener errors, which normally happens
// only at process shutdown.
func Serve(s *Server) error {
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Server", s); err != nil {
		return err
	}
	lis, err := socket.Listen()
	if err != nil {
		return err
	}
	defer lis.Close()
	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		go rpcServer.ServeConn(conn)
	}
}
