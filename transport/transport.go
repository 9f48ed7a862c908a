// Package transport implements component B: the transport abstraction over
// TCP, IPC (Unix domain sockets), and an in-process zero-copy path, unified
// behind one capability set — listen/connect/send/send-to/close/
// set-timeout/get-loop/is-connected.
//
// Grounded on transport/client_transport.go's per-connection read loop and
// write mutex, and server/server.go's accept-loop + one-goroutine-per-
// connection pattern, generalized into TCP, IPC, and in-process variants.
package transport

import (
	"strings"
	"time"

	"rpcfabric/evloop"
	"rpcfabric/rpcerr"
)

// Scheme identifies which transport an address names.
type Scheme int

const (
	TCP Scheme = iota
	IPC
	Inproc
)

// ParseAddress splits a URL-like address (tcp://host:port, ipc://path,
// inproc://name) into its scheme and target. Parsing is total: malformed
// addresses return InvalidParam before any resource is acquired.
func ParseAddress(addr string) (Scheme, string, error) {
	switch {
	case strings.HasPrefix(addr, "tcp://"):
		target := strings.TrimPrefix(addr, "tcp://")
		if target == "" {
			return 0, "", rpcerr.New(rpcerr.InvalidParam, "empty tcp address")
		}
		return TCP, target, nil
	case strings.HasPrefix(addr, "ipc://"):
		target := strings.TrimPrefix(addr, "ipc://")
		if target == "" {
			return 0, "", rpcerr.New(rpcerr.InvalidParam, "empty ipc path")
		}
		return IPC, target, nil
	case strings.HasPrefix(addr, "inproc://"):
		target := strings.TrimPrefix(addr, "inproc://")
		if target == "" {
			return 0, "", rpcerr.New(rpcerr.InvalidParam, "empty inproc name")
		}
		return Inproc, target, nil
	default:
		return 0, "", rpcerr.New(rpcerr.InvalidParam, "malformed transport address: "+addr)
	}
}

// Conn is the shared send/close/timeout/connected capability set of §4.B,
// satisfied by both a client's own connection and the server's per-client
// handle onto that same connection.
type Conn interface {
	Send(payload []byte) error
	Close() error
	SetTimeout(d time.Duration)
	IsConnected() bool
}

// ClientTransport is the client side of the capability set: connect, plus
// registering callbacks for inbound frames and peer-close.
type ClientTransport interface {
	Conn
	Connect(addr string, connectTimeout time.Duration) error
	OnReceive(func(payload []byte))
	OnClose(func(err error))
	Loop() *evloop.Loop
}

// ServerConn is the server's per-accepted-connection tracking object: the
// "Client connection (server-side)" of the data model — transport-handle,
// inbound-frame-buffer (owned internally), and peer-identity-for-routing
// (ID()).
type ServerConn interface {
	Conn
	ID() string
	OnReceive(func(payload []byte))
	OnClose(func(err error))
}

// ServerTransport is the server side: listen, accept callback, and the
// broadcast fan-out send-all permitted by the spec's narrow non-goal
// carve-out (single-producer-many-consumers on in-process transport).
type ServerTransport interface {
	Listen(addr string) error
	OnAccept(func(conn ServerConn))
	SendAll(payload []byte) error
	Close() error
	Loop() *evloop.Loop
}
