package transport

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"rpcfabric/evloop"
	"rpcfabric/rpcerr"
)

// inprocRegistry is the process-wide named-endpoint directory: one server
// may bind a name, and any number of clients may connect to it. Unlike
// the TCP/IPC transports, which must hand frames across a real OS
// boundary and so always dispatch through Loop.Submit, in-process Send
// invokes the peer's receive callback synchronously, in the caller's own
// call stack, passing the payload slice as-is — no socket, no byte-stream
// copy, no deferred dispatch. This is the zero-copy, synchronous fast
// path the fabric singles out for same-process delivery.
var inprocRegistry = struct {
	mu        sync.Mutex
	endpoints map[string]*inprocServerTransport
}{endpoints: make(map[string]*inprocServerTransport)}

// inprocServerTransport is the in-process ServerTransport: no actual
// listener, just a registry entry and a set of connected peers.
type inprocServerTransport struct {
	name string
	loop *evloop.Loop

	mu       sync.Mutex
	conns    map[string]*inprocServerConn
	onAccept func(ServerConn)
	next     atomic.Uint64
	closed   bool
}

// NewInprocServer returns a ServerTransport bound to the process-wide
// endpoint registry instead of any OS transport.
func NewInprocServer(loop *evloop.Loop) ServerTransport {
	return &inprocServerTransport{loop: loop, conns: make(map[string]*inprocServerConn)}
}

func (s *inprocServerTransport) Listen(addr string) error {
	scheme, name, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	if scheme != Inproc {
		return rpcerr.New(rpcerr.InvalidParam, "inproc server given non-inproc address: "+addr)
	}

	inprocRegistry.mu.Lock()
	defer inprocRegistry.mu.Unlock()
	if _, exists := inprocRegistry.endpoints[name]; exists {
		return rpcerr.New(rpcerr.AlreadyExists, "inproc endpoint already bound: "+name)
	}
	s.name = name
	inprocRegistry.endpoints[name] = s
	return nil
}

func (s *inprocServerTransport) OnAccept(f func(ServerConn)) { s.onAccept = f }

func (s *inprocServerTransport) SendAll(payload []byte) error {
	s.mu.Lock()
	conns := make([]*inprocServerConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Send(payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *inprocServerTransport) Close() error {
	inprocRegistry.mu.Lock()
	if s.name != "" {
		delete(inprocRegistry.endpoints, s.name)
	}
	s.closed = true
	inprocRegistry.mu.Unlock()

	s.mu.Lock()
	conns := make([]*inprocServerConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	return nil
}

func (s *inprocServerTransport) Loop() *evloop.Loop { return s.loop }

// connect is called by an inprocClientTransport dialing this endpoint. It
// wires the two sides together directly; once wired, Send on either side
// invokes the other's receive callback synchronously (see
// inprocServerConn.Send / inprocClientTransport.Send). The onAccept
// notification also runs synchronously, before Connect returns, so a Send
// issued right after Connect finds the server's receive callback wired.
func (s *inprocServerTransport) connect(client *inprocClientTransport) (*inprocServerConn, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, rpcerr.New(rpcerr.NotConnected, "inproc endpoint closed: "+s.name)
	}
	id := s.name + "#" + strconv.FormatUint(s.next.Add(1), 10)
	sc := &inprocServerConn{id: id, server: s, peer: client}
	s.conns[id] = sc
	s.mu.Unlock()
	sc.connected.Store(true)

	if s.onAccept != nil {
		s.onAccept(sc)
	}
	return sc, nil
}

func (s *inprocServerTransport) forget(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// inprocServerConn is the server-side handle onto one connected in-process
// client.
type inprocServerConn struct {
	id     string
	server *inprocServerTransport
	peer   *inprocClientTransport

	connected atomic.Bool
	closeOnce sync.Once
	onReceive func([]byte)
	onClose   func(error)
}

func (c *inprocServerConn) ID() string { return c.id }

func (c *inprocServerConn) Send(payload []byte) error {
	if !c.connected.Load() {
		return rpcerr.New(rpcerr.NotConnected, "send on closed inproc connection")
	}
	// Invoke the client's receive callback synchronously, handing over
	// payload directly: same process, so there is nothing to marshal and
	// nothing to copy.
	cb := c.peer.onReceive
	if cb == nil {
		return nil
	}
	cb(payload)
	return nil
}

func (c *inprocServerConn) SetTimeout(time.Duration) {}

func (c *inprocServerConn) IsConnected() bool { return c.connected.Load() }

func (c *inprocServerConn) OnReceive(f func([]byte)) { c.onReceive = f }
func (c *inprocServerConn) OnClose(f func(error))    { c.onClose = f }

func (c *inprocServerConn) Close() error {
	c.closeWith(nil)
	return nil
}

func (c *inprocServerConn) closeWith(err error) {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		c.server.forget(c.id)
		c.peer.connected.Store(false)
		if c.onClose != nil {
			c.onClose(err)
		}
		if cb := c.peer.onClose; cb != nil {
			_ = c.peer.loop.Submit(func() { cb(err) })
		}
	})
}

// inprocClientTransport is the client side of an in-process connection.
type inprocClientTransport struct {
	loop *evloop.Loop

	connected atomic.Bool
	closeOnce sync.Once
	server    *inprocServerTransport
	conn      *inprocServerConn

	onReceive func([]byte)
	onClose   func(error)
}

// NewInprocClient returns a ClientTransport that connects through the
// process-wide endpoint registry instead of any OS transport.
func NewInprocClient(loop *evloop.Loop) ClientTransport {
	return &inprocClientTransport{loop: loop}
}

func (c *inprocClientTransport) Connect(addr string, _ time.Duration) error {
	scheme, name, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	if scheme != Inproc {
		return rpcerr.New(rpcerr.InvalidParam, "inproc client given non-inproc address: "+addr)
	}

	inprocRegistry.mu.Lock()
	srv, ok := inprocRegistry.endpoints[name]
	inprocRegistry.mu.Unlock()
	if !ok {
		return rpcerr.New(rpcerr.NotConnected, "no inproc endpoint bound: "+name)
	}

	sc, err := srv.connect(c)
	if err != nil {
		return err
	}
	c.server = srv
	c.conn = sc
	c.connected.Store(true)
	return nil
}

func (c *inprocClientTransport) Send(payload []byte) error {
	if !c.connected.Load() {
		return rpcerr.New(rpcerr.NotConnected, "send on unconnected inproc transport")
	}
	// Same zero-copy, synchronous path as inprocServerConn.Send, in the
	// other direction.
	cb := c.conn.onReceive
	if cb == nil {
		return nil
	}
	cb(payload)
	return nil
}

func (c *inprocClientTransport) SetTimeout(time.Duration) {}

func (c *inprocClientTransport) IsConnected() bool { return c.connected.Load() }

func (c *inprocClientTransport) OnReceive(f func([]byte)) { c.onReceive = f }
func (c *inprocClientTransport) OnClose(f func(error))    { c.onClose = f }
func (c *inprocClientTransport) Loop() *evloop.Loop { return c.loop }

func (c *inprocClientTransport) Close() error {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		if c.conn != nil {
			c.conn.closeWith(nil)
		}
	})
	return nil
}
