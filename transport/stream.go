package transport

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"rpcfabric/evloop"
	"rpcfabric/frame"
	"rpcfabric/rpcerr"
)

const readBufSize = 8 * 1024 // matches the teacher's per-client 8 KiB read buffer

// streamClientTransport implements ClientTransport over a net.Conn — the
// TCP and IPC variants differ only in which network string they dial,
// grounded on transport/client_transport.go's recvLoop + sending mutex.
type streamClientTransport struct {
	network string
	loop    *evloop.Loop

	mu        sync.Mutex // serializes writes, preventing frame interleaving
	conn      net.Conn
	connected atomic.Bool
	closeOnce sync.Once

	onReceive func([]byte)
	onClose   func(error)
}

func newStreamClientTransport(network string, loop *evloop.Loop) *streamClientTransport {
	return &streamClientTransport{network: network, loop: loop}
}

func (t *streamClientTransport) Connect(addr string, connectTimeout time.Duration) error {
	_, target, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout(t.network, target, connectTimeout)
	if err != nil {
		return rpcerr.Wrap(rpcerr.NotConnected, err)
	}
	t.conn = conn
	t.connected.Store(true)
	go t.recvLoop()
	return nil
}

func (t *streamClientTransport) recvLoop() {
	buf := make([]byte, 0, readBufSize)
	tmp := make([]byte, readBufSize)
	for {
		n, err := t.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				payload, consumed, ferr := frame.ExtractCopy(buf)
				if ferr == frame.ErrNeedMore {
					break
				}
				if ferr != nil {
					t.closeWith(ferr)
					return
				}
				buf = buf[consumed:]
				cb := t.onReceive
				if cb != nil {
					_ = t.loop.Submit(func() { cb(payload) })
				}
			}
		}
		if err != nil {
			t.closeWith(err)
			return
		}
	}
}

func (t *streamClientTransport) Send(payload []byte) error {
	if !t.connected.Load() {
		return rpcerr.New(rpcerr.NotConnected, "send on unconnected transport")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, err := frame.AppendFrame(nil, payload)
	if err != nil {
		return rpcerr.Wrap(rpcerr.Protocol, err)
	}
	if _, err := t.conn.Write(buf); err != nil {
		return rpcerr.Wrap(rpcerr.NotConnected, err)
	}
	return nil
}

func (t *streamClientTransport) SetTimeout(d time.Duration) {
	if t.conn != nil {
		_ = t.conn.SetDeadline(time.Now().Add(d))
	}
}

func (t *streamClientTransport) IsConnected() bool {
	return t.connected.Load()
}

func (t *streamClientTransport) OnReceive(f func([]byte)) { t.onReceive = f }
func (t *streamClientTransport) OnClose(f func(error))    { t.onClose = f }
func (t *streamClientTransport) Loop() *evloop.Loop { return t.loop }

func (t *streamClientTransport) Close() error {
	t.closeWith(nil)
	return nil
}

// closeWith invokes the close callback exactly once, per the transport
// guarantee that peer-close fires the error callback exactly once and
// ignores further sends thereafter.
func (t *streamClientTransport) closeWith(err error) {
	t.closeOnce.Do(func() {
		t.connected.Store(false)
		if t.conn != nil {
			t.conn.Close()
		}
		if t.onClose != nil {
			t.onClose(err)
		}
	})
}

// streamServerConn is the server-side per-client connection object —
// "Client connection (server-side)" in the data model.
type streamServerConn struct {
	id        string
	conn      net.Conn
	loop      *evloop.Loop
	mu        sync.Mutex
	connected atomic.Bool
	closeOnce sync.Once

	onReceive func([]byte)
	onClose   func(error)
}

func (c *streamServerConn) ID() string { return c.id }

func (c *streamServerConn) Send(payload []byte) error {
	if !c.connected.Load() {
		return rpcerr.New(rpcerr.NotConnected, "send on closed connection")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := frame.AppendFrame(nil, payload)
	if err != nil {
		return rpcerr.Wrap(rpcerr.Protocol, err)
	}
	if _, err := c.conn.Write(buf); err != nil {
		return rpcerr.Wrap(rpcerr.NotConnected, err)
	}
	return nil
}

func (c *streamServerConn) SetTimeout(d time.Duration) {
	_ = c.conn.SetDeadline(time.Now().Add(d))
}

func (c *streamServerConn) IsConnected() bool { return c.connected.Load() }

func (c *streamServerConn) OnReceive(f func([]byte)) { c.onReceive = f }
func (c *streamServerConn) OnClose(f func(error))    { c.onClose = f }

func (c *streamServerConn) Close() error {
	c.closeWith(nil)
	return nil
}

func (c *streamServerConn) closeWith(err error) {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose(err)
		}
	})
}

func (c *streamServerConn) recvLoop() {
	buf := make([]byte, 0, readBufSize)
	tmp := make([]byte, readBufSize)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				payload, consumed, ferr := frame.ExtractCopy(buf)
				if ferr == frame.ErrNeedMore {
					break
				}
				if ferr != nil {
					c.closeWith(ferr)
					return
				}
				buf = buf[consumed:]
				cb := c.onReceive
				if cb != nil {
					_ = c.loop.Submit(func() { cb(payload) })
				}
			}
		}
		if err != nil {
			c.closeWith(err)
			return
		}
	}
}

// streamServerTransport implements ServerTransport over net.Listener —
// grounded on server.Serve's accept loop (one goroutine per connection),
// with Close's teardown using evloop.Handle's Stop/CloseWithCallback
// protocol to distinguish an intentional listener close from a real
// Accept error and to run the actual net.Listener.Close on the loop.
type streamServerTransport struct {
	network string
	loop    *evloop.Loop

	ln       net.Listener
	handle   *evloop.Handle
	onAccept func(ServerConn)

	mu    sync.Mutex
	conns map[string]*streamServerConn
	next  atomic.Uint64
}

func newStreamServerTransport(network string, loop *evloop.Loop) *streamServerTransport {
	s := &streamServerTransport{network: network, loop: loop, conns: make(map[string]*streamServerConn)}
	s.handle = loop.NewHandle(func() {
		if s.ln != nil {
			s.ln.Close()
		}
	})
	return s
}

func (s *streamServerTransport) Listen(addr string) error {
	_, target, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	ln, err := net.Listen(s.network, target)
	if err != nil {
		return rpcerr.Wrap(rpcerr.Err, err)
	}
	s.ln = ln
	go s.acceptLoop()
	return nil
}

func (s *streamServerTransport) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.handle.Stopped() {
				return
			}
			log.Printf("transport: accept error: %v", err)
			return
		}
		id := conn.RemoteAddr().String()
		sc := &streamServerConn{
			id:   id,
			conn: conn,
			loop: s.loop,
		}
		sc.connected.Store(true)

		s.mu.Lock()
		s.conns[id] = sc
		s.mu.Unlock()

		sc.onClose = func(error) {
			s.mu.Lock()
			delete(s.conns, id)
			s.mu.Unlock()
		}

		if s.onAccept != nil {
			s.onAccept(sc)
		}
		go sc.recvLoop()
	}
}

func (s *streamServerTransport) OnAccept(f func(ServerConn)) { s.onAccept = f }

func (s *streamServerTransport) SendAll(payload []byte) error {
	s.mu.Lock()
	conns := make([]*streamServerConn, 0, len(s.conns))
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

// Close follows §4.G's two-phase teardown: Stop marks the listener as
// intentionally shutting down (so acceptLoop treats the resulting Accept
// error as expected), then CloseWithCallback runs the actual ln.Close on
// the loop goroutine — never inline from whatever goroutine called
// Close — and only signals done once that teardown has actually run.
func (s *streamServerTransport) Close() error {
	s.handle.Stop()
	done := make(chan struct{})
	s.handle.CloseWithCallback(func() { close(done) })
	<-done
	return nil
}

func (s *streamServerTransport) Loop() *evloop.Loop { return s.loop }

// Addr returns the listener's actual bound address — useful after binding
// to port 0 and letting the OS pick one. Empty until Listen has run.
func (s *streamServerTransport) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}
