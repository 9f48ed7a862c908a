// Package server implements component D: the server dispatcher. It holds
// the name→handler registry, builds the middleware chain once at Start,
// and turns inbound frames into outbound response frames.
//
// Request processing pipeline, grounded on the teacher's handleConn /
// handleRequest split:
//
//	Accept conn → recv loop (one goroutine per connection via the
//	  transport layer) → for each frame: decode → middleware chain →
//	  businessHandler (registry lookup) → encode → send
package server

import (
	"context"
	"log"
	"sync"

	"rpcfabric/config"
	"rpcfabric/middleware"
	"rpcfabric/rpcerr"
	"rpcfabric/transport"
	"rpcfabric/wire"
)

// HandlerFunc is a registered RPC method: raw request params in, raw
// result bytes or an error out. Codec-level (de)serialization of params
// and result happens above this layer, inside the caller's own handler —
// the dispatcher only carries bytes.
type HandlerFunc func(ctx context.Context, params []byte) ([]byte, error)

// Server is the RPC server: service registration, middleware chain, and
// per-connection request processing.
type Server struct {
	cfg   *config.Config
	codec wire.Codec
	tr    transport.ServerTransport

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	frozen   bool // set on the first inbound frame; blocks further Register calls

	middlewares []middleware.Middleware
	chain       middleware.HandlerFunc
}

// New creates a server bound to cfg's loop and transport, dispatching
// through codec.
func New(cfg *config.Config, tr transport.ServerTransport, codec wire.Codec) *Server {
	return &Server{
		cfg:      cfg,
		codec:    codec,
		tr:       tr,
		handlers: make(map[string]HandlerFunc),
	}
}

// Use registers a middleware. Middlewares run in the order added, all
// wrapping around the dispatcher's businessHandler.
func (s *Server) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

// Register binds name to handler. Re-registering an already-bound name
// returns ALREADY_EXISTS. Registration is only permitted before the first
// inbound frame is processed — once the dispatcher has started serving
// requests, the handler table is frozen.
func (s *Server) Register(name string, handler HandlerFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return rpcerr.New(rpcerr.InvalidParam, "cannot register after dispatcher has started handling requests: "+name)
	}
	if _, exists := s.handlers[name]; exists {
		return rpcerr.New(rpcerr.AlreadyExists, "handler already registered: "+name)
	}
	s.handlers[name] = handler
	return nil
}

// Start builds the middleware chain and begins accepting connections.
func (s *Server) Start(addr string) error {
	s.chain = middleware.Chain(s.middlewares...)(s.businessHandler)
	s.tr.OnAccept(func(conn transport.ServerConn) {
		conn.OnReceive(func(payload []byte) {
			s.handleFrame(conn, payload)
		})
	})
	return s.tr.Listen(addr)
}

// Stop closes the listening transport. In-flight requests on already
// accepted connections are not forcibly cancelled.
func (s *Server) Stop() error {
	return s.tr.Close()
}

func (s *Server) handleFrame(conn transport.ServerConn, payload []byte) {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()

	req, err := s.codec.DecodeRequest(payload)
	if err != nil {
		log.Printf("server: decode request failed: %v", err)
		return
	}
	guard := newRequestGuard(req.MID)

	resp := s.chain(context.Background(), req)
	guard.markAnswered()

	out, err := s.codec.EncodeResponse(resp)
	if err != nil {
		log.Printf("server: encode response failed: %v", err)
		return
	}
	if err := conn.Send(out); err != nil {
		log.Printf("server: send response failed: %v", err)
	}
}

// businessHandler looks up the method registered under req.Method and
// invokes it, synthesizing SERVICE_NOT_FOUND when no handler matches.
func (s *Server) businessHandler(ctx context.Context, req *wire.Request) *wire.Response {
	s.mu.Lock()
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()
	if !ok {
		return &wire.Response{MID: req.MID, Status: 1, ErrorCode: int32(rpcerr.ServiceNotFound)}
	}

	result, err := h(ctx, req.Params)
	if err != nil {
		if fe, ok := err.(*rpcerr.Error); ok {
			return &wire.Response{MID: req.MID, Status: 1, ErrorCode: int32(fe.Code)}
		}
		return &wire.Response{MID: req.MID, Status: 1, ErrorCode: int32(rpcerr.Err)}
	}
	return &wire.Response{MID: req.MID, Result: result}
}
