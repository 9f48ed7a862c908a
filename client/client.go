// Package client implements component E: the client multiplexer. It
// issues concurrent requests over a single connection, routes responses
// back to their caller by MID, and applies per-call deadlines, an
// in-flight ceiling, and transport-failure retries.
//
// Grounded on transport/client_transport.go's recvLoop + sync.Map pending
// table, generalized from a per-seq channel keyed on protocol.Header.Seq
// to one keyed on wire.Request/Response.MID, and from a shared connection
// pool to the single ClientTransport the spec's data model describes.
package client

import (
	"context"
	"sync"
	"sync/atomic"

	"rpcfabric/config"
	"rpcfabric/coordination"
	"rpcfabric/evloop"
	"rpcfabric/rpcerr"
	"rpcfabric/transport"
	"rpcfabric/wire"
)

// Client manages the full call lifecycle over one transport: MID
// allocation, pending-table routing, backpressure, deadlines, and
// transport-failure retry.
type Client struct {
	cfg   *config.Config
	codec wire.Codec
	tr    transport.ClientTransport

	mu      sync.Mutex // guards mid allocation against pending's occupancy check
	nextMID uint32
	pending sync.Map // map[uint32]*pendingCall

	inFlight atomic.Int64
}

type pendingCall struct {
	done  chan *wire.Response
	timer *evloop.Timer
}

// New creates a client bound to cfg's loop, dispatching through codec
// over tr. Callers must call Connect before issuing requests.
func New(cfg *config.Config, tr transport.ClientTransport, codec wire.Codec) *Client {
	c := &Client{cfg: cfg, codec: codec, tr: tr}
	return c
}

// Connect dials addr and wires the receive/close callbacks that drive the
// pending table.
func (c *Client) Connect(addr string) error {
	if err := c.tr.Connect(addr, c.cfg.ConnectTimeout()); err != nil {
		return err
	}
	c.tr.OnReceive(func(payload []byte) {
		resp, err := c.codec.DecodeResponse(payload)
		if err != nil {
			return
		}
		c.complete(resp.MID, resp)
	})
	c.tr.OnClose(func(err error) {
		code := rpcerr.NotConnected
		c.pending.Range(func(key, value any) bool {
			mid := key.(uint32)
			c.complete(mid, &wire.Response{MID: mid, Status: 1, ErrorCode: int32(code)})
			return true
		})
	})
	return nil
}

// Close tears down the underlying transport.
func (c *Client) Close() error {
	return c.tr.Close()
}

// allocMID picks an unoccupied MID, skipping MIDs already awaiting a
// response. Fails only if the entire non-zero uint32 space is in flight —
// a condition that can never arise in practice given max_concurrent, but
// is handled for completeness.
func (c *Client) allocMID() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.nextMID
	for {
		c.nextMID++
		if c.nextMID == 0 {
			c.nextMID = 1
		}
		if _, occupied := c.pending.Load(c.nextMID); !occupied {
			return c.nextMID, nil
		}
		if c.nextMID == start {
			return 0, rpcerr.New(rpcerr.NoMemory, "no free message id: entire id space in flight")
		}
	}
}

// Call performs one synchronous request/response round trip, enforcing
// max_concurrent backpressure, the configured call deadline, and
// transport-failure retries (never retrying an application-level error
// returned by the handler).
func (c *Client) Call(ctx context.Context, method string, params []byte) ([]byte, error) {
	if c.cfg.MaxConcurrent > 0 {
		if c.inFlight.Load() >= int64(c.cfg.MaxConcurrent) {
			return nil, rpcerr.New(rpcerr.RateLimited, "max_concurrent reached")
		}
		c.inFlight.Add(1)
		defer c.inFlight.Add(-1)
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := c.attempt(ctx, method, params)
		if err == nil {
			return result, nil
		}
		fe, ok := err.(*rpcerr.Error)
		if !ok || fe.Code != rpcerr.NotConnected {
			return nil, err // application-level or non-transport error: never retried
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method string, params []byte) ([]byte, error) {
	mid, err := c.allocMID()
	if err != nil {
		return nil, err
	}

	call := &pendingCall{done: make(chan *wire.Response, 1)}
	c.pending.Store(mid, call)
	defer c.pending.Delete(mid)

	if timeout := c.cfg.CallTimeout(); timeout > 0 {
		call.timer = c.cfg.Loop.AfterFunc(timeout, func() {
			c.complete(mid, &wire.Response{MID: mid, Status: 1, ErrorCode: int32(rpcerr.Timeout)})
		})
	}

	req := &wire.Request{MID: mid, Method: method, Params: params}
	frame, err := c.codec.EncodeRequest(req)
	if err != nil {
		return nil, rpcerr.Wrap(rpcerr.Protocol, err)
	}
	if err := c.tr.Send(frame); err != nil {
		return nil, rpcerr.Wrap(rpcerr.NotConnected, err)
	}

	select {
	case resp := <-call.done:
		if resp.Status != 0 {
			return nil, rpcerr.New(rpcerr.Code(resp.ErrorCode), "rpc error")
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, rpcerr.New(rpcerr.Cancelled, ctx.Err().Error())
	}
}

// complete delivers resp to the pending call registered under mid, if any
// is still waiting. Safe to call more than once for the same mid; only
// the first delivery is observed.
func (c *Client) complete(mid uint32, resp *wire.Response) {
	v, ok := c.pending.LoadAndDelete(mid)
	if !ok {
		return
	}
	call := v.(*pendingCall)
	if call.timer != nil {
		call.timer.Stop()
	}
	select {
	case call.done <- resp:
	default:
	}
}

// CallBatch issues every request in methods/params concurrently and
// collects their results in the same order, so a slow call does not block
// the others — the moral equivalent of the coordination layer's `all`
// applied to a fixed batch of RPC calls instead of arbitrary completions.
func (c *Client) CallBatch(ctx context.Context, methods []string, params [][]byte) ([][]byte, []error) {
	results := make([][]byte, len(methods))
	errs := make([]error, len(methods))
	var wg sync.WaitGroup
	for i := range methods {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Call(ctx, methods[i], params[i])
		}()
	}
	wg.Wait()
	return results, errs
}

// CallAsync is Call's non-blocking twin: it fires the request off a fresh
// goroutine and returns immediately with a *coordination.Completion that
// resolves on c.cfg.Loop once the call settles, letting await/all/any/
// retry_with_backoff compose directly over live RPC calls instead of only
// over manually constructed completions.
func (c *Client) CallAsync(ctx context.Context, method string, params []byte) *coordination.Completion {
	out := coordination.NewCompletion(c.cfg.Loop)
	go func() {
		result, err := c.Call(ctx, method, params)
		out.Resolve(result, err)
	}()
	return out
}
