package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rpcfabric/codec"
	"rpcfabric/config"
	"rpcfabric/evloop"
	"rpcfabric/rpcerr"
	"rpcfabric/transport"
	"rpcfabric/wire"
)

type Args struct {
	A, B int
}

type Reply struct {
	Result int
}

type Arith struct{}

func (a *Arith) Add(args *Args, reply *Reply) error {
	reply.Result = args.A + args.B
	return nil
}

func TestRegisterServiceAndDispatch(t *testing.T) {
	loop := evloop.New()
	defer loop.Stop()

	tr := transport.NewInprocServer(loop)
	cfg := config.New(loop, "inproc://arith")
	svr := New(cfg, tr, codec.Get(wire.CodecTypeJSON))

	if err := svr.RegisterService(&Arith{}); err != nil {
		t.Fatalf("RegisterService: %v", err)
	}
	if err := svr.Start("inproc://arith"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svr.Stop()

	clientLoop := evloop.New()
	defer clientLoop.Stop()
	cli := transport.NewInprocClient(clientLoop)
	responses := make(chan *wire.Response, 1)
	jsonCodec := codec.Get(wire.CodecTypeJSON)
	cli.OnReceive(func(p []byte) {
		resp, err := jsonCodec.DecodeResponse(p)
		if err != nil {
			t.Errorf("DecodeResponse: %v", err)
			return
		}
		responses <- resp
	})
	if err := cli.Connect("inproc://arith", time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer cli.Close()

	params, _ := json.Marshal(&Args{A: 1, B: 2})
	req := &wire.Request{MID: 42, Method: "Arith.Add", Params: params}
	frame, err := jsonCodec.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	if err := cli.Send(frame); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case resp := <-responses:
		if resp.Status != 0 {
			t.Fatalf("unexpected error code %d", resp.ErrorCode)
		}
		var reply Reply
		if err := json.Unmarshal(resp.Result, &reply); err != nil {
			t.Fatalf("Unmarshal reply: %v", err)
		}
		if reply.Result != 3 {
			t.Fatalf("got %d, want 3", reply.Result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no response received")
	}
}

func TestUnknownMethodSynthesizesServiceNotFound(t *testing.T) {
	loop := evloop.New()
	defer loop.Stop()

	tr := transport.NewInprocServer(loop)
	cfg := config.New(loop, "inproc://empty")
	svr := New(cfg, tr, codec.Get(wire.CodecTypeJSON))
	if err := svr.Start("inproc://empty"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svr.Stop()

	clientLoop := evloop.New()
	defer clientLoop.Stop()
	cli := transport.NewInprocClient(clientLoop)
	responses := make(chan *wire.Response, 1)
	jsonCodec := codec.Get(wire.CodecTypeJSON)
	cli.OnReceive(func(p []byte) {
		resp, _ := jsonCodec.DecodeResponse(p)
		responses <- resp
	})
	if err := cli.Connect("inproc://empty", time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer cli.Close()

	req := &wire.Request{MID: 1, Method: "Nothing.Here"}
	frame, _ := jsonCodec.EncodeRequest(req)
	if err := cli.Send(frame); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case resp := <-responses:
		if rpcerr.Code(resp.ErrorCode) != rpcerr.ServiceNotFound {
			t.Fatalf("expected SERVICE_NOT_FOUND, got %d", resp.ErrorCode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no response received")
	}
}

func TestDuplicateRegisterRejected(t *testing.T) {
	loop := evloop.New()
	defer loop.Stop()
	tr := transport.NewInprocServer(loop)
	cfg := config.New(loop, "inproc://dup-server")
	svr := New(cfg, tr, codec.Get(wire.CodecTypeJSON))

	noop := func(ctx context.Context, params []byte) ([]byte, error) { return nil, nil }
	if err := svr.Register("Svc.Method", noop); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := svr.Register("Svc.Method", noop)
	if err == nil {
		t.Fatal("expected ALREADY_EXISTS on duplicate registration")
	}
	if fe, ok := err.(*rpcerr.Error); !ok || fe.Code != rpcerr.AlreadyExists {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestRegisterAfterStartFrozen(t *testing.T) {
	loop := evloop.New()
	defer loop.Stop()
	tr := transport.NewInprocServer(loop)
	cfg := config.New(loop, "inproc://freeze")
	svr := New(cfg, tr, codec.Get(wire.CodecTypeJSON))

	noop := func(ctx context.Context, params []byte) ([]byte, error) { return nil, nil }
	if err := svr.Register("Svc.Before", noop); err != nil {
		t.Fatalf("Register before start: %v", err)
	}
	if err := svr.Start("inproc://freeze"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svr.Stop()

	clientLoop := evloop.New()
	defer clientLoop.Stop()
	cli := transport.NewInprocClient(clientLoop)
	jsonCodec := codec.Get(wire.CodecTypeJSON)
	done := make(chan struct{}, 1)
	cli.OnReceive(func(p []byte) { done <- struct{}{} })
	if err := cli.Connect("inproc://freeze", time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer cli.Close()

	req := &wire.Request{MID: 1, Method: "Svc.Before"}
	frame, _ := jsonCodec.EncodeRequest(req)
	_ = cli.Send(frame)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no response received")
	}

	if err := svr.Register("Svc.After", noop); err == nil {
		t.Fatal("expected registration after serving to be rejected")
	}
}
