// Command fabrictool is a thin demo/benchmark CLI over the fabric — an
// external collaborator the core never imports, the way the teacher kept
// its own example wiring out of the library packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"rpcfabric/client"
	"rpcfabric/codec"
	"rpcfabric/config"
	"rpcfabric/evloop"
	"rpcfabric/server"
	"rpcfabric/transport"
	"rpcfabric/wire"
)

func main() {
	mode := flag.String("mode", "echo", "demo to run: echo, chain")
	addr := flag.String("addr", "inproc://fabrictool", "address to serve/dial")
	n := flag.Int("n", 1, "number of calls to make")
	flag.Parse()

	switch *mode {
	case "echo":
		runEcho(*addr, *n)
	case "chain":
		runChain(*addr)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runEcho(addr string, n int) {
	serverLoop := evloop.New()
	defer serverLoop.Stop()
	tr := transport.NewInprocServer(serverLoop)
	svr := server.New(config.New(serverLoop, addr), tr, codec.Get(wire.CodecTypeBinary))
	_ = svr.Register("echo", func(ctx context.Context, params []byte) ([]byte, error) {
		return params, nil
	})
	if err := svr.Start(addr); err != nil {
		log.Fatalf("Start: %v", err)
	}
	defer svr.Stop()

	clientLoop := evloop.New()
	defer clientLoop.Stop()
	cli := client.New(config.New(clientLoop, addr), transport.NewInprocClient(clientLoop), codec.Get(wire.CodecTypeBinary))
	if err := cli.Connect(addr); err != nil {
		log.Fatalf("Connect: %v", err)
	}
	defer cli.Close()

	start := time.Now()
	for i := 0; i < n; i++ {
		if _, err := cli.Call(context.Background(), "echo", []byte("ping")); err != nil {
			log.Fatalf("Call: %v", err)
		}
	}
	fmt.Printf("%d calls in %s\n", n, time.Since(start))
}

func runChain(addr string) {
	serverLoop := evloop.New()
	defer serverLoop.Stop()
	tr := transport.NewInprocServer(serverLoop)
	svr := server.New(config.New(serverLoop, addr), tr, codec.Get(wire.CodecTypeBinary))
	_ = svr.Register("get_user", func(ctx context.Context, params []byte) ([]byte, error) {
		return []byte("alice"), nil
	})
	_ = svr.Register("get_user_posts", func(ctx context.Context, params []byte) ([]byte, error) {
		return []byte("post1,post2,post3"), nil
	})
	_ = svr.Register("count_posts", func(ctx context.Context, params []byte) ([]byte, error) {
		return []byte{3}, nil
	})
	if err := svr.Start(addr); err != nil {
		log.Fatalf("Start: %v", err)
	}
	defer svr.Stop()

	clientLoop := evloop.New()
	defer clientLoop.Stop()
	cli := client.New(config.New(clientLoop, addr), transport.NewInprocClient(clientLoop), codec.Get(wire.CodecTypeBinary))
	if err := cli.Connect(addr); err != nil {
		log.Fatalf("Connect: %v", err)
	}
	defer cli.Close()

	ctx := context.Background()
	name, err := cli.Call(ctx, "get_user", []byte{123})
	if err != nil {
		log.Fatalf("get_user: %v", err)
	}
	posts, err := cli.Call(ctx, "get_user_posts", name)
	if err != nil {
		log.Fatalf("get_user_posts: %v", err)
	}
	count, err := cli.Call(ctx, "count_posts", posts)
	if err != nil {
		log.Fatalf("count_posts: %v", err)
	}
	fmt.Printf("user %s has %d posts\n", name, count[0])
}
