// Package config holds the configuration bundle recognized by both the
// client and the server (§6 of the spec). It follows the teacher's
// pattern of plain Go constructors over a tag-driven bundle: a Config
// literal built with functional options.
package config

import (
	"strings"
	"time"

	"rpcfabric/evloop"
)

// Scheme is the transport scheme inferred from (or overriding) the address.
type Scheme int

const (
	SchemeAuto Scheme = iota
	SchemeTCP
	SchemeIPC
	SchemeInproc
)

// CommType is present for forward compatibility; only SERVER_CLIENT is
// meaningful today.
type CommType int

const (
	CommServerClient CommType = iota
)

// PerformanceMode is a tuning hint for buffer sizes and batching thresholds.
type PerformanceMode int

const (
	HighThroughput PerformanceMode = iota
	LowLatency
)

// Allocator is the pluggable allocation interface carried in Config. The
// default is a thin passthrough over Go's GC. The core packages do not call
// it: their allocations use make/append directly, whatever Allocator is
// configured.
type Allocator interface {
	Allocate(n int) []byte
	Free([]byte)
}

type defaultAllocator struct{}

func (defaultAllocator) Allocate(n int) []byte { return make([]byte, n) }
func (defaultAllocator) Free([]byte)           {}

// DefaultAllocator is the no-op passthrough allocator used when none is
// configured.
var DefaultAllocator Allocator = defaultAllocator{}

// Config is the configuration bundle shared by client and server.
type Config struct {
	Loop             *evloop.Loop
	Address          string
	Transport        Scheme
	CommType         CommType
	PerformanceMode  PerformanceMode
	MaxConcurrent    int // 0 = unbounded
	MaxRetries       int
	ConnectTimeoutMs int
	CallTimeoutMs    int // 0 = none
	Allocator        Allocator
}

// Option mutates a Config under construction.
type Option func(*Config)

// New builds a Config from the required loop and address plus any options,
// applying the §6 defaults (performance_mode=HIGH_THROUGHPUT, max_retries=0,
// connect_timeout_ms=5000, call_timeout_ms=none).
func New(loop *evloop.Loop, address string, opts ...Option) *Config {
	c := &Config{
		Loop:             loop,
		Address:          address,
		Transport:        SchemeAuto,
		CommType:         CommServerClient,
		PerformanceMode:  HighThroughput,
		ConnectTimeoutMs: 5000,
		Allocator:        DefaultAllocator,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Transport == SchemeAuto {
		c.Transport = InferScheme(address)
	}
	return c
}

func WithTransport(s Scheme) Option        { return func(c *Config) { c.Transport = s } }
func WithPerformanceMode(m PerformanceMode) Option {
	return func(c *Config) { c.PerformanceMode = m }
}
func WithMaxConcurrent(n int) Option  { return func(c *Config) { c.MaxConcurrent = n } }
func WithMaxRetries(n int) Option     { return func(c *Config) { c.MaxRetries = n } }
func WithConnectTimeoutMs(ms int) Option { return func(c *Config) { c.ConnectTimeoutMs = ms } }
func WithCallTimeoutMs(ms int) Option { return func(c *Config) { c.CallTimeoutMs = ms } }
func WithAllocator(a Allocator) Option { return func(c *Config) { c.Allocator = a } }

// ConnectTimeout/CallTimeout return the configured durations, 0 meaning
// "no deadline" for CallTimeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// InferScheme derives the transport scheme from a URL-like address
// (tcp://, ipc://, inproc://), defaulting to TCP when unrecognized.
func InferScheme(addr string) Scheme {
	switch {
	case strings.HasPrefix(addr, "tcp://"):
		return SchemeTCP
	case strings.HasPrefix(addr, "ipc://"):
		return SchemeIPC
	case strings.HasPrefix(addr, "inproc://"):
		return SchemeInproc
	default:
		return SchemeTCP
	}
}
