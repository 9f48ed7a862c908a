package transport

import "rpcfabric/evloop"

// NewTCPClient returns a ClientTransport that dials addresses of the form
// tcp://host:port. Frame boundaries are recovered from the TCP byte stream
// with frame.ExtractCopy, since no backing buffer is shared with the OS
// socket read.
func NewTCPClient(loop *evloop.Loop) ClientTransport {
	return newStreamClientTransport("tcp", loop)
}

// NewTCPServer returns a ServerTransport that listens on tcp://host:port.
func NewTCPServer(loop *evloop.Loop) ServerTransport {
	return newStreamServerTransport("tcp", loop)
}
