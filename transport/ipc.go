package transport

import "rpcfabric/evloop"

// NewIPCClient returns a ClientTransport that dials a Unix domain socket
// named by an ipc://path address. Identical wire behavior to the TCP
// transport; only the dial/listen network differs.
func NewIPCClient(loop *evloop.Loop) ClientTransport {
	return newStreamClientTransport("unix", loop)
}

// NewIPCServer returns a ServerTransport that listens on a Unix domain
// socket named by an ipc://path address. The socket path is not removed on
// Close; callers that want to rebind the same path should unlink it first.
func NewIPCServer(loop *evloop.Loop) ServerTransport {
	return newStreamServerTransport("unix", loop)
}
