package transport

import (
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// Transport defines the interface for communication methods
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}

// Compile-time check
var _ Transport = (*StdioTransport)(nil)
