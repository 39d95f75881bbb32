package chain

import (
	"errors"
	"fmt"
)

// ErrBlockNotFound is wrapped when the endpoint answers null for a block.
var ErrBlockNotFound = errors.New("block not found")

// RPCError reports a failed JSON-RPC call.
type RPCError struct {
	Endpoint string
	Method   string
	Err      error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s on %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// Transient reports true: a subnet's RPC endpoint comes up some time after launch.
func (e *RPCError) Transient() bool { return true }
