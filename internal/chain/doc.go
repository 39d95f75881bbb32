// Package chain talks to a subnet's Ethereum-compatible JSON-RPC endpoint
// and manages the creator account stamped onto new subnets.
//
// Endpoints are passed per call because a subnet's address is only known
// once its instance is up. Each call dials, performs its requests, and
// closes the client again. All transport and RPC failures are returned as
// [*RPCError], which the orchestrator treats as transient.
package chain
