// Package subnet defines the persisted Subnet record and its lifecycle.
//
// A subnet moves forward through DEPLOYING -> DEPLOYED -> LAUNCHING -> RUNNING
// and may jump to DELETED from any non-terminal state. Transition legality
// lives here so that the orchestrator and the repository agree on it.
package subnet
