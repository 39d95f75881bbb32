// Package orchestration drives a subnet through its provisioning lifecycle.
//
// The Orchestrator coordinates the cloud provider, the remote executor, and
// the chain probe around a single persisted subnet record. Every Advance
// call evaluates the current status once and performs at most one
// transition:
//
//	DEPLOYING  -> DEPLOYED   provider reports the instance active and healthy
//	DEPLOYED   -> LAUNCHING  the detached launch command printed output
//	LAUNCHING  -> RUNNING    all expected containers are running
//
// DELETED is reached only through Delete. RUNNING and DELETED are fixed
// points for Advance.
//
// # Usage
//
//	orch := orchestration.New(cfg, store, provider, executor, probe)
//	sn, err := orch.Deploy(ctx, "my subnet")
//	...
//	err = orch.Advance(ctx, sn.ID) // call on a fixed interval
//
// Advance is idempotent and safe to call concurrently. Provider, SSH, and
// RPC failures are logged and swallowed so the next call retries them;
// only invariant violations, configuration errors, and unknown ids are
// returned.
package orchestration
