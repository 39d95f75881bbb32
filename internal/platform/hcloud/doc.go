// Package hcloud is the provider client for subnet instances. It wraps the
// Hetzner Cloud API and exposes the lifecycle and health vocabulary the
// orchestrator works in.
//
// # Operations
//
//   - CreateInstance resolves server type, image, location, and SSH keys
//     and submits a server create without waiting for the action.
//   - GetInstance maps the server status onto [LifecycleActive],
//     [LifecyclePending], or [LifecycleDeleting] and reports the health as
//     [HealthOK] once the server is running, unlocked, and has a public IPv4.
//   - DeleteInstance and DeleteSSHKey are idempotent. Locked resources are
//     retried with exponential backoff bounded by the delete timeout.
//
// Every error leaving this package is a [*ProviderError] carrying the
// operation, HTTP status, and API error code. Apart from the delete paths
// nothing here retries: the orchestrator's next poll is the retry.
package hcloud
