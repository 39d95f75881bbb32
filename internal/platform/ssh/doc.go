// Package ssh is the remote executor used to launch and inspect the
// validator stack on a subnet instance.
//
// Every call opens its own connection, runs one command, and closes it.
// Targets authenticate with either an OpenSSH/PEM private key or a
// password; the credential's shape decides which. A non-zero exit status is
// reported in the [Result], not as an error. Failures to connect or to run
// the command at all are [*ConnectionError] and [*ExecutionError], both
// transient from the orchestrator's point of view.
//
// Host keys are not verified by default: instances are ephemeral and their
// keys are unknown until first boot. Set Config.HostKeyCallback to pin them.
package ssh
