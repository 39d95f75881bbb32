package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Timeouts bounds individual external calls. None of them bounds the
// lifecycle as a whole: a subnet stuck in a state is retried indefinitely.
type Timeouts struct {
	// Instance and SSH key deletion, including retries on locked resources.
	Delete            time.Duration `env:"HCLOUD_TIMEOUT_DELETE" envDefault:"5m"`
	RetryMaxAttempts  int           `env:"HCLOUD_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryInitialDelay time.Duration `env:"HCLOUD_RETRY_INITIAL_DELAY" envDefault:"1s"`
	// One provider API request.
	ProviderRequest time.Duration `env:"HCLOUD_TIMEOUT_REQUEST" envDefault:"30s"`
	// TCP connect plus SSH handshake.
	SSHDial time.Duration `env:"SUBNET_SSH_DIAL_TIMEOUT" envDefault:"10s"`
	// One remote command, including reading its output.
	SSHCommand time.Duration `env:"SUBNET_SSH_COMMAND_TIMEOUT" envDefault:"2m"`
	// One JSON-RPC round trip.
	RPC time.Duration `env:"SUBNET_RPC_TIMEOUT" envDefault:"10s"`
}

// DefaultTimeouts returns the values used when nothing is configured.
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		Delete:            5 * time.Minute,
		RetryMaxAttempts:  5,
		RetryInitialDelay: 1 * time.Second,
		SSHDial:           10 * time.Second,
		SSHCommand:        2 * time.Minute,
		RPC:               10 * time.Second,
		ProviderRequest:   30 * time.Second,
	}
}

// TestTimeouts returns short timeouts for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		Delete:            5 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 10 * time.Millisecond,
		SSHDial:           2 * time.Second,
		SSHCommand:        5 * time.Second,
		RPC:               2 * time.Second,
		ProviderRequest:   5 * time.Second,
	}
}

// LoadTimeouts loads timeout configuration from environment variables.
// If any variable fails to parse, all defaults are used.
func LoadTimeouts() *Timeouts {
	t, err := env.ParseAs[Timeouts]()
	if err != nil {
		return DefaultTimeouts()
	}
	return &t
}
