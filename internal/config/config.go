package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of subnetctl.
type Config struct {
	// HCloudToken authenticates against the Hetzner Cloud API.
	HCloudToken string `env:"HCLOUD_TOKEN,required,notEmpty"`

	Database Database
	Machine  Machine
	Network  Network
	Access   Access
	Stack    Stack
	Timeouts Timeouts

	// CreatorPrivateKey pins the genesis account. Empty generates a fresh
	// account for every deployment.
	CreatorPrivateKey string `env:"SUBNET_CREATOR_PRIVATE_KEY" validate:"omitempty,hexadecimal"`

	PollInterval time.Duration `env:"SUBNET_POLL_INTERVAL" envDefault:"30s" validate:"min=1s"`
	MetricsAddr  string        `env:"SUBNET_METRICS_ADDR" envDefault:":9090"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Database selects the document store backing the subnet repository.
type Database struct {
	Driver string `env:"SUBNET_DATABASE_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite postgres"`
	DSN    string `env:"SUBNET_DATABASE_DSN,required,notEmpty"`
	Table  string `env:"SUBNET_DATABASE_TABLE,required,notEmpty"`
}

// Machine is the fixed instance profile every deployment uses.
type Machine struct {
	Location      string `env:"SUBNET_LOCATION" envDefault:"fsn1" validate:"required"`
	ServerType    string `env:"SUBNET_SERVER_TYPE" envDefault:"cx22" validate:"required"`
	Image         string `env:"SUBNET_IMAGE" envDefault:"ipc-validator" validate:"required"`
	InstanceLabel string `env:"SUBNET_INSTANCE_LABEL" envDefault:"IPC Server"`
}

// Network holds the chain parameters stamped onto every new subnet.
type Network struct {
	RPCPort int    `env:"SUBNET_RPC_PORT" envDefault:"8545" validate:"min=1,max=65535"`
	ChainID uint64 `env:"SUBNET_CHAIN_ID" envDefault:"2194144149880582" validate:"min=1"`
}

// Access controls how the orchestrator reaches the instance over SSH.
type Access struct {
	User string `env:"SUBNET_SSH_USER" envDefault:"root" validate:"required"`
	Port int    `env:"SUBNET_SSH_PORT" envDefault:"22" validate:"min=1,max=65535"`
	// GenerateKey registers a fresh SSH key per deployment instead of using
	// the provider's emailed root password.
	GenerateKey bool `env:"SUBNET_SSH_KEY" envDefault:"true"`
}

// Stack describes the validator container stack on the instance.
type Stack struct {
	LaunchCommand      string   `env:"SUBNET_LAUNCH_COMMAND" envDefault:"./launch-subnet.sh" validate:"required"`
	TmuxSession        string   `env:"SUBNET_TMUX_SESSION" envDefault:"subnet" validate:"required,excludesall= '\""`
	ExpectedContainers []string `env:"SUBNET_EXPECTED_CONTAINERS" envDefault:"ethapi,cometbft,fendermint" envSeparator:"," validate:"min=1,dive,required"`
}

// ConfigurationError reports missing or invalid settings. It is fatal and
// never retried.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, "; "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Load reads .env (if present) into the process environment and parses it.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, toConfigurationError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ConfigurationError{Invalid: []string{err.Error()}}
	}
	ce := &ConfigurationError{}
	for _, fe := range verrs {
		ce.Invalid = append(ce.Invalid, fmt.Sprintf("%s (%s=%v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return ce
}

func toConfigurationError(err error) error {
	ce := &ConfigurationError{}

	var agg env.AggregateError
	if !errors.As(err, &agg) {
		ce.Invalid = append(ce.Invalid, err.Error())
		return ce
	}
	for _, e := range agg.Errors {
		var notSet env.EnvVarIsNotSetError
		var empty env.EmptyEnvVarError
		switch {
		case errors.As(e, &notSet):
			ce.Missing = append(ce.Missing, notSet.Key)
		case errors.As(e, &empty):
			ce.Missing = append(ce.Missing, empty.Key)
		default:
			ce.Invalid = append(ce.Invalid, e.Error())
		}
	}
	return ce
}
