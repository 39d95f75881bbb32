package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/util/retry"
)

const (
	defaultPort           = 22
	defaultDialTimeout    = 10 * time.Second
	defaultCommandTimeout = 2 * time.Minute
	defaultMaxRetries     = 2
	defaultRetryDelay     = 2 * time.Second
	defaultMaxDelay       = 10 * time.Second
	firstOutputBufferSize = 32 * 1024
)

// Target identifies a remote host and how to log in.
type Target struct {
	Host string
	// Port defaults to 22.
	Port int
	User string
	// Credential is a PEM-encoded private key or a password.
	Credential string
}

// Addr returns host:port.
func (t Target) Addr() string {
	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitStatus == 0
}

// Executor runs commands on remote hosts.
type Executor interface {
	// Run executes command and waits for it to exit.
	Run(ctx context.Context, target Target, command string) (*Result, error)
	// FirstOutput starts command and returns the first chunk of stdout
	// without waiting for the command to exit.
	FirstOutput(ctx context.Context, target Target, command string) (string, error)
}

// Config holds SSH client configuration.
type Config struct {
	// DialTimeout bounds TCP connect plus handshake. Zero uses 10s.
	DialTimeout time.Duration
	// CommandTimeout bounds a single Run or FirstOutput. Zero uses 2m.
	CommandTimeout time.Duration
	// MaxRetries is the number of extra dial attempts. Negative disables retries.
	MaxRetries int
	// RetryDelay is the initial delay between dial attempts. Zero uses 2s.
	RetryDelay time.Duration
	// HostKeyCallback handles host key verification. Nil accepts any key.
	HostKeyCallback ssh.HostKeyCallback
}

// Client implements Executor over golang.org/x/crypto/ssh.
type Client struct {
	config *Config
}

var _ Executor = (*Client)(nil)

// NewClient creates a Client. A nil cfg uses defaults.
func NewClient(cfg *Config) *Client {
	var configCopy Config
	if cfg != nil {
		configCopy = *cfg
	}

	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.CommandTimeout == 0 {
		configCopy.CommandTimeout = defaultCommandTimeout
	}
	switch {
	case configCopy.MaxRetries == 0:
		configCopy.MaxRetries = defaultMaxRetries
	case configCopy.MaxRetries < 0:
		configCopy.MaxRetries = 0
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // instances are ephemeral
	}

	return &Client{config: &configCopy}
}

// Run executes command on target and collects stdout, stderr, and the exit
// status. A non-zero exit is not an error.
func (c *Client) Run(ctx context.Context, target Target, command string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.CommandTimeout)
	defer cancel()

	client, err := c.connect(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()
	stop := closeOnDone(ctx, client)
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return nil, &ExecutionError{Host: target.Host, Command: command, Err: fmt.Errorf("failed to open session: %w", err)}
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	result := &Result{}
	if err := session.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &ExecutionError{Host: target.Host, Command: command, Err: contextError(ctx, err)}
		}
		result.ExitStatus = exitErr.ExitStatus()
	}
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result, nil
}

// FirstOutput starts command on target and returns as soon as it writes to
// stdout. The session is closed afterwards, which usually terminates the
// command; use it for commands that detach their real work. If the command
// exits without writing, its exit status decides between an empty string
// and an ExecutionError.
func (c *Client) FirstOutput(ctx context.Context, target Target, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.CommandTimeout)
	defer cancel()

	client, err := c.connect(ctx, target)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()
	stop := closeOnDone(ctx, client)
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return "", &ExecutionError{Host: target.Host, Command: command, Err: fmt.Errorf("failed to open session: %w", err)}
	}
	defer func() { _ = session.Close() }()

	stdout, err := session.StdoutPipe()
	if err != nil {
		return "", &ExecutionError{Host: target.Host, Command: command, Err: err}
	}
	session.Stderr = io.Discard

	if err := session.Start(command); err != nil {
		return "", &ExecutionError{Host: target.Host, Command: command, Err: err}
	}

	buf := make([]byte, firstOutputBufferSize)
	for {
		n, readErr := stdout.Read(buf)
		if n > 0 {
			return string(buf[:n]), nil
		}
		if readErr == nil {
			continue
		}
		if !errors.Is(readErr, io.EOF) {
			return "", &ExecutionError{Host: target.Host, Command: command, Err: contextError(ctx, readErr)}
		}
		break
	}

	if err := session.Wait(); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecutionError{Host: target.Host, Command: command, ExitStatus: exitErr.ExitStatus(), Err: err}
		}
		return "", &ExecutionError{Host: target.Host, Command: command, Err: contextError(ctx, err)}
	}
	return "", nil
}

// connect dials target, retrying with exponential backoff.
func (c *Client) connect(ctx context.Context, target Target) (*ssh.Client, error) {
	if target.Host == "" {
		return nil, &ConnectionError{Addr: target.Addr(), Err: errors.New("target host cannot be empty")}
	}
	if target.User == "" {
		return nil, &ConnectionError{Addr: target.Addr(), Err: errors.New("target user cannot be empty")}
	}

	auth, err := authMethods(target.Credential)
	if err != nil {
		return nil, &ConnectionError{Addr: target.Addr(), Err: err}
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}
	addr := target.Addr()

	var client *ssh.Client
	err = retry.Do(ctx, func(ctx context.Context, _ int) error {
		var dialErr error
		client, dialErr = c.dial(ctx, addr, config)
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithRetryIf(retryableDial),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logging.FromContext(ctx).V(1).Info("ssh dial failed, retrying",
				"addr", addr, "attempt", attempt, "delay", delay, "error", err.Error())
		}),
	)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}
	return client, nil
}

// retryableDial reports whether another dial attempt can succeed. A server
// that rejected the credentials will reject them again.
func retryableDial(err error) bool {
	return !strings.Contains(err.Error(), "unable to authenticate")
}

// dial performs one context-aware connect and handshake.
func (c *Client) dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// authMethods picks public key auth for PEM credentials and password auth
// otherwise. Keyboard-interactive answers every prompt with the password.
func authMethods(credential string) ([]ssh.AuthMethod, error) {
	if credential == "" {
		return nil, errors.New("credential cannot be empty")
	}
	if strings.HasPrefix(strings.TrimSpace(credential), "-----BEGIN") {
		signer, err := ssh.ParsePrivateKey([]byte(credential))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{
		ssh.Password(credential),
		ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = credential
			}
			return answers, nil
		}),
	}, nil
}

// closeOnDone closes client when ctx ends so blocked session calls return.
func closeOnDone(ctx context.Context, client io.Closer) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
