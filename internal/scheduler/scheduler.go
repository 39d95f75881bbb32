// Package scheduler drives Advance for the current subnet on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"

	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Advancer performs one lifecycle evaluation of a subnet.
type Advancer interface {
	Advance(ctx context.Context, id string) error
}

// Finder resolves the current subnet. A nil subnet means none is active.
type Finder interface {
	GetMostRecentSubnet(ctx context.Context) (*subnet.Subnet, error)
}

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Scheduler ticks on a fixed interval. Ticks never overlap: a tick that
// fires while the previous one still runs is skipped.
type Scheduler struct {
	advancer Advancer
	finder   Finder
	interval time.Duration
	onError  func(error)

	mu   sync.Mutex
	cron *cron.Cron
	job  cron.Job
	// wg tracks the eager first tick; cron tracks the rest.
	wg sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithErrorHandler is called with every error a tick returns. Advance only
// returns errors that need an operator: invariant violations, configuration
// errors, and unknown ids.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// New creates a Scheduler.
func New(advancer Advancer, finder Finder, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		advancer: advancer,
		finder:   finder,
		interval: interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs one tick right away and then one every interval until Stop.
// ctx is passed to every tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid poll interval %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}

	logger := logging.FromContext(ctx).WithName("scheduler")
	s.job = cron.NewChain(cron.SkipIfStillRunning(cronLogger(logger))).Then(cron.FuncJob(func() {
		if err := s.Tick(ctx); err != nil && s.onError != nil {
			s.onError(err)
		}
	}))

	c := cron.New(cron.WithLogger(cronLogger(logger)))
	if _, err := c.AddJob("@every "+s.interval.String(), s.job); err != nil {
		return fmt.Errorf("failed to schedule advance: %w", err)
	}
	s.cron = c

	logger.Info("scheduler started", "interval", s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
	c.Start()
	return nil
}

// Stop ends scheduling and waits for a running tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
}

// Tick advances the current subnet once. It is a no-op when no subnet is
// active.
func (s *Scheduler) Tick(ctx context.Context) error {
	logger := logging.FromContext(ctx).WithName("scheduler")

	sn, err := s.finder.GetMostRecentSubnet(ctx)
	if err != nil {
		logger.Error(err, "failed to resolve current subnet")
		return nil
	}
	if sn == nil {
		logger.V(1).Info("no active subnet")
		return nil
	}

	if err := s.advancer.Advance(ctx, sn.ID); err != nil {
		logger.Error(err, "advance failed", "subnet", sn.ID, "status", sn.Status)
		return err
	}
	return nil
}

// cronLogger keeps cron's own messages at debug verbosity.
func cronLogger(logger logr.Logger) cron.Logger {
	return cronLogAdapter{logger: logger.V(1)}
}

type cronLogAdapter struct {
	logger logr.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error(err, msg, keysAndValues...)
}
