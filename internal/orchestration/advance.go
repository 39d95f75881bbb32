package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/subnetctl/internal/config"
	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/platform/hcloud"
	"github.com/imamik/subnetctl/internal/subnet"
)

// stepFunc evaluates the exit condition of one status and persists the
// transition when it is met. It returns the Advance result label.
type stepFunc func(ctx context.Context, logger logr.Logger, sn *subnet.Subnet) (string, error)

// Advance evaluates the subnet's current status once and performs at most
// one transition.
//
// Failures of the provider, the SSH session, the chain endpoint, or the
// repository are logged and swallowed; the record is left as it was and
// the next call retries. A lost race on the transition write is treated
// the same way. Only invariant violations, configuration errors, and
// unknown ids are returned.
func (o *Orchestrator) Advance(ctx context.Context, id string) error {
	start := o.now()
	logger := logging.FromContext(ctx).WithValues("subnet", id)

	sn, err := o.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return err
		}
		logger.Error(err, "failed to load subnet")
		return nil
	}
	logger = logger.WithValues("status", sn.Status)

	var step stepFunc
	switch sn.Status {
	case subnet.StatusDeploying:
		step = o.advanceDeploying
	case subnet.StatusDeployed:
		step = o.advanceDeployed
	case subnet.StatusLaunching:
		step = o.advanceLaunching
	case subnet.StatusRunning, subnet.StatusDeleted:
		o.recordAdvance(sn.Status, resultNoop, o.now().Sub(start).Seconds())
		return nil
	default:
		o.recordAdvance(sn.Status, resultInvariant, o.now().Sub(start).Seconds())
		return &subnet.InvariantViolation{SubnetID: id, Reason: fmt.Sprintf("unknown status %q", sn.Status)}
	}

	result, err := step(ctx, logger, sn)
	err = o.classify(logger, err, &result)
	o.recordAdvance(sn.Status, result, o.now().Sub(start).Seconds())
	return err
}

// classify applies the error policy of Advance and adjusts result.
func (o *Orchestrator) classify(logger logr.Logger, err error, result *string) error {
	if err == nil {
		return nil
	}
	switch {
	case subnet.IsInvariantViolation(err):
		*result = resultInvariant
		logger.Error(err, "subnet violates lifecycle invariant")
		return err
	case config.IsConfigurationError(err):
		*result = resultError
		return err
	case errors.Is(err, subnet.ErrConflict):
		*result = resultConflict
		logger.Info("subnet advanced concurrently, skipping", "reason", err.Error())
		return nil
	case errors.Is(err, subnet.ErrNotFound):
		*result = resultError
		return err
	default:
		*result = resultError
		logger.Error(err, "advance step failed, retrying on next call", "transient", subnet.IsTransient(err))
		return nil
	}
}

// transition persists u, a guarded update built with subnet.Transition.
func (o *Orchestrator) transition(ctx context.Context, logger logr.Logger, sn *subnet.Subnet, u subnet.Update) (string, error) {
	from, to := u.IfStatus, *u.Status
	if err := subnet.CheckTransition(sn.ID, from, to); err != nil {
		return resultInvariant, err
	}
	if err := o.repo.UpdateFields(ctx, sn.ID, u); err != nil {
		return resultError, err
	}
	o.recordTransition(from, to)
	logger.Info("subnet advanced", "from", from, "to", to)
	return resultTransitioned, nil
}

// advanceDeploying waits for the provider to report the instance active
// and healthy, then records its address.
func (o *Orchestrator) advanceDeploying(ctx context.Context, logger logr.Logger, sn *subnet.Subnet) (string, error) {
	if sn.Server.ProviderInstanceID == "" {
		return resultInvariant, &subnet.InvariantViolation{SubnetID: sn.ID, Reason: "DEPLOYING subnet has no provider instance id"}
	}

	var inst *hcloud.Instance
	err := o.callProvider(hcloud.OpGetInstance, func() error {
		var gerr error
		inst, gerr = o.provider.GetInstance(ctx, sn.Server.ProviderInstanceID)
		return gerr
	})
	if err != nil {
		return resultError, err
	}

	if !inst.Ready() {
		logger.V(1).Info("instance not ready",
			"instance", inst.ID,
			"lifecycle", inst.LifecycleState,
			"health", inst.HealthState,
		)
		return resultWaiting, nil
	}

	u := subnet.Transition(sn.Status, subnet.StatusDeployed).WithServerIP(inst.MainIP, sn.Validators)
	return o.transition(ctx, logger.WithValues("host", inst.MainIP), sn, u)
}

// advanceDeployed fires the detached launch command. Any output means the
// shell ran it.
func (o *Orchestrator) advanceDeployed(ctx context.Context, logger logr.Logger, sn *subnet.Subnet) (string, error) {
	if err := sn.RequireSSHAccess(); err != nil {
		return resultInvariant, err
	}
	logger = logger.WithValues("host", sn.Server.IP)

	cmd := LaunchCommand(o.cfg.Stack.TmuxSession, o.cfg.Stack.LaunchCommand)
	out, err := o.executor.FirstOutput(ctx, o.sshTarget(sn), cmd)
	if err != nil {
		return resultError, err
	}
	if out == "" {
		logger.V(1).Info("launch command produced no output")
		return resultWaiting, nil
	}

	return o.transition(ctx, logger, sn, subnet.Transition(sn.Status, subnet.StatusLaunching))
}

// advanceLaunching lists the containers on the instance and waits until
// every expected one is running.
func (o *Orchestrator) advanceLaunching(ctx context.Context, logger logr.Logger, sn *subnet.Subnet) (string, error) {
	if err := sn.RequireSSHAccess(); err != nil {
		return resultInvariant, err
	}
	logger = logger.WithValues("host", sn.Server.IP)

	res, err := o.executor.Run(ctx, o.sshTarget(sn), ContainerListCommand)
	if err != nil {
		return resultError, err
	}
	if !res.Success() {
		logger.Info("container listing failed", "exitStatus", res.ExitStatus, "stderr", res.Stderr)
		return resultWaiting, nil
	}

	containers, err := ParseContainers(res.Stdout)
	if err != nil {
		logger.Info("container listing unreadable", "error", err.Error())
		return resultWaiting, nil
	}

	if missing := MissingContainers(containers, o.cfg.Stack.ExpectedContainers); len(missing) > 0 {
		logger.V(1).Info("containers not running yet", "missing", missing, "seen", len(containers))
		return resultWaiting, nil
	}

	return o.transition(ctx, logger, sn, subnet.Transition(sn.Status, subnet.StatusRunning))
}
