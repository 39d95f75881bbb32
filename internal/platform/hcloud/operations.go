package hcloud

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/util/retry"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// DeleteOperation encapsulates idempotent deletion of any hcloud resource.
//
//	func (c *RealClient) DeleteSSHKey(ctx context.Context, name string) error {
//	    return (&DeleteOperation[*hcloud.SSHKey]{
//	        Op:           OpDeleteSSHKey,
//	        Key:          name,
//	        ResourceType: "ssh key",
//	        Get:          c.client.SSHKey.Get,
//	        Delete:       c.client.SSHKey.Delete,
//	    }).Execute(ctx, c)
//	}
type DeleteOperation[T any] struct {
	Op           string
	Key          string
	ResourceType string

	// Get retrieves the resource by ID or name. A nil resource means gone.
	Get func(ctx context.Context, idOrName string) (T, *hcloud.Response, error)

	// Delete removes the resource.
	Delete func(ctx context.Context, resource T) (*hcloud.Response, error)
}

// Execute performs the delete. It succeeds if the resource doesn't exist and
// retries locked resources with exponential backoff until the delete
// timeout elapses.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	var lastResp *hcloud.Response
	err := retry.Do(ctx, func(ctx context.Context, _ int) error {
		resource, resp, err := op.Get(ctx, op.Key)
		lastResp = resp
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return retry.Fatal(fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Key, err))
		}

		if reflect.ValueOf(resource).IsNil() {
			return nil
		}

		resp, err = op.Delete(ctx, resource)
		lastResp = resp
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Key, err)
		}
		return nil
	},
		retry.WithMaxRetries(client.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(client.timeouts.RetryInitialDelay),
		retry.WithRetryIf(isResourceLocked),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logging.FromContext(ctx).V(1).Info("resource locked, retrying delete",
				"resource", op.ResourceType, "key", op.Key, "attempt", attempt, "delay", delay)
		}))
	if err != nil {
		return newProviderError(op.Op, lastResp, err)
	}
	return nil
}
