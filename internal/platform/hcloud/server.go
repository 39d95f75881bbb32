package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// CreateInstance submits a server create and returns as soon as the API
// accepts it. Readiness is observed later through GetInstance.
func (c *RealClient) CreateInstance(ctx context.Context, req InstanceSpec) (*CreatedInstance, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	opts, err := c.buildServerCreateOpts(ctx, req)
	if err != nil {
		return nil, err
	}

	result, resp, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return nil, newProviderError(OpCreateInstance, resp, err)
	}
	if result.Server == nil {
		return nil, &ProviderError{Op: OpCreateInstance, Message: "create response carried no server"}
	}

	return &CreatedInstance{
		ID:                strconv.FormatInt(result.Server.ID, 10),
		Name:              result.Server.Name,
		DefaultCredential: result.RootPassword,
	}, nil
}

// buildServerCreateOpts resolves all dependencies and builds server creation options.
func (c *RealClient) buildServerCreateOpts(ctx context.Context, req InstanceSpec) (hcloud.ServerCreateOpts, error) {
	serverType, resp, err := c.client.ServerType.Get(ctx, req.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, newProviderError(OpCreateInstance, resp, fmt.Errorf("failed to get server type: %w", err))
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, notFoundError(OpCreateInstance, "server type", req.ServerType)
	}

	image, resp, err := c.client.Image.GetForArchitecture(ctx, req.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, newProviderError(OpCreateInstance, resp, fmt.Errorf("failed to get image: %w", err))
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, notFoundError(OpCreateInstance, "image", req.Image)
	}

	sshKeys, err := c.resolveSSHKeys(ctx, req.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location, err := c.resolveLocation(ctx, req.Location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       req.Name,
		ServerType: serverType,
		Image:      image,
		SSHKeys:    sshKeys,
		Location:   location,
		Labels:     req.Labels,
		PublicNet: &hcloud.ServerCreatePublicNet{
			EnableIPv4: true,
			EnableIPv6: true,
		},
	}, nil
}

func (c *RealClient) resolveSSHKeys(ctx context.Context, keys []string) ([]*hcloud.SSHKey, error) {
	sshKeys := make([]*hcloud.SSHKey, 0, len(keys))
	for _, key := range keys {
		sshKey, resp, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, newProviderError(OpCreateInstance, resp, fmt.Errorf("failed to get ssh key %s: %w", key, err))
		}
		if sshKey == nil {
			return nil, notFoundError(OpCreateInstance, "ssh key", key)
		}
		sshKeys = append(sshKeys, sshKey)
	}
	return sshKeys, nil
}

func (c *RealClient) resolveLocation(ctx context.Context, name string) (*hcloud.Location, error) {
	if name == "" {
		return nil, nil
	}
	location, resp, err := c.client.Location.Get(ctx, name)
	if err != nil {
		return nil, newProviderError(OpCreateInstance, resp, fmt.Errorf("failed to get location: %w", err))
	}
	if location == nil {
		return nil, notFoundError(OpCreateInstance, "location", name)
	}
	return location, nil
}

// GetInstance returns the current state of the instance with the given ID.
// A missing instance is a ProviderError with status 404.
func (c *RealClient) GetInstance(ctx context.Context, id string) (*Instance, error) {
	serverID, err := parseID(OpGetInstance, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	server, resp, err := c.client.Server.GetByID(ctx, serverID)
	if err != nil {
		return nil, newProviderError(OpGetInstance, resp, err)
	}
	if server == nil {
		return nil, notFoundError(OpGetInstance, "instance", id)
	}
	return instanceFromServer(server), nil
}

// DeleteInstance deletes the instance with the given ID. Deleting an
// instance that no longer exists succeeds.
func (c *RealClient) DeleteInstance(ctx context.Context, id string) error {
	if _, err := parseID(OpDeleteInstance, id); err != nil {
		return err
	}
	return (&DeleteOperation[*hcloud.Server]{
		Op:           OpDeleteInstance,
		Key:          id,
		ResourceType: "instance",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			return resp, err
		},
	}).Execute(ctx, c)
}

func parseID(op, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, &ProviderError{Op: op, Code: string(hcloud.ErrorCodeInvalidInput), Message: fmt.Sprintf("invalid instance id %q", id)}
	}
	return n, nil
}

// instanceFromServer maps a server onto the lifecycle and health vocabulary.
func instanceFromServer(server *hcloud.Server) *Instance {
	inst := &Instance{
		ID:             strconv.FormatInt(server.ID, 10),
		Name:           server.Name,
		LifecycleState: lifecycleState(server.Status),
		HealthState:    HealthPending,
		MainIP:         publicIPv4(server),
		Labels:         server.Labels,
	}
	if server.Status == hcloud.ServerStatusRunning && !server.Locked && inst.MainIP != "" {
		inst.HealthState = HealthOK
	}
	return inst
}

func lifecycleState(status hcloud.ServerStatus) LifecycleState {
	switch status {
	case hcloud.ServerStatusRunning:
		return LifecycleActive
	case hcloud.ServerStatusDeleting:
		return LifecycleDeleting
	default:
		return LifecyclePending
	}
}

func publicIPv4(server *hcloud.Server) string {
	ip := server.PublicNet.IPv4.IP
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
