package orchestration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/imamik/subnetctl/internal/chain"
	"github.com/imamik/subnetctl/internal/platform/hcloud"
	"github.com/imamik/subnetctl/internal/platform/ssh"
	"github.com/imamik/subnetctl/internal/subnet"
)

// MockProvider is a mock implementation of hcloud.Provider.
type MockProvider struct {
	mu sync.Mutex

	CreateInstanceFunc func(ctx context.Context, req hcloud.InstanceSpec) (*hcloud.CreatedInstance, error)
	GetInstanceFunc    func(ctx context.Context, id string) (*hcloud.Instance, error)
	DeleteInstanceFunc func(ctx context.Context, id string) error
	CreateSSHKeyFunc   func(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
	DeleteSSHKeyFunc   func(ctx context.Context, name string) error

	CreateInstanceCalls []hcloud.InstanceSpec
	GetInstanceCalls    []string
	DeleteInstanceCalls []string
	CreateSSHKeyCalls   []CreateSSHKeyCall
	DeleteSSHKeyCalls   []string
}

// CreateSSHKeyCall tracks arguments to CreateSSHKey.
type CreateSSHKeyCall struct {
	Name      string
	PublicKey string
	Labels    map[string]string
}

func (m *MockProvider) CreateInstance(ctx context.Context, req hcloud.InstanceSpec) (*hcloud.CreatedInstance, error) {
	m.mu.Lock()
	m.CreateInstanceCalls = append(m.CreateInstanceCalls, req)
	m.mu.Unlock()

	if m.CreateInstanceFunc != nil {
		return m.CreateInstanceFunc(ctx, req)
	}
	return &hcloud.CreatedInstance{ID: "i-1", Name: req.Name}, nil
}

func (m *MockProvider) GetInstance(ctx context.Context, id string) (*hcloud.Instance, error) {
	m.mu.Lock()
	m.GetInstanceCalls = append(m.GetInstanceCalls, id)
	m.mu.Unlock()

	if m.GetInstanceFunc != nil {
		return m.GetInstanceFunc(ctx, id)
	}
	return &hcloud.Instance{ID: id, LifecycleState: hcloud.LifecyclePending, HealthState: hcloud.HealthPending}, nil
}

func (m *MockProvider) DeleteInstance(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteInstanceCalls = append(m.DeleteInstanceCalls, id)
	m.mu.Unlock()

	if m.DeleteInstanceFunc != nil {
		return m.DeleteInstanceFunc(ctx, id)
	}
	return nil
}

func (m *MockProvider) CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error) {
	m.mu.Lock()
	m.CreateSSHKeyCalls = append(m.CreateSSHKeyCalls, CreateSSHKeyCall{Name: name, PublicKey: publicKey, Labels: labels})
	m.mu.Unlock()

	if m.CreateSSHKeyFunc != nil {
		return m.CreateSSHKeyFunc(ctx, name, publicKey, labels)
	}
	return "100", nil
}

func (m *MockProvider) DeleteSSHKey(ctx context.Context, name string) error {
	m.mu.Lock()
	m.DeleteSSHKeyCalls = append(m.DeleteSSHKeyCalls, name)
	m.mu.Unlock()

	if m.DeleteSSHKeyFunc != nil {
		return m.DeleteSSHKeyFunc(ctx, name)
	}
	return nil
}

// readyInstance returns a GetInstanceFunc reporting an active, healthy instance.
func readyInstance(ip string) func(context.Context, string) (*hcloud.Instance, error) {
	return func(_ context.Context, id string) (*hcloud.Instance, error) {
		return &hcloud.Instance{
			ID:             id,
			LifecycleState: hcloud.LifecycleActive,
			HealthState:    hcloud.HealthOK,
			MainIP:         ip,
		}, nil
	}
}

// MockExecutor is a mock implementation of ssh.Executor.
type MockExecutor struct {
	mu sync.Mutex

	RunFunc         func(ctx context.Context, target ssh.Target, command string) (*ssh.Result, error)
	FirstOutputFunc func(ctx context.Context, target ssh.Target, command string) (string, error)

	RunCalls         []ExecCall
	FirstOutputCalls []ExecCall
}

// ExecCall tracks arguments to Run and FirstOutput.
type ExecCall struct {
	Target  ssh.Target
	Command string
}

func (m *MockExecutor) Run(ctx context.Context, target ssh.Target, command string) (*ssh.Result, error) {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, ExecCall{Target: target, Command: command})
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, target, command)
	}
	return &ssh.Result{}, nil
}

func (m *MockExecutor) FirstOutput(ctx context.Context, target ssh.Target, command string) (string, error) {
	m.mu.Lock()
	m.FirstOutputCalls = append(m.FirstOutputCalls, ExecCall{Target: target, Command: command})
	m.mu.Unlock()

	if m.FirstOutputFunc != nil {
		return m.FirstOutputFunc(ctx, target, command)
	}
	return "launched\n", nil
}

func (m *MockExecutor) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RunCalls) + len(m.FirstOutputCalls)
}

// containerListing returns a RunFunc answering with the given stdout.
func containerListing(stdout string) func(context.Context, ssh.Target, string) (*ssh.Result, error) {
	return func(context.Context, ssh.Target, string) (*ssh.Result, error) {
		return &ssh.Result{Stdout: stdout}, nil
	}
}

const allRunning = `{"ID":"a1","Names":"subnet-ethapi-1","State":"running","Status":"Up 2 minutes"}
{"ID":"b2","Names":"subnet-cometbft-1","State":"running","Status":"Up 2 minutes"}
{"ID":"c3","Names":"subnet-fendermint-1","State":"running","Status":"Up 2 minutes"}
`

// MockProbe is a mock implementation of chain.Probe.
type MockProbe struct {
	LatestBlockNumberFunc func(ctx context.Context, endpoint string) (uint64, error)
	GetBlockFunc          func(ctx context.Context, endpoint string, number uint64) (*chain.Block, error)
	RecentBlocksFunc      func(ctx context.Context, endpoint string, count int) ([]*chain.Block, error)
	ChainIDFunc           func(ctx context.Context, endpoint string) (uint64, error)

	mu        sync.Mutex
	Endpoints []string
}

func (m *MockProbe) record(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Endpoints = append(m.Endpoints, endpoint)
}

func (m *MockProbe) LatestBlockNumber(ctx context.Context, endpoint string) (uint64, error) {
	m.record(endpoint)
	if m.LatestBlockNumberFunc != nil {
		return m.LatestBlockNumberFunc(ctx, endpoint)
	}
	return 0, nil
}

func (m *MockProbe) GetBlock(ctx context.Context, endpoint string, number uint64) (*chain.Block, error) {
	m.record(endpoint)
	if m.GetBlockFunc != nil {
		return m.GetBlockFunc(ctx, endpoint, number)
	}
	return &chain.Block{Number: number}, nil
}

func (m *MockProbe) RecentBlocks(ctx context.Context, endpoint string, count int) ([]*chain.Block, error) {
	m.record(endpoint)
	if m.RecentBlocksFunc != nil {
		return m.RecentBlocksFunc(ctx, endpoint, count)
	}
	return nil, nil
}

func (m *MockProbe) ChainID(ctx context.Context, endpoint string) (uint64, error) {
	m.record(endpoint)
	if m.ChainIDFunc != nil {
		return m.ChainIDFunc(ctx, endpoint)
	}
	return 0, nil
}

// memoryRepository is an in-memory subnet.Repository with the same partial
// and guarded update semantics as the SQL store.
type memoryRepository struct {
	mu      sync.Mutex
	seq     int
	records map[string]*subnet.Subnet

	InsertErr   error
	FindErr     error
	UpdateErr   error
	UpdateCalls []subnet.Update
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*subnet.Subnet{}}
}

func cloneSubnet(s *subnet.Subnet) *subnet.Subnet {
	c := *s
	c.Validators = append([]subnet.Validator{}, s.Validators...)
	return &c
}

func (r *memoryRepository) Insert(_ context.Context, s *subnet.Subnet) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return "", r.InsertErr
	}
	r.seq++
	if s.ID == "" {
		s.ID = fmt.Sprintf("subnet-%d", r.seq)
	}
	if s.CreatedTime.IsZero() {
		s.CreatedTime = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	}
	r.records[s.ID] = cloneSubnet(s)
	return s.ID, nil
}

// put stores s as-is, for seeding tests.
func (r *memoryRepository) put(s *subnet.Subnet) *subnet.Subnet {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if s.CreatedTime.IsZero() {
		s.CreatedTime = time.Date(2024, 1, 1, 0, 0, r.seq, 0, time.UTC)
	}
	r.records[s.ID] = cloneSubnet(s)
	return s
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*subnet.Subnet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	s, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", subnet.ErrNotFound, id)
	}
	return cloneSubnet(s), nil
}

func (r *memoryRepository) FindMostRecentActive(ctx context.Context) (*subnet.Subnet, error) {
	all, err := r.List(ctx, false, 1)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, subnet.ErrNotFound
	}
	return all[0], nil
}

func (r *memoryRepository) List(_ context.Context, includeDeleted bool, limit int) ([]*subnet.Subnet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	var out []*subnet.Subnet
	for _, s := range r.records {
		if !includeDeleted && s.Status == subnet.StatusDeleted {
			continue
		}
		out = append(out, cloneSubnet(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedTime.Equal(out[j].CreatedTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedTime.After(out[j].CreatedTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) UpdateFields(_ context.Context, id string, u subnet.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls = append(r.UpdateCalls, u)
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	s, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", subnet.ErrNotFound, id)
	}
	if u.IfStatus != "" && s.Status != u.IfStatus {
		return fmt.Errorf("%w: subnet %s is %s, expected %s", subnet.ErrConflict, id, s.Status, u.IfStatus)
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.ServerIP != nil {
		s.Server.IP = *u.ServerIP
	}
	if u.Validators != nil {
		s.Validators = append([]subnet.Validator{}, u.Validators...)
	}
	return nil
}

func (r *memoryRepository) updates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.UpdateCalls)
}

var _ subnet.Repository = (*memoryRepository)(nil)
