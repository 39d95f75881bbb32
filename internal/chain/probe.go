package chain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	methodBlockNumber      = "eth_blockNumber"
	methodChainID          = "eth_chainId"
	methodGetBlockByNumber = "eth_getBlockByNumber"

	// DefaultRecentBlocks is how many blocks RecentBlocks returns when asked for none.
	DefaultRecentBlocks = 5
)

// Probe reads chain state from a JSON-RPC endpoint.
type Probe interface {
	LatestBlockNumber(ctx context.Context, endpoint string) (uint64, error)
	GetBlock(ctx context.Context, endpoint string, number uint64) (*Block, error)
	// RecentBlocks returns up to count blocks ending at the chain head,
	// newest first. It stops early at genesis.
	RecentBlocks(ctx context.Context, endpoint string, count int) ([]*Block, error)
	ChainID(ctx context.Context, endpoint string) (uint64, error)
}

// Client implements Probe with go-ethereum's rpc and ethclient packages.
type Client struct {
	timeout    time.Duration
	httpClient *http.Client
}

var _ Probe = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each probe call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:    10 * time.Second,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dial opens a client for endpoint and bounds ctx by the probe timeout.
func (c *Client) dial(ctx context.Context, endpoint, method string) (*rpc.Client, context.Context, context.CancelFunc, error) {
	if endpoint == "" {
		return nil, nil, nil, &RPCError{Endpoint: endpoint, Method: method, Err: fmt.Errorf("endpoint cannot be empty")}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	rc, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(c.httpClient))
	if err != nil {
		cancel()
		return nil, nil, nil, &RPCError{Endpoint: endpoint, Method: method, Err: err}
	}
	return rc, ctx, cancel, nil
}

// LatestBlockNumber returns the chain head.
func (c *Client) LatestBlockNumber(ctx context.Context, endpoint string) (uint64, error) {
	rc, ctx, cancel, err := c.dial(ctx, endpoint, methodBlockNumber)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer rc.Close()

	n, err := ethclient.NewClient(rc).BlockNumber(ctx)
	if err != nil {
		return 0, &RPCError{Endpoint: endpoint, Method: methodBlockNumber, Err: err}
	}
	return n, nil
}

// ChainID returns the chain ID reported by the endpoint.
func (c *Client) ChainID(ctx context.Context, endpoint string) (uint64, error) {
	rc, ctx, cancel, err := c.dial(ctx, endpoint, methodChainID)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer rc.Close()

	id, err := ethclient.NewClient(rc).ChainID(ctx)
	if err != nil {
		return 0, &RPCError{Endpoint: endpoint, Method: methodChainID, Err: err}
	}
	if !id.IsUint64() {
		return 0, &RPCError{Endpoint: endpoint, Method: methodChainID, Err: fmt.Errorf("chain id %s overflows uint64", id)}
	}
	return id.Uint64(), nil
}

// GetBlock returns the block at number.
func (c *Client) GetBlock(ctx context.Context, endpoint string, number uint64) (*Block, error) {
	rc, ctx, cancel, err := c.dial(ctx, endpoint, methodGetBlockByNumber)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rc.Close()

	return blockByNumber(ctx, rc, endpoint, number)
}

func blockByNumber(ctx context.Context, rc *rpc.Client, endpoint string, number uint64) (*Block, error) {
	var raw *rpcBlock
	if err := rc.CallContext(ctx, &raw, methodGetBlockByNumber, hexutil.EncodeUint64(number), false); err != nil {
		return nil, &RPCError{Endpoint: endpoint, Method: methodGetBlockByNumber, Err: fmt.Errorf("block %d: %w", number, err)}
	}
	if raw == nil {
		return nil, &RPCError{Endpoint: endpoint, Method: methodGetBlockByNumber, Err: fmt.Errorf("%w: %d", ErrBlockNotFound, number)}
	}
	return raw.toBlock(), nil
}

// RecentBlocks fetches the head and then each block below it with its own
// request. Endpoints behind proxies often reject JSON-RPC batches.
// A non-positive count means DefaultRecentBlocks.
func (c *Client) RecentBlocks(ctx context.Context, endpoint string, count int) ([]*Block, error) {
	if count <= 0 {
		count = DefaultRecentBlocks
	}

	rc, ctx, cancel, err := c.dial(ctx, endpoint, methodGetBlockByNumber)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rc.Close()

	head, err := ethclient.NewClient(rc).BlockNumber(ctx)
	if err != nil {
		return nil, &RPCError{Endpoint: endpoint, Method: methodBlockNumber, Err: err}
	}

	if uint64(count) > head+1 {
		count = int(head + 1)
	}

	blocks := make([]*Block, 0, count)
	for i := range count {
		b, err := blockByNumber(ctx, rc, endpoint, head-uint64(i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
