package chain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Block is the subset of a block the operator cares about.
type Block struct {
	Number     uint64         `json:"number" yaml:"number"`
	Hash       common.Hash    `json:"hash" yaml:"hash"`
	ParentHash common.Hash    `json:"parentHash" yaml:"parentHash"`
	Timestamp  uint64         `json:"timestamp" yaml:"timestamp"`
	Miner      common.Address `json:"miner" yaml:"miner"`
	GasUsed    uint64         `json:"gasUsed" yaml:"gasUsed"`
	GasLimit   uint64         `json:"gasLimit" yaml:"gasLimit"`
	TxCount    int            `json:"txCount" yaml:"txCount"`
}

// Time returns the block timestamp as UTC time.
func (b *Block) Time() time.Time {
	return time.Unix(int64(b.Timestamp), 0).UTC()
}

// rpcBlock decodes eth_getBlockByNumber with transaction hashes only.
// CometBFT-backed endpoints omit header fields that types.Header requires.
type rpcBlock struct {
	Number       hexutil.Uint64 `json:"number"`
	Hash         common.Hash    `json:"hash"`
	ParentHash   common.Hash    `json:"parentHash"`
	Timestamp    hexutil.Uint64 `json:"timestamp"`
	Miner        common.Address `json:"miner"`
	GasUsed      hexutil.Uint64 `json:"gasUsed"`
	GasLimit     hexutil.Uint64 `json:"gasLimit"`
	Transactions []common.Hash  `json:"transactions"`
}

func (b *rpcBlock) toBlock() *Block {
	return &Block{
		Number:     uint64(b.Number),
		Hash:       b.Hash,
		ParentHash: b.ParentHash,
		Timestamp:  uint64(b.Timestamp),
		Miner:      b.Miner,
		GasUsed:    uint64(b.GasUsed),
		GasLimit:   uint64(b.GasLimit),
		TxCount:    len(b.Transactions),
	}
}
