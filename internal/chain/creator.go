package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Creator is the account that owns a subnet's genesis.
type Creator struct {
	Address common.Address
	// PublicKey is the uncompressed secp256k1 public key, 0x-prefixed.
	PublicKey string
	// PrivateKey is the 0x-prefixed hex private key.
	PrivateKey string
}

// NewCreator generates a fresh secp256k1 account.
func NewCreator() (*Creator, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate creator key: %w", err)
	}
	return creatorFromKey(key), nil
}

// CreatorFromHex loads an account from a hex private key, with or without 0x.
func CreatorFromHex(privateKey string) (*Creator, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid creator private key: %w", err)
	}
	return creatorFromKey(key), nil
}

func creatorFromKey(key *ecdsa.PrivateKey) *Creator {
	return &Creator{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}
}
