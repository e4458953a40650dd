// Package chain prepares the on-chain placeBet transaction handed back to
// the player's wallet.
//
// With no RPC endpoint configured the builder returns an offline stub
// transaction (zero recipient, fixed gas) so the bet-preparation flow works
// end to end in demo mode; with an endpoint it fetches the player's pending
// nonce and a suggested gas price and targets the configured contract.
package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mbd888/zkroulette/internal/retry"
)

// placeBetABI is the fragment of the roulette contract the builder calls.
const placeBetABI = `[{
	"name": "placeBet",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "number", "type": "uint8"},
		{"name": "commitment", "type": "bytes32"},
		{"name": "merkleProof", "type": "bytes32[]"},
		{"name": "merkleRoot", "type": "bytes32"}
	],
	"outputs": []
}]`

// Stub transaction constants, used when no RPC endpoint is configured.
const (
	stubGasLimit = 300000
	stubGasPrice = 20_000_000_000 // 20 gwei
)

// RPC reads are retried with backoff before the bet preparation fails.
const (
	rpcAttempts = 3
	rpcBackoff  = 200 * time.Millisecond
)

var weiPerEth = new(big.Float).SetFloat64(1e18)

// PreparedTransaction is the unsigned transaction returned to the caller for
// wallet signing. Numeric fields are decimal strings to survive JSON.
type PreparedTransaction struct {
	To       string `json:"to"`
	Value    string `json:"value"`
	Gas      uint64 `json:"gas"`
	GasPrice string `json:"gasPrice"`
	Nonce    uint64 `json:"nonce"`
	Data     string `json:"data"`
}

// Builder prepares placeBet transactions.
type Builder struct {
	client   *ethclient.Client // nil in offline mode
	contract common.Address
	abi      abi.ABI
}

// NewBuilder creates a builder. rpcURL and contractAddress may both be empty
// for offline mode; a non-empty contract requires a reachable RPC endpoint.
func NewBuilder(rpcURL, contractAddress string) (*Builder, error) {
	parsed, err := abi.JSON(strings.NewReader(placeBetABI))
	if err != nil {
		return nil, fmt.Errorf("parse placeBet ABI: %w", err)
	}

	b := &Builder{abi: parsed}
	if rpcURL == "" || contractAddress == "" {
		return b, nil
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	b.client = client
	b.contract = common.HexToAddress(contractAddress)
	return b, nil
}

// Offline reports whether the builder produces stub transactions.
func (b *Builder) Offline() bool {
	return b.client == nil
}

// Ping checks RPC reachability. Offline builders always report healthy.
func (b *Builder) Ping(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	_, err := b.client.BlockNumber(ctx)
	return err
}

// Close releases the RPC connection, if any.
func (b *Builder) Close() {
	if b.client != nil {
		b.client.Close()
	}
}

// Prepare builds the unsigned placeBet transaction for the player's bet.
// amount is the stake in ETH.
func (b *Builder) Prepare(ctx context.Context, playerAddress string, number int, amount float64, commitmentDigest, merkleRoot string, merkleProof []string) (*PreparedTransaction, error) {
	value := ethToWei(amount)

	if b.client == nil {
		return &PreparedTransaction{
			To:       common.Address{}.Hex(),
			Value:    value.String(),
			Gas:      stubGasLimit,
			GasPrice: big.NewInt(stubGasPrice).String(),
			Nonce:    0,
			Data:     "0x" + fmt.Sprintf("%064x", number),
		}, nil
	}

	commitment, err := digestToBytes32(commitmentDigest)
	if err != nil {
		return nil, fmt.Errorf("commitment: %w", err)
	}
	root, err := digestToBytes32(merkleRoot)
	if err != nil {
		return nil, fmt.Errorf("merkle root: %w", err)
	}
	proof := make([][32]byte, len(merkleProof))
	for i, p := range merkleProof {
		proof[i], err = digestToBytes32(p)
		if err != nil {
			return nil, fmt.Errorf("merkle proof[%d]: %w", i, err)
		}
	}

	data, err := b.abi.Pack("placeBet", uint8(number), commitment, proof, root)
	if err != nil {
		return nil, fmt.Errorf("pack placeBet: %w", err)
	}

	var nonce uint64
	err = retry.Do(ctx, rpcAttempts, rpcBackoff, func() error {
		nonce, err = b.client.PendingNonceAt(ctx, common.HexToAddress(playerAddress))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	var gasPrice *big.Int
	err = retry.Do(ctx, rpcAttempts, rpcBackoff, func() error {
		gasPrice, err = b.client.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	return &PreparedTransaction{
		To:       b.contract.Hex(),
		Value:    value.String(),
		Gas:      stubGasLimit,
		GasPrice: gasPrice.String(),
		Nonce:    nonce,
		Data:     "0x" + hex.EncodeToString(data),
	}, nil
}

func ethToWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(new(big.Float).SetFloat64(amount), weiPerEth).Int(nil)
	return wei
}

func digestToBytes32(digest string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(digest, "0x"))
	if err != nil {
		return out, fmt.Errorf("invalid hex digest: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("digest must be 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
