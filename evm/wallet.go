package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type WalletConfig struct {
	PrivateKey string
	Nodes      *Wrapper
	Logger     *zap.Logger
}

// KeyWallet is a wallet provider backed by a single private key. Connect
// unlocks the key, the selected network lives in the node wrapper.
type KeyWallet struct {
	mtx     sync.RWMutex
	keyHex  string
	key     *ecdsa.PrivateKey
	address string

	nodes  *Wrapper
	logger *zap.Logger
}

func NewKeyWallet(cfg WalletConfig) *KeyWallet {
	return &KeyWallet{
		keyHex: strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"),
		nodes:  cfg.Nodes,
		logger: cfg.Logger.With(zap.String("wallet", "key")),
	}
}

// Address returns the connected address, or "" when not connected.
func (w *KeyWallet) Address(ctx context.Context) (string, error) {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return w.address, nil
}

func (w *KeyWallet) Connect(ctx context.Context) (string, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.key != nil {
		return w.address, nil
	}
	if w.keyHex == "" {
		return "", &ProviderError{Code: CodeUnauthorized, Message: "no signing key configured"}
	}
	key, err := crypto.HexToECDSA(w.keyHex)
	if err != nil {
		w.logger.Warn("cannot unlock signing key", zap.Error(err))
		return "", &ProviderError{Code: CodeUnauthorized, Message: "invalid signing key"}
	}
	w.key = key
	w.address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	w.logger.Info("Wallet connected", zap.String("address", w.address))
	return w.address, nil
}

func (w *KeyWallet) ActiveChainID(ctx context.Context) (uint64, error) {
	return w.nodes.ActiveChainID(ctx)
}

func (w *KeyWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	return w.nodes.Select(chainID)
}

// Transactor returns signing options bound to the active chain.
func (w *KeyWallet) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	w.mtx.RLock()
	key := w.key
	w.mtx.RUnlock()
	if key == nil {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "wallet not connected"}
	}
	chainID, err := w.nodes.ActiveChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}
