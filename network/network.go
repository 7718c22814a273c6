// Package network keeps the wallet on the network campaigns live on.
package network

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

const (
	SwitchPrompt    = "You're not on Sepolia testnet. Would you like to switch networks automatically?"
	DeclinedMessage = "Please switch to Sepolia testnet to create a campaign"
)

// Provider is the part of the wallet that knows the selected network.
type Provider interface {
	ActiveChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
}

// Confirmer asks the user whether a network switch may happen.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

type Config struct {
	Provider        Provider
	RequiredChainID uint64
	Logger          *zap.Logger
}

type Reconciler struct {
	provider Provider
	required uint64
	logger   *zap.Logger
}

func New(cfg Config) *Reconciler {
	required := cfg.RequiredChainID
	if required == 0 {
		required = types.SepoliaChainID
	}
	return &Reconciler{
		provider: cfg.Provider,
		required: required,
		logger:   cfg.Logger.With(zap.String("component", "network")),
	}
}

func (r *Reconciler) RequiredChainID() uint64 {
	return r.required
}

// State reads the active chain id from the provider. It is never cached.
func (r *Reconciler) State(ctx context.Context) (types.NetworkState, error) {
	active, err := r.provider.ActiveChainID(ctx)
	if err != nil {
		return types.NetworkState{RequiredChainID: r.required}, err
	}
	return types.NetworkState{ActiveChainID: active, RequiredChainID: r.required}, nil
}

func IsOnRequiredNetwork(state types.NetworkState) bool {
	return state.Matches()
}

func (r *Reconciler) SwitchToRequiredNetwork(ctx context.Context) error {
	lgr := r.logger.With(zap.String("method", "SwitchToRequiredNetwork"))
	if err := r.provider.SwitchChain(ctx, r.required); err != nil {
		lgr.Warn("switch failed", zap.Uint64("chainId", r.required), zap.Error(err))
		return err
	}
	lgr.Info("Switched network", zap.Uint64("chainId", r.required))
	return nil
}

// Ensure makes sure the provider is on the required network, asking the
// confirmer before switching. Failures come back as NetworkMismatch.
func (r *Reconciler) Ensure(ctx context.Context, confirmer Confirmer) *types.TxError {
	state, err := r.State(ctx)
	if err != nil {
		return types.NewTxError(types.KindNetworkMismatch, fmt.Sprintf("Network error: %v", err), err)
	}
	if IsOnRequiredNetwork(state) {
		return nil
	}
	r.logger.Info("Wrong network",
		zap.Uint64("active", state.ActiveChainID), zap.Uint64("required", state.RequiredChainID))
	if confirmer == nil || !confirmer.Confirm(ctx, SwitchPrompt) {
		return types.NewTxError(types.KindNetworkMismatch, DeclinedMessage, types.ErrSwitchDeclined)
	}
	if err := r.SwitchToRequiredNetwork(ctx); err != nil {
		return types.NewTxError(types.KindNetworkMismatch, fmt.Sprintf("Failed to switch network: %v", err), err)
	}
	return nil
}
