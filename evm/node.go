// Package evm
package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is what the contract client and the wallet need from a node.
// *ethclient.Client and the simulated client both satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

type Node struct {
	url     string
	chainID uint64
	backend Backend
}

func NewNode(ctx context.Context, url string, backend Backend) (*Node, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id of %s: %w", url, err)
	}
	return &Node{url: url, chainID: chainID.Uint64(), backend: backend}, nil
}

func (n *Node) Url() string {
	return n.url
}

func (n *Node) Backend() Backend {
	return n.backend
}

type WrapperConfig struct {
	URLs   []string
	Logger *zap.Logger
}

// Wrapper holds one RPC node per configured network and tracks which one is
// active, the way a browser wallet tracks its selected network.
type Wrapper struct {
	mtx    sync.RWMutex
	nodes  []*Node
	active int

	logger *zap.Logger
}

func NewWrapper(ctx context.Context, cfg WrapperConfig) (*Wrapper, error) {
	var nodes []*Node
	for _, url := range cfg.URLs {
		cfg.Logger.Info("Setup rpc node:", zap.String("url", url))
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		node, err := NewNode(ctx, url, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return NewWrapperWithNodes(nodes, cfg.Logger)
}

func NewWrapperWithNodes(nodes []*Node, logger *zap.Logger) (*Wrapper, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	return &Wrapper{nodes: nodes, logger: logger}, nil
}

func (w *Wrapper) Active() *Node {
	w.mtx.RLock()
	defer w.mtx.RUnlock()
	return w.nodes[w.active]
}

// ActiveChainID asks the active node for its chain id on every call.
func (w *Wrapper) ActiveChainID(ctx context.Context) (uint64, error) {
	id, err := w.Active().backend.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// Select makes the node serving chainID the active one.
func (w *Wrapper) Select(chainID uint64) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	for i, n := range w.nodes {
		if n.chainID == chainID {
			if w.active != i {
				w.logger.Info("Switch active node", zap.String("url", n.url), zap.Uint64("chainId", chainID))
			}
			w.active = i
			return nil
		}
	}
	return &ProviderError{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("unrecognized chain id %d", chainID)}
}

func (w *Wrapper) Close() {
	for _, n := range w.nodes {
		if c, ok := n.backend.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
