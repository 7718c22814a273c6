// Package evm
package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
)

const DefaultReceiptTimeout = 3 * time.Minute

// Signer provides transaction options for the connected account.
type Signer interface {
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
}

type ContractConfig struct {
	Address        string
	Nodes          *Wrapper
	Signer         Signer
	ReceiptTimeout time.Duration
	Logger         *zap.Logger
}

type campaignTuple struct {
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	Image           string
	Donators        []common.Address
	Donations       []*big.Int
}

// Contract is the ledger client of the crowdfunding contract. It becomes
// ready once the contract code has been found at the configured address.
type Contract struct {
	address        common.Address
	abi            abi.ABI
	nodes          *Wrapper
	signer         Signer
	receiptTimeout time.Duration

	mtx     sync.RWMutex
	loading bool
	initErr error
	ready   chan struct{}

	lgr *zap.Logger
}

func NewContract(cfg ContractConfig) (*Contract, error) {
	if !common.IsHexAddress(cfg.Address) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.Address)
	}
	parsed, err := abi.JSON(strings.NewReader(CrowdFundingABI))
	if err != nil {
		return nil, err
	}
	timeout := cfg.ReceiptTimeout
	if timeout <= 0 {
		timeout = DefaultReceiptTimeout
	}
	c := &Contract{
		address:        common.HexToAddress(cfg.Address),
		abi:            parsed,
		nodes:          cfg.Nodes,
		signer:         cfg.Signer,
		receiptTimeout: timeout,
		loading:        true,
		ready:          make(chan struct{}),
		lgr:            cfg.Logger.With(zap.String("contract", cfg.Address)),
	}
	return c, nil
}

// Load checks the contract code in the background. Ready reports loading
// until it finishes.
func (c *Contract) Load(ctx context.Context) {
	go func() {
		err := c.checkCode(ctx)
		c.mtx.Lock()
		c.loading = false
		c.initErr = err
		c.mtx.Unlock()
		close(c.ready)
		if err != nil {
			c.lgr.Error("contract not available", zap.Error(err))
			return
		}
		c.lgr.Info("Contract loaded")
	}()
}

// WaitLoaded blocks until the background check is done.
func (c *Contract) WaitLoaded(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.Ready()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Contract) checkCode(ctx context.Context) error {
	code, err := c.nodes.Active().backend.CodeAt(ctx, c.address, nil)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return ErrNoContractCode
	}
	count, err := c.CampaignCount(ctx)
	if err != nil {
		return fmt.Errorf("numberOfCampaigns: %w", err)
	}
	c.lgr.Debug("Contract code found", zap.Uint64("campaigns", count))
	return nil
}

func (c *Contract) CampaignCount(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, common.Address{}, methodNumberOfCampaigns)
	if err != nil {
		return 0, err
	}
	count := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return count.Uint64(), nil
}

func (c *Contract) Ready() error {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if c.loading {
		return types.ErrContractLoading
	}
	if c.initErr != nil {
		return fmt.Errorf("%w: %v", types.ErrContractInit, c.initErr)
	}
	return nil
}

func (c *Contract) backend() Backend {
	return c.nodes.Active().backend
}

// call packs the method, runs it against the active node and unpacks the
// outputs.
func (c *Contract) call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	payload, err := c.abi.Pack(method, args...)
	if err != nil {
		c.lgr.Error("Error packing payload", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	msg := ethereum.CallMsg{From: from, To: &c.address, Data: payload}
	res, err := c.backend().CallContract(ctx, msg, nil)
	if err != nil {
		c.lgr.Warn("CallContract error", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	return c.abi.Unpack(method, res)
}

func (c *Contract) Campaigns(ctx context.Context) ([]*types.Campaign, error) {
	out, err := c.call(ctx, common.Address{}, methodGetCampaigns)
	if err != nil {
		return nil, err
	}
	return c.decodeCampaigns(out)
}

func (c *Contract) decodeCampaigns(out []interface{}) ([]*types.Campaign, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getCampaigns outputs: %d", len(out))
	}
	tuples := *abi.ConvertType(out[0], new([]campaignTuple)).(*[]campaignTuple)
	campaigns := make([]*types.Campaign, 0, len(tuples))
	now := time.Now().Unix()
	for id, t := range tuples {
		campaigns = append(campaigns, &types.Campaign{
			ID:              uint64(id),
			Owner:           t.Owner.Hex(),
			Title:           t.Title,
			Description:     t.Description,
			Target:          bigString(t.Target),
			AmountCollected: bigString(t.AmountCollected),
			Deadline:        bigInt64(t.Deadline),
			Image:           t.Image,
			UpdatedAt:       now,
		})
	}
	return campaigns, nil
}

func (c *Contract) Donations(ctx context.Context, campaignID uint64) ([]*types.Donation, error) {
	out, err := c.call(ctx, common.Address{}, methodGetDonators, new(big.Int).SetUint64(campaignID))
	if err != nil {
		return nil, err
	}
	return decodeDonations(campaignID, out)
}

func decodeDonations(campaignID uint64, out []interface{}) ([]*types.Donation, error) {
	if len(out) != 2 {
		return nil, fmt.Errorf("unexpected getDonators outputs: %d", len(out))
	}
	donators := *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address)
	amounts := *abi.ConvertType(out[1], new([]*big.Int)).(*[]*big.Int)
	if len(donators) != len(amounts) {
		return nil, fmt.Errorf("donators/donations length mismatch: %d != %d", len(donators), len(amounts))
	}
	donations := make([]*types.Donation, len(donators))
	for i := range donators {
		donations[i] = &types.Donation{
			CampaignID: campaignID,
			Index:      i,
			Donator:    donators[i].Hex(),
			Amount:     bigString(amounts[i]),
		}
	}
	return donations, nil
}

func (c *Contract) createArgs(req types.CampaignRequest) []interface{} {
	return []interface{}{
		common.HexToAddress(req.Owner),
		req.Title,
		req.Description,
		req.Target,
		big.NewInt(req.Deadline),
		req.Image,
	}
}

// CreateCampaign submits the creation transaction and waits for it to be
// mined. The returned id is the one the contract reports for the same call.
func (c *Contract) CreateCampaign(ctx context.Context, req types.CampaignRequest) (uint64, error) {
	lgr := c.lgr.With(zap.String("method", "CreateCampaign"))
	opts, err := c.signer.Transactor(ctx)
	if err != nil {
		return 0, err
	}
	args := c.createArgs(req)
	out, err := c.call(ctx, opts.From, methodCreateCampaign, args...)
	if err != nil {
		return 0, err
	}
	id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	if _, err := c.transact(ctx, opts, methodCreateCampaign, args...); err != nil {
		return 0, err
	}
	lgr.Info("Campaign created", zap.Stringer("id", id), zap.String("owner", req.Owner))
	return id.Uint64(), nil
}

func (c *Contract) Donate(ctx context.Context, campaignID uint64, wei *big.Int) error {
	lgr := c.lgr.With(zap.String("method", "Donate"))
	opts, err := c.signer.Transactor(ctx)
	if err != nil {
		return err
	}
	opts.Value = wei
	receipt, err := c.transact(ctx, opts, methodDonateToCampaign, new(big.Int).SetUint64(campaignID))
	if err != nil {
		return err
	}
	lgr.Info("Donation mined", zap.Uint64("campaignId", campaignID), zap.Stringer("tx", receipt.TxHash))
	return nil
}

func (c *Contract) transact(ctx context.Context, opts *bind.TransactOpts, method string, args ...interface{}) (*gethtypes.Receipt, error) {
	backend := c.backend()
	bound := bind.NewBoundContract(c.address, c.abi, backend, backend, backend)
	tx, err := bound.Transact(opts, method, args...)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, backend, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status == gethtypes.ReceiptStatusFailed {
		return nil, fmt.Errorf("%s %s: %w", method, tx.Hash().Hex(), ErrTxReverted)
	}
	return receipt, nil
}

// EstimateCreationCost returns gas * gas price for the creation call.
func (c *Contract) EstimateCreationCost(ctx context.Context, req types.CampaignRequest) (*big.Int, error) {
	payload, err := c.abi.Pack(methodCreateCampaign, c.createArgs(req)...)
	if err != nil {
		return nil, err
	}
	msg := ethereum.CallMsg{From: common.HexToAddress(req.Owner), To: &c.address, Data: payload}
	gas, err := c.backend().EstimateGas(ctx, msg)
	if err != nil {
		return nil, err
	}
	price, err := c.backend().SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(gas), price), nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func bigInt64(v *big.Int) int64 {
	if v == nil || !v.IsInt64() {
		return 0
	}
	return v.Int64()
}
