// Package fee estimates the cost of creating a campaign while the form is
// being edited.
package fee

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/validator"
)

const (
	DefaultDebounce = time.Second
	DefaultTimeout  = 10 * time.Second
)

// Quoter prices a creation call on the ledger.
type Quoter interface {
	EstimateCreationCost(ctx context.Context, req types.CampaignRequest) (*big.Int, error)
}

// Input is a snapshot of the form the estimate is computed for.
type Input struct {
	Address string
	Draft   types.CampaignDraft
	Errors  types.FieldErrors
}

// Eligible reports whether an estimate makes sense for this input.
func (in Input) Eligible() bool {
	return strings.TrimSpace(in.Address) != "" &&
		strings.TrimSpace(in.Draft.Target) != "" &&
		strings.TrimSpace(in.Draft.Deadline) != "" &&
		in.Errors.Valid()
}

type Config struct {
	Quoter   Quoter
	Debounce time.Duration
	Timeout  time.Duration
	// OnEstimate is called with every completed estimate.
	OnEstimate func(types.GasEstimate)
	Logger     *zap.Logger
}

// Estimator runs at most one estimate per quiet period. A newer Schedule
// replaces the pending one.
type Estimator struct {
	quoter   Quoter
	debounce time.Duration
	timeout  time.Duration
	notify   func(types.GasEstimate)

	mtx   sync.Mutex
	timer *time.Timer
	seq   uint64
	last  types.GasEstimate

	logger *zap.Logger
}

func New(cfg Config) *Estimator {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Estimator{
		quoter:   cfg.Quoter,
		debounce: debounce,
		timeout:  timeout,
		notify:   cfg.OnEstimate,
		last:     types.EstimateUnavailable,
		logger:   cfg.Logger.With(zap.String("component", "fee")),
	}
}

// Estimate prices the input now. Any failure yields EstimateUnavailable.
func (e *Estimator) Estimate(ctx context.Context, in Input) types.GasEstimate {
	lgr := e.logger.With(zap.String("method", "Estimate"))
	req, err := validator.BuildRequest(in.Address, in.Draft)
	if err != nil {
		lgr.Debug("cannot build request", zap.Error(err))
		return types.EstimateUnavailable
	}
	wei, err := e.quoter.EstimateCreationCost(ctx, req)
	if err != nil {
		lgr.Warn("Gas estimation failed", zap.Error(err))
		return types.EstimateUnavailable
	}
	return types.GasEstimate{Wei: wei}
}

// Schedule arms the debounce timer for in and cancels any pending estimate.
// It returns false and clears the last estimate when in is not eligible.
func (e *Estimator) Schedule(in Input) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.seq++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if !in.Eligible() {
		e.last = types.EstimateUnavailable
		return false
	}
	seq := e.seq
	e.timer = time.AfterFunc(e.debounce, func() {
		e.run(seq, in)
	})
	return true
}

func (e *Estimator) run(seq uint64, in Input) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	estimate := e.Estimate(ctx, in)

	e.mtx.Lock()
	if seq != e.seq {
		e.mtx.Unlock()
		return
	}
	e.last = estimate
	e.timer = nil
	notify := e.notify
	e.mtx.Unlock()

	if notify != nil {
		notify(estimate)
	}
}

// Last returns the most recent completed estimate.
func (e *Estimator) Last() types.GasEstimate {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.last
}

// Stop cancels the pending estimate, if any.
func (e *Estimator) Stop() {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.seq++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
