package types

import (
	"math/big"
)

// CampaignRequest is a validated draft converted to ledger units.
type CampaignRequest struct {
	Owner       string
	Title       string
	Description string
	Target      *big.Int // wei
	Deadline    int64    // unix seconds
	Image       string
}
