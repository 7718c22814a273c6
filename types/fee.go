package types

import (
	"encoding/json"
	"math/big"
)

// GasEstimate is the advisory cost of a pending creation. A nil Wei means the
// estimate is unavailable.
type GasEstimate struct {
	Wei *big.Int
}

// EstimateUnavailable is returned whenever the estimation call fails.
var EstimateUnavailable = GasEstimate{}

func (g GasEstimate) Available() bool {
	return g.Wei != nil
}

func (g GasEstimate) String() string {
	if g.Wei == nil {
		return "Unable to estimate"
	}
	return g.Wei.String()
}

func (g GasEstimate) MarshalJSON() ([]byte, error) {
	type estimate struct {
		Available bool   `json:"available"`
		Wei       string `json:"wei,omitempty"`
	}
	e := estimate{Available: g.Available()}
	if e.Available {
		e.Wei = g.Wei.String()
	}
	return json.Marshal(e)
}
