package types

// SepoliaChainID is the only network campaigns are created on.
const SepoliaChainID uint64 = 11155111

type NetworkState struct {
	ActiveChainID   uint64 `json:"activeChainId"`
	RequiredChainID uint64 `json:"requiredChainId"`
}

func (s NetworkState) Matches() bool {
	return s.ActiveChainID == s.RequiredChainID
}
