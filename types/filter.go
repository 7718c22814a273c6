package types

const (
	defaultLimit = 25
	MaximumLimit = 100
)

type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

func (f *Pagination) Sanitize() {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	} else if f.Limit > MaximumLimit {
		f.Limit = MaximumLimit
	}
}

// Window returns the [start, end) bounds of the page over n items.
func (f *Pagination) Window(n int) (int, int) {
	if f.Skip >= n {
		return n, n
	}
	end := f.Skip + f.Limit
	if end > n {
		end = n
	}
	return f.Skip, end
}

type CampaignStatus string

const (
	CampaignActive  CampaignStatus = "active"
	CampaignExpired CampaignStatus = "expired"
)

type CampaignsFilter struct {
	Pagination *Pagination

	Owner  string
	Status CampaignStatus
}
