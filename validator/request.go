package validator

import (
	"fmt"
	"strings"

	"github.com/kardiachain/crowdfund-backend/types"
	"github.com/kardiachain/crowdfund-backend/utils"
)

// BuildRequest converts a draft to ledger units. Amounts become wei only here.
func BuildRequest(owner string, d types.CampaignDraft) (types.CampaignRequest, error) {
	target, err := utils.EtherToWei(d.Target)
	if err != nil {
		return types.CampaignRequest{}, fmt.Errorf("target: %w", err)
	}
	deadline, err := utils.ParseDeadline(d.Deadline)
	if err != nil {
		return types.CampaignRequest{}, fmt.Errorf("deadline: %w", err)
	}
	return types.CampaignRequest{
		Owner:       owner,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Target:      target,
		Deadline:    deadline.Unix(),
		Image:       strings.TrimSpace(d.Image),
	}, nil
}
