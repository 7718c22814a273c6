// Package types
package types

import (
	"strings"
)

// Draft field names, used as FieldErrors keys.
const (
	FieldName        = "name"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTarget      = "target"
	FieldDeadline    = "deadline"
	FieldImage       = "image"
	FieldAmount      = "amount"
)

// CampaignDraft mirrors the in-progress creation form. Every field is kept as
// typed by the user.
type CampaignDraft struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Deadline    string `json:"deadline"`
	Image       string `json:"image"`
}

// HasContent reports whether at least one field is non-blank.
func (d CampaignDraft) HasContent() bool {
	for _, v := range []string{d.Name, d.Title, d.Description, d.Target, d.Deadline, d.Image} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Campaign is the read model of an on-chain campaign. Amounts are decimal
// strings in wei, Deadline is a unix timestamp in seconds.
type Campaign struct {
	ID              uint64 `json:"id" bson:"id"`
	Owner           string `json:"owner" bson:"owner"`
	Title           string `json:"title" bson:"title"`
	Description     string `json:"description" bson:"description"`
	Target          string `json:"target" bson:"target"`
	AmountCollected string `json:"amountCollected" bson:"amountCollected"`
	Deadline        int64  `json:"deadline" bson:"deadline"`
	Image           string `json:"image" bson:"image"`

	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// Donation is a single contribution, in the order the ledger recorded it.
type Donation struct {
	CampaignID uint64 `json:"-" bson:"campaignId"`
	Index      int    `json:"-" bson:"index"`
	Donator    string `json:"donator" bson:"donator"`
	Amount     string `json:"amount" bson:"amount"`
}

// CampaignView is a campaign with display values derived at read time.
type CampaignView struct {
	*Campaign
	TargetEther    string      `json:"targetEther"`
	CollectedEther string      `json:"collectedEther"`
	DaysLeft       int64       `json:"daysLeft"`
	Expired        bool        `json:"expired"`
	Progress       int64       `json:"progress"`
	Donations      []*Donation `json:"donations,omitempty"`
}
