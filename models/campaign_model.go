package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignCanceled  = "canceled"
)

// Campaign payout statuses. These are a denormalized view for campaign pages;
// the PayoutRequest row is the source of truth for an individual attempt.
const (
	PayoutNotEligible = "not_eligible"
	PayoutEligible    = "eligible"
	PayoutRequested   = "requested"
	PayoutProcessing  = "processing"
	PayoutPaid        = "paid"
	PayoutFailed      = "failed"
	PayoutExpired     = "expired"
)

type Campaign struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	Title         string  `gorm:"size:255;not null" json:"title"`
	Slug          string  `gorm:"size:255;not null;unique" json:"slug"`
	Description   string  `gorm:"type:text" json:"description"`
	CoverImageURL *string `gorm:"size:255" json:"cover_image_url"`

	// Money lives in minor currency units (cents). CurrentFundingCents is
	// nullable; NULL means no donation has ever been recorded.
	GoalCents           int64  `gorm:"not null" json:"goal_cents"`
	CurrentFundingCents *int64 `json:"current_funding_cents"`
	Currency            string `gorm:"size:3;not null;default:'USD'" json:"currency"`

	Status  string    `gorm:"size:20;not null;default:'draft'" json:"status"`
	EndDate time.Time `gorm:"not null" json:"end_date"`

	PayoutStatus      string     `gorm:"size:20;not null;default:'not_eligible'" json:"payout_status"`
	PayoutRequestedAt *time.Time `json:"payout_requested_at"`
	PayoutTransferID  *string    `gorm:"size:255" json:"payout_transfer_id"`
	PayoutAmountCents *int64     `json:"payout_amount_cents"`

	Creator     User         `gorm:"foreignkey:CreatorID" json:"-"`
	RewardTiers []RewardTier `gorm:"foreignkey:CampaignID" json:"reward_tiers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FundingCents treats a NULL funding column as zero.
func (c *Campaign) FundingCents() int64 {
	if c.CurrentFundingCents == nil {
		return 0
	}
	return *c.CurrentFundingCents
}
