package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment is a donation record. Rows are created pending at checkout, or
// directly by the webhook reconciler on confirmed processor events; once
// succeeded they are immutable except for status corrections driven by later
// events (refunds). The unique ProviderTxnID is what makes at-least-once
// webhook delivery safe.
type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`

	DonorUserID *uuid.UUID `gorm:"type:uuid" json:"donor_user_id"`
	DonorName   string     `gorm:"size:255" json:"donor_name"`
	DonorEmail  *string    `gorm:"size:255" json:"-"`
	Anonymous   bool       `gorm:"not null;default:false" json:"anonymous"`
	Message     *string    `gorm:"type:text" json:"message"`

	RewardTierID *uuid.UUID `gorm:"type:uuid" json:"reward_tier_id"`

	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:3;not null" json:"currency"`
	Status      string `gorm:"size:20;not null" json:"status"`

	ProviderSessionID *string `gorm:"size:255;unique" json:"-"`
	ProviderTxnID     *string `gorm:"size:255;unique" json:"-"`

	ReceiptNumber *string `gorm:"size:20;unique" json:"receipt_number"`
	ReceiptURL    *string `gorm:"size:255" json:"receipt_url"`

	Campaign   Campaign    `gorm:"foreignkey:CampaignID" json:"-"`
	RewardTier *RewardTier `gorm:"foreignkey:RewardTierID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is what campaign pages show for this donation.
func (p *Payment) DisplayName() string {
	if p.Anonymous || p.DonorName == "" {
		return "Anonymous"
	}
	return p.DonorName
}
