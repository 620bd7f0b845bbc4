package models

import (
	"time"

	"github.com/google/uuid"
)

type RewardTier struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`

	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	MinimumAmountCents int64 `gorm:"not null" json:"minimum_amount_cents"`

	// MaxBackers caps how many donations may claim this tier; NULL is unlimited.
	MaxBackers   *int `json:"max_backers"`
	ClaimedCount int  `gorm:"not null;default:0" json:"claimed_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
