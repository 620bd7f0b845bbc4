package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout request statuses. pending and processing are non-terminal; a campaign
// may have at most one non-terminal payout request at a time.
const (
	PayoutRequestPending    = "pending"
	PayoutRequestProcessing = "processing"
	PayoutRequestPaid       = "paid"
	PayoutRequestFailed     = "failed"
)

// PayoutRequest is one payout attempt for a campaign. Rows are append-only:
// created by the payout orchestrator, advanced by the orchestrator (transfer
// submission) and the webhook reconciler (transfer confirmation or failure),
// never deleted.
type PayoutRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`
	CreatorID  uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`

	// AmountCents is the net amount after platform fees.
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:3;not null" json:"currency"`

	// Destination is the processor-side connected account the funds go to.
	Destination string `gorm:"size:255;not null" json:"destination"`

	Status     string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	TransferID *string `gorm:"size:255;unique" json:"transfer_id"`

	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at"`

	Campaign Campaign `gorm:"foreignkey:CampaignID" json:"-"`
	Creator  User     `gorm:"foreignkey:CreatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether no further transitions are expected.
func (pr *PayoutRequest) Terminal() bool {
	return pr.Status == PayoutRequestPaid || pr.Status == PayoutRequestFailed
}
