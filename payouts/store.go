package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/models"
)

// Store is the persistence boundary for the payout orchestrator and the
// webhook reconciler. Implementations must enforce the two uniqueness
// invariants at the database layer, not in process memory: at most one
// non-terminal payout request per campaign, and at most one donation per
// external transaction id.
type Store interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// CreatePayoutRequest persists a new pending payout. It returns
	// ErrConflict when another non-terminal payout exists for the campaign.
	CreatePayoutRequest(ctx context.Context, pr *models.PayoutRequest) error
	MarkPayoutProcessing(ctx context.Context, payoutID uuid.UUID, transferID string) error
	MarkPayoutFailed(ctx context.Context, payoutID uuid.UUID) error
	SetCampaignPayout(ctx context.Context, campaignID uuid.UUID, update CampaignPayoutUpdate) error

	// RecordDonation creates the donation row and atomically increments the
	// campaign's funding. Replays of an already-recorded transaction id are
	// reported as duplicates, never double-counted.
	RecordDonation(ctx context.Context, p *models.Payment) (*DonationResult, error)
	RecordFailedPayment(ctx context.Context, p *models.Payment) error

	MarkTransferProcessing(ctx context.Context, transferID string) error
	// MarkTransferFailed flips the payout and the campaign's denormalized
	// payout status to failed. Collected funding is untouched: a failed
	// outgoing transfer does not undo donations.
	MarkTransferFailed(ctx context.Context, transferID string) (*models.PayoutRequest, error)

	UpdatePayoutAccountStatus(ctx context.Context, accountID, status string) error
}

// CampaignPayoutUpdate is the denormalized payout view written onto the
// campaign record. Nil pointer fields are left unchanged.
type CampaignPayoutUpdate struct {
	Status      string
	TransferID  *string
	RequestedAt *time.Time
	AmountCents *int64
}

// DonationResult reports what RecordDonation did.
type DonationResult struct {
	Payment         *models.Payment
	NewFundingCents int64
	// Duplicate is set when the transaction id was already recorded; the
	// returned payment is the existing row and funding was not incremented.
	Duplicate bool
}
