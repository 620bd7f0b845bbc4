package payouts

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/models"
)

// TransferProvider submits outgoing transfers to the payment processor.
type TransferProvider interface {
	CreateTransfer(ctx context.Context, amountCents int64, currency, destination string, metadata map[string]string) (string, error)
}

// Receipt is what a successful payout request returns to the caller.
type Receipt struct {
	PayoutID    uuid.UUID `json:"payout_id"`
	TransferID  string    `json:"transfer_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
}

// Orchestrator runs the payout workflow: eligibility, fee deduction, the
// pending record, the external transfer, and the compensating update when the
// transfer cannot be submitted. It is constructed explicitly and injected
// where needed; there is no package-level instance.
type Orchestrator struct {
	store     Store
	transfers TransferProvider
	policy    Policy
}

func NewOrchestrator(store Store, transfers TransferProvider, policy Policy) *Orchestrator {
	return &Orchestrator{store: store, transfers: transfers, policy: policy}
}

// RequestPayout validates and executes a creator's payout request. now is
// injected for testability. The pending row is persisted before the transfer
// is submitted, so a store outage can never leave a dangling external
// transfer; a submission failure compensates the row to failed.
func (o *Orchestrator) RequestPayout(ctx context.Context, campaignID, userID uuid.UUID, now time.Time) (*Receipt, error) {
	campaign, err := o.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CreatorID != userID {
		return nil, ErrForbidden
	}

	elig := EvaluateWith(o.policy, SnapshotOf(campaign), now)
	if !elig.Eligible {
		return nil, &IneligibleError{Reason: elig.Reason, Terminal: elig.Terminal}
	}

	creator, err := o.store.GetUser(ctx, campaign.CreatorID)
	if err != nil {
		return nil, err
	}
	if !creator.CanReceiveTransfers() {
		return nil, ErrPayoutAccountRequired
	}

	netAmount, err := ComputeNetAmount(campaign.FundingCents())
	if err != nil {
		return nil, err
	}
	if netAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	payout := &models.PayoutRequest{
		CampaignID:  campaign.ID,
		CreatorID:   creator.ID,
		AmountCents: netAmount,
		Currency:    campaign.Currency,
		Destination: *creator.PayoutAccountID,
		Status:      models.PayoutRequestPending,
		RequestedAt: now,
	}
	if err := o.store.CreatePayoutRequest(ctx, payout); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrPayoutAlreadyInProgress
		}
		return nil, err
	}

	transferID, err := o.transfers.CreateTransfer(ctx, netAmount, campaign.Currency, payout.Destination, map[string]string{
		"campaign_id": campaign.ID.String(),
		"payout_id":   payout.ID.String(),
	})
	if err != nil {
		if markErr := o.store.MarkPayoutFailed(ctx, payout.ID); markErr != nil {
			log.Printf("🔥 CRITICAL: payout %s stuck pending after transfer failure: %v", payout.ID, markErr)
		}
		return nil, &TransferError{Err: err}
	}

	if err := o.store.MarkPayoutProcessing(ctx, payout.ID, transferID); err != nil {
		// The transfer is in flight; the transfer.created webhook will
		// reconcile the row. Report for operator visibility and carry on.
		log.Printf("🔥 Failed to mark payout %s processing (transfer %s): %v", payout.ID, transferID, err)
	}

	denorm := CampaignPayoutUpdate{
		Status:      models.PayoutProcessing,
		TransferID:  &transferID,
		RequestedAt: &now,
		AmountCents: &netAmount,
	}
	if err := o.store.SetCampaignPayout(ctx, campaign.ID, denorm); err != nil {
		log.Printf("🔥 Failed to denormalize payout status onto campaign %s: %v", campaign.ID, err)
	}

	return &Receipt{
		PayoutID:    payout.ID,
		TransferID:  transferID,
		AmountCents: netAmount,
		Currency:    campaign.Currency,
	}, nil
}

// PreviewEligibility evaluates the payout rules for a campaign without
// mutating anything, for the creator dashboard.
func (o *Orchestrator) PreviewEligibility(ctx context.Context, campaignID uuid.UUID, now time.Time) (*models.Campaign, Eligibility, error) {
	campaign, err := o.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, Eligibility{}, err
	}
	return campaign, EvaluateWith(o.policy, SnapshotOf(campaign), now), nil
}
