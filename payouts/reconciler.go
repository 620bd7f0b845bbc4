package payouts

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/payments"
)

// Outcome reports what applying a webhook event changed, so the HTTP layer
// can fan out side effects (live ticker pushes, emails, receipts) without the
// reconciler knowing about them.
type Outcome struct {
	Event payments.Event

	// Set for payment events.
	Payment         *models.Payment
	NewFundingCents int64
	Duplicate       bool

	// Set for transfer.failed.
	Payout *models.PayoutRequest
}

// Reconciler applies processor webhook events to stored records. Every
// handler is safe to invoke more than once for the same event: the processor
// delivers at least once, not exactly once.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

func (r *Reconciler) Apply(ctx context.Context, ev payments.Event) (*Outcome, error) {
	out := &Outcome{Event: ev}

	switch e := ev.(type) {
	case payments.PaymentSucceeded:
		donation := &models.Payment{
			CampaignID:  e.CampaignID,
			DonorUserID: e.DonorUserID,
			DonorName:   e.DonorName,
			Anonymous:   e.Anonymous,
			AmountCents: e.AmountCents,
			Currency:    e.Currency,
			Status:      models.PaymentSucceeded,
		}
		if e.TransactionID != "" {
			donation.ProviderTxnID = &e.TransactionID
		}
		if e.SessionID != "" {
			donation.ProviderSessionID = &e.SessionID
		}
		if e.DonorEmail != "" {
			donation.DonorEmail = &e.DonorEmail
		}
		if e.Message != "" {
			donation.Message = &e.Message
		}
		if e.RewardTierID != nil {
			donation.RewardTierID = e.RewardTierID
		}

		result, err := r.store.RecordDonation(ctx, donation)
		if err != nil {
			return nil, fmt.Errorf("record donation %s: %w", e.TransactionID, err)
		}
		if result.Duplicate {
			log.Printf("Duplicate payment.succeeded delivery for txn %s, already recorded", e.TransactionID)
		}
		out.Payment = result.Payment
		out.NewFundingCents = result.NewFundingCents
		out.Duplicate = result.Duplicate
		return out, nil

	case payments.PaymentFailed:
		failed := &models.Payment{
			CampaignID: e.CampaignID,
			Currency:   e.Currency,
		}
		if e.TransactionID != "" {
			failed.ProviderTxnID = &e.TransactionID
		}
		if e.SessionID != "" {
			failed.ProviderSessionID = &e.SessionID
		}
		if err := r.store.RecordFailedPayment(ctx, failed); err != nil {
			return nil, fmt.Errorf("record failed payment %s: %w", e.TransactionID, err)
		}
		out.Payment = failed
		return out, nil

	case payments.TransferCreated:
		if err := r.store.MarkTransferProcessing(ctx, e.TransferID); err != nil {
			return nil, fmt.Errorf("mark transfer %s processing: %w", e.TransferID, err)
		}
		return out, nil

	case payments.TransferFailed:
		payout, err := r.store.MarkTransferFailed(ctx, e.TransferID)
		if err != nil {
			return nil, fmt.Errorf("mark transfer %s failed: %w", e.TransferID, err)
		}
		log.Printf("🔥 Transfer %s failed for payout %s: %s", e.TransferID, payout.ID, e.Reason)
		out.Payout = payout
		return out, nil

	case payments.AccountUpdated:
		if err := r.store.UpdatePayoutAccountStatus(ctx, e.AccountID, e.Status); err != nil {
			return nil, fmt.Errorf("update account %s status: %w", e.AccountID, err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("no reconciliation for event type %q", ev.EventType())
	}
}

// CampaignIDOf extracts the campaign a payment event belongs to, for routing
// ticker updates.
func CampaignIDOf(ev payments.Event) (uuid.UUID, bool) {
	switch e := ev.(type) {
	case payments.PaymentSucceeded:
		return e.CampaignID, true
	case payments.PaymentFailed:
		return e.CampaignID, true
	}
	return uuid.Nil, false
}
