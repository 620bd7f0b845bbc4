package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/payments"
)

func reconcilerFixture(t *testing.T) (*fakeStore, *Reconciler, *models.Campaign) {
	t.Helper()
	store := newFakeStore()
	campaign := &models.Campaign{
		CreatorID: uuid.New(),
		Title:     "School Library",
		Slug:      "school-library",
		GoalCents: 100_000,
		Currency:  "USD",
		Status:    models.CampaignActive,
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
	}
	store.addCampaign(campaign)
	return store, NewReconciler(store), campaign
}

func TestApplyPaymentSucceededIncrementsFundingOnce(t *testing.T) {
	store, rec, campaign := reconcilerFixture(t)

	ev := payments.PaymentSucceeded{
		TransactionID: "txn_100",
		CampaignID:    campaign.ID,
		AmountCents:   5_000,
		Currency:      "USD",
		DonorName:     "Generous Donor",
	}

	out, err := rec.Apply(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, out.Duplicate)
	assert.Equal(t, int64(5_000), out.NewFundingCents)
	assert.Equal(t, models.PaymentSucceeded, out.Payment.Status)

	// At-least-once delivery: the replay must not double-count.
	out, err = rec.Apply(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, out.Duplicate)
	assert.Equal(t, int64(5_000), out.NewFundingCents)

	stored, err := store.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), stored.FundingCents())
}

func TestApplyPaymentSucceededCompletesPendingCheckout(t *testing.T) {
	store, rec, campaign := reconcilerFixture(t)

	sessionID := "cs_500"
	store.mu.Lock()
	pendingID := uuid.New()
	store.payments[pendingID] = &models.Payment{
		ID:                pendingID,
		CampaignID:        campaign.ID,
		DonorName:         "Checkout Donor",
		AmountCents:       2_500,
		Currency:          "USD",
		Status:            models.PaymentPending,
		ProviderSessionID: &sessionID,
	}
	store.mu.Unlock()

	out, err := rec.Apply(context.Background(), payments.PaymentSucceeded{
		TransactionID: "txn_500",
		SessionID:     sessionID,
		CampaignID:    campaign.ID,
		AmountCents:   2_500,
		Currency:      "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, pendingID, out.Payment.ID, "pending checkout row should be completed, not duplicated")
	assert.Equal(t, models.PaymentSucceeded, out.Payment.Status)
	require.NotNil(t, out.Payment.ProviderTxnID)
	assert.Equal(t, "txn_500", *out.Payment.ProviderTxnID)
}

func TestApplyPaymentFailedRecordsZeroAmount(t *testing.T) {
	store, rec, campaign := reconcilerFixture(t)

	out, err := rec.Apply(context.Background(), payments.PaymentFailed{
		TransactionID: "txn_bad",
		CampaignID:    campaign.ID,
		Currency:      "USD",
		Reason:        "card_declined",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, out.Payment.Status)
	assert.Zero(t, out.Payment.AmountCents)

	stored, err := store.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FundingCents(), "failed payments must not touch funding")
}

func TestApplyTransferLifecycle(t *testing.T) {
	store, rec, campaign := reconcilerFixture(t)

	transferID := "tr_900"
	funding := int64(150_000)
	store.mu.Lock()
	store.campaigns[campaign.ID].CurrentFundingCents = &funding
	store.campaigns[campaign.ID].PayoutStatus = models.PayoutRequested
	payoutID := uuid.New()
	store.payouts[payoutID] = &models.PayoutRequest{
		ID:          payoutID,
		CampaignID:  campaign.ID,
		CreatorID:   campaign.CreatorID,
		AmountCents: 142_470,
		Currency:    "USD",
		Status:      models.PayoutRequestPending,
		TransferID:  &transferID,
		RequestedAt: time.Now(),
	}
	store.mu.Unlock()

	_, err := rec.Apply(context.Background(), payments.TransferCreated{TransferID: transferID})
	require.NoError(t, err)
	store.mu.Lock()
	assert.Equal(t, models.PayoutRequestProcessing, store.payouts[payoutID].Status)
	store.mu.Unlock()

	out, err := rec.Apply(context.Background(), payments.TransferFailed{TransferID: transferID, Reason: "account_closed"})
	require.NoError(t, err)
	require.NotNil(t, out.Payout)
	assert.Equal(t, models.PayoutRequestFailed, out.Payout.Status)

	stored, err := store.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutFailed, stored.PayoutStatus)
	assert.Equal(t, int64(150_000), stored.FundingCents(), "a failed outgoing transfer must not revert collected funding")

	// Replay of the failure is a no-op.
	_, err = rec.Apply(context.Background(), payments.TransferFailed{TransferID: transferID, Reason: "account_closed"})
	require.NoError(t, err)
}

func TestApplyTransferCreatedUnknownTransfer(t *testing.T) {
	_, rec, _ := reconcilerFixture(t)

	_, err := rec.Apply(context.Background(), payments.TransferCreated{TransferID: "tr_unknown"})
	assert.ErrorIs(t, err, ErrPayoutNotFound)
}

func TestApplyAccountUpdated(t *testing.T) {
	store, rec, _ := reconcilerFixture(t)

	accountID := "acct_42"
	creator := &models.User{
		FullName:            "Creator",
		Email:               "creator@example.com",
		PayoutAccountID:     &accountID,
		PayoutAccountStatus: models.PayoutAccountPending,
	}
	store.addUser(creator)

	_, err := rec.Apply(context.Background(), payments.AccountUpdated{AccountID: accountID, Status: models.PayoutAccountActive})
	require.NoError(t, err)

	updated, err := store.GetUser(context.Background(), creator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutAccountActive, updated.PayoutAccountStatus)
	assert.True(t, updated.CanReceiveTransfers())
}
