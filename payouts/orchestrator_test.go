package payouts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanjiru254/fundflow/models"
)

func eligibleCampaignFixture(store *fakeStore) (*models.Campaign, *models.User) {
	accountID := "acct_creator_1"
	creator := &models.User{
		FullName:            "Amina Creator",
		Email:               "amina@example.com",
		Role:                "creator",
		PayoutAccountID:     &accountID,
		PayoutAccountStatus: models.PayoutAccountActive,
	}
	store.addUser(creator)

	funding := int64(250_000)
	campaign := &models.Campaign{
		CreatorID:           creator.ID,
		Title:               "Community Well",
		Slug:                "community-well",
		GoalCents:           200_000,
		CurrentFundingCents: &funding,
		Currency:            "USD",
		Status:              models.CampaignActive,
		EndDate:             time.Now().Add(-8 * 24 * time.Hour),
		PayoutStatus:        models.PayoutEligible,
	}
	store.addCampaign(campaign)
	return campaign, creator
}

func TestRequestPayoutSuccess(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	transfers := &fakeTransfers{}
	orch := NewOrchestrator(store, transfers, DefaultPolicy)

	receipt, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
	require.NoError(t, err)

	wantNet, _ := ComputeNetAmount(250_000)
	assert.Equal(t, wantNet, receipt.AmountCents)
	assert.Equal(t, "tr_001", receipt.TransferID)
	assert.Equal(t, "USD", receipt.Currency)
	assert.Equal(t, wantNet, transfers.lastAmount)
	assert.Equal(t, "acct_creator_1", transfers.lastDestination)
	assert.Equal(t, campaign.ID.String(), transfers.lastMetadata["campaign_id"])

	stored, err := store.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutProcessing, stored.PayoutStatus)
	require.NotNil(t, stored.PayoutAmountCents)
	assert.Equal(t, wantNet, *stored.PayoutAmountCents)

	requests := store.payoutsForCampaign(campaign.ID)
	require.Len(t, requests, 1)
	assert.Equal(t, models.PayoutRequestProcessing, requests[0].Status)
	require.NotNil(t, requests[0].TransferID)
	assert.Equal(t, "tr_001", *requests[0].TransferID)
}

func TestRequestPayoutUnknownCampaign(t *testing.T) {
	store := newFakeStore()
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), uuid.New(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestRequestPayoutForbiddenForNonOwner(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.payoutsForCampaign(campaign.ID))
}

func TestRequestPayoutIneligibleMakesNoMutation(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	store.mu.Lock()
	store.campaigns[campaign.ID].EndDate = time.Now().Add(-3 * 24 * time.Hour)
	store.mu.Unlock()
	transfers := &fakeTransfers{}
	orch := NewOrchestrator(store, transfers, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())

	var inelig *IneligibleError
	require.ErrorAs(t, err, &inelig)
	assert.Contains(t, inelig.Reason, "4 days")
	assert.False(t, inelig.Terminal)
	assert.Zero(t, transfers.calls)
	assert.Empty(t, store.payoutsForCampaign(campaign.ID))
}

func TestRequestPayoutExpiredWindowIsTerminal(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	store.mu.Lock()
	store.campaigns[campaign.ID].EndDate = time.Now().Add(-38 * 24 * time.Hour)
	store.mu.Unlock()
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())

	var inelig *IneligibleError
	require.ErrorAs(t, err, &inelig)
	assert.Equal(t, "Payout window has expired", inelig.Reason)
	assert.True(t, inelig.Terminal)
}

func TestRequestPayoutRequiresPayoutAccount(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *models.User)
	}{
		{name: "no linked account", mutate: func(u *models.User) {
			u.PayoutAccountID = nil
			u.PayoutAccountStatus = models.PayoutAccountNotSetup
		}},
		{name: "restricted account", mutate: func(u *models.User) {
			u.PayoutAccountStatus = models.PayoutAccountRestricted
		}},
		{name: "pending verification", mutate: func(u *models.User) {
			u.PayoutAccountStatus = models.PayoutAccountPending
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			campaign, creator := eligibleCampaignFixture(store)
			store.mu.Lock()
			tt.mutate(store.users[creator.ID])
			store.mu.Unlock()
			orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

			_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
			assert.ErrorIs(t, err, ErrPayoutAccountRequired)
			assert.Empty(t, store.payoutsForCampaign(campaign.ID))
		})
	}
}

func TestRequestPayoutRejectsSecondInFlight(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
	require.NoError(t, err)

	_, err = orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
	assert.ErrorIs(t, err, ErrPayoutAlreadyInProgress)
}

func TestRequestPayoutConcurrentRequestsCreateOnePayout(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrPayoutAlreadyInProgress)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, store.payoutsForCampaign(campaign.ID), 1)
}

func TestRequestPayoutCompensatesFailedTransfer(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	transfers := &fakeTransfers{err: errors.New("processor unavailable")}
	orch := NewOrchestrator(store, transfers, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)

	requests := store.payoutsForCampaign(campaign.ID)
	require.Len(t, requests, 1)
	assert.Equal(t, models.PayoutRequestFailed, requests[0].Status, "persisted payout must be compensated, not left pending")

	// A failed submission is terminal for that attempt, so a retry is allowed.
	transfers.err = nil
	receipt, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "tr_001", receipt.TransferID)
}

func TestRequestPayoutStoreConflictTranslated(t *testing.T) {
	store := newFakeStore()
	campaign, _ := eligibleCampaignFixture(store)
	store.createPayoutErr = ErrConflict
	orch := NewOrchestrator(store, &fakeTransfers{}, DefaultPolicy)

	_, err := orch.RequestPayout(context.Background(), campaign.ID, campaign.CreatorID, time.Now())
	assert.ErrorIs(t, err, ErrPayoutAlreadyInProgress)
}
