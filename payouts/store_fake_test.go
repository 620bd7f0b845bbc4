package payouts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/models"
)

// fakeStore is an in-memory Store with the same uniqueness semantics the
// Postgres implementation enforces with row locks and unique indexes.
type fakeStore struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*models.Campaign
	users     map[uuid.UUID]*models.User
	payouts   map[uuid.UUID]*models.PayoutRequest
	payments  map[uuid.UUID]*models.Payment

	createPayoutErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		campaigns: make(map[uuid.UUID]*models.Campaign),
		users:     make(map[uuid.UUID]*models.User),
		payouts:   make(map[uuid.UUID]*models.PayoutRequest),
		payments:  make(map[uuid.UUID]*models.Payment),
	}
}

func (s *fakeStore) addCampaign(c *models.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.campaigns[c.ID] = c
}

func (s *fakeStore) addUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
}

func (s *fakeStore) GetCampaign(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) CreatePayoutRequest(_ context.Context, pr *models.PayoutRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createPayoutErr != nil {
		return s.createPayoutErr
	}
	if _, ok := s.campaigns[pr.CampaignID]; !ok {
		return ErrCampaignNotFound
	}
	for _, existing := range s.payouts {
		if existing.CampaignID == pr.CampaignID && !existing.Terminal() {
			return ErrConflict
		}
	}
	pr.ID = uuid.New()
	stored := *pr
	s.payouts[pr.ID] = &stored
	return nil
}

func (s *fakeStore) MarkPayoutProcessing(_ context.Context, payoutID uuid.UUID, transferID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.payouts[payoutID]
	if !ok {
		return ErrPayoutNotFound
	}
	pr.Status = models.PayoutRequestProcessing
	pr.TransferID = &transferID
	return nil
}

func (s *fakeStore) MarkPayoutFailed(_ context.Context, payoutID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.payouts[payoutID]
	if !ok {
		return ErrPayoutNotFound
	}
	now := time.Now()
	pr.Status = models.PayoutRequestFailed
	pr.ProcessedAt = &now
	return nil
}

func (s *fakeStore) SetCampaignPayout(_ context.Context, campaignID uuid.UUID, update CampaignPayoutUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return ErrCampaignNotFound
	}
	c.PayoutStatus = update.Status
	if update.TransferID != nil {
		c.PayoutTransferID = update.TransferID
	}
	if update.RequestedAt != nil {
		c.PayoutRequestedAt = update.RequestedAt
	}
	if update.AmountCents != nil {
		c.PayoutAmountCents = update.AmountCents
	}
	return nil
}

func (s *fakeStore) RecordDonation(_ context.Context, p *models.Payment) (*DonationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ProviderTxnID != nil {
		for _, existing := range s.payments {
			if existing.ProviderTxnID != nil && *existing.ProviderTxnID == *p.ProviderTxnID {
				return &DonationResult{
					Payment:         existing,
					Duplicate:       true,
					NewFundingCents: s.fundingLocked(existing.CampaignID),
				}, nil
			}
		}
	}

	var recorded *models.Payment
	if p.ProviderSessionID != nil {
		for _, existing := range s.payments {
			if existing.ProviderSessionID != nil && *existing.ProviderSessionID == *p.ProviderSessionID &&
				existing.Status == models.PaymentPending {
				existing.Status = models.PaymentSucceeded
				existing.ProviderTxnID = p.ProviderTxnID
				existing.AmountCents = p.AmountCents
				recorded = existing
				break
			}
		}
	}
	if recorded == nil {
		p.ID = uuid.New()
		p.Status = models.PaymentSucceeded
		stored := *p
		s.payments[p.ID] = &stored
		recorded = &stored
	}

	c, ok := s.campaigns[recorded.CampaignID]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	funding := recorded.AmountCents
	if c.CurrentFundingCents != nil {
		funding += *c.CurrentFundingCents
	}
	c.CurrentFundingCents = &funding

	return &DonationResult{Payment: recorded, NewFundingCents: funding}, nil
}

func (s *fakeStore) RecordFailedPayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ProviderTxnID != nil {
		for _, existing := range s.payments {
			if existing.ProviderTxnID != nil && *existing.ProviderTxnID == *p.ProviderTxnID {
				return nil
			}
		}
	}
	p.ID = uuid.New()
	p.Status = models.PaymentFailed
	p.AmountCents = 0
	stored := *p
	s.payments[p.ID] = &stored
	return nil
}

func (s *fakeStore) MarkTransferProcessing(_ context.Context, transferID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr := s.payoutByTransferLocked(transferID)
	if pr == nil {
		return ErrPayoutNotFound
	}
	if pr.Terminal() {
		return nil
	}
	pr.Status = models.PayoutRequestProcessing
	if c, ok := s.campaigns[pr.CampaignID]; ok {
		c.PayoutStatus = models.PayoutProcessing
	}
	return nil
}

func (s *fakeStore) MarkTransferFailed(_ context.Context, transferID string) (*models.PayoutRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr := s.payoutByTransferLocked(transferID)
	if pr == nil {
		return nil, ErrPayoutNotFound
	}
	if !pr.Terminal() {
		now := time.Now()
		pr.Status = models.PayoutRequestFailed
		pr.ProcessedAt = &now
		if c, ok := s.campaigns[pr.CampaignID]; ok {
			c.PayoutStatus = models.PayoutFailed
		}
	}
	copied := *pr
	return &copied, nil
}

func (s *fakeStore) UpdatePayoutAccountStatus(_ context.Context, accountID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.PayoutAccountID != nil && *u.PayoutAccountID == accountID {
			u.PayoutAccountStatus = status
		}
	}
	return nil
}

func (s *fakeStore) payoutByTransferLocked(transferID string) *models.PayoutRequest {
	for _, pr := range s.payouts {
		if pr.TransferID != nil && *pr.TransferID == transferID {
			return pr
		}
	}
	return nil
}

func (s *fakeStore) fundingLocked(campaignID uuid.UUID) int64 {
	if c, ok := s.campaigns[campaignID]; ok && c.CurrentFundingCents != nil {
		return *c.CurrentFundingCents
	}
	return 0
}

func (s *fakeStore) payoutsForCampaign(campaignID uuid.UUID) []*models.PayoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PayoutRequest
	for _, pr := range s.payouts {
		if pr.CampaignID == campaignID {
			copied := *pr
			out = append(out, &copied)
		}
	}
	return out
}

// fakeTransfers counts submissions and can be told to fail.
type fakeTransfers struct {
	mu    sync.Mutex
	calls int
	err   error

	lastAmount      int64
	lastDestination string
	lastMetadata    map[string]string
}

func (f *fakeTransfers) CreateTransfer(_ context.Context, amountCents int64, _, destination string, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	f.lastAmount = amountCents
	f.lastDestination = destination
	f.lastMetadata = metadata
	return fmt.Sprintf("tr_%03d", f.calls), nil
}
