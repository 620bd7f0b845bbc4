package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nonTerminalStatuses are the payout states still expecting transitions.
var nonTerminalStatuses = []string{models.PayoutRequestPending, models.PayoutRequestProcessing}

// GormStore implements Store on a GORM Postgres handle. Uniqueness races are
// resolved by row locks and unique indexes so the invariants hold across
// multiple server instances.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return &campaign, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load user %s: %w", id, err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) CreatePayoutRequest(ctx context.Context, pr *models.PayoutRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the campaign row so two concurrent requests serialize here.
		var campaign models.Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&campaign, "id = ?", pr.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}

		var inFlight int64
		if err := tx.Model(&models.PayoutRequest{}).
			Where("campaign_id = ? AND status IN ?", pr.CampaignID, nonTerminalStatuses).
			Count(&inFlight).Error; err != nil {
			return err
		}
		if inFlight > 0 {
			return ErrConflict
		}

		return tx.Create(pr).Error
	})
}

func (s *GormStore) MarkPayoutProcessing(ctx context.Context, payoutID uuid.UUID, transferID string) error {
	return s.db.WithContext(ctx).Model(&models.PayoutRequest{}).
		Where("id = ?", payoutID).
		Updates(map[string]interface{}{
			"status":      models.PayoutRequestProcessing,
			"transfer_id": transferID,
		}).Error
}

func (s *GormStore) MarkPayoutFailed(ctx context.Context, payoutID uuid.UUID) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.PayoutRequest{}).
		Where("id = ?", payoutID).
		Updates(map[string]interface{}{
			"status":       models.PayoutRequestFailed,
			"processed_at": &now,
		}).Error
}

func (s *GormStore) SetCampaignPayout(ctx context.Context, campaignID uuid.UUID, update CampaignPayoutUpdate) error {
	fields := map[string]interface{}{"payout_status": update.Status}
	if update.TransferID != nil {
		fields["payout_transfer_id"] = *update.TransferID
	}
	if update.RequestedAt != nil {
		fields["payout_requested_at"] = *update.RequestedAt
	}
	if update.AmountCents != nil {
		fields["payout_amount_cents"] = *update.AmountCents
	}
	return s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Updates(fields).Error
}

func (s *GormStore) RecordDonation(ctx context.Context, p *models.Payment) (*DonationResult, error) {
	result := &DonationResult{}

	// Fast path for webhook replays: the transaction id is already recorded.
	if p.ProviderTxnID != nil {
		var existing models.Payment
		err := s.db.WithContext(ctx).
			First(&existing, "provider_txn_id = ?", *p.ProviderTxnID).Error
		if err == nil {
			result.Payment = &existing
			result.Duplicate = true
			result.NewFundingCents = s.currentFunding(ctx, existing.CampaignID)
			return result, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Complete the pending checkout row when one exists, otherwise
		// record the donation fresh.
		var pending models.Payment
		found := false
		if p.ProviderSessionID != nil {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&pending, "provider_session_id = ? AND status = ?", *p.ProviderSessionID, models.PaymentPending).Error
			if err == nil {
				found = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if found {
			pending.Status = models.PaymentSucceeded
			pending.ProviderTxnID = p.ProviderTxnID
			pending.AmountCents = p.AmountCents
			if err := tx.Save(&pending).Error; err != nil {
				return err
			}
			result.Payment = &pending
		} else {
			p.Status = models.PaymentSucceeded
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			result.Payment = p
		}

		if err := tx.Model(&models.Campaign{}).
			Where("id = ?", result.Payment.CampaignID).
			Update("current_funding_cents", gorm.Expr("COALESCE(current_funding_cents, 0) + ?", result.Payment.AmountCents)).Error; err != nil {
			return err
		}

		if result.Payment.RewardTierID != nil {
			if err := tx.Model(&models.RewardTier{}).
				Where("id = ?", *result.Payment.RewardTierID).
				Update("claimed_count", gorm.Expr("claimed_count + 1")).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// Two deliveries raced past the fast path; the unique index on
		// provider_txn_id rolled the loser back with nothing applied.
		if errors.Is(err, gorm.ErrDuplicatedKey) && p.ProviderTxnID != nil {
			var existing models.Payment
			if ferr := s.db.WithContext(ctx).
				First(&existing, "provider_txn_id = ?", *p.ProviderTxnID).Error; ferr == nil {
				return &DonationResult{
					Payment:         &existing,
					Duplicate:       true,
					NewFundingCents: s.currentFunding(ctx, existing.CampaignID),
				}, nil
			}
		}
		return nil, err
	}

	result.NewFundingCents = s.currentFunding(ctx, result.Payment.CampaignID)
	return result, nil
}

func (s *GormStore) RecordFailedPayment(ctx context.Context, p *models.Payment) error {
	p.Status = models.PaymentFailed
	p.AmountCents = 0
	err := s.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (s *GormStore) MarkTransferProcessing(ctx context.Context, transferID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pr models.PayoutRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pr, "transfer_id = ?", transferID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayoutNotFound
			}
			return err
		}
		if pr.Terminal() || pr.Status == models.PayoutRequestProcessing {
			return nil
		}

		if err := tx.Model(&pr).Update("status", models.PayoutRequestProcessing).Error; err != nil {
			return err
		}
		return tx.Model(&models.Campaign{}).
			Where("id = ?", pr.CampaignID).
			Update("payout_status", models.PayoutProcessing).Error
	})
}

func (s *GormStore) MarkTransferFailed(ctx context.Context, transferID string) (*models.PayoutRequest, error) {
	var pr models.PayoutRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Creator").Preload("Campaign").
			First(&pr, "transfer_id = ?", transferID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayoutNotFound
			}
			return err
		}
		if pr.Terminal() {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&pr).Updates(map[string]interface{}{
			"status":       models.PayoutRequestFailed,
			"processed_at": &now,
		}).Error; err != nil {
			return err
		}
		// The creator should see the failure and be able to retry; collected
		// funding stays as-is.
		return tx.Model(&models.Campaign{}).
			Where("id = ?", pr.CampaignID).
			Update("payout_status", models.PayoutFailed).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (s *GormStore) UpdatePayoutAccountStatus(ctx context.Context, accountID, status string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("payout_account_id = ?", accountID).
		Update("payout_account_status", status).Error
}

func (s *GormStore) currentFunding(ctx context.Context, campaignID uuid.UUID) int64 {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).Select("current_funding_cents").
		First(&campaign, "id = ?", campaignID).Error; err != nil {
		return 0
	}
	return campaign.FundingCents()
}
