package jobs

import (
	"log"
	"time"

	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/notifications"
	"github.com/wanjiru254/fundflow/payouts"
)

// RefreshPayoutStatuses sweeps ended campaigns and keeps the denormalized
// payout_status column current: campaigns whose cooldown has elapsed become
// eligible, campaigns whose claim window has closed become expired. Campaigns
// with a payout already requested are left alone; the webhook reconciler owns
// those transitions.
func RefreshPayoutStatuses() {
	log.Println("Running job: RefreshPayoutStatuses...")

	now := time.Now().UTC()

	var campaigns []models.Campaign
	err := database.DB.
		Where("status IN ? AND payout_status IN ?",
			[]string{models.CampaignActive, models.CampaignCompleted},
			[]string{models.PayoutNotEligible, models.PayoutEligible}).
		Where("end_date <= ?", now).
		Find(&campaigns).Error
	if err != nil {
		log.Printf("Error sweeping campaigns for payout status: %v", err)
		return
	}

	var becameEligible, expired int
	for _, campaign := range campaigns {
		elig := payouts.Evaluate(payouts.SnapshotOf(&campaign), now)

		switch {
		case elig.Terminal:
			if campaign.PayoutStatus != models.PayoutExpired {
				database.DB.Model(&campaign).Update("payout_status", models.PayoutExpired)
				expired++
			}
		case elig.Eligible:
			if campaign.PayoutStatus != models.PayoutEligible {
				database.DB.Model(&campaign).Update("payout_status", models.PayoutEligible)
				becameEligible++

				var creator models.User
				if err := database.DB.First(&creator, "id = ?", campaign.CreatorID).Error; err == nil {
					go notifications.SendEmail(creator.FullName, creator.Email, "Your Campaign Funds Are Ready!",
						"<h1>Payout Available</h1><p>Your campaign \""+campaign.Title+"\" is now eligible for payout. Request your funds from the creator dashboard within the claim window.</p>")
				}
			}
		}
	}

	if becameEligible > 0 || expired > 0 {
		log.Printf("✅ Payout sweep: %d campaign(s) became eligible, %d expired.", becameEligible, expired)
	}
}

// Payouts stuck pending or processing beyond this bound need a human to look
// at the processor dashboard.
const stalePayoutBound = 24 * time.Hour

func FlagStalePayouts() {
	log.Println("Running job: FlagStalePayouts...")

	cutoff := time.Now().UTC().Add(-stalePayoutBound)

	var stale []models.PayoutRequest
	err := database.DB.
		Where("status IN ? AND requested_at < ?",
			[]string{models.PayoutRequestPending, models.PayoutRequestProcessing}, cutoff).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error checking for stale payouts: %v", err)
		return
	}

	for _, payout := range stale {
		log.Printf("🔥 OPERATOR ALERT: payout %s for campaign %s has been %s since %s",
			payout.ID, payout.CampaignID, payout.Status, payout.RequestedAt.Format(time.RFC3339))
	}
}
