package payouts

import (
	"fmt"
	"time"

	"github.com/wanjiru254/fundflow/models"
)

// Payout timing policy: creators wait out a cooldown after their campaign
// ends (the refund/dispute buffer), then have a bounded claim window to
// request their payout before it permanently expires.
const (
	DaysAfterEnd    = 7
	ClaimWindowDays = 30
)

// Policy holds the configurable parts of eligibility. The default requires
// the campaign to have reached its funding goal.
type Policy struct {
	RequireGoal bool
}

var DefaultPolicy = Policy{RequireGoal: true}

// Snapshot is the slice of campaign state eligibility is decided on.
type Snapshot struct {
	Status       string
	EndDate      time.Time
	GoalCents    int64
	FundingCents int64
}

// SnapshotOf extracts an eligibility snapshot from a campaign record.
func SnapshotOf(c *models.Campaign) Snapshot {
	return Snapshot{
		Status:       c.Status,
		EndDate:      c.EndDate,
		GoalCents:    c.GoalCents,
		FundingCents: c.FundingCents(),
	}
}

// Eligibility is the outcome of evaluating the payout rules. Terminal marks
// failures no amount of waiting will fix (the claim window has lapsed).
type Eligibility struct {
	Eligible bool
	Reason   string
	Terminal bool
}

// Evaluate applies the default policy. now is injected so callers and tests
// control the clock.
func Evaluate(snap Snapshot, now time.Time) Eligibility {
	return EvaluateWith(DefaultPolicy, snap, now)
}

// EvaluateWith decides whether a campaign may be paid out. Rules run in
// order and short-circuit on the first failure:
//  1. the campaign must have ended,
//  2. the post-end cooldown must have elapsed,
//  3. the claim window must not have lapsed,
//  4. the funding goal must be reached (when the policy requires it).
func EvaluateWith(p Policy, snap Snapshot, now time.Time) Eligibility {
	ended := snap.Status == models.CampaignCompleted || !now.Before(snap.EndDate)
	if !ended {
		return Eligibility{Reason: "Campaign has not ended"}
	}

	days := daysSinceEnd(snap.EndDate, now)
	if days < DaysAfterEnd {
		return Eligibility{Reason: fmt.Sprintf("Payout available in %d days", DaysAfterEnd-days)}
	}

	if days > DaysAfterEnd+ClaimWindowDays {
		return Eligibility{Reason: "Payout window has expired", Terminal: true}
	}

	if p.RequireGoal && snap.FundingCents < snap.GoalCents {
		return Eligibility{Reason: "Campaign did not reach funding goal"}
	}

	return Eligibility{Eligible: true}
}

// DaysRemainingInPayoutWindow reports how many whole days are left before the
// claim window closes, clamped at zero.
func DaysRemainingInPayoutWindow(endDate, now time.Time) int {
	remaining := (DaysAfterEnd + ClaimWindowDays) - daysSinceEnd(endDate, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// daysSinceEnd is a floor division of elapsed time into whole days. It may be
// negative for campaigns marked completed before their scheduled end date.
func daysSinceEnd(endDate, now time.Time) int {
	elapsed := now.Sub(endDate)
	days := int(elapsed / (24 * time.Hour))
	if elapsed < 0 && elapsed%(24*time.Hour) != 0 {
		days--
	}
	return days
}
