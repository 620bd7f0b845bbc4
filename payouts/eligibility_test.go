package payouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wanjiru254/fundflow/models"
)

func snapshotEndedDaysAgo(days int, goal, funding int64) Snapshot {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return Snapshot{
		Status:       models.CampaignActive,
		EndDate:      now.Add(-time.Duration(days) * 24 * time.Hour),
		GoalCents:    goal,
		FundingCents: funding,
	}
}

var evalNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestEvaluateRuleOrder(t *testing.T) {
	tests := []struct {
		name         string
		snap         Snapshot
		wantEligible bool
		wantReason   string
		wantTerminal bool
	}{
		{
			name: "campaign still running",
			snap: Snapshot{
				Status:       models.CampaignActive,
				EndDate:      evalNow.Add(48 * time.Hour),
				GoalCents:    10_000,
				FundingCents: 20_000,
			},
			wantReason: "Campaign has not ended",
		},
		{
			name:       "ended 3 days ago, cooldown counts down",
			snap:       snapshotEndedDaysAgo(3, 10_000, 20_000),
			wantReason: "Payout available in 4 days",
		},
		{
			name:       "goal not reached after cooldown",
			snap:       snapshotEndedDaysAgo(10, 10_000, 5_000),
			wantReason: "Campaign did not reach funding goal",
		},
		{
			name:         "window expired overrides goal result",
			snap:         snapshotEndedDaysAgo(38, 10_000, 20_000),
			wantReason:   "Payout window has expired",
			wantTerminal: true,
		},
		{
			name:         "window expired even when goal missed",
			snap:         snapshotEndedDaysAgo(38, 10_000, 5_000),
			wantReason:   "Payout window has expired",
			wantTerminal: true,
		},
		{
			name:         "eligible inside the window",
			snap:         snapshotEndedDaysAgo(8, 10_000, 20_000),
			wantEligible: true,
		},
		{
			name:         "last day of the window",
			snap:         snapshotEndedDaysAgo(37, 10_000, 10_000),
			wantEligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.snap, evalNow)
			assert.Equal(t, tt.wantEligible, got.Eligible)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.wantTerminal, got.Terminal)
		})
	}
}

func TestEvaluateCompletedStatusCountsAsEnded(t *testing.T) {
	snap := snapshotEndedDaysAgo(10, 10_000, 20_000)
	snap.Status = models.CampaignCompleted
	got := Evaluate(snap, evalNow)
	assert.True(t, got.Eligible)
}

func TestEvaluateGoalOptional(t *testing.T) {
	snap := snapshotEndedDaysAgo(10, 10_000, 5_000)
	got := EvaluateWith(Policy{RequireGoal: false}, snap, evalNow)
	assert.True(t, got.Eligible)
}

func TestDaysRemainingInPayoutWindow(t *testing.T) {
	end := evalNow.Add(-10 * 24 * time.Hour)
	assert.Equal(t, 27, DaysRemainingInPayoutWindow(end, evalNow))

	expired := evalNow.Add(-50 * 24 * time.Hour)
	assert.Equal(t, 0, DaysRemainingInPayoutWindow(expired, evalNow))
}

func TestDaysSinceEndFloorsPartialDays(t *testing.T) {
	end := evalNow.Add(-(3*24 + 23) * time.Hour)
	got := Evaluate(Snapshot{
		Status:       models.CampaignActive,
		EndDate:      end,
		GoalCents:    1,
		FundingCents: 1,
	}, evalNow)
	// 3.96 days floors to 3, so 4 days remain in the cooldown.
	assert.Equal(t, "Payout available in 4 days", got.Reason)
}
