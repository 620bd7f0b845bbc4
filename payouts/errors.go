package payouts

import (
	"errors"
	"fmt"
)

// Expected, user-facing outcomes. None of these indicate a bug and none of
// them leave state behind; handlers map them to 4xx responses.
var (
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrPayoutNotFound          = errors.New("payout request not found")
	ErrForbidden               = errors.New("only the campaign creator can request a payout")
	ErrPayoutAccountRequired   = errors.New("payout account setup is required before requesting a payout")
	ErrPayoutAlreadyInProgress = errors.New("a payout for this campaign is already in progress")
)

// ErrConflict is returned by the store when a write loses a uniqueness race,
// e.g. a second in-flight payout row or a duplicate external transaction id.
var ErrConflict = errors.New("conflicting record already exists")

// IneligibleError carries the human-readable reason a campaign cannot be paid
// out. Terminal means no retry will ever succeed.
type IneligibleError struct {
	Reason   string
	Terminal bool
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// TransferError wraps a failed transfer submission. The payout request has
// already been compensated to failed; the caller may retry the whole
// operation.
type TransferError struct {
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer submission failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
