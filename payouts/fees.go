package payouts

import (
	"errors"
	"math"
)

// Platform fee policy: 5% of the gross amount plus a fixed 30 cents,
// mirroring the processor-style "percentage + fixed" pricing model.
const (
	FeeRate       = 0.05
	FixedFeeCents = 30
)

var ErrInvalidAmount = errors.New("amount must be a non-negative number of cents")

// ComputePlatformFee returns the platform's cut of a gross amount in cents.
// The percentage component rounds half away from zero so that fee and net
// always reconcile to the cent.
func ComputePlatformFee(amountCents int64) (int64, error) {
	if amountCents < 0 {
		return 0, ErrInvalidAmount
	}
	percentage := int64(math.Round(float64(amountCents) * FeeRate))
	return percentage + FixedFeeCents, nil
}

// ComputeNetAmount returns what the creator receives after platform fees.
// For any valid amount, net + fee == amount.
func ComputeNetAmount(amountCents int64) (int64, error) {
	fee, err := ComputePlatformFee(amountCents)
	if err != nil {
		return 0, err
	}
	return amountCents - fee, nil
}
