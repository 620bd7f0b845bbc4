package payouts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlatformFee(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{name: "ten dollar donation", amount: 1000, want: 80},
		{name: "zero gross still pays fixed fee", amount: 0, want: 30},
		{name: "rounds half away from zero", amount: 10, want: 31}, // 0.5 -> 1
		{name: "rounds down below half", amount: 9, want: 30},      // 0.45 -> 0
		{name: "large amount", amount: 1_000_000, want: 50_030},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePlatformFee(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputePlatformFeeRejectsNegative(t *testing.T) {
	_, err := ComputePlatformFee(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ComputeNetAmount(-500)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComputeNetAmount(t *testing.T) {
	net, err := ComputeNetAmount(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(920), net)
}

func TestFeeAndNetReconcile(t *testing.T) {
	amounts := []int64{0, 1, 9, 10, 11, 99, 100, 999, 1000, 12345, 999_999, 10_000_000}
	for _, amount := range amounts {
		fee, err := ComputePlatformFee(amount)
		require.NoError(t, err)
		net, err := ComputeNetAmount(amount)
		require.NoError(t, err)
		assert.Equal(t, amount, net+fee, "net+fee must equal gross for %d", amount)
	}
}
