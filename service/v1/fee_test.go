package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		name     string
		reward   string
		rate     int64
		expected string
	}{
		{name: "100 at 5 percent", reward: "100", rate: 5, expected: "5"},
		{name: "zero reward", reward: "0", rate: 5, expected: "0"},
		{name: "fractional reward", reward: "0.5", rate: 5, expected: "0.025"},
		{name: "large reward", reward: "1000000", rate: 5, expected: "50000"},
		{name: "ten percent", reward: "33", rate: 10, expected: "3.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reward := decimal.RequireFromString(tt.reward)
			fee := PlatformFee(reward, tt.rate)
			require.True(t, fee.Equal(decimal.RequireFromString(tt.expected)),
				"PlatformFee(%s, %d) = %s, want %s", tt.reward, tt.rate, fee, tt.expected)
		})
	}
}

func TestTotalDepositIdentity(t *testing.T) {
	// 对任意 r >= 0：total == r + fee，精确相等
	for _, raw := range []string{"0", "1", "100", "0.000001", "123456.789", "99999999.5"} {
		reward := decimal.RequireFromString(raw)
		fee := PlatformFee(reward, 5)
		total := TotalDeposit(reward, 5)
		require.True(t, total.Equal(reward.Add(fee)), "identity broken for %s", raw)
	}
}

func TestQuoteDeposit_StableToken(t *testing.T) {
	quote, err := QuoteDeposit("100", campaign.RewardStableToken, 5)
	require.NoError(t, err)
	require.Equal(t, "5", quote.PlatformFee.String())
	require.Equal(t, "105", quote.TotalDeposit.String())
	require.Equal(t, int32(6), quote.TokenDecimals)
	// 链上整数单位必须逐位一致：105 * 10^6
	require.Equal(t, "105000000", quote.DepositUnits.String())
}

func TestQuoteDeposit_NativeCoin(t *testing.T) {
	quote, err := QuoteDeposit("1.5", campaign.RewardNativeCoin, 5)
	require.NoError(t, err)
	require.Equal(t, int32(18), quote.TokenDecimals)
	// 1.575 * 10^18
	require.Equal(t, "1575000000000000000", quote.DepositUnits.String())
}

func TestQuoteDeposit_PrecisionOverflow(t *testing.T) {
	// 6 位精度的稳定币装不下 7 位小数，必须报错而不是截断
	_, err := QuoteDeposit("0.0000001", campaign.RewardStableToken, 5)
	require.Error(t, err)
}

func TestQuoteDeposit_FeePrecisionOverflow(t *testing.T) {
	// 奖励本身在精度内，但加上 5% 手续费后超出
	_, err := QuoteDeposit("0.000001", campaign.RewardStableToken, 5)
	require.Error(t, err)
}

func TestQuoteDeposit_Invalid(t *testing.T) {
	_, err := QuoteDeposit("-1", campaign.RewardStableToken, 5)
	require.Error(t, err)

	_, err = QuoteDeposit("abc", campaign.RewardStableToken, 5)
	require.Error(t, err)

	_, err = QuoteDeposit("100", campaign.RewardType("doge"), 5)
	require.Error(t, err)
}

func TestToTokenUnits(t *testing.T) {
	units, err := ToTokenUnits(decimal.RequireFromString("0.000001"), 6)
	require.NoError(t, err)
	require.Equal(t, "1", units.String())

	_, err = ToTokenUnits(decimal.RequireFromString("0.0000015"), 6)
	require.Error(t, err)
}
