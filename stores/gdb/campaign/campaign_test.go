package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to CampaignStatus
		allowed  bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusCancelled, true},
		{StatusActive, StatusEnded, true},

		// 其余所有边都是非法迁移
		{StatusDraft, StatusEnded, false},
		{StatusActive, StatusCancelled, false},
		{StatusActive, StatusDraft, false},
		{StatusEnded, StatusActive, false},
		{StatusEnded, StatusDraft, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusDraft, false},
		{StatusDraft, StatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"CanTransition(%s, %s)", tt.from, tt.to)
	}
}

func TestTokenDecimals(t *testing.T) {
	assert.Equal(t, int32(18), RewardNativeCoin.TokenDecimals())
	assert.Equal(t, int32(6), RewardStableToken.TokenDecimals())
}

func TestRewardTypeValid(t *testing.T) {
	assert.True(t, RewardNativeCoin.Valid())
	assert.True(t, RewardStableToken.Valid())
	assert.False(t, RewardType("doge").Valid())
	assert.False(t, RewardType("").Valid())
}

func TestDistributionMethodValid(t *testing.T) {
	assert.True(t, DistributionLuckyDraw.Valid())
	assert.True(t, DistributionEqualSplit.Valid())
	assert.False(t, DistributionMethod("raffle").Valid())
	assert.False(t, DistributionMethod("").Valid())
}

func TestAwardIdempotencyKey(t *testing.T) {
	key := AwardIdempotencyKey("c-1", "0xabc")
	assert.Equal(t, "c-1:0xabc:full-completion-award", key)

	// 不同用户、不同活动的键互不碰撞
	assert.NotEqual(t, key, AwardIdempotencyKey("c-1", "0xdef"))
	assert.NotEqual(t, key, AwardIdempotencyKey("c-2", "0xabc"))
}
