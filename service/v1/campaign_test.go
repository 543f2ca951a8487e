package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

func TestEnsureTransition(t *testing.T) {
	tests := []struct {
		from, to campaign.CampaignStatus
		allowed  bool
	}{
		{campaign.StatusDraft, campaign.StatusActive, true},
		{campaign.StatusDraft, campaign.StatusCancelled, true},
		{campaign.StatusActive, campaign.StatusEnded, true},

		{campaign.StatusActive, campaign.StatusActive, false},
		{campaign.StatusActive, campaign.StatusCancelled, false},
		{campaign.StatusEnded, campaign.StatusActive, false},
		{campaign.StatusEnded, campaign.StatusEnded, false},
		{campaign.StatusCancelled, campaign.StatusActive, false},
		{campaign.StatusDraft, campaign.StatusEnded, false},
	}

	for _, tt := range tests {
		err := ensureTransition(tt.from, tt.to)
		if tt.allowed {
			assert.NoError(t, err, "ensureTransition(%s, %s)", tt.from, tt.to)
		} else {
			// 非法迁移统一 409
			require.Error(t, err, "ensureTransition(%s, %s)", tt.from, tt.to)
			e, ok := err.(*errcode.Err)
			require.True(t, ok)
			assert.Equal(t, errcode.CodeConflict, e.Code)
		}
	}
}

func TestEnsureOwner(t *testing.T) {
	cam := &campaign.Campaign{OwnerAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}

	// 归一化后比较，全小写输入也能命中
	assert.NoError(t, ensureOwner(cam, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.NoError(t, ensureOwner(cam, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))

	err := ensureOwner(cam, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	require.Error(t, err)
	e, ok := err.(*errcode.Err)
	require.True(t, ok)
	assert.Equal(t, errcode.CodeUnauthorized, e.Code)

	err = ensureOwner(cam, "not-an-address")
	require.Error(t, err)
	e, ok = err.(*errcode.Err)
	require.True(t, ok)
	assert.Equal(t, errcode.CodeInvalidParams, e.Code)
}
