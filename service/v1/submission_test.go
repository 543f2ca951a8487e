package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

func TestReviewOutcome(t *testing.T) {
	status, ok := reviewOutcome("approved")
	assert.True(t, ok)
	assert.Equal(t, campaign.SubmissionApproved, status)

	status, ok = reviewOutcome("rejected")
	assert.True(t, ok)
	assert.Equal(t, campaign.SubmissionRejected, status)

	// 裁决不能把提交改回 pending，也不认未知状态
	for _, bad := range []string{"pending", "", "Approved", "ok"} {
		_, ok := reviewOutcome(bad)
		assert.False(t, ok, "reviewOutcome(%q)", bad)
	}
}
