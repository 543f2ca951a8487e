package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

func TestVerifyTaskSubmission_Follow(t *testing.T) {
	// follow 任务无论提交内容都自动通过，但结论里要留痕
	v := VerifyTaskSubmission(campaign.TaskFollowAccount, "")
	assert.True(t, v.Approved())
	assert.NotEmpty(t, v.Reason)

	v = VerifyTaskSubmission(campaign.TaskFollowAccount, "whatever")
	assert.True(t, v.Approved())
}

func TestVerifyTaskSubmission_MakePost(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		approved bool
	}{
		{name: "valid twitter status", url: "https://twitter.com/alice/status/9876543210", approved: true},
		{name: "valid x.com status", url: "https://x.com/bob/status/1234567890123456789", approved: true},
		{name: "valid www prefix", url: "https://www.twitter.com/alice/status/9876543210", approved: true},
		{name: "host case insensitive", url: "https://X.com/alice/status/9876543210", approved: true},
		{name: "plain http allowed", url: "http://twitter.com/alice/status/9876543210", approved: true},
		{name: "trailing path segment tolerated", url: "https://x.com/alice/status/9876543210/photo/1", approved: true},
		{name: "post id too short", url: "https://twitter.com/alice/status/123", approved: false},
		{name: "post id not numeric", url: "https://twitter.com/alice/status/12345abcde", approved: false},
		{name: "unrecognized host", url: "https://facebook.com/alice/status/9876543210", approved: false},
		{name: "lookalike host", url: "https://twitter.com.evil.io/alice/status/9876543210", approved: false},
		{name: "missing status segment", url: "https://twitter.com/alice/9876543210", approved: false},
		{name: "path too short", url: "https://twitter.com/alice", approved: false},
		{name: "not a url", url: "just some text", approved: false},
		{name: "ftp scheme", url: "ftp://twitter.com/alice/status/9876543210", approved: false},
		{name: "empty submission", url: "", approved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VerifyTaskSubmission(campaign.TaskMakePost, tt.url)
			if tt.approved {
				assert.True(t, v.Approved(), "expected approved, got pending: %s", v.Reason)
			} else {
				// 不通过的进 pending 人工审核，而不是 rejected
				assert.Equal(t, campaign.SubmissionPending, v.Status)
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestVerifyTaskSubmission_Custom(t *testing.T) {
	v := VerifyTaskSubmission(campaign.TaskCustom, "proof of work")
	assert.Equal(t, campaign.SubmissionPending, v.Status)
	assert.False(t, v.Approved())
}
