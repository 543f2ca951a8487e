package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// 认可的社交平台域名，其它 host 一律进人工审核
var recognizedPostHosts = []string{"twitter.com", "www.twitter.com", "x.com", "www.x.com"}

var postIDPattern = regexp.MustCompile(`^\d{10,}$`)

// Verdict 自动审核结论。Status=pending 且 Reason 非空表示
// 自动校验未通过、留给人工复核，不是硬拒绝。
type Verdict struct {
	Status campaign.SubmissionStatus
	Reason string
}

func (v Verdict) Approved() bool {
	return v.Status == campaign.SubmissionApproved
}

// VerifyTaskSubmission 按任务类型判定单条任务提交
func VerifyTaskSubmission(taskType campaign.TaskType, submissionData string) Verdict {
	switch taskType {
	case campaign.TaskFollowAccount:
		// 不独立核验关注关系，信任前端上报。已知缺口，保持原行为。
		return Verdict{
			Status: campaign.SubmissionApproved,
			Reason: "auto-approved without follow verification",
		}
	case campaign.TaskMakePost:
		if reason := verifyPostURL(submissionData); reason != "" {
			return Verdict{Status: campaign.SubmissionPending, Reason: reason}
		}
		return Verdict{Status: campaign.SubmissionApproved}
	default:
		// custom 任务没有自动规则，全部进人工审核
		return Verdict{
			Status: campaign.SubmissionPending,
			Reason: "custom task requires manual review",
		}
	}
}

// verifyPostURL 校验帖子链接，返回空串表示通过。
// 规则：认可域名 + 路径 {username}/status/{postId} + postId 至少10位数字。
func verifyPostURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "post url is empty"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("post url is not parseable: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "post url must be http(s)"
	}
	if !slices.Contains(recognizedPostHosts, strings.ToLower(u.Hostname())) {
		return fmt.Sprintf("unrecognized host: %s", u.Hostname())
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 {
		return "post url path must be {username}/status/{postId}"
	}
	if segments[1] != "status" {
		return "post url path must contain /status/"
	}
	if !postIDPattern.MatchString(segments[2]) {
		return fmt.Sprintf("post id %q is not a valid status id", segments[2])
	}
	return ""
}
