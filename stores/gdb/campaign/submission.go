package campaign

import "time"

type SubmissionKind string

const (
	KindJoinRecord     SubmissionKind = "join_record"
	KindTaskCompletion SubmissionKind = "task_completion"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission 参与记录。唯一索引保证同一 (campaign, task, user, kind) 至多一条，
// 重复提交靠 OnConflict DoNothing 落地为幂等 no-op。join_record 的 TaskID 固定为 0。
type Submission struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID     string           `gorm:"size:36;not null;uniqueIndex:uk_submission,priority:1" json:"campaign_id"`
	TaskID         int64            `gorm:"not null;default:0;uniqueIndex:uk_submission,priority:2" json:"task_id"`
	UserAddress    string           `gorm:"size:64;not null;uniqueIndex:uk_submission,priority:3;index" json:"user_address"`
	Kind           SubmissionKind   `gorm:"size:20;not null;uniqueIndex:uk_submission,priority:4" json:"kind"`
	Status         SubmissionStatus `gorm:"size:20;not null;default:pending" json:"status"`
	SubmissionData string           `gorm:"type:text" json:"submission_data,omitempty"` // make_post 的帖子链接等原始提交内容
	Reason         string           `gorm:"size:500" json:"reason,omitempty"`           // 审核说明，自动审核失败时给出人类可读原因
	TxHash         string           `gorm:"size:80" json:"tx_hash,omitempty"`           // join_record 对应的链上交易
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func SubmissionTableName() string {
	return "campaign_submissions"
}

func (Submission) TableName() string {
	return SubmissionTableName()
}

type AwardStatus string

const (
	AwardPending   AwardStatus = "pending"
	AwardSubmitted AwardStatus = "submitted"
	AwardConfirmed AwardStatus = "confirmed"
	AwardFailed    AwardStatus = "failed"
)

// QuestAwardEvent 全量完成奖励事件。IdempotencyKey 唯一索引是
// "同一用户同一活动只发一次完成奖励" 的落地点；链上推送失败不回滚，
// 留在表里等待重试或人工对账。
type QuestAwardEvent struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID     string      `gorm:"size:36;not null;index" json:"campaign_id"`
	UserAddress    string      `gorm:"size:64;not null" json:"user_address"`
	IdempotencyKey string      `gorm:"size:150;not null;uniqueIndex" json:"idempotency_key"`
	Points         int64       `gorm:"not null" json:"points"`
	Status         AwardStatus `gorm:"size:20;not null;default:pending" json:"status"`
	TxHash         string      `gorm:"size:80" json:"tx_hash,omitempty"`
	LastError      string      `gorm:"size:500" json:"last_error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func QuestAwardEventTableName() string {
	return "quest_award_events"
}

func (QuestAwardEvent) TableName() string {
	return QuestAwardEventTableName()
}

// AwardIdempotencyKey 完成奖励幂等键
func AwardIdempotencyKey(campaignID, userAddress string) string {
	return campaignID + ":" + userAddress + ":full-completion-award"
}
