package campaign

import "time"

type TaskType string

const (
	TaskFollowAccount TaskType = "follow_account"
	TaskMakePost      TaskType = "make_post"
	TaskCustom        TaskType = "custom"
)

// CampaignTask 活动任务。PointReward 按任务类型固定，见 config.Points。
type CampaignTask struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID       string    `gorm:"size:36;not null;index" json:"campaign_id"`
	Type             TaskType  `gorm:"size:20;not null" json:"type"`
	Title            string    `gorm:"size:200" json:"title"`
	Enabled          bool      `gorm:"not null;default:true" json:"enabled"`
	AccountToFollow  string    `gorm:"size:100" json:"account_to_follow,omitempty"` // follow_account 任务专用
	RequiredHashtags string    `gorm:"size:500" json:"required_hashtags,omitempty"` // make_post 任务专用，逗号分隔
	RequiredMentions string    `gorm:"size:500" json:"required_mentions,omitempty"`
	PostLimit        int       `gorm:"default:0" json:"post_limit,omitempty"`
	PointReward      int64     `gorm:"not null" json:"point_reward"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func CampaignTaskTableName() string {
	return "campaign_tasks"
}

func (CampaignTask) TableName() string {
	return CampaignTaskTableName()
}

func (t TaskType) Valid() bool {
	switch t {
	case TaskFollowAccount, TaskMakePost, TaskCustom:
		return true
	}
	return false
}
