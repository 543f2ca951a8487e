package types

import "time"

// CreateCampaignRequest 创建活动请求，时间为 ISO 8601 字符串
type CreateCampaignRequest struct {
	Title              string              `json:"title" binding:"required,max=200"`
	Description        string              `json:"description" binding:"required,max=2000"`
	RewardAmount       string              `json:"reward_amount" binding:"required"` // 十进制字符串
	RewardType         string              `json:"reward_type" binding:"required,oneof=native_coin stable_token"`
	DistributionMethod string              `json:"distribution_method" binding:"required,oneof=lucky_draw equal_split"`
	NumberOfWinners    *int                `json:"number_of_winners"`
	MaxParticipants    int                 `json:"max_participants" binding:"required,gt=0"`
	StartDate          string              `json:"start_date" binding:"required"`
	EndDate            string              `json:"end_date" binding:"required"`
	OwnerAddress       string              `json:"owner_address" binding:"required"`
	Tasks              []CreateTaskRequest `json:"tasks" binding:"required,min=1,dive"`
}

type CreateTaskRequest struct {
	Type             string   `json:"type" binding:"required,oneof=follow_account make_post custom"`
	Title            string   `json:"title" binding:"max=200"`
	Enabled          *bool    `json:"enabled"`
	AccountToFollow  string   `json:"account_to_follow"`
	RequiredHashtags []string `json:"required_hashtags"`
	RequiredMentions []string `json:"required_mentions"`
	PostLimit        int      `json:"post_limit"`
}

type CreateCampaignResponse struct {
	CampaignID string `json:"campaign_id"`
}

// ActivateCampaignRequest 激活确认。OnChainCampaignID 是客户端在提交创建
// 交易前预读的计数器值，仅作回执解析不到事件时的兜底。
type ActivateCampaignRequest struct {
	OnChainTxHash     string `json:"on_chain_tx_hash" binding:"required"`
	OnChainCampaignID *int64 `json:"on_chain_campaign_id"`
}

// UpdateCampaignRequest PATCH /campaigns/:id，目前支持 end / cancel。
// 两种操作都只有活动 owner 能发起，owner_address 必须与落库记录一致。
type UpdateCampaignRequest struct {
	Action          string `json:"action" binding:"required,oneof=end cancel"`
	OwnerAddress    string `json:"owner_address" binding:"required"`
	TransactionHash string `json:"transaction_hash"`
}

type JoinCampaignRequest struct {
	UserWallet string `json:"user_wallet" binding:"required"`
	TxHash     string `json:"tx_hash" binding:"required"`
}

type JoinCampaignResponse struct {
	Joined bool   `json:"joined"`
	Drift  bool   `json:"drift"` // 链上已加入但本地落库延迟，等待下次读取修复
	Reason string `json:"reason,omitempty"`
}

type SubmitTaskRequest struct {
	UserWallet     string `json:"user_wallet" binding:"required"`
	TaskType       string `json:"task_type" binding:"required,oneof=follow_account make_post custom"`
	SubmissionData string `json:"submission_data"`
}

type SubmitTaskResponse struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Completed bool   `json:"completed"`           // 是否因本次提交集齐全部任务
	Duplicate bool   `json:"duplicate,omitempty"` // 重复提交被幂等吞掉
}

type SubmissionStatusResponse struct {
	Exists bool   `json:"exists"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type DepositQuoteResponse struct {
	RewardAmount   string `json:"reward_amount"`
	PlatformFee    string `json:"platform_fee"`
	TotalDeposit   string `json:"total_deposit"`
	FeeRatePercent int64  `json:"fee_rate_percent"`
	TokenDecimals  int32  `json:"token_decimals"`
	DepositUnits   string `json:"deposit_units"`       // 链上整数单位
	Allowance      string `json:"allowance,omitempty"` // stable_token 路径当前授权额度
	Balance        string `json:"balance,omitempty"`   // stable_token 路径 owner 当前余额
	NeedApprove    *bool  `json:"need_approve,omitempty"`
	// 服务端预读的合约计数器，客户端提交创建交易后原样带回激活请求，
	// 作为回执解析不到事件时的兜底
	NextOnChainCampaignID *int64 `json:"next_on_chain_campaign_id,omitempty"`
}

// ReviewSubmissionRequest 人工审核裁决，只对 pending 提交生效
type ReviewSubmissionRequest struct {
	UserWallet string `json:"user_wallet" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	Reason     string `json:"reason" binding:"max=500"`
}

type ReviewSubmissionResponse struct {
	Status    string `json:"status"`
	Completed bool   `json:"completed"` // 审核通过后是否集齐全部任务
}

type CampaignDetail struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Status              string     `json:"status"`
	Funded              bool       `json:"funded"`
	RewardAmount        string     `json:"reward_amount"`
	RewardType          string     `json:"reward_type"`
	DistributionMethod  string     `json:"distribution_method"`
	NumberOfWinners     *int       `json:"number_of_winners,omitempty"`
	MaxParticipants     int        `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	OwnerAddress        string     `json:"owner_address"`
	OnChainID           *int64     `json:"on_chain_id,omitempty"`
	OnChainIDVerified   bool       `json:"on_chain_id_verified"`
	OnChainTxHash       string     `json:"on_chain_tx_hash,omitempty"`
	Tasks               []TaskItem `json:"tasks"`
}

type TaskItem struct {
	ID              int64  `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Enabled         bool   `json:"enabled"`
	AccountToFollow string `json:"account_to_follow,omitempty"`
	PointReward     int64  `json:"point_reward"`
}
