package campaign

import "time"

type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusActive    CampaignStatus = "active"
	StatusEnded     CampaignStatus = "ended"
	StatusCancelled CampaignStatus = "cancelled"
)

type RewardType string

const (
	RewardNativeCoin  RewardType = "native_coin"
	RewardStableToken RewardType = "stable_token"
)

type DistributionMethod string

const (
	DistributionLuckyDraw  DistributionMethod = "lucky_draw"
	DistributionEqualSplit DistributionMethod = "equal_split"
)

// Campaign 活动表。OnChainID 仅在链上创建确认后写入，
// 约束：OnChainID 非空 当且仅当 Funded==true 且状态离开 draft。
type Campaign struct {
	ID                  string             `gorm:"primaryKey;size:36" json:"id"`
	Title               string             `gorm:"size:200;not null" json:"title"`
	Description         string             `gorm:"type:text" json:"description"`
	Status              CampaignStatus     `gorm:"size:20;not null;default:draft;index" json:"status"`
	Funded              bool               `gorm:"not null;default:false" json:"funded"`
	RewardAmount        string             `gorm:"size:78;not null" json:"reward_amount"` // 十进制字符串，精度由 RewardType 决定
	RewardType          RewardType         `gorm:"size:20;not null" json:"reward_type"`
	DistributionMethod  DistributionMethod `gorm:"size:20;not null" json:"distribution_method"`
	NumberOfWinners     *int               `gorm:"" json:"number_of_winners,omitempty"` // lucky_draw 必填
	MaxParticipants     int                `gorm:"not null" json:"max_participants"`
	CurrentParticipants int                `gorm:"not null;default:0" json:"current_participants"`
	StartDate           time.Time          `json:"start_date"`
	EndDate             time.Time          `json:"end_date"`
	OwnerAddress        string             `gorm:"size:64;not null;index" json:"owner_address"`
	OnChainID           *int64             `gorm:"uniqueIndex" json:"on_chain_id,omitempty"`
	OnChainIDVerified   bool               `gorm:"not null;default:false" json:"on_chain_id_verified"`
	OnChainTxHash       string             `gorm:"size:80;index" json:"on_chain_tx_hash,omitempty"`
	EndTxHash           string             `gorm:"size:80" json:"end_tx_hash,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func CampaignTableName() string {
	return "campaigns"
}

func (Campaign) TableName() string {
	return CampaignTableName()
}

// legalTransitions 状态机合法迁移表，confirm 路径只认这里列出的边
var legalTransitions = map[CampaignStatus][]CampaignStatus{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusEnded},
}

func CanTransition(from, to CampaignStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TokenDecimals 返回奖励代币的链上精度
func (r RewardType) TokenDecimals() int32 {
	if r == RewardStableToken {
		return 6
	}
	return 18
}

func (r RewardType) Valid() bool {
	return r == RewardNativeCoin || r == RewardStableToken
}

func (d DistributionMethod) Valid() bool {
	return d == DistributionLuckyDraw || d == DistributionEqualSplit
}
