package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// CreateCampaign 活动与任务同事务落库
func (d *Dao) CreateCampaign(c context.Context, cam *campaign.Campaign, tasks []campaign.CampaignTask) error {
	return d.DB.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cam).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].CampaignID = cam.ID
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Dao) GetCampaignByID(c context.Context, id string) (*campaign.Campaign, error) {
	var cam campaign.Campaign
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).Where("id = ?", id).First(&cam).Error
	return &cam, err
}

// GetCampaignByTxHash monitor 按创建交易哈希回查活动
func (d *Dao) GetCampaignByTxHash(c context.Context, txHash string) (*campaign.Campaign, error) {
	var cam campaign.Campaign
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).Where("on_chain_tx_hash = ?", txHash).First(&cam).Error
	return &cam, err
}

func (d *Dao) GetCampaignByOnChainID(c context.Context, onChainID int64) (*campaign.Campaign, error) {
	var cam campaign.Campaign
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).Where("on_chain_id = ?", onChainID).First(&cam).Error
	return &cam, err
}

func (d *Dao) ListCampaigns(c context.Context, owner string, status campaign.CampaignStatus, page, pageSize int) ([]campaign.Campaign, error) {
	var cams []campaign.Campaign
	q := d.DB.WithContext(c).Table(campaign.CampaignTableName())
	if owner != "" {
		q = q.Where("owner_address = ?", owner)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&cams).Error
	return cams, err
}

func (d *Dao) GetCampaignTasks(c context.Context, campaignID string) ([]campaign.CampaignTask, error) {
	var tasks []campaign.CampaignTask
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTaskTableName()).Where("campaign_id = ?", campaignID).Find(&tasks).Error
	return tasks, err
}

func (d *Dao) GetCampaignTask(c context.Context, campaignID string, taskID int64) (*campaign.CampaignTask, error) {
	var task campaign.CampaignTask
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTaskTableName()).Where("campaign_id = ? and id = ?", campaignID, taskID).First(&task).Error
	return &task, err
}

func (d *Dao) CountEnabledTasks(c context.Context, campaignID string) (int64, error) {
	var count int64
	err := d.DB.WithContext(c).
		Table(campaign.CampaignTaskTableName()).
		Where("campaign_id = ? and enabled = ?", campaignID, true).Count(&count).Error
	return count, err
}

// ConfirmActivation 激活确认，CAS：只有 draft 且未注资的行会被改写。
// 返回 false 表示没有行命中（已激活过或状态不对），由调用方判定是否幂等重放。
func (d *Dao) ConfirmActivation(c context.Context, id string, onChainID int64, txHash string, verified bool) (bool, error) {
	res := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).
		Where("id = ? and status = ? and funded = ?", id, campaign.StatusDraft, false).
		Updates(map[string]interface{}{
			"status":               campaign.StatusActive,
			"funded":               true,
			"on_chain_id":          onChainID,
			"on_chain_id_verified": verified,
			"on_chain_tx_hash":     txHash,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkOnChainIDVerified 事件回执校准乐观预读的活动ID
func (d *Dao) MarkOnChainIDVerified(c context.Context, id string, onChainID int64) error {
	return d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"on_chain_id":          onChainID,
			"on_chain_id_verified": true,
		}).Error
}

// ConfirmEnd 结束确认，CAS：只有 active 的行会被改写
func (d *Dao) ConfirmEnd(c context.Context, id string, txHash string) (bool, error) {
	res := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).
		Where("id = ? and status = ?", id, campaign.StatusActive).
		Updates(map[string]interface{}{
			"status":      campaign.StatusEnded,
			"end_tx_hash": txHash,
		})
	return res.RowsAffected > 0, res.Error
}

// CancelCampaign 仅允许取消未注资的草稿
func (d *Dao) CancelCampaign(c context.Context, id string) (bool, error) {
	res := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).
		Where("id = ? and status = ? and funded = ?", id, campaign.StatusDraft, false).
		Update("status", campaign.StatusCancelled)
	return res.RowsAffected > 0, res.Error
}

// IncrementParticipants 参与人数 +1，CAS 保证不超过 max_participants
func (d *Dao) IncrementParticipants(c context.Context, id string) (bool, error) {
	res := d.DB.WithContext(c).
		Table(campaign.CampaignTableName()).
		Where("id = ? and current_participants < max_participants", id).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	return res.RowsAffected > 0, res.Error
}
