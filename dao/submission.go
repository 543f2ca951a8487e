package dao

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// CreateSubmission 幂等写入：唯一索引冲突时 DoNothing，
// 返回 created=false 表示该 (campaign, task, user, kind) 已有记录。
func (d *Dao) CreateSubmission(c context.Context, sub *campaign.Submission) (bool, error) {
	res := d.DB.WithContext(c).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(sub)
	return res.RowsAffected > 0, res.Error
}

func (d *Dao) GetSubmission(c context.Context, campaignID string, taskID int64, userAddress string, kind campaign.SubmissionKind) (*campaign.Submission, error) {
	var sub campaign.Submission
	err := d.DB.WithContext(c).
		Table(campaign.SubmissionTableName()).
		Where("campaign_id = ? and task_id = ? and user_address = ? and kind = ?", campaignID, taskID, userAddress, kind).
		First(&sub).Error
	return &sub, err
}

func (d *Dao) HasJoinRecord(c context.Context, campaignID, userAddress string) (bool, error) {
	var count int64
	err := d.DB.WithContext(c).
		Table(campaign.SubmissionTableName()).
		Where("campaign_id = ? and user_address = ? and kind = ?", campaignID, userAddress, campaign.KindJoinRecord).
		Count(&count).Error
	return count > 0, err
}

func (d *Dao) UpdateSubmissionStatus(c context.Context, id int64, status campaign.SubmissionStatus, reason string) error {
	return d.DB.WithContext(c).
		Table(campaign.SubmissionTableName()).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": status,
			"reason": reason,
		}).Error
}

// CountApprovedCompletions 统计某用户在活动下已通过的任务完成数
func (d *Dao) CountApprovedCompletions(c context.Context, campaignID, userAddress string) (int64, error) {
	var count int64
	err := d.DB.WithContext(c).
		Table(campaign.SubmissionTableName()).
		Where("campaign_id = ? and user_address = ? and kind = ? and status = ?",
			campaignID, userAddress, campaign.KindTaskCompletion, campaign.SubmissionApproved).
		Count(&count).Error
	return count, err
}

// CreateAwardEvent 完成奖励事件，幂等键唯一索引兜底。
// 返回 fired=true 表示本次调用抢到了唯一的一次触发权。
func (d *Dao) CreateAwardEvent(c context.Context, event *campaign.QuestAwardEvent) (bool, error) {
	res := d.DB.WithContext(c).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(event)
	return res.RowsAffected > 0, res.Error
}

func (d *Dao) GetAwardEvent(c context.Context, idempotencyKey string) (*campaign.QuestAwardEvent, error) {
	var event campaign.QuestAwardEvent
	err := d.DB.WithContext(c).
		Table(campaign.QuestAwardEventTableName()).
		Where("idempotency_key = ?", idempotencyKey).
		First(&event).Error
	return &event, err
}

func (d *Dao) UpdateAwardEvent(c context.Context, idempotencyKey string, status campaign.AwardStatus, txHash, lastError string) error {
	return d.DB.WithContext(c).
		Table(campaign.QuestAwardEventTableName()).
		Where("idempotency_key = ?", idempotencyKey).
		Updates(map[string]interface{}{
			"status":     status,
			"tx_hash":    txHash,
			"last_error": lastError,
		}).Error
}

// ListRetryableAwards 捞出推送失败待重试的奖励事件（启动对账用）
func (d *Dao) ListRetryableAwards(c context.Context, limit int) ([]campaign.QuestAwardEvent, error) {
	var events []campaign.QuestAwardEvent
	err := d.DB.WithContext(c).
		Table(campaign.QuestAwardEventTableName()).
		Where("status in ?", []campaign.AwardStatus{campaign.AwardPending, campaign.AwardFailed}).
		Order("created_at").Limit(limit).Find(&events).Error
	return events, err
}
