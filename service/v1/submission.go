package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"
	"gorm.io/gorm"

	qcommon "github.com/locey/QuestFlow/QuestFlowEnd/common"
	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
	"github.com/locey/QuestFlow/QuestFlowEnd/logger/xzap"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
	"github.com/locey/QuestFlow/QuestFlowEnd/types/v1"
)

// JoinCampaign 两阶段加入：先核验链上登记，再写本地 join_record。
// 阶段二失败不吞掉——标记 drift 返回，后续读取路径负责补写。
func JoinCampaign(ctx context.Context, s *svc.ServerCtx, campaignID string, req types.JoinCampaignRequest) (*types.JoinCampaignResponse, error) {
	user, err := qcommon.UnifyAddress(req.UserWallet)
	if err != nil {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}
	if !qcommon.IsTxHash(req.TxHash) {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "tx_hash is not a valid transaction hash")
	}

	cam, err := s.Dao.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}
	if cam.Status != campaign.StatusActive || !cam.Funded {
		return nil, errcode.NewConflictErr("campaign is not active")
	}
	now := time.Now()
	if now.Before(cam.StartDate) || now.After(cam.EndDate) {
		return nil, errcode.NewConflictErr("campaign is outside its time window")
	}

	// 已有记录直接幂等返回
	if joined, err := s.Dao.HasJoinRecord(ctx, campaignID, user); err == nil && joined {
		return &types.JoinCampaignResponse{Joined: true}, nil
	}

	// 阶段一：链上登记核验
	if s.CampaignContract != nil && cam.OnChainID != nil {
		onChain, err := VerifyJoinOnChain(ctx, s, *cam.OnChainID, user, req.TxHash)
		if err != nil {
			return nil, errcode.NewChainErr(err.Error())
		}
		if !onChain {
			return nil, errcode.NewErr(errcode.CodeInvalidParams, "join transaction is not confirmed on chain")
		}
	}

	// 阶段二：落地 join_record，失败重试几次后降级为 drift
	created, err := createJoinRecord(ctx, s, campaignID, user, req.TxHash)
	if err != nil {
		xzap.WithContext(ctx).Warn("join drift: on-chain join confirmed but off-chain write failed",
			zap.String("campaignId", campaignID),
			zap.String("user", user),
			zap.String("txHash", req.TxHash),
			zap.Error(err))
		return &types.JoinCampaignResponse{
			Joined: true,
			Drift:  true,
			Reason: "join recorded on chain, local record pending refresh",
		}, nil
	}

	if created {
		if ok, err := s.Dao.IncrementParticipants(ctx, campaignID); err != nil {
			xzap.WithContext(ctx).Warn("participant counter update failed",
				zap.String("campaignId", campaignID), zap.Error(err))
		} else if !ok {
			xzap.WithContext(ctx).Warn("participant counter already at max",
				zap.String("campaignId", campaignID))
		}
	}
	return &types.JoinCampaignResponse{Joined: true}, nil
}

func createJoinRecord(ctx context.Context, s *svc.ServerCtx, campaignID, user, txHash string) (bool, error) {
	sub := &campaign.Submission{
		CampaignID:  campaignID,
		TaskID:      0,
		UserAddress: user,
		Kind:        campaign.KindJoinRecord,
		Status:      campaign.SubmissionApproved,
		TxHash:      txHash,
	}
	var created bool
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		created, err = s.Dao.CreateSubmission(ctx, sub)
		if err == nil {
			return created, nil
		}
		time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
	}
	return false, err
}

// SubmitTask 任务提交入口：校验 → 自动审核 → 幂等落库 → 完成度检查
func SubmitTask(ctx context.Context, s *svc.ServerCtx, campaignID string, taskID int64, req types.SubmitTaskRequest) (*types.SubmitTaskResponse, error) {
	user, err := qcommon.UnifyAddress(req.UserWallet)
	if err != nil {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}

	cam, err := s.Dao.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}
	if cam.Status != campaign.StatusActive || !cam.Funded {
		return nil, errcode.NewConflictErr("campaign is not active")
	}

	task, err := s.Dao.GetCampaignTask(ctx, campaignID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.NewErr(errcode.CodeNotFound, "task not found in campaign")
		}
		return nil, err
	}
	if !task.Enabled {
		return nil, errcode.NewConflictErr("task is disabled")
	}
	if string(task.Type) != req.TaskType {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "task_type does not match the task")
	}

	// 任务提交必须先有 join_record；本地缺失时尝试用链上登记补
	hasJoin, err := s.Dao.HasJoinRecord(ctx, campaignID, user)
	if err != nil {
		return nil, err
	}
	if !hasJoin {
		if !repairJoinRecord(ctx, s, cam, user) {
			return nil, errcode.NewErr(errcode.CodeInvalidParams, "user has not joined the campaign")
		}
	}

	verdict := VerifyTaskSubmission(task.Type, req.SubmissionData)

	sub := &campaign.Submission{
		CampaignID:     campaignID,
		TaskID:         taskID,
		UserAddress:    user,
		Kind:           campaign.KindTaskCompletion,
		Status:         verdict.Status,
		SubmissionData: req.SubmissionData,
		Reason:         verdict.Reason,
	}
	created, err := s.Dao.CreateSubmission(ctx, sub)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create submission")
	}
	if !created {
		// 唯一索引挡掉的重复提交：保留首次记录，本次按 no-op 返回
		existing, err := s.Dao.GetSubmission(ctx, campaignID, taskID, user, campaign.KindTaskCompletion)
		if err != nil {
			return nil, err
		}
		return &types.SubmitTaskResponse{
			Status:    string(existing.Status),
			Reason:    existing.Reason,
			Duplicate: true,
		}, nil
	}

	resp := &types.SubmitTaskResponse{
		Status: string(verdict.Status),
		Reason: verdict.Reason,
	}
	if verdict.Approved() {
		fired, err := checkCompletion(ctx, s, campaignID, user)
		if err != nil {
			xzap.WithContext(ctx).Warn("completion check failed",
				zap.String("campaignId", campaignID), zap.String("user", user), zap.Error(err))
		}
		resp.Completed = fired
	}
	return resp, nil
}

// checkCompletion 审核通过后的完成度检查。幂等键唯一索引保证
// 同一 (campaign, user) 只触发一次完成奖励，后续无关审核不会重放。
func checkCompletion(ctx context.Context, s *svc.ServerCtx, campaignID, user string) (bool, error) {
	enabled, err := s.Dao.CountEnabledTasks(ctx, campaignID)
	if err != nil {
		return false, err
	}
	if enabled == 0 {
		return false, nil
	}
	approved, err := s.Dao.CountApprovedCompletions(ctx, campaignID, user)
	if err != nil {
		return false, err
	}
	if approved != enabled {
		return false, nil
	}

	event := &campaign.QuestAwardEvent{
		CampaignID:     campaignID,
		UserAddress:    user,
		IdempotencyKey: campaign.AwardIdempotencyKey(campaignID, user),
		Points:         s.C.Points.CompletionBonus,
		Status:         campaign.AwardPending,
	}
	fired, err := s.Dao.CreateAwardEvent(ctx, event)
	if err != nil {
		return false, err
	}
	if !fired {
		return false, nil
	}

	xzap.WithContext(ctx).Info("full completion award fired",
		zap.String("campaignId", campaignID),
		zap.String("user", user),
		zap.Int64("points", event.Points))

	// 链上推送是尽力而为的副作用，异步执行，失败不影响已落库的审核
	if s.CampaignContract != nil {
		threading.GoSafe(func() {
			PushQuestScore(context.Background(), s, event)
		})
	}
	return true, nil
}

// reviewOutcome 人工审核裁决归一化，只认 approved / rejected
func reviewOutcome(status string) (campaign.SubmissionStatus, bool) {
	switch campaign.SubmissionStatus(status) {
	case campaign.SubmissionApproved, campaign.SubmissionRejected:
		return campaign.SubmissionStatus(status), true
	}
	return "", false
}

// ReviewSubmission 人工审核：pending 提交的终审入口（custom 任务和
// 自动校验未通过的 make_post 都停在 pending）。通过后照常走完成度检查。
func ReviewSubmission(ctx context.Context, s *svc.ServerCtx, campaignID string, taskID int64, req types.ReviewSubmissionRequest) (*types.ReviewSubmissionResponse, error) {
	user, err := qcommon.UnifyAddress(req.UserWallet)
	if err != nil {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}
	status, ok := reviewOutcome(req.Status)
	if !ok {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "status must be approved or rejected")
	}

	sub, err := s.Dao.GetSubmission(ctx, campaignID, taskID, user, campaign.KindTaskCompletion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.NewErr(errcode.CodeNotFound, "submission not found")
		}
		return nil, err
	}
	if sub.Status != campaign.SubmissionPending {
		return nil, errcode.NewConflictErr("submission has already been reviewed")
	}

	if err := s.Dao.UpdateSubmissionStatus(ctx, sub.ID, status, req.Reason); err != nil {
		return nil, errors.Wrap(err, "failed on update submission status")
	}

	xzap.WithContext(ctx).Info("submission reviewed",
		zap.String("campaignId", campaignID),
		zap.Int64("taskId", taskID),
		zap.String("user", user),
		zap.String("status", string(status)))

	resp := &types.ReviewSubmissionResponse{Status: string(status)}
	if status == campaign.SubmissionApproved {
		fired, err := checkCompletion(ctx, s, campaignID, user)
		if err != nil {
			xzap.WithContext(ctx).Warn("completion check failed",
				zap.String("campaignId", campaignID), zap.String("user", user), zap.Error(err))
		}
		resp.Completed = fired
	}
	return resp, nil
}

// repairJoinRecord 读取路径的 drift 修复：链上已登记但本地缺
// join_record 时，用已知链上状态幂等补写。
func repairJoinRecord(ctx context.Context, s *svc.ServerCtx, cam *campaign.Campaign, user string) bool {
	if s.CampaignContract == nil || cam.OnChainID == nil {
		return false
	}
	joined, err := s.CampaignContract.IsParticipant(ctx, *cam.OnChainID, user)
	if err != nil || !joined {
		return false
	}
	created, err := createJoinRecord(ctx, s, cam.ID, user, "")
	if err != nil {
		xzap.WithContext(ctx).Warn("join drift repair failed",
			zap.String("campaignId", cam.ID), zap.String("user", user), zap.Error(err))
		return false
	}
	if created {
		xzap.WithContext(ctx).Info("join drift repaired from on-chain registry",
			zap.String("campaignId", cam.ID), zap.String("user", user))
		if _, err := s.Dao.IncrementParticipants(ctx, cam.ID); err != nil {
			xzap.WithContext(ctx).Warn("participant counter update failed",
				zap.String("campaignId", cam.ID), zap.Error(err))
		}
	}
	return true
}

// GetSubmissionStatus 提交状态查询，顺带做一次 join drift 修复
func GetSubmissionStatus(ctx context.Context, s *svc.ServerCtx, campaignID string, taskID int64, userWallet string) (*types.SubmissionStatusResponse, error) {
	user, err := qcommon.UnifyAddress(userWallet)
	if err != nil {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}

	sub, err := s.Dao.GetSubmission(ctx, campaignID, taskID, user, campaign.KindTaskCompletion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 查不到提交时看看 join 记录是否漂移，修上
			if cam, cerr := s.Dao.GetCampaignByID(ctx, campaignID); cerr == nil {
				if hasJoin, jerr := s.Dao.HasJoinRecord(ctx, campaignID, user); jerr == nil && !hasJoin {
					repairJoinRecord(ctx, s, cam, user)
				}
			}
			return &types.SubmissionStatusResponse{Exists: false}, nil
		}
		return nil, err
	}

	return &types.SubmissionStatusResponse{
		Exists: true,
		Status: string(sub.Status),
		Reason: sub.Reason,
	}, nil
}
