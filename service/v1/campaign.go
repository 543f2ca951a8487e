package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	qcommon "github.com/locey/QuestFlow/QuestFlowEnd/common"
	"github.com/locey/QuestFlow/QuestFlowEnd/config"
	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
	"github.com/locey/QuestFlow/QuestFlowEnd/logger/xzap"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
	"github.com/locey/QuestFlow/QuestFlowEnd/types/v1"
)

// CreateCampaign 建草稿活动。只做校验和落库，不碰链。
func CreateCampaign(ctx context.Context, s *svc.ServerCtx, req types.CreateCampaignRequest) (string, error) {
	owner, err := qcommon.UnifyAddress(req.OwnerAddress)
	if err != nil {
		return "", errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return "", errcode.NewErr(errcode.CodeInvalidParams, "start_date is not a valid RFC3339 time")
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return "", errcode.NewErr(errcode.CodeInvalidParams, "end_date is not a valid RFC3339 time")
	}
	if !endDate.After(startDate) {
		return "", errcode.NewErr(errcode.CodeInvalidParams, "end_date must be after start_date")
	}

	reward, err := decimal.NewFromString(req.RewardAmount)
	if err != nil || !reward.IsPositive() {
		return "", errcode.NewErr(errcode.CodeInvalidParams, "reward_amount must be a positive decimal")
	}

	rewardType := campaign.RewardType(req.RewardType)
	method := campaign.DistributionMethod(req.DistributionMethod)
	if !method.Valid() {
		return "", errcode.NewErr(errcode.CodeInvalidParams, "unknown distribution method")
	}

	if method == campaign.DistributionLuckyDraw {
		if req.NumberOfWinners == nil || *req.NumberOfWinners <= 0 {
			return "", errcode.NewErr(errcode.CodeInvalidParams, "number_of_winners is required for lucky_draw")
		}
		if *req.NumberOfWinners > req.MaxParticipants {
			return "", errcode.NewErr(errcode.CodeInvalidParams, "number_of_winners must not exceed max_participants")
		}
	}

	// 提前验一遍注资报价，金额超出代币精度在这里就拒掉
	if _, err := QuoteDeposit(req.RewardAmount, rewardType, s.C.Fee.RatePercent); err != nil {
		return "", errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}

	tasks := make([]campaign.CampaignTask, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		taskType := campaign.TaskType(t.Type)
		if taskType == campaign.TaskFollowAccount && t.AccountToFollow == "" {
			return "", errcode.NewErr(errcode.CodeInvalidParams, "account_to_follow is required for follow_account task")
		}
		enabled := true
		if t.Enabled != nil {
			enabled = *t.Enabled
		}
		tasks = append(tasks, campaign.CampaignTask{
			Type:             taskType,
			Title:            t.Title,
			Enabled:          enabled,
			AccountToFollow:  t.AccountToFollow,
			RequiredHashtags: joinList(t.RequiredHashtags),
			RequiredMentions: joinList(t.RequiredMentions),
			PostLimit:        t.PostLimit,
			PointReward:      PointRewardFor(s.C, taskType),
		})
	}

	cam := &campaign.Campaign{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Description:        req.Description,
		Status:             campaign.StatusDraft,
		Funded:             false,
		RewardAmount:       reward.String(),
		RewardType:         rewardType,
		DistributionMethod: method,
		NumberOfWinners:    req.NumberOfWinners,
		MaxParticipants:    req.MaxParticipants,
		StartDate:          startDate,
		EndDate:            endDate,
		OwnerAddress:       owner,
	}

	if err := s.Dao.CreateCampaign(ctx, cam, tasks); err != nil {
		return "", errors.Wrap(err, "failed on create campaign")
	}

	xzap.WithContext(ctx).Info("campaign created",
		zap.String("campaignId", cam.ID), zap.String("owner", owner))
	return cam.ID, nil
}

// PointRewardFor 按任务类型取积分配置
func PointRewardFor(c *config.Config, t campaign.TaskType) int64 {
	switch t {
	case campaign.TaskMakePost:
		return c.Points.PostReward
	case campaign.TaskFollowAccount:
		return c.Points.FollowReward
	default:
		return c.Points.CustomReward
	}
}

func joinList(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out
}

// ensureTransition 状态迁移守卫，合法边只认 campaign.CanTransition 的迁移表
func ensureTransition(from, to campaign.CampaignStatus) error {
	if !campaign.CanTransition(from, to) {
		return errcode.NewConflictErr(fmt.Sprintf("campaign status %s does not allow %s", from, to))
	}
	return nil
}

// ensureOwner owner 专属操作的归属校验
func ensureOwner(cam *campaign.Campaign, address string) error {
	owner, err := qcommon.UnifyAddress(address)
	if err != nil {
		return errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}
	if owner != cam.OwnerAddress {
		return errcode.NewErr(errcode.CodeUnauthorized, "only the campaign owner can perform this action")
	}
	return nil
}

// GetCampaignDetail 活动详情（含任务列表）
func GetCampaignDetail(ctx context.Context, s *svc.ServerCtx, id string) (*types.CampaignDetail, error) {
	cam, err := s.Dao.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}

	tasks, err := s.Dao.GetCampaignTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &types.CampaignDetail{
		ID:                  cam.ID,
		Title:               cam.Title,
		Description:         cam.Description,
		Status:              string(cam.Status),
		Funded:              cam.Funded,
		RewardAmount:        cam.RewardAmount,
		RewardType:          string(cam.RewardType),
		DistributionMethod:  string(cam.DistributionMethod),
		NumberOfWinners:     cam.NumberOfWinners,
		MaxParticipants:     cam.MaxParticipants,
		CurrentParticipants: cam.CurrentParticipants,
		StartDate:           cam.StartDate,
		EndDate:             cam.EndDate,
		OwnerAddress:        cam.OwnerAddress,
		OnChainID:           cam.OnChainID,
		OnChainIDVerified:   cam.OnChainIDVerified,
		OnChainTxHash:       cam.OnChainTxHash,
	}
	for _, t := range tasks {
		detail.Tasks = append(detail.Tasks, types.TaskItem{
			ID:              t.ID,
			Type:            string(t.Type),
			Title:           t.Title,
			Enabled:         t.Enabled,
			AccountToFollow: t.AccountToFollow,
			PointReward:     t.PointReward,
		})
	}
	return detail, nil
}

func ListCampaigns(ctx context.Context, s *svc.ServerCtx, owner string, status string, page, pageSize int) ([]campaign.Campaign, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.Dao.ListCampaigns(ctx, owner, campaign.CampaignStatus(status), page, pageSize)
}

// GetDepositQuote 注资报价。stable_token 路径附带当前授权额度，
// 前端据此决定是否还需要先发 approve。
func GetDepositQuote(ctx context.Context, s *svc.ServerCtx, id string) (*types.DepositQuoteResponse, error) {
	cam, err := s.Dao.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}

	quote, err := QuoteDeposit(cam.RewardAmount, cam.RewardType, s.C.Fee.RatePercent)
	if err != nil {
		return nil, err
	}

	resp := &types.DepositQuoteResponse{
		RewardAmount:   quote.RewardAmount.String(),
		PlatformFee:    quote.PlatformFee.String(),
		TotalDeposit:   quote.TotalDeposit.String(),
		FeeRatePercent: quote.FeeRatePercent,
		TokenDecimals:  quote.TokenDecimals,
		DepositUnits:   quote.DepositUnits.String(),
	}

	// 草稿活动的报价顺带预读合约计数器，激活请求原样带回作兜底
	if cam.Status == campaign.StatusDraft && s.CampaignContract != nil {
		if next, err := NextOnChainCampaignID(ctx, s); err != nil {
			xzap.WithContext(ctx).Warn("next campaign id pre-read failed",
				zap.String("campaignId", id), zap.Error(err))
		} else {
			resp.NextOnChainCampaignID = &next
		}
	}

	if cam.RewardType == campaign.RewardStableToken && s.CampaignContract != nil {
		allowance, err := s.CampaignContract.Allowance(ctx, cam.OwnerAddress)
		if err != nil {
			// 额度查不到不阻塞报价，前端可稍后刷新
			xzap.WithContext(ctx).Warn("allowance query failed",
				zap.String("campaignId", id), zap.Error(err))
		} else {
			need := allowance.Cmp(quote.DepositUnits) < 0
			resp.Allowance = allowance.String()
			resp.NeedApprove = &need
		}
		if balance, err := s.CampaignContract.BalanceOf(ctx, cam.OwnerAddress); err != nil {
			xzap.WithContext(ctx).Warn("balance query failed",
				zap.String("campaignId", id), zap.Error(err))
		} else {
			resp.Balance = balance.String()
		}
	}
	return resp, nil
}

// ActivateCampaign 激活确认。链上回执是事实来源，确认按
// (campaignId, txHash) 幂等，重放不产生第二笔链上交易。
func ActivateCampaign(ctx context.Context, s *svc.ServerCtx, id string, req types.ActivateCampaignRequest) (*types.CampaignDetail, error) {
	if !qcommon.IsTxHash(req.OnChainTxHash) {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "on_chain_tx_hash is not a valid transaction hash")
	}

	cam, err := s.Dao.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}

	if cam.Funded {
		if cam.OnChainTxHash == req.OnChainTxHash {
			// 重复确认，幂等返回
			return GetCampaignDetail(ctx, s, id)
		}
		return nil, errcode.NewConflictErr("campaign is already funded")
	}
	if err := ensureTransition(cam.Status, campaign.StatusActive); err != nil {
		return nil, err
	}

	onChainID := int64(0)
	verified := false
	if s.CampaignContract != nil {
		onChainID, verified, err = VerifyActivationReceipt(ctx, s, req.OnChainTxHash, req.OnChainCampaignID)
		if err != nil {
			return nil, errcode.NewChainErr(err.Error())
		}
	} else {
		// 离线模式：信任客户端预读的计数器，标记未核实
		if req.OnChainCampaignID == nil {
			return nil, errcode.NewErr(errcode.CodeInvalidParams, "on_chain_campaign_id is required when chain layer is disabled")
		}
		onChainID = *req.OnChainCampaignID
	}

	updated, err := s.Dao.ConfirmActivation(ctx, id, onChainID, req.OnChainTxHash, verified)
	if err != nil {
		// 链上已成功、本地写失败：典型 drift，必须把修复所需状态吐出去
		xzap.WithContext(ctx).Error("activation drift: chain confirmed but off-chain write failed",
			zap.String("campaignId", id),
			zap.String("txHash", req.OnChainTxHash),
			zap.Int64("onChainId", onChainID),
			zap.Error(err))
		return nil, errcode.NewChainErr("activation recorded on chain, local confirmation pending refresh")
	}
	if !updated {
		// CAS 落空说明并发确认已先行，按同哈希判定幂等
		cam, rerr := s.Dao.GetCampaignByID(ctx, id)
		if rerr == nil && cam.Funded && cam.OnChainTxHash == req.OnChainTxHash {
			return GetCampaignDetail(ctx, s, id)
		}
		return nil, errcode.NewConflictErr("campaign is already funded")
	}

	xzap.WithContext(ctx).Info("campaign activated",
		zap.String("campaignId", id),
		zap.Int64("onChainId", onChainID),
		zap.Bool("verified", verified),
		zap.String("txHash", req.OnChainTxHash))
	return GetCampaignDetail(ctx, s, id)
}

// UpdateCampaign PATCH 入口：end 走链上结清确认，cancel 只认未注资草稿。
// 两种操作都先做归属校验。
func UpdateCampaign(ctx context.Context, s *svc.ServerCtx, id string, req types.UpdateCampaignRequest) (*types.CampaignDetail, error) {
	switch req.Action {
	case "end":
		return endCampaign(ctx, s, id, req)
	case "cancel":
		return cancelCampaign(ctx, s, id, req)
	default:
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "unsupported action")
	}
}

func endCampaign(ctx context.Context, s *svc.ServerCtx, id string, req types.UpdateCampaignRequest) (*types.CampaignDetail, error) {
	txHash := req.TransactionHash
	if !qcommon.IsTxHash(txHash) {
		return nil, errcode.NewErr(errcode.CodeInvalidParams, "transaction_hash is not a valid transaction hash")
	}

	cam, err := s.Dao.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}
	if err := ensureOwner(cam, req.OwnerAddress); err != nil {
		return nil, err
	}

	if cam.Status == campaign.StatusEnded {
		if cam.EndTxHash == txHash {
			return GetCampaignDetail(ctx, s, id)
		}
		return nil, errcode.NewConflictErr("campaign is already ended")
	}
	if err := ensureTransition(cam.Status, campaign.StatusEnded); err != nil {
		return nil, err
	}
	if !cam.Funded {
		return nil, errcode.NewConflictErr("campaign is not funded")
	}
	if time.Now().Before(cam.EndDate) {
		return nil, errcode.NewConflictErr("campaign end date has not been reached")
	}

	if s.CampaignContract != nil {
		receipt, err := WaitReceipt(ctx, s, txHash)
		if err != nil {
			return nil, errcode.NewChainErr(err.Error())
		}
		if receipt.Status == 0 {
			return nil, errcode.NewChainErr("distribution transaction reverted")
		}
	}

	updated, err := s.Dao.ConfirmEnd(ctx, id, txHash)
	if err != nil {
		xzap.WithContext(ctx).Error("end drift: chain confirmed but off-chain write failed",
			zap.String("campaignId", id), zap.String("txHash", txHash), zap.Error(err))
		return nil, errcode.NewChainErr("distribution confirmed on chain, local confirmation pending refresh")
	}
	if !updated {
		cam, rerr := s.Dao.GetCampaignByID(ctx, id)
		if rerr == nil && cam.Status == campaign.StatusEnded && cam.EndTxHash == txHash {
			return GetCampaignDetail(ctx, s, id)
		}
		return nil, errcode.NewConflictErr("campaign is not active")
	}

	xzap.WithContext(ctx).Info("campaign ended",
		zap.String("campaignId", id), zap.String("txHash", txHash))
	return GetCampaignDetail(ctx, s, id)
}

func cancelCampaign(ctx context.Context, s *svc.ServerCtx, id string, req types.UpdateCampaignRequest) (*types.CampaignDetail, error) {
	cam, err := s.Dao.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.ErrNotFound
		}
		return nil, err
	}
	if err := ensureOwner(cam, req.OwnerAddress); err != nil {
		return nil, err
	}
	if err := ensureTransition(cam.Status, campaign.StatusCancelled); err != nil {
		return nil, err
	}
	if cam.Funded {
		return nil, errcode.NewConflictErr("funded campaigns cannot be cancelled")
	}

	// CAS 兜底并发下的重复取消
	updated, err := s.Dao.CancelCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, errcode.NewConflictErr("only unfunded draft campaigns can be cancelled")
	}
	return GetCampaignDetail(ctx, s, id)
}
