package service

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/locey/QuestFlow/QuestFlowEnd/contract"
	"github.com/locey/QuestFlow/QuestFlowEnd/logger/xzap"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// ChainErrKind 链上交易错误分类。insufficient-funds 与 revert 对本次尝试
// 是终态，不自动重试；nonce 与网络错误可带退避重试。
type ChainErrKind int

const (
	ChainErrNone ChainErrKind = iota
	ChainErrInsufficientFunds
	ChainErrNonce
	ChainErrRevert
	ChainErrNetwork
	ChainErrUnknown
)

func (k ChainErrKind) String() string {
	switch k {
	case ChainErrNone:
		return "none"
	case ChainErrInsufficientFunds:
		return "insufficient_funds"
	case ChainErrNonce:
		return "nonce_conflict"
	case ChainErrRevert:
		return "execution_revert"
	case ChainErrNetwork:
		return "network_unreachable"
	default:
		return "unknown"
	}
}

func (k ChainErrKind) Retryable() bool {
	return k == ChainErrNonce || k == ChainErrNetwork
}

// ClassifyChainError 按节点返回的错误文案归类
func ClassifyChainError(err error) ChainErrKind {
	if err == nil {
		return ChainErrNone
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return ChainErrInsufficientFunds
	case strings.Contains(msg, "nonce too low"),
		strings.Contains(msg, "nonce too high"),
		strings.Contains(msg, "replacement transaction underpriced"),
		strings.Contains(msg, "already known"):
		return ChainErrNonce
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "revert"):
		return ChainErrRevert
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "eof"),
		strings.Contains(msg, "network is unreachable"):
		return ChainErrNetwork
	default:
		return ChainErrUnknown
	}
}

// newChainBackoff 链上读取的退避策略：上限封死，拿不到就放弃，
// 绝不无限阻塞在 RPC 上。
func newChainBackoff(ctx context.Context, maxElapsed time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = maxElapsed
	return backoff.WithContext(b, ctx)
}

// WaitReceipt 带退避轮询回执；交易未上链视为可重试
func WaitReceipt(ctx context.Context, s *svc.ServerCtx, txHash string) (*ethtypes.Receipt, error) {
	var receipt *ethtypes.Receipt
	op := func() error {
		var err error
		receipt, err = s.CampaignContract.TransactionReceipt(ctx, txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return err // 还没出块，继续等
			}
			if ClassifyChainError(err).Retryable() {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(op, newChainBackoff(ctx, 90*time.Second)); err != nil {
		return nil, errors.Wrapf(err, "failed on fetch receipt for %s", txHash)
	}
	return receipt, nil
}

// NextOnChainCampaignID 预读合约计数器。SingleFlight 合并并发读，
// 同一时刻只打一次 RPC。
func NextOnChainCampaignID(ctx context.Context, s *svc.ServerCtx) (int64, error) {
	v, err := s.Flight.Do("next-campaign-id", func() (interface{}, error) {
		if s.CampaignContract == nil {
			return int64(0), errors.New("chain layer is disabled")
		}
		var next int64
		op := func() error {
			var err error
			next, err = s.CampaignContract.NextCampaignID(ctx)
			if err != nil && !ClassifyChainError(err).Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		if err := backoff.Retry(op, newChainBackoff(ctx, 30*time.Second)); err != nil {
			return int64(0), err
		}
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// VerifyActivationReceipt 校验创建交易并裁定链上活动ID。
// 事件日志里的ID是权威值；解析不到时退回调用方预读的计数器，
// 再不行用时间戳兜底，两种兜底都标记为未核实。
func VerifyActivationReceipt(ctx context.Context, s *svc.ServerCtx, txHash string, fallbackID *int64) (int64, bool, error) {
	receipt, err := WaitReceipt(ctx, s, txHash)
	if err != nil {
		return 0, false, err
	}
	if receipt.Status == 0 {
		return 0, false, errors.Errorf("creation transaction reverted: %s", txHash)
	}

	if id, ok := s.CampaignContract.ParseCampaignCreated(receipt); ok {
		return id, true, nil
	}

	if fallbackID != nil {
		xzap.WithContext(ctx).Warn("CampaignCreated event not found, using client counter",
			zap.String("txHash", txHash), zap.Int64("fallbackID", *fallbackID))
		return *fallbackID, false, nil
	}

	xzap.WithContext(ctx).Warn("CampaignCreated event not found and no counter supplied, using timestamp id",
		zap.String("txHash", txHash))
	return time.Now().UnixMilli(), false, nil
}

// VerifyJoinOnChain 两阶段加入的第一阶段核验：优先看回执里的
// CampaignJoined 事件，退化为 isParticipant 视图查询。
func VerifyJoinOnChain(ctx context.Context, s *svc.ServerCtx, onChainID int64, userAddress, txHash string) (bool, error) {
	receipt, err := WaitReceipt(ctx, s, txHash)
	if err == nil && receipt.Status == 1 {
		user := ethcommon.HexToAddress(userAddress)
		for _, vLog := range receipt.Logs {
			if len(vLog.Topics) >= 3 && vLog.Topics[0] == contract.CampaignJoinedTopic {
				if ethcommon.BytesToAddress(vLog.Topics[2].Bytes()) == user {
					return true, nil
				}
			}
		}
	}

	var joined bool
	op := func() error {
		var qerr error
		joined, qerr = s.CampaignContract.IsParticipant(ctx, onChainID, userAddress)
		if qerr != nil && !ClassifyChainError(qerr).Retryable() {
			return backoff.Permanent(qerr)
		}
		return qerr
	}
	if err := backoff.Retry(op, newChainBackoff(ctx, 30*time.Second)); err != nil {
		return false, errors.Wrap(err, "failed on isParticipant query")
	}
	return joined, nil
}

// PushQuestScore 全量完成后向链上推积分。尽力而为的副作用：
// 任何失败只更新奖励事件状态，绝不回滚已落库的审核结果。
func PushQuestScore(ctx context.Context, s *svc.ServerCtx, event *campaign.QuestAwardEvent) {
	log := xzap.WithContext(ctx)

	cam, err := s.Dao.GetCampaignByID(ctx, event.CampaignID)
	if err != nil {
		log.Error("quest score push: load campaign failed",
			zap.String("campaignId", event.CampaignID), zap.Error(err))
		return
	}
	if cam.OnChainID == nil {
		_ = s.Dao.UpdateAwardEvent(ctx, event.IdempotencyKey, campaign.AwardFailed, "", "campaign has no on-chain id")
		return
	}

	signer, err := s.AcquireSigner()
	if err != nil {
		_ = s.Dao.UpdateAwardEvent(ctx, event.IdempotencyKey, campaign.AwardFailed, "", err.Error())
		log.Error("quest score push: signer unavailable", zap.Error(err))
		return
	}

	txHash, err := s.CampaignContract.UpdateQuestScore(ctx, signer, *cam.OnChainID, event.UserAddress, event.Points)
	if err != nil {
		kind := ClassifyChainError(err)
		status := campaign.AwardFailed
		if kind.Retryable() {
			status = campaign.AwardPending // 留给下一轮重试
		}
		_ = s.Dao.UpdateAwardEvent(ctx, event.IdempotencyKey, status, txHash, err.Error())
		log.Warn("quest score push failed",
			zap.String("campaignId", event.CampaignID),
			zap.String("user", event.UserAddress),
			zap.String("kind", kind.String()),
			zap.String("txHash", txHash),
			zap.Error(err))
		return
	}

	_ = s.Dao.UpdateAwardEvent(ctx, event.IdempotencyKey, campaign.AwardConfirmed, txHash, "")
	log.Info("quest score pushed",
		zap.String("campaignId", event.CampaignID),
		zap.String("user", event.UserAddress),
		zap.Int64("points", event.Points),
		zap.String("txHash", txHash))
}

// RetryPendingAwards 启动期对账：把上次没推出去的完成奖励补推一遍
func RetryPendingAwards(s *svc.ServerCtx) {
	if s.CampaignContract == nil {
		return
	}
	ctx := context.Background()
	events, err := s.Dao.ListRetryableAwards(ctx, 100)
	if err != nil {
		xzap.WithContext(ctx).Error("list retryable awards failed", zap.Error(err))
		return
	}
	for i := range events {
		PushQuestScore(ctx, s, &events[i])
	}
}
