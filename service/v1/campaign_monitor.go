package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/locey/QuestFlow/QuestFlowEnd/contract"
	"github.com/locey/QuestFlow/QuestFlowEnd/logger/xzap"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// CampaignCreatedEvent CampaignCreated(uint256 indexed campaignId, address indexed creator, uint8 rewardType, uint256 rewardAmount)
type CampaignCreatedEvent struct {
	CampaignID *big.Int
	Creator    common.Address
}

// CampaignJoinedEvent CampaignJoined(uint256 indexed campaignId, address indexed participant)
type CampaignJoinedEvent struct {
	CampaignID  *big.Int
	Participant common.Address
}

// QuestScoreUpdatedEvent QuestScoreUpdated(uint256 indexed campaignId, address indexed participant, uint256 points)
type QuestScoreUpdatedEvent struct {
	CampaignID  *big.Int
	Participant common.Address
	Points      *big.Int
}

// CampaignEndedEvent CampaignEnded(uint256 indexed campaignId, uint256 totalDistributed)
type CampaignEndedEvent struct {
	CampaignID       *big.Int
	TotalDistributed *big.Int
}

// StartCampaignEventListener 订阅合约事件流并回写链上确认的事实。
// 事件里的活动ID是权威值，用来校准乐观预读；订阅断开后带间隔重连。
func StartCampaignEventListener(svcCtx *svc.ServerCtx) {
	log := xzap.WithContext(context.Background())
	for {
		if err := runCampaignEventLoop(svcCtx); err != nil {
			log.Warn("campaign event listener stopped, reconnecting", zap.Error(err))
		}
		time.Sleep(5 * time.Second)
	}
}

func runCampaignEventLoop(svcCtx *svc.ServerCtx) error {
	log := xzap.WithContext(context.Background())

	endpoint := svcCtx.C.CampaignContract.WSEndpoint
	if endpoint == "" {
		return errors.New("ws_endpoint is not configured")
	}
	client, err := ethclient.Dial(endpoint)
	if err != nil {
		return errors.Wrap(err, "failed on connect ws endpoint")
	}
	defer client.Close()

	contractAddress := common.HexToAddress(svcCtx.C.CampaignContract.ContractAddress)
	query := ethereum.FilterQuery{
		Addresses: []common.Address{contractAddress},
		Topics: [][]common.Hash{{
			contract.CampaignCreatedTopic,
			contract.CampaignJoinedTopic,
			contract.QuestScoreUpdatedTopic,
			contract.CampaignEndedTopic,
		}},
	}

	logs := make(chan types.Log)
	sub, err := client.SubscribeFilterLogs(context.Background(), query, logs)
	if err != nil {
		return errors.Wrap(err, "failed on subscribe event logs")
	}
	defer sub.Unsubscribe()

	log.Info("campaign event listener started",
		zap.String("contract", contractAddress.Hex()))

	for {
		select {
		case err := <-sub.Err():
			return errors.Wrap(err, "log subscription error")
		case vLog := <-logs:
			switch vLog.Topics[0] {
			case contract.CampaignCreatedTopic:
				event, err := parseCampaignCreatedEvent(vLog)
				if err != nil {
					log.Warn("failed to parse CampaignCreated event", zap.Error(err))
					continue
				}
				handleCampaignCreated(svcCtx, event, vLog.TxHash.Hex())

			case contract.CampaignJoinedTopic:
				event, err := parseCampaignJoinedEvent(vLog)
				if err != nil {
					log.Warn("failed to parse CampaignJoined event", zap.Error(err))
					continue
				}
				handleCampaignJoined(svcCtx, event, vLog.TxHash.Hex())

			case contract.QuestScoreUpdatedTopic:
				event, err := parseQuestScoreUpdatedEvent(vLog)
				if err != nil {
					log.Warn("failed to parse QuestScoreUpdated event", zap.Error(err))
					continue
				}
				handleQuestScoreUpdated(svcCtx, event, vLog.TxHash.Hex())

			case contract.CampaignEndedTopic:
				event, err := parseCampaignEndedEvent(vLog)
				if err != nil {
					log.Warn("failed to parse CampaignEnded event", zap.Error(err))
					continue
				}
				handleCampaignEnded(svcCtx, event, vLog.TxHash.Hex())
			}
		}
	}
}

// handleCampaignCreated 用事件值确认激活或校准已存的活动ID
func handleCampaignCreated(svcCtx *svc.ServerCtx, event *CampaignCreatedEvent, txHash string) {
	ctx := context.Background()
	log := xzap.WithContext(ctx)

	cam, err := svcCtx.Dao.GetCampaignByTxHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 激活接口还没来得及写入哈希，等它自己确认
			return
		}
		log.Warn("campaign lookup by tx hash failed", zap.String("txHash", txHash), zap.Error(err))
		return
	}

	onChainID := event.CampaignID.Int64()
	if cam.OnChainID != nil && *cam.OnChainID == onChainID && cam.OnChainIDVerified {
		return
	}
	if err := svcCtx.Dao.MarkOnChainIDVerified(ctx, cam.ID, onChainID); err != nil {
		log.Warn("failed to verify on-chain id from event",
			zap.String("campaignId", cam.ID), zap.Int64("onChainId", onChainID), zap.Error(err))
		return
	}
	log.Info("on-chain id verified from CampaignCreated event",
		zap.String("campaignId", cam.ID),
		zap.Int64("onChainId", onChainID),
		zap.String("creator", event.Creator.Hex()))
}

// handleCampaignJoined 链上加入事件兜底补写 join_record（saga 收尾）
func handleCampaignJoined(svcCtx *svc.ServerCtx, event *CampaignJoinedEvent, txHash string) {
	ctx := context.Background()
	cam, err := svcCtx.Dao.GetCampaignByOnChainID(ctx, event.CampaignID.Int64())
	if err != nil {
		return
	}
	sub := &campaign.Submission{
		CampaignID:  cam.ID,
		TaskID:      0,
		UserAddress: event.Participant.Hex(),
		Kind:        campaign.KindJoinRecord,
		Status:      campaign.SubmissionApproved,
		TxHash:      txHash,
	}
	created, err := svcCtx.Dao.CreateSubmission(ctx, sub)
	if err != nil || !created {
		return
	}
	if _, err := svcCtx.Dao.IncrementParticipants(ctx, cam.ID); err != nil {
		xzap.WithContext(ctx).Warn("participant counter update failed",
			zap.String("campaignId", cam.ID), zap.Error(err))
	}
	xzap.WithContext(ctx).Info("join record written from CampaignJoined event",
		zap.String("campaignId", cam.ID),
		zap.String("participant", event.Participant.Hex()))
}

// handleQuestScoreUpdated 链上积分事件把奖励事件标记为已确认
func handleQuestScoreUpdated(svcCtx *svc.ServerCtx, event *QuestScoreUpdatedEvent, txHash string) {
	ctx := context.Background()
	cam, err := svcCtx.Dao.GetCampaignByOnChainID(ctx, event.CampaignID.Int64())
	if err != nil {
		return
	}
	key := campaign.AwardIdempotencyKey(cam.ID, event.Participant.Hex())
	if _, err := svcCtx.Dao.GetAwardEvent(ctx, key); err != nil {
		return
	}
	if err := svcCtx.Dao.UpdateAwardEvent(ctx, key, campaign.AwardConfirmed, txHash, ""); err != nil {
		xzap.WithContext(ctx).Warn("failed to confirm award from event",
			zap.String("campaignId", cam.ID), zap.Error(err))
	}
}

// handleCampaignEnded 链上结清事件幂等确认结束
func handleCampaignEnded(svcCtx *svc.ServerCtx, event *CampaignEndedEvent, txHash string) {
	ctx := context.Background()
	log := xzap.WithContext(ctx)

	cam, err := svcCtx.Dao.GetCampaignByOnChainID(ctx, event.CampaignID.Int64())
	if err != nil {
		return
	}
	updated, err := svcCtx.Dao.ConfirmEnd(ctx, cam.ID, txHash)
	if err != nil {
		log.Warn("failed to confirm end from event",
			zap.String("campaignId", cam.ID), zap.Error(err))
		return
	}
	if updated {
		log.Info("campaign ended from CampaignEnded event",
			zap.String("campaignId", cam.ID),
			zap.String("totalDistributed", event.TotalDistributed.String()),
			zap.String("txHash", txHash))
	}
}

func parseCampaignCreatedEvent(vLog types.Log) (*CampaignCreatedEvent, error) {
	if len(vLog.Topics) < 3 {
		return nil, fmt.Errorf("invalid number of topics: %d", len(vLog.Topics))
	}
	return &CampaignCreatedEvent{
		CampaignID: new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
		Creator:    common.BytesToAddress(vLog.Topics[2].Bytes()),
	}, nil
}

func parseCampaignJoinedEvent(vLog types.Log) (*CampaignJoinedEvent, error) {
	if len(vLog.Topics) < 3 {
		return nil, fmt.Errorf("invalid number of topics: %d", len(vLog.Topics))
	}
	return &CampaignJoinedEvent{
		CampaignID:  new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
		Participant: common.BytesToAddress(vLog.Topics[2].Bytes()),
	}, nil
}

func parseQuestScoreUpdatedEvent(vLog types.Log) (*QuestScoreUpdatedEvent, error) {
	if len(vLog.Topics) < 3 {
		return nil, fmt.Errorf("invalid number of topics: %d", len(vLog.Topics))
	}
	event := &QuestScoreUpdatedEvent{
		CampaignID:  new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
		Participant: common.BytesToAddress(vLog.Topics[2].Bytes()),
	}
	if len(vLog.Data) >= 32 {
		event.Points = new(big.Int).SetBytes(vLog.Data[0:32])
	} else {
		return nil, fmt.Errorf("invalid data length: %d", len(vLog.Data))
	}
	return event, nil
}

func parseCampaignEndedEvent(vLog types.Log) (*CampaignEndedEvent, error) {
	if len(vLog.Topics) < 2 {
		return nil, fmt.Errorf("invalid number of topics: %d", len(vLog.Topics))
	}
	event := &CampaignEndedEvent{
		CampaignID: new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
	}
	if len(vLog.Data) >= 32 {
		event.TotalDistributed = new(big.Int).SetBytes(vLog.Data[0:32])
	} else {
		event.TotalDistributed = big.NewInt(0)
	}
	return event, nil
}
