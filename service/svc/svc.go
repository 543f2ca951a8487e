package svc

import (
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/syncx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/locey/QuestFlow/QuestFlowEnd/config"
	"github.com/locey/QuestFlow/QuestFlowEnd/contract"
	"github.com/locey/QuestFlow/QuestFlowEnd/dao"
	"github.com/locey/QuestFlow/QuestFlowEnd/logger/xzap"
	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

type ServerCtx struct {
	C                *config.Config
	DB               *gorm.DB
	Dao              *dao.Dao
	CampaignContract *contract.QuestRewardContract
	Flight           syncx.SingleFlight
}

func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	if _, err := xzap.SetUp(xzap.Config{Level: c.Log.Level, Mode: c.Log.Mode}); err != nil {
		return nil, errors.Wrap(err, "failed on init logger")
	}

	db, err := gorm.Open(mysql.Open(c.DB.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed on connect db")
	}

	if err := db.AutoMigrate(
		&campaign.Campaign{},
		&campaign.CampaignTask{},
		&campaign.Submission{},
		&campaign.QuestAwardEvent{},
	); err != nil {
		return nil, errors.Wrap(err, "failed on migrate schema")
	}

	serverCtx := &ServerCtx{
		C:      c,
		DB:     db,
		Dao:    dao.New(db),
		Flight: syncx.NewSingleFlight(),
	}

	// 未配置合约地址时跳过链上层，纯离线模式（本地联调用）
	if c.CampaignContract.ContractAddress != "" && c.CampaignContract.RPCEndpoint != "" {
		client, err := contract.NewQuestRewardContract(c)
		if err != nil {
			return nil, errors.Wrap(err, "failed on init campaign contract client")
		}
		serverCtx.CampaignContract = client
	}

	return serverCtx, nil
}

// AcquireSigner 按需构造服务端签名者，私钥不常驻任何组件
func (s *ServerCtx) AcquireSigner() (contract.Signer, error) {
	if s.C.CampaignContract.PrivateKey == "" {
		return nil, errors.New("server signing key is not configured")
	}
	return contract.NewKeySigner(s.C.CampaignContract.PrivateKey, s.C.CampaignContract.ChainID)
}
