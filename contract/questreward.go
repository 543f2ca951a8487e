package contract

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/locey/QuestFlow/QuestFlowEnd/common/utils"
	"github.com/locey/QuestFlow/QuestFlowEnd/config"
)

// QuestRewardContract 封装了奖励分发合约的交互方法。
// 写路径只有 UpdateQuestScore（服务端签名），活动创建/加入/结清
// 均由用户钱包签名，后端只做回执校验和事件解析。
type QuestRewardContract struct {
	client      *ethclient.Client
	config      *config.Config
	contractABI abi.ABI
	erc20ABI    abi.ABI
	address     common.Address
	stableToken common.Address
}

// 合约ABI（简化版本，只包含我们需要的方法和事件）
const questRewardABI = `[
    {
        "inputs": [
            {"internalType": "uint8", "name": "distributionMethod", "type": "uint8"},
            {"internalType": "uint64", "name": "startTime", "type": "uint64"},
            {"internalType": "uint64", "name": "endTime", "type": "uint64"},
            {"internalType": "uint32", "name": "maxParticipants", "type": "uint32"},
            {"internalType": "uint32", "name": "numberOfWinners", "type": "uint32"}
        ],
        "name": "createCampaign",
        "outputs": [],
        "stateMutability": "payable",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "uint8", "name": "distributionMethod", "type": "uint8"},
            {"internalType": "uint64", "name": "startTime", "type": "uint64"},
            {"internalType": "uint64", "name": "endTime", "type": "uint64"},
            {"internalType": "uint32", "name": "maxParticipants", "type": "uint32"},
            {"internalType": "uint256", "name": "rewardAmount", "type": "uint256"},
            {"internalType": "uint32", "name": "numberOfWinners", "type": "uint32"}
        ],
        "name": "createCampaignWithStableToken",
        "outputs": [],
        "stateMutability": "nonpayable",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "uint256", "name": "campaignId", "type": "uint256"}
        ],
        "name": "joinCampaign",
        "outputs": [],
        "stateMutability": "nonpayable",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "uint256", "name": "campaignId", "type": "uint256"},
            {"internalType": "address", "name": "participant", "type": "address"},
            {"internalType": "uint256", "name": "points", "type": "uint256"}
        ],
        "name": "updateQuestScore",
        "outputs": [],
        "stateMutability": "nonpayable",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "uint256", "name": "campaignId", "type": "uint256"}
        ],
        "name": "endCampaignAndDistribute",
        "outputs": [],
        "stateMutability": "nonpayable",
        "type": "function"
    },
    {
        "inputs": [],
        "name": "nextCampaignId",
        "outputs": [
            {"internalType": "uint256", "name": "", "type": "uint256"}
        ],
        "stateMutability": "view",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "uint256", "name": "campaignId", "type": "uint256"},
            {"internalType": "address", "name": "participant", "type": "address"}
        ],
        "name": "isParticipant",
        "outputs": [
            {"internalType": "bool", "name": "", "type": "bool"}
        ],
        "stateMutability": "view",
        "type": "function"
    }
]`

const erc20ABI = `[
    {
        "inputs": [
            {"internalType": "address", "name": "owner", "type": "address"},
            {"internalType": "address", "name": "spender", "type": "address"}
        ],
        "name": "allowance",
        "outputs": [
            {"internalType": "uint256", "name": "", "type": "uint256"}
        ],
        "stateMutability": "view",
        "type": "function"
    },
    {
        "inputs": [
            {"internalType": "address", "name": "account", "type": "address"}
        ],
        "name": "balanceOf",
        "outputs": [
            {"internalType": "uint256", "name": "", "type": "uint256"}
        ],
        "stateMutability": "view",
        "type": "function"
    }
]`

// 事件签名，monitor 和回执解析共用
var (
	CampaignCreatedTopic   = crypto.Keccak256Hash([]byte("CampaignCreated(uint256,address,uint8,uint256)"))
	CampaignJoinedTopic    = crypto.Keccak256Hash([]byte("CampaignJoined(uint256,address)"))
	QuestScoreUpdatedTopic = crypto.Keccak256Hash([]byte("QuestScoreUpdated(uint256,address,uint256)"))
	CampaignEndedTopic     = crypto.Keccak256Hash([]byte("CampaignEnded(uint256,uint256)"))
)

func NewQuestRewardContract(cfg *config.Config) (*QuestRewardContract, error) {
	// 连接以太坊节点，增加超时和重试机制
	var client *ethclient.Client
	var err error

	for i := 0; i < 3; i++ {
		client, err = connectWithTimeout(cfg.CampaignContract.RPCEndpoint, 30*time.Second)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node after 3 attempts: %v", err)
	}

	// 解析合约ABI，部署环境可通过 abi_path 覆盖内置版本
	var parsedABI abi.ABI
	if cfg.CampaignContract.ABIPath != "" {
		parsedABI, err = utils.ReadABI(cfg.CampaignContract.ABIPath)
	} else {
		parsedABI, err = abi.JSON(strings.NewReader(questRewardABI))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %v", err)
	}

	parsedERC20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %v", err)
	}

	if !common.IsHexAddress(cfg.CampaignContract.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", cfg.CampaignContract.ContractAddress)
	}

	c := &QuestRewardContract{
		client:      client,
		config:      cfg,
		contractABI: parsedABI,
		erc20ABI:    parsedERC20,
		address:     common.HexToAddress(cfg.CampaignContract.ContractAddress),
	}
	if common.IsHexAddress(cfg.CampaignContract.StableToken) {
		c.stableToken = common.HexToAddress(cfg.CampaignContract.StableToken)
	}
	return c, nil
}

func connectWithTimeout(endpoint string, timeout time.Duration) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node: %v", err)
	}
	return client, nil
}

// NextCampaignID 读取合约内部计数器，即下一个将被分配的活动ID
func (c *QuestRewardContract) NextCampaignID(ctx context.Context) (int64, error) {
	data, err := c.contractABI.Pack("nextCampaignId")
	if err != nil {
		return 0, fmt.Errorf("failed to pack call data: %v", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to call contract: %v", err)
	}

	var next *big.Int
	if err := c.contractABI.UnpackIntoInterface(&next, "nextCampaignId", result); err != nil {
		return 0, fmt.Errorf("failed to unpack nextCampaignId: %v", err)
	}
	return next.Int64(), nil
}

// IsParticipant 查询某地址是否已在链上登记为活动参与者
func (c *QuestRewardContract) IsParticipant(ctx context.Context, campaignID int64, participant string) (bool, error) {
	data, err := c.contractABI.Pack("isParticipant", big.NewInt(campaignID), common.HexToAddress(participant))
	if err != nil {
		return false, fmt.Errorf("failed to pack call data: %v", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to call contract: %v", err)
	}

	var joined bool
	if err := c.contractABI.UnpackIntoInterface(&joined, "isParticipant", result); err != nil {
		return false, fmt.Errorf("failed to unpack isParticipant: %v", err)
	}
	return joined, nil
}

// Allowance 查询 owner 给合约的稳定币授权额度（stable-token 路径激活前置检查）
func (c *QuestRewardContract) Allowance(ctx context.Context, owner string) (*big.Int, error) {
	if c.stableToken == (common.Address{}) {
		return nil, fmt.Errorf("stable token address is not configured")
	}

	data, err := c.erc20ABI.Pack("allowance", common.HexToAddress(owner), c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to pack call data: %v", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.stableToken,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call token contract: %v", err)
	}

	var allowance *big.Int
	if err := c.erc20ABI.UnpackIntoInterface(&allowance, "allowance", result); err != nil {
		return nil, fmt.Errorf("failed to unpack allowance: %v", err)
	}
	return allowance, nil
}

// BalanceOf 查询稳定币余额
func (c *QuestRewardContract) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if c.stableToken == (common.Address{}) {
		return nil, fmt.Errorf("stable token address is not configured")
	}

	data, err := c.erc20ABI.Pack("balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, fmt.Errorf("failed to pack call data: %v", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.stableToken,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call token contract: %v", err)
	}

	var balance *big.Int
	if err := c.erc20ABI.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf: %v", err)
	}
	return balance, nil
}

// TransactionReceipt 查询交易回执，未上链时返回 ethereum.NotFound
func (c *QuestRewardContract) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
}

// ParseCampaignCreated 从回执日志提取链上活动ID。
// 事件值是活动ID的权威来源，计数器预读只是乐观猜测。
func (c *QuestRewardContract) ParseCampaignCreated(receipt *types.Receipt) (int64, bool) {
	for _, vLog := range receipt.Logs {
		if vLog.Address != c.address || len(vLog.Topics) < 2 {
			continue
		}
		if vLog.Topics[0] == CampaignCreatedTopic {
			return new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Int64(), true
		}
	}
	return 0, false
}

// UpdateQuestScore 服务端签名推送积分。签名者由调用方注入，
// 用完即弃，私钥不落在合约客户端上。
func (c *QuestRewardContract) UpdateQuestScore(ctx context.Context, signer Signer, campaignID int64, participant string, points int64) (string, error) {
	data, err := c.contractABI.Pack("updateQuestScore", big.NewInt(campaignID), common.HexToAddress(participant), big.NewInt(points))
	if err != nil {
		return "", fmt.Errorf("failed to pack transaction data: %v", err)
	}

	from := signer.Address()

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	nonce, err := c.client.PendingNonceAt(callCtx, from)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %v", err)
	}

	// gas 估算先行，revert 在这里就能暴露
	callCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
	gasLimit, err := c.client.EstimateGas(callCtx, ethereum.CallMsg{
		From:  from,
		To:    &c.address,
		Data:  data,
		Value: big.NewInt(0),
	})
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to estimate gas: %v", err)
	}

	gasPrice := big.NewInt(c.config.CampaignContract.GasPrice)
	tx := types.NewTransaction(nonce, c.address, big.NewInt(0), gasLimit, gasPrice, data)

	signedTx, err := signer.SignTx(tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	callCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
	err = c.client.SendTransaction(callCtx, signedTx)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %v", err)
	}

	// 等待交易确认
	callCtx, cancel = context.WithTimeout(ctx, 120*time.Second)
	receipt, err := bind.WaitMined(callCtx, c.client, signedTx)
	cancel()
	if err != nil {
		return signedTx.Hash().Hex(), fmt.Errorf("failed to wait for transaction: %v", err)
	}
	if receipt.Status == 0 {
		return signedTx.Hash().Hex(), fmt.Errorf("execution reverted: updateQuestScore")
	}

	return signedTx.Hash().Hex(), nil
}

// Client 暴露底层 ethclient 给事件监听
func (c *QuestRewardContract) Client() *ethclient.Client {
	return c.client
}

// Address 合约地址
func (c *QuestRewardContract) Address() common.Address {
	return c.address
}

// Close 关闭客户端连接
func (c *QuestRewardContract) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Signer 服务端交易签名抽象，按请求获取、用后释放
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

type keySigner struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

// NewKeySigner 由十六进制私钥构造 EIP-155 签名者
func NewKeySigner(hexKey string, chainID int64) (Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	return &keySigner{key: key, chainID: big.NewInt(chainID)}, nil
}

func (s *keySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *keySigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
}
