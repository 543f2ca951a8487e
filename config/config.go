package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Api              Api              `toml:"api" mapstructure:"api" json:"api"`
	DB               DB               `toml:"db" mapstructure:"db" json:"db"`
	Log              Log              `toml:"log" mapstructure:"log" json:"log"`
	ChainSupported   []ChainSupported `toml:"chain_supported" mapstructure:"chain_supported" json:"chain_supported"`
	CampaignContract CampaignContract `toml:"campaign_contract" mapstructure:"campaign_contract" json:"campaign_contract"`
	Fee              Fee              `toml:"fee" mapstructure:"fee" json:"fee"`
	Points           Points           `toml:"points" mapstructure:"points" json:"points"`
}

type Api struct {
	Port string `toml:"port" mapstructure:"port" json:"port"`
}

type DB struct {
	DSN string `toml:"dsn" mapstructure:"dsn" json:"dsn"`
}

type Log struct {
	Level string `toml:"level" mapstructure:"level" json:"level"`
	Mode  string `toml:"mode" mapstructure:"mode" json:"mode"`
}

type ChainSupported struct {
	ChainID  int    `toml:"chain_id" mapstructure:"chain_id" json:"chain_id"`
	Name     string `toml:"name" mapstructure:"name" json:"name"`
	Endpoint string `toml:"endpoint" mapstructure:"endpoint" json:"endpoint"`
}

// CampaignContract 链上奖励分发合约配置
type CampaignContract struct {
	RPCEndpoint     string `toml:"rpc_endpoint" mapstructure:"rpc_endpoint" json:"rpc_endpoint"`
	WSEndpoint      string `toml:"ws_endpoint" mapstructure:"ws_endpoint" json:"ws_endpoint"`
	ContractAddress string `toml:"contract_address" mapstructure:"contract_address" json:"contract_address"`
	StableToken     string `toml:"stable_token" mapstructure:"stable_token" json:"stable_token"`
	PrivateKey      string `toml:"private_key" mapstructure:"private_key" json:"-"`
	ChainID         int64  `toml:"chain_id" mapstructure:"chain_id" json:"chain_id"`
	GasPrice        int64  `toml:"gas_price" mapstructure:"gas_price" json:"gas_price"`
	ABIPath         string `toml:"abi_path" mapstructure:"abi_path" json:"abi_path"`
	EnableMonitor   bool   `toml:"enable_monitor" mapstructure:"enable_monitor" json:"enable_monitor"`
}

// Fee 平台手续费配置，rate_percent=5 表示 5%
type Fee struct {
	RatePercent int64 `toml:"rate_percent" mapstructure:"rate_percent" json:"rate_percent"`
}

// Points 任务积分配置（链上 QP）
type Points struct {
	FollowReward    int64 `toml:"follow_reward" mapstructure:"follow_reward" json:"follow_reward"`
	PostReward      int64 `toml:"post_reward" mapstructure:"post_reward" json:"post_reward"`
	CustomReward    int64 `toml:"custom_reward" mapstructure:"custom_reward" json:"custom_reward"`
	CompletionBonus int64 `toml:"completion_bonus" mapstructure:"completion_bonus" json:"completion_bonus"`
}

func UnmarshalConfig(configFilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFilePath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed on read config file")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed on unmarshal config")
	}

	c.applyDefaults()
	return &c, nil
}

// 缺省值与链上合约保持一致，勿随意调整
func (c *Config) applyDefaults() {
	if c.Fee.RatePercent == 0 {
		c.Fee.RatePercent = 5
	}
	if c.Points.FollowReward == 0 {
		c.Points.FollowReward = 10
	}
	if c.Points.PostReward == 0 {
		c.Points.PostReward = 50
	}
	if c.Points.CustomReward == 0 {
		c.Points.CustomReward = 10
	}
	if c.Points.CompletionBonus == 0 {
		c.Points.CompletionBonus = 60
	}
	if c.CampaignContract.GasPrice == 0 {
		c.CampaignContract.GasPrice = 2000000000
	}
}
