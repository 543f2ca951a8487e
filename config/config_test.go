package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestUnmarshalConfig_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
[api]
port = ":9000"

[db]
dsn = "root:root@tcp(127.0.0.1:3306)/questflow?charset=utf8mb4&parseTime=True"
`)

	c, err := UnmarshalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.Api.Port)

	// 费率与积分缺省值必须与链上合约一致
	assert.Equal(t, int64(5), c.Fee.RatePercent)
	assert.Equal(t, int64(10), c.Points.FollowReward)
	assert.Equal(t, int64(50), c.Points.PostReward)
	assert.Equal(t, int64(10), c.Points.CustomReward)
	assert.Equal(t, int64(60), c.Points.CompletionBonus)
}

func TestUnmarshalConfig_Override(t *testing.T) {
	path := writeTempConfig(t, `
[api]
port = ":8080"

[fee]
rate_percent = 3

[points]
post_reward = 100

[campaign_contract]
rpc_endpoint = "https://rpc.sepolia.org"
contract_address = "0x1111111111111111111111111111111111111111"
chain_id = 11155111
enable_monitor = true
`)

	c, err := UnmarshalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(3), c.Fee.RatePercent)
	assert.Equal(t, int64(100), c.Points.PostReward)
	// 未覆盖的项仍取缺省值
	assert.Equal(t, int64(10), c.Points.FollowReward)

	assert.Equal(t, int64(11155111), c.CampaignContract.ChainID)
	assert.True(t, c.CampaignContract.EnableMonitor)
	assert.Equal(t, int64(2000000000), c.CampaignContract.GasPrice)
}

func TestUnmarshalConfig_MissingFile(t *testing.T) {
	_, err := UnmarshalConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
