package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifyAddress(t *testing.T) {
	// 全小写输入归一化为 EIP-55 校验和格式
	got, err := UnifyAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	// 已是校验和格式的地址保持不变
	got, err = UnifyAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	for _, bad := range []string{"", "0x", "0x123", "not-an-address", "0xZZaeb6053f3e94c9b9a09f33669435e7ef1beaed"} {
		_, err := UnifyAddress(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestIsTxHash(t *testing.T) {
	assert.True(t, IsTxHash("0x"+"a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"))
	assert.True(t, IsTxHash("0x"+"A1B2C3D4E5F6A1B2C3D4E5F6A1B2C3D4E5F6A1B2C3D4E5F6A1B2C3D4E5F6A1B2"))

	assert.False(t, IsTxHash(""))
	assert.False(t, IsTxHash("0x1234"))
	assert.False(t, IsTxHash("a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2ff"))
	assert.False(t, IsTxHash("0x"+"g1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"))
}
