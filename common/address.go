package common

import (
	bridge "github.com/anyswap/CrossChain-Bridge/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// UnifyAddress 校验钱包地址并归一化为 EIP-55 校验和格式
func UnifyAddress(address string) (string, error) {
	if len(address) <= 2 || !bridge.IsHexAddress(address) {
		return "", errors.New("user address is illegal")
	}
	return common.HexToAddress(address).Hex(), nil
}

// IsTxHash 交易哈希格式校验：0x + 64 位十六进制
func IsTxHash(hash string) bool {
	if len(hash) != 66 || hash[:2] != "0x" {
		return false
	}
	for _, ch := range hash[2:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
