package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ReadABI 从文件加载合约 ABI，部署环境可用它覆盖内置 ABI
func ReadABI(filePath string) (abi.ABI, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to read ABI file: %w", err)
	}

	var parsed abi.ABI
	if err := json.Unmarshal(data, &parsed); err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI JSON: %w", err)
	}

	return parsed, nil
}
