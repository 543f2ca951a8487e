package service

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/locey/QuestFlow/QuestFlowEnd/stores/gdb/campaign"
)

// DepositQuote 注资报价。所有金额为十进制精确值，
// Units 为换算到代币精度后的链上整数，必须与合约侧逐位一致。
type DepositQuote struct {
	RewardAmount   decimal.Decimal
	PlatformFee    decimal.Decimal
	TotalDeposit   decimal.Decimal
	FeeRatePercent int64
	TokenDecimals  int32
	DepositUnits   *big.Int
}

// PlatformFee 平台手续费 = 奖励 × 费率。Shift(-2) 代替除法，避免精度截断。
func PlatformFee(reward decimal.Decimal, ratePercent int64) decimal.Decimal {
	return reward.Mul(decimal.NewFromInt(ratePercent)).Shift(-2)
}

// TotalDeposit 总注资 = 奖励 + 手续费
func TotalDeposit(reward decimal.Decimal, ratePercent int64) decimal.Decimal {
	return reward.Add(PlatformFee(reward, ratePercent))
}

// ToTokenUnits 十进制金额换算为链上整数单位。
// 换算后出现小数位说明金额超出代币精度，宁可报错也不静默截断。
func ToTokenUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	scaled := amount.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, errors.Errorf("amount %s exceeds token precision of %d decimals", amount.String(), decimals)
	}
	return scaled.BigInt(), nil
}

// QuoteDeposit 计算活动注资报价，纯函数无副作用
func QuoteDeposit(rewardAmount string, rewardType campaign.RewardType, ratePercent int64) (*DepositQuote, error) {
	reward, err := decimal.NewFromString(rewardAmount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reward amount")
	}
	if reward.IsNegative() {
		return nil, errors.New("reward amount must be non-negative")
	}
	if !rewardType.Valid() {
		return nil, errors.Errorf("unknown reward type: %s", rewardType)
	}

	decimals := rewardType.TokenDecimals()
	fee := PlatformFee(reward, ratePercent)
	total := reward.Add(fee)

	// 奖励本身必须能落在代币精度内，否则注资值无法在链上表达
	if _, err := ToTokenUnits(reward, decimals); err != nil {
		return nil, err
	}
	units, err := ToTokenUnits(total, decimals)
	if err != nil {
		return nil, err
	}

	return &DepositQuote{
		RewardAmount:   reward,
		PlatformFee:    fee,
		TotalDeposit:   total,
		FeeRatePercent: ratePercent,
		TokenDecimals:  decimals,
		DepositUnits:   units,
	}, nil
}
