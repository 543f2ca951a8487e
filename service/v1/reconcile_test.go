package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/syncx"

	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
)

func TestClassifyChainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ChainErrKind
	}{
		{name: "nil", err: nil, want: ChainErrNone},
		{name: "insufficient funds", err: errors.New("insufficient funds for gas * price + value"), want: ChainErrInsufficientFunds},
		{name: "nonce too low", err: errors.New("nonce too low"), want: ChainErrNonce},
		{name: "nonce too high", err: errors.New("nonce too high"), want: ChainErrNonce},
		{name: "replacement underpriced", err: errors.New("replacement transaction underpriced"), want: ChainErrNonce},
		{name: "already known", err: errors.New("already known"), want: ChainErrNonce},
		{name: "execution reverted", err: errors.New("execution reverted: campaign not active"), want: ChainErrRevert},
		{name: "bare revert", err: errors.New("transaction failed: revert"), want: ChainErrRevert},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), want: ChainErrNetwork},
		{name: "dns failure", err: errors.New("lookup rpc.example: no such host"), want: ChainErrNetwork},
		{name: "timeout", err: errors.New("read tcp: i/o timeout"), want: ChainErrNetwork},
		{name: "context deadline", err: errors.New("context deadline exceeded"), want: ChainErrNetwork},
		{name: "wrapped error keeps classification", err: errors.Wrap(errors.New("nonce too low"), "failed on send tx"), want: ChainErrNonce},
		{name: "anything else", err: errors.New("some exotic failure"), want: ChainErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyChainError(tt.err))
		})
	}
}

func TestNextOnChainCampaignID_ChainDisabled(t *testing.T) {
	// 离线模式下预读要干净地报错，而不是打到空客户端上
	s := &svc.ServerCtx{Flight: syncx.NewSingleFlight()}
	_, err := NextOnChainCampaignID(context.Background(), s)
	assert.Error(t, err)
}

func TestChainErrKindRetryable(t *testing.T) {
	// 只有 nonce 冲突和网络错误值得自动重试
	assert.True(t, ChainErrNonce.Retryable())
	assert.True(t, ChainErrNetwork.Retryable())

	assert.False(t, ChainErrNone.Retryable())
	assert.False(t, ChainErrInsufficientFunds.Retryable())
	assert.False(t, ChainErrRevert.Retryable())
	assert.False(t, ChainErrUnknown.Retryable())
}
