package errcode

import "fmt"

type Err struct {
	Code uint32 `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

func NewErr(code uint32, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

// NewCustomErr 业务自定义错误，统一走 500 段
func NewCustomErr(msg string) *Err {
	return NewErr(CodeCustom, msg)
}

const (
	CodeOK            uint32 = 200
	CodeInvalidParams uint32 = 400
	CodeUnauthorized  uint32 = 401
	CodeNotFound      uint32 = 404
	CodeConflict      uint32 = 409
	CodeCustom        uint32 = 500
	CodeChainError    uint32 = 502
)

var (
	ErrInvalidParams = NewErr(CodeInvalidParams, "invalid params")
	ErrUnauthorized  = NewErr(CodeUnauthorized, "unauthorized")
	ErrNotFound      = NewErr(CodeNotFound, "record not found")
	ErrConflict      = NewErr(CodeConflict, "state conflict")
	ErrChain         = NewErr(CodeChainError, "chain call failed")
)

// NewConflictErr 409：重复激活/重复结束等幂等冲突
func NewConflictErr(msg string) *Err {
	return NewErr(CodeConflict, msg)
}

// NewChainErr 502：链上调用失败，调用方可提示重试
func NewChainErr(msg string) *Err {
	return NewErr(CodeChainError, msg)
}
