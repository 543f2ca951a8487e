package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
)

type Response struct {
	Code uint32      `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.CodeOK,
		Msg:  "success",
		Data: data,
	})
}

// Error 统一错误出口。errcode.Err 的 400/401/404/409 段映射到对应 HTTP 状态码，
// 其余一律 200 + 业务码（与前端约定保持一致）。
func Error(c *gin.Context, err error) {
	e, ok := err.(*errcode.Err)
	if !ok {
		e = errcode.NewCustomErr(err.Error())
	}

	status := http.StatusOK
	switch e.Code {
	case errcode.CodeInvalidParams:
		status = http.StatusBadRequest
	case errcode.CodeUnauthorized:
		status = http.StatusUnauthorized
	case errcode.CodeNotFound:
		status = http.StatusNotFound
	case errcode.CodeConflict:
		status = http.StatusConflict
	}

	c.JSON(status, Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
