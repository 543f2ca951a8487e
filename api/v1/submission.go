package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/v1"
	"github.com/locey/QuestFlow/QuestFlowEnd/types/v1"
	"github.com/locey/QuestFlow/QuestFlowEnd/xhttp"
)

// 参与活动（链上 join 已提交后调用）
func JoinCampaignHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		if id == "" {
			xhttp.Error(c, errcode.NewCustomErr("campaign id is null"))
			return
		}

		req := new(types.JoinCampaignRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		res, err := service.JoinCampaign(c.Request.Context(), svcCtx, id, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 提交任务完成记录，返回自动审核结论
func SubmitTaskHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		taskID, err := strconv.ParseInt(c.Params.ByName("taskId"), 10, 64)
		if id == "" || err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "invalid campaign or task id"))
			return
		}

		req := new(types.SubmitTaskRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		res, err := service.SubmitTask(c.Request.Context(), svcCtx, id, taskID, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 人工审核裁决（pending 提交专用）
func ReviewSubmissionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		taskID, err := strconv.ParseInt(c.Params.ByName("taskId"), 10, 64)
		if id == "" || err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "invalid campaign or task id"))
			return
		}

		req := new(types.ReviewSubmissionRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		res, err := service.ReviewSubmission(c.Request.Context(), svcCtx, id, taskID, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 提交状态查询
func GetSubmissionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		taskID, err := strconv.ParseInt(c.Params.ByName("taskId"), 10, 64)
		if id == "" || err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "invalid campaign or task id"))
			return
		}

		userWallet := c.Query("userWallet")
		if userWallet == "" {
			xhttp.Error(c, errcode.NewCustomErr("userWallet is null"))
			return
		}

		res, err := service.GetSubmissionStatus(c.Request.Context(), svcCtx, id, taskID, userWallet)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}
