package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/locey/QuestFlow/QuestFlowEnd/errcode"
	"github.com/locey/QuestFlow/QuestFlowEnd/kit/validator"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/v1"
	"github.com/locey/QuestFlow/QuestFlowEnd/types/v1"
	"github.com/locey/QuestFlow/QuestFlowEnd/xhttp"
)

// 创建草稿活动
func CreateCampaignHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(types.CreateCampaignRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}
		if err := validator.Verify(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		id, err := service.CreateCampaign(c.Request.Context(), svcCtx, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, types.CreateCampaignResponse{CampaignID: id})
	}
}

// 活动详情
func GetCampaignHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		if id == "" {
			xhttp.Error(c, errcode.NewCustomErr("campaign id is null"))
			return
		}

		res, err := service.GetCampaignDetail(c.Request.Context(), svcCtx, id)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 活动列表
func ListCampaignsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		pageSize, _ := strconv.Atoi(c.Query("pageSize"))

		res, err := service.ListCampaigns(c.Request.Context(), svcCtx, c.Query("owner"), c.Query("status"), page, pageSize)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 注资报价（手续费 + 总注资 + stable 路径授权额度）
func GetDepositQuoteHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		if id == "" {
			xhttp.Error(c, errcode.NewCustomErr("campaign id is null"))
			return
		}

		res, err := service.GetDepositQuote(c.Request.Context(), svcCtx, id)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// 激活确认，按 (campaignId, txHash) 幂等，重复激活返回 409
func ActivateCampaignHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		if id == "" {
			xhttp.Error(c, errcode.NewCustomErr("campaign id is null"))
			return
		}

		req := new(types.ActivateCampaignRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		res, err := service.ActivateCampaign(c.Request.Context(), svcCtx, id, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}

// PATCH /campaigns/:id，action=end 结束并分发，action=cancel 取消草稿
func UpdateCampaignHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Params.ByName("id")
		if id == "" {
			xhttp.Error(c, errcode.NewCustomErr("campaign id is null"))
			return
		}

		req := new(types.UpdateCampaignRequest)
		if err := c.ShouldBindBodyWithJSON(req); err != nil {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, err.Error()))
			return
		}

		res, err := service.UpdateCampaign(c.Request.Context(), svcCtx, id, *req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		xhttp.OkJson(c, res)
	}
}
