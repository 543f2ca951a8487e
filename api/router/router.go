package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	v1 "github.com/locey/QuestFlow/QuestFlowEnd/api/v1"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
)

func NewRouter(svcCtx *svc.ServerCtx) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	api := r.Group("/api/v1")
	{
		api.POST("/campaigns", v1.CreateCampaignHandler(svcCtx))
		api.GET("/campaigns", v1.ListCampaignsHandler(svcCtx))
		api.GET("/campaigns/:id", v1.GetCampaignHandler(svcCtx))
		api.GET("/campaigns/:id/deposit", v1.GetDepositQuoteHandler(svcCtx))
		api.POST("/campaigns/:id/activate", v1.ActivateCampaignHandler(svcCtx))
		api.PATCH("/campaigns/:id", v1.UpdateCampaignHandler(svcCtx))
		api.POST("/campaigns/:id/join", v1.JoinCampaignHandler(svcCtx))
		api.POST("/campaigns/:id/tasks/:taskId/submit", v1.SubmitTaskHandler(svcCtx))
		api.GET("/campaigns/:id/tasks/:taskId/submit", v1.GetSubmissionHandler(svcCtx))
		api.POST("/campaigns/:id/tasks/:taskId/review", v1.ReviewSubmissionHandler(svcCtx))
	}

	return r
}
