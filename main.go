package main

import (
	"flag"
	_ "net/http/pprof"

	"github.com/zeromicro/go-zero/core/threading"

	"github.com/locey/QuestFlow/QuestFlowEnd/api/router"
	"github.com/locey/QuestFlow/QuestFlowEnd/app"
	"github.com/locey/QuestFlow/QuestFlowEnd/config"
	"github.com/locey/QuestFlow/QuestFlowEnd/service/svc"
	service "github.com/locey/QuestFlow/QuestFlowEnd/service/v1"
)

const (
	defaultConfigPath = "./config/config.toml"
)

func main() {
	conf := flag.String("conf", defaultConfigPath, "conf file path")
	flag.Parse()
	c, err := config.UnmarshalConfig(*conf)
	if err != nil {
		panic(err)
	}

	for _, chain := range c.ChainSupported {
		if chain.ChainID == 0 || chain.Name == "" {
			panic("invalid chain_supported config")
		}
	}

	serverCtx, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}

	r := router.NewRouter(serverCtx)

	if serverCtx.CampaignContract != nil {
		// 补推上次没送出去的完成奖励
		threading.GoSafe(func() {
			service.RetryPendingAwards(serverCtx)
		})
		if c.CampaignContract.EnableMonitor {
			threading.GoSafe(func() {
				service.StartCampaignEventListener(serverCtx)
			})
		}
	}

	app, err := app.NewPlatform(c, r, serverCtx)
	if err != nil {
		panic(err)
	}
	app.Start()
}
