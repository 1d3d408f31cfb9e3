package main

import (
	stdlog "log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/infra/log"
	"github.com/example/supermarket/internal/server"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log.Init()
	zap.L().Info("log init success")

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		stdlog.Fatalf("failed to run web server: %v", err)
	}
}
