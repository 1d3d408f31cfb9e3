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

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg)

	addr := cfg.AdminServer.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		stdlog.Fatalf("failed to run admin server: %v", err)
	}
}
