package log

import (
	stdlog "log"

	"go.uber.org/zap"
)

// Init 初始化全局 zap Logger，业务代码统一通过 zap.L() 使用
func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
}
