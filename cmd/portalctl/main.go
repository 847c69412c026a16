// portalctl 直接操作数据库的运维命令行工具
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/config"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/database"
	applogger "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("PORTAL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, "warn", logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	cli := &commandLine{
		repo:   repository.NewRepository(db),
		sqlDB:  sqlDB,
		out:    os.Stdout,
		logger: logger,
	}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
