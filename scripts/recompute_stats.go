// 手动重算题目统计脚本
//
// 每次提交作答都会重算对应题目的 timesAttempted/averageScore。
// 此脚本用于批量导入作答记录或修复数据之后，一次性重算全部上线题目。
// 管理员也可以调用 POST /api/admin/questions/recompute 完成同样的事情。
//
// 用法: go run scripts/recompute_stats.go

package main

import (
	"context"
	"log"

	"prepace_backend/internal/config"
	"prepace_backend/internal/repository"
	"prepace_backend/internal/service"
	"prepace_backend/pkg/database"
	"prepace_backend/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	aggregator := service.NewRecomputeAggregator(
		repository.NewAnswerRepository(db),
		repository.NewQuestionRepository(db),
	)

	log.Println("开始重算题目统计...")
	count, err := aggregator.RefreshAll(context.Background())
	if err != nil {
		log.Fatalf("重算失败: %v", err)
	}
	log.Printf("完成！共重算 %d 道题", count)
}
