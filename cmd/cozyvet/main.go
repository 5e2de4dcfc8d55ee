package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/config"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/logging"
)

const serviceName = "cozyvet"

var (
	logLevel string
	dataDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cozyvet",
		Short: "동물병원 월별 엑셀 집계 도구",
		Long: `cozyvet 은 월별 내원 현황 엑셀을 읽어 환자 기록과 건강검진 기록을 추출하고,
저장한 뒤 재진/추적 연락 리마인더를 만든다.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "로그 레벨 (debug/info/warn/error, 설정 파일보다 우선)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "데이터 디렉터리 (설정 파일보다 우선)")

	rootCmd.AddCommand(newParseCmd(), newImportCmd(), newExportCmd(), newServeCmd(), newConfigCmd())

	// Ctrl+C 는 serve 대기와 진행 중인 가져오기를 함께 멈춘다
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig 설정 파일, .env, 환경 변수, 공통 플래그 순서로 반영
func loadConfig() (*config.AppConfig, config.LoadConfigInfo, error) {
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		return nil, info, fmt.Errorf("설정 로드 실패: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if dataDir != "" {
		cfg.Data.DataDir = dataDir
	}
	return cfg, info, nil
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, fmt.Errorf("로거 생성 실패: %w", err)
	}
	return logger, nil
}

// openCache redis 주소가 없으면 비활성 캐시
func openCache(cfg *config.AppConfig, logger *zap.Logger) *cache.ParseCache {
	client := cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cache.NewParseCache(client, time.Duration(cfg.Redis.TTLMinutes)*time.Minute, logger.Named("cache"))
}
