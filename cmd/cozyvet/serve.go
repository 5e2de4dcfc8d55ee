package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/server"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/util"
)

type serveFlags struct {
	port      int
	devMode   bool
	noBrowser bool
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "HTTP API 서버 실행",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, cmd.Flags().Changed("port"))
		},
	}

	cmd.Flags().IntVar(&flags.port, "port", 0, "서비스 포트 (설정 파일보다 우선)")
	cmd.Flags().BoolVar(&flags.devMode, "dev", false, "개발 모드")
	cmd.Flags().BoolVar(&flags.noBrowser, "no-browser", false, "시작 후 브라우저를 열지 않음")
	return cmd
}

func runServe(ctx context.Context, flags *serveFlags, portFlagSet bool) error {
	cfg, info, err := loadConfig()
	if err != nil {
		return err
	}
	if portFlagSet && flags.port > 0 {
		cfg.Server.Port = flags.port
		info.PortSpecified = true
	}
	if flags.devMode {
		cfg.Server.DevMode = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 포트를 따로 지정하지 않았으면 기본 포트가 사용 중일 때 다음 포트로
	if !info.PortSpecified {
		port, err := util.FindAvailablePort(cfg.Server.Port, 20)
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	parseCache := openCache(cfg, logger)
	defer parseCache.Close()
	if err := parseCache.Ping(ctx); err != nil {
		logger.Warn("Redis 연결 실패, 파싱 캐시 없이 실행", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	srv := server.NewServer(cfg, st, parseCache, logger.Named("server"))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("서버 시작", zap.Int("port", cfg.Server.Port), zap.Bool("dev_mode", cfg.Server.DevMode))
		errCh <- srv.Run(addr)
	}()

	if !cfg.Server.DevMode && !flags.noBrowser {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			logger.Info("브라우저를 열 수 없습니다. 직접 접속하세요", zap.String("url", url))
		}
	} else {
		logger.Info("접속 주소", zap.String("url", url))
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("서버 실행 실패: %w", err)
	case <-ctx.Done():
		logger.Info("서버 종료")
		return nil
	}
}
