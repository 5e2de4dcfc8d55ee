package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/config"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/importer"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

type importFlags struct {
	mode   string
	pretty bool
	dryRun bool
}

func newImportCmd() *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import [input.xlsx]",
		Short: "엑셀을 파싱해 데이터베이스에 저장하고 리마인더를 만든다",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", string(importer.DuplicateSkip), "기존 기록과 겹칠 때: skip, overwrite")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "결과 JSON 들여쓰기")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "저장하지 않고 건수만 집계")
	return cmd
}

func runImport(ctx context.Context, inputPath string, flags *importFlags) error {
	mode, err := importer.ParseDuplicateMode(flags.mode)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("파일 읽기 실패: %w", err)
	}

	var repo importer.Repository
	if !flags.dryRun {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		repo = st
	}

	coordinator := importer.NewCoordinator(repo, logger.Named("importer"), cfg.Business.FollowupThreshold)
	p := parser.NewParser(parser.Options{
		AllowMonthOnlySheets: cfg.Excel.AllowMonthOnlySheets,
		Logger:               logger.Named("parser"),
	})

	events := coordinator.ImportFile(ctx, p, importer.FileRequest{
		Data:     data,
		Filename: filepath.Base(inputPath),
		Mode:     mode,
	})

	var report *importer.ImportReport
	for event := range events {
		switch event.Type {
		case importer.EventError:
			return errors.New(event.Message)
		case importer.EventDone:
			report, _ = event.Data.(*importer.ImportReport)
		default:
			fmt.Fprintln(os.Stderr, event.Message)
		}
	}
	if report == nil {
		// 이벤트가 끊긴 경우 (Ctrl+C)
		logger.Warn("가져오기 중단", zap.String("file", inputPath))
		return ctx.Err()
	}

	return writeJSON(report, "", flags.pretty)
}

// openStore 데이터 디렉터리를 만들고 SQLite 를 연다
func openStore(cfg *config.AppConfig) (*store.Store, error) {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("데이터 디렉터리 생성 실패: %w", err)
	}
	st, err := store.New(config.DatabasePath(dir))
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 초기화 실패: %w", err)
	}
	return st, nil
}
