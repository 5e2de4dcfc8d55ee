package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/importer"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
)

type parseFlags struct {
	outputPath     string
	pretty         bool
	progress       bool
	allowMonthOnly bool
}

func newParseCmd() *cobra.Command {
	flags := &parseFlags{}
	cmd := &cobra.Command{
		Use:   "parse [input.xlsx]",
		Short: "엑셀을 파싱해 JSON 으로 출력",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "출력 파일 경로 (기본: stdout)")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "JSON 들여쓰기")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "진행 상황을 stderr 로 출력")
	cmd.Flags().BoolVar(&flags.allowMonthOnly, "allow-month-only", false, "연도 없는 'M월' 시트도 unknown-MM 으로 읽기")
	return cmd
}

func runParse(ctx context.Context, inputPath string, flags *parseFlags) error {
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

	p := parser.NewParser(parser.Options{
		AllowMonthOnlySheets: flags.allowMonthOnly || cfg.Excel.AllowMonthOnlySheets,
		Logger:               logger.Named("parser"),
	})

	var result *model.ParseResult
	if flags.progress {
		// 진행 출력이 필요하면 캐시를 거치지 않는다
		result, err = p.Parse(data, func(pr parser.Progress) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s %s\n", pr.Percent, pr.Stage, pr.Sheet)
		})
	} else {
		parseCache := openCache(cfg, logger)
		defer parseCache.Close()
		result, err = parseWithCache(ctx, parseCache, p, data, logger)
	}
	if err != nil {
		return fmt.Errorf("파싱 실패: %w", err)
	}

	return writeJSON(result, flags.outputPath, flags.pretty)
}

// parseWithCache 캐시가 비활성이면 매번 파싱한다
func parseWithCache(ctx context.Context, parseCache *cache.ParseCache, p *parser.Parser, data []byte, logger *zap.Logger) (*model.ParseResult, error) {
	hash := importer.FileHash(data)
	if result, err := parseCache.Get(ctx, hash, p.Fingerprint()); err == nil {
		return result, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("파싱 캐시 조회 실패", zap.Error(err))
	}

	result, err := p.Parse(data, nil)
	if err != nil {
		return nil, err
	}
	if err := parseCache.Set(ctx, hash, p.Fingerprint(), result); err != nil {
		logger.Warn("파싱 캐시 저장 실패", zap.Error(err))
	}
	return result, nil
}

func writeJSON(v any, outputPath string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("JSON 변환 실패: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("출력 파일 쓰기 실패: %w", err)
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}
