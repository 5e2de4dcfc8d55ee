package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/exporter"
)

type exportFlags struct {
	outputPath  string
	sourceMonth string
	dueUntil    string
}

func newExportCmd() *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "저장된 환자 기록과 연락 목록을 엑셀로 내보내기",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "cozyvet.xlsx", "출력 파일 경로")
	cmd.Flags().StringVar(&flags.sourceMonth, "month", "", "YYYY-MM (기본: 전체)")
	cmd.Flags().StringVar(&flags.dueUntil, "due-until", time.Now().Format("2006-01-02"), "이 날짜까지의 대기 리마인더를 연락 목록에 포함")
	return cmd
}

func runExport(ctx context.Context, flags *exportFlags) error {
	if _, err := time.Parse("2006-01-02", flags.dueUntil); err != nil {
		return fmt.Errorf("--due-until 은 YYYY-MM-DD 형식이어야 합니다: %w", err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	file, err := exporter.NewExporter(st).Export(ctx, exporter.ExportOptions{
		SourceMonth: flags.sourceMonth,
		DueUntil:    flags.dueUntil,
	}, func(p exporter.Progress) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s %s\n", p.Percent, p.Stage, p.Sheet)
	})
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(flags.outputPath); err != nil {
		return fmt.Errorf("엑셀 저장 실패: %w", err)
	}
	fmt.Println(flags.outputPath)
	return nil
}
