package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "설정 파일 관리",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "실행 파일 옆에 기본 config.toml 생성",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exeDir, err := config.GetExeDir()
			if err != nil {
				exeDir = "."
			}
			path := filepath.Join(exeDir, "config.toml")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s 이(가) 이미 있습니다 (--force 로 덮어쓰기)", path)
			}
			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return fmt.Errorf("설정 저장 실패: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "기존 파일 덮어쓰기")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "적용된 설정을 JSON 으로 출력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Redis.Password != "" {
				shown.Redis.Password = "***"
			}
			return writeJSON(shown, "", true)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
