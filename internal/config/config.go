package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 애플리케이션 설정
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Log      LogConfig      `toml:"log"`
	Redis    RedisConfig    `toml:"redis"`
	Excel    ExcelConfig    `toml:"excel"`
	Business BusinessConfig `toml:"business"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 데이터 디렉터리 설정
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json / console
}

// RedisConfig 파싱 결과 캐시. addr 가 비어 있으면 캐시를 쓰지 않는다
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// ExcelConfig 엑셀 업로드/파싱 설정
type ExcelConfig struct {
	AllowMonthOnlySheets bool `toml:"allow_month_only_sheets"`
	MaxUploadMB          int  `toml:"max_upload_mb"`
}

// BusinessConfig 업무 기준값
type BusinessConfig struct {
	FollowupThreshold int64 `toml:"followup_threshold"`
}

// LoadConfigInfo 설정 로드 메타 정보
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 기본 설정
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Redis: RedisConfig{
			TTLMinutes: 30,
		},
		Excel: ExcelConfig{
			AllowMonthOnlySheets: false,
			MaxUploadMB:          20,
		},
		Business: BusinessConfig{
			FollowupThreshold: 300000,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 실행 파일이 있는 디렉터리
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 실행 파일 옆의 config.toml 과 .env, 환경 변수를 순서대로 반영
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 실행 파일 경로를 알 수 없으면 현재 디렉터리
		exeDir = "."
	}

	// .env 는 없어도 된다
	_ = godotenv.Load(filepath.Join(exeDir, ".env"))
	_ = godotenv.Load()

	return LoadFromFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFromFile 지정 경로의 TOML 을 읽고 환경 변수를 덮어쓴다. 파일이 없으면 기본값
func LoadFromFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv COZYVET_* 환경 변수 반영
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("COZYVET_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid COZYVET_PORT %q", v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("COZYVET_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("COZYVET_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("COZYVET_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv("COZYVET_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("COZYVET_REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("COZYVET_FOLLOWUP_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid COZYVET_FOLLOWUP_THRESHOLD %q", v)
		}
		config.Business.FollowupThreshold = n
	}
	return nil
}

// LoadConfig config.toml 로드
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 실행 파일 옆 config.toml 에 저장
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// ResolveDataDir 상대 경로면 실행 파일 기준
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 데이터 디렉터리와 업로드 하위 디렉터리 생성
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DatabasePath SQLite 파일 경로
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "cozyvet.db")
}

// MaxUploadBytes 업로드 허용 크기
func (c *AppConfig) MaxUploadBytes() int64 {
	if c.Excel.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(c.Excel.MaxUploadMB) << 20
}
