package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// KeyPrefix 파싱 결과 캐시 키 접두사
const KeyPrefix = "cozyvet:parse:"

// DefaultTTL 설정이 없을 때의 보관 시간
const DefaultTTL = 30 * time.Minute

var ErrMiss = errors.New("cache miss")

// RedisOptions 연결 설정
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient 주소가 비어 있으면 nil
func NewRedisClient(opts RedisOptions) *redis.Client {
	if opts.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// ParseCache 파일 내용 해시와 파서 옵션 지문 기준 파싱 결과 캐시
// 같은 Redis 를 쓰는 프로세스끼리 옵션이 달라도 결과가 섞이지 않는다.
// client 가 nil 이면 항상 비어 있는 캐시로 동작한다.
type ParseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewParseCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ParseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseCache{client: client, ttl: ttl, logger: logger}
}

// Enabled Redis 가 연결되어 있는지
func (c *ParseCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key 파일 해시와 옵션 지문으로 캐시 키 생성 (cozyvet:parse:<hash>:<variant>)
func Key(fileHash, variant string) string {
	return KeyPrefix + fileHash + ":" + variant
}

// Get 캐시된 결과. 없으면 ErrMiss
func (c *ParseCache) Get(ctx context.Context, fileHash, variant string) (*model.ParseResult, error) {
	if !c.Enabled() {
		return nil, ErrMiss
	}

	val, err := c.client.Get(ctx, Key(fileHash, variant)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	result := model.NewParseResult()
	if err := json.Unmarshal(val, result); err != nil {
		// 깨진 항목은 없는 것으로 본다
		c.logger.Warn("캐시 항목 해석 실패", zap.String("key", Key(fileHash, variant)), zap.Error(err))
		return nil, ErrMiss
	}
	return result, nil
}

// Set 결과 저장
func (c *ParseCache) Set(ctx context.Context, fileHash, variant string, result *model.ParseResult) error {
	if !c.Enabled() || result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal parse result failed: %w", err)
	}
	if err := c.client.Set(ctx, Key(fileHash, variant), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping 연결 확인. 비활성 상태면 nil
func (c *ParseCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close 연결 종료
func (c *ParseCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
