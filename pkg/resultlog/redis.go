package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/tdtp-bulk/pkg/bulk"
)

// Config настройки подключения к Redis
type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Name     string        `yaml:"name"`
	TTL      time.Duration `yaml:"ttl"`
}

// Validate проверяет обязательные поля
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Address == "" {
		return fmt.Errorf("result_log.address is required")
	}
	if c.Name == "" {
		return fmt.Errorf("result_log.name is required")
	}
	if c.TTL < 0 {
		return fmt.Errorf("result_log.ttl must be >= 0")
	}
	return nil
}

// ImportSummary - результат одного импорта, публикуемый в Redis
//
// Ключи Redis:
//
//	SET      tdtp:import:<name>:state  <JSON>  EX <ttl>
//	PUBLISH  tdtp:import:<name>        <JSON>
type ImportSummary struct {
	Name         string    `json:"name"`
	Table        string    `json:"table"`
	Source       string    `json:"source,omitempty"`
	Status       string    `json:"status"` // "success" | "failed"
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMs   int64     `json:"duration_ms"`
	Rows         int       `json:"rows"`
	Statements   int       `json:"statements"`
	GeneratedIDs int       `json:"generated_ids"`
	FirstID      int64     `json:"first_id,omitempty"`
	LastID       int64     `json:"last_id,omitempty"`
	Error        *string   `json:"error,omitempty"`
}

// NewImportSummary заполняет итог импорта. res игнорируется,
// если задан importErr
func NewImportSummary(table string, rows int, res *bulk.Result, started, finished time.Time, importErr error) ImportSummary {
	s := ImportSummary{
		Table:      table,
		Status:     "success",
		StartedAt:  started,
		FinishedAt: finished,
		DurationMs: finished.Sub(started).Milliseconds(),
		Rows:       rows,
	}

	if importErr != nil {
		s.Status = "failed"
		msg := importErr.Error()
		s.Error = &msg
		return s
	}

	if res != nil {
		s.Statements = res.StatementsExecuted
		s.GeneratedIDs = len(res.GeneratedIDs)
		if n := len(res.GeneratedIDs); n > 0 {
			s.FirstID = res.GeneratedIDs[0]
			s.LastID = res.GeneratedIDs[n-1]
		}
	}
	return s
}

// RedisPublisher публикует итоги импорта в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает publisher с собственным клиентом
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// StateKey - ключ с последним итогом
func (p *RedisPublisher) StateKey() string {
	return fmt.Sprintf("tdtp:import:%s:state", p.config.Name)
}

// Channel - pub/sub канал для итогов
func (p *RedisPublisher) Channel() string {
	return fmt.Sprintf("tdtp:import:%s", p.config.Name)
}

// Publish сохраняет итог в StateKey и отправляет его в Channel.
// Вызывается и для неудачных импортов
func (p *RedisPublisher) Publish(ctx context.Context, summary ImportSummary) error {
	summary.Name = p.config.Name

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := p.client.Set(ctx, p.StateKey(), payload, p.config.TTL).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}

// Close закрывает клиент Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
