package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// bucketRecord 每個分類一列，value 為分類的 JSON
type bucketRecord struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (bucketRecord) TableName() string {
	return "planner_buckets"
}

// PostgresBackend 以 gorm 存取 PostgreSQL
type PostgresBackend struct {
	db *gorm.DB
}

// NewPostgresBackend 連線並建立資料表
func NewPostgresBackend(cfg config.PostgresConfig) (*PostgresBackend, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	common.LogInfo("PostgreSQL 已連線", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return NewPostgresBackendWithDB(db)
}

// NewPostgresBackendWithDB 使用既有連線，會執行 AutoMigrate
func NewPostgresBackendWithDB(db *gorm.DB) (*PostgresBackend, error) {
	if err := db.AutoMigrate(&bucketRecord{}); err != nil {
		return nil, fmt.Errorf("migrate planner_buckets: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var rec bucketRecord
	err := p.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	rec := bucketRecord{Key: key, Value: value}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *PostgresBackend) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
