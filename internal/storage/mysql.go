package storage

import (
	"fmt"
	"time"

	"ai-match-go/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MySQL wraps the gorm connection used as one of the skill-vocabulary sources
type MySQL struct {
	db *gorm.DB
}

// NewMySQL 建立MySQL连接（技能词表存储）
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("mysql host is required")
	}

	timeout := cfg.ConnectTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, timeout)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层sql.DB失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &MySQL{db: db}, nil
}

// DB 返回gorm连接
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭底层连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
