package db

import (
	"fmt"
	"log"

	"redvine/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 建立数据库连接并自动迁移表结构
// 连接句柄由调用方持有并注入各个 service，不做包级全局变量
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=redvine port=5432 sslmode=disable"
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Vote{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migration completed")

	return conn, nil
}
