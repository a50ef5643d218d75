// Package dbtest поднимает GORM поверх SQLite в памяти для тестов хранилищ,
// usecase'ов и хендлеров. Схема создаётся через AutoMigrate по доменным моделям.
package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// Open возвращает чистую базу; соединение одно, иначе каждое новое
// соединение получило бы свою пустую :memory: базу
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}
