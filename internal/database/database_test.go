package database

import (
	"testing"

	"skillswap/internal/config"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	err = configurePool(db, cfg)
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)

	// sql.DB does not expose the configured limits directly; Stats
	// reflects MaxOpenConnections once set.
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestBuildDSN_DefaultsSSLMode(t *testing.T) {
	dsn := buildDSN("localhost", "5432", "user", "pw", "skillswap", "")
	assert.Contains(t, dsn, "sslmode=disable")

	dsn = buildDSN("localhost", "5432", "user", "pw", "skillswap", "require")
	assert.Contains(t, dsn, "sslmode=require")
}
