package payment

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/ServerHub/app/models"
)

// newTestDB opens a private in-memory database with the payment tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would see its own empty memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.PaymentConfig{}, &models.Package{}, &models.Purchase{}))
	return db
}

func seedConfig(t *testing.T, db *gorm.DB, key, value string, enabled bool) {
	t.Helper()
	cfg := &models.PaymentConfig{ConfigKey: key, ConfigValue: value, IsEnabled: enabled}
	require.NoError(t, db.Create(cfg).Error)
}

func seedPackage(t *testing.T, db *gorm.DB, pkg models.Package) {
	t.Helper()
	active := pkg.IsActive
	require.NoError(t, db.Create(&pkg).Error)
	// is_active has a column default, so a false value is skipped on create
	if !active {
		require.NoError(t, db.Model(&pkg).Update("is_active", false).Error)
	}
}

func loadConfig(t *testing.T, db *gorm.DB, key string) (*models.PaymentConfig, CredentialStatus) {
	t.Helper()
	cfg, err := NewRepository(db).GetConfig(context.Background(), key)
	require.NoError(t, err)
	status, err := ParseCredentialStatus(cfg.ConfigValue)
	require.NoError(t, err)
	return cfg, status
}

func countConfigs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PaymentConfig{}).Count(&n).Error)
	return n
}

const validBlob = `{"client_id_set":true,"client_secret_set":true,"webhook_id_set":false,"environment":"sandbox"}`
