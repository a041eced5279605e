package statistics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/app/repository"
)

type mapStore map[string][]byte

func (m mapStore) GetJSON(key string, dest interface{}) error {
	raw, ok := m[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (m mapStore) SetJSON(key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m mapStore) Delete(key string) error {
	delete(m, key)
	return nil
}

func (m mapStore) TryVote(uint, string, time.Duration) (bool, error) { return true, nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Server{}, &models.ServerVote{}))
	return db
}

func TestGetCountsAndCaches(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.User{Name: "player", Email: "p@serverhub.test"}).Error)
	require.NoError(t, db.Create(&models.Server{OwnerID: 1, Name: "alpha", Game: "rust", Address: "a.example"}).Error)
	require.NoError(t, db.Create(&models.Server{OwnerID: 1, Name: "bravo", Game: "rust", Address: "b.example"}).Error)
	require.NoError(t, db.Create(&models.ServerVote{ServerID: 1, IPAddress: "203.0.113.1", CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.ServerVote{ServerID: 1, IPAddress: "203.0.113.2", CreatedAt: now.Add(-20 * time.Hour)}).Error)

	store := mapStore{}
	svc := NewService(repository.NewRepositories(db), store)
	svc.now = func() time.Time { return now }

	data, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, StatisticsData{TotalServers: 2, TotalUsers: 1, VotesToday: 1}, data)
	assert.Contains(t, store, "serverhub:statistics:2026-03-14")

	// cached value wins until it expires
	require.NoError(t, db.Create(&models.Server{OwnerID: 1, Name: "charlie", Game: "rust", Address: "c.example"}).Error)
	data, err = svc.Get()
	require.NoError(t, err)
	assert.EqualValues(t, 2, data.TotalServers)
}
