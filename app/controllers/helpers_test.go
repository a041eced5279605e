package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/ServerHub/app/models"
	"github.com/ManuelReschke/ServerHub/internal/pkg/cache"
	"github.com/ManuelReschke/ServerHub/internal/pkg/database"
	"github.com/ManuelReschke/ServerHub/internal/pkg/usercontext"
)

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
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// memoryStore is an in-process cache.Store.
type memoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	votes   map[string]bool
	deletes []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}, votes: map[string]bool{}}
}

func (m *memoryStore) GetJSON(key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) SetJSON(key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *memoryStore) TryVote(serverID uint, voter string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cache.VoteKey(serverID, voter)
	if m.votes[key] {
		return false, nil
	}
	m.votes[key] = true
	return true, nil
}

// withUser installs uc as the request user, like UserContextMiddleware does
// for a session.
func withUser(uc usercontext.UserContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.Set(c, uc)
		return c.Next()
	}
}

var player = usercontext.UserContext{UserID: 7, Username: "player", IsLoggedIn: true}

func postForm(t *testing.T, app *fiber.App, path, form string, headers ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func seedUser(t *testing.T, db *gorm.DB, name, email, password, role string) *models.User {
	t.Helper()
	u, err := models.CreateUser(name, email, password)
	require.NoError(t, err)
	u.Role = role
	require.NoError(t, db.Create(u).Error)
	return u
}

// newTestViews loads the real templates with the production helpers.
func newTestViews() *html.Engine {
	engine := html.New("../../views", ".html")
	engine.AddFuncMap(TemplateFuncs)
	return engine
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
