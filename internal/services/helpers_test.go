package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/models"
)

// newTestDB opens a private in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// fixedClock returns a clock that can be moved by the test
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func testConfig(clock *fixedClock) EngineConfig {
	return EngineConfig{
		Location:      time.UTC,
		DueHour:       9,
		CollectSplits: true,
		ClockFunc:     clock.Now,
	}
}

func createCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// createPlan inserts a plan directly so billing days outside 1-28 can be exercised
func createPlan(t *testing.T, db *gorm.DB, customerID uint, amount int64, billingDay int) models.PaymentPlan {
	t.Helper()
	p := models.PaymentPlan{
		CustomerID: customerID,
		Title:      "Monthly retainer",
		Amount:     amount,
		BillingDay: billingDay,
		Status:     models.PlanStatusActive,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func balanceOf(t *testing.T, db *gorm.DB, bucket string) int64 {
	t.Helper()
	var b models.Balance
	err := db.Where("bucket = ?", bucket).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return b.Amount
}

func requireCode(t *testing.T, err error, code ledger.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, ledger.CodeOf(err), "unexpected error: %v", err)
}

// memoryCache is an in-process Cache that stores JSON like RedisCache does
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	data, ok := m.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// runConcurrently starts n calls of fn at once and returns their errors by index
func runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}
