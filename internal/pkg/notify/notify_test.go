// internal/pkg/notify/notify_test.go
package notify

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/erp-backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Notification{}))
	return db
}

func newService(db *gorm.DB, enabled bool) *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)
	cfg := &config.Config{
		Notify: config.NotifyConfig{Enabled: enabled, From: "system@example.com"},
	}
	return NewService(db, cfg, logrus.NewEntry(l))
}

func TestNotifyPersistsWithDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, true)

	svc.Notify(context.Background(), &Notification{
		Title:   "Low Stock: Widget",
		Message: "Quantity is 2. Please restock",
		Module:  "wms",
	})

	var got Notification
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "Low Stock: Widget", got.Title)
	assert.Equal(t, "system@example.com", got.From)
	assert.Equal(t, ImportanceMedium, got.Importance)
	assert.NotEmpty(t, got.DedupeKey)
}

func TestNotifyKeepsExplicitImportance(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, true)

	svc.Notify(context.Background(), &Notification{
		Title:      "Low Stock: Widget",
		Importance: ImportanceHigh,
	})

	var got Notification
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, ImportanceHigh, got.Importance)
}

func TestNotifyDisabled(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, false)

	svc.Notify(context.Background(), &Notification{Title: "ignored"})

	var count int64
	require.NoError(t, db.Model(&Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
