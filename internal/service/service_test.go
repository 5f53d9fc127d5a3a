package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "blogmailer_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = database.MigrateDatabase(db,
		&model.Option{},
		&model.User{},
		&model.Subscriber{},
		&model.Tag{},
		&model.SubscriberTag{},
		&model.Post{},
		&model.SendHistory{},
		&model.SendLog{},
		&model.EmailQueueItem{},
		&model.CronLog{},
		&model.Template{},
		&model.AnalyticsEvent{},
		&model.AnalyticsLink{},
	)
	require.NoError(t, err)
	return db
}

// recordingMailer captures deliveries and fails the addresses listed in
// failFor.
type recordingMailer struct {
	sent    []string
	failFor map[string]error
}

func (m *recordingMailer) Send(from, to, subject, htmlBody string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}
