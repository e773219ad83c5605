package backend_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"crm-app/src/backend"
	"crm-app/src/config"
	"crm-app/src/database"
	"crm-app/src/infrastructure/httpclient"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestBackendSelection(t *testing.T) {
	t.Run("SERVICE_URL未設定ならローカル", func(t *testing.T) {
		cfg := &config.Config{
			Database: config.DatabaseConfig{
				Driver:     database.DriverSQLite,
				SQLitePath: filepath.Join(t.TempDir(), "test.db"),
			},
		}

		db, err := database.NewDB(&cfg.Database, testLogger())
		require.NoError(t, err)
		defer db.Close()
		require.NoError(t, db.Migrate(context.Background()))

		b := backend.New(cfg, db, testLogger())

		assert.Equal(t, backend.ModeLocal, b.Mode)
		assert.NotNil(t, b.Contacts)
		assert.NotNil(t, b.Organizations)
		assert.NotNil(t, b.Notes)
		assert.NotNil(t, b.Tasks)

		// ローカルバックエンドは実際に操作できる
		contact, err := b.Contacts.AddContact(context.Background(), "Taro", "Yamada")
		require.NoError(t, err)
		assert.NotZero(t, contact.ID)
	})

	t.Run("SERVICE_URL設定済みならリモート", func(t *testing.T) {
		cfg := &config.Config{
			Service: config.ServiceConfig{
				URL:     "http://peer:8080",
				Timeout: 5 * time.Second,
			},
		}

		// リモートモードではdbを開かない
		b := backend.New(cfg, nil, testLogger())

		assert.Equal(t, backend.ModeRemote, b.Mode)
		assert.IsType(t, &httpclient.ContactClient{}, b.Contacts)
		assert.IsType(t, &httpclient.OrganizationClient{}, b.Organizations)
		assert.IsType(t, &httpclient.NoteClient{}, b.Notes)
		assert.IsType(t, &httpclient.TaskClient{}, b.Tasks)
	})
}
