package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"crm-app/src/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	t.Run("sqliteは書き換えない", func(t *testing.T) {
		query := "SELECT * FROM contacts WHERE id = ? AND first_name = ?"
		assert.Equal(t, query, rebind(DriverSQLite, query))
	})

	t.Run("postgresは連番プレースホルダーに変換する", func(t *testing.T) {
		got := rebind(DriverPostgres, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)")
		assert.Equal(t, "INSERT INTO contacts (first_name, last_name) VALUES ($1, $2)", got)
	})

	t.Run("文字列リテラル内の?は変換しない", func(t *testing.T) {
		got := rebind(DriverPostgres, "SELECT 'a?b' FROM contacts WHERE id = ?")
		assert.Equal(t, "SELECT 'a?b' FROM contacts WHERE id = $1", got)
	})
}

func newTestDB(t *testing.T) *DB {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := NewDB(&config.DatabaseConfig{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNewDBUnsupportedDriver(t *testing.T) {
	logger := logrus.New()
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	_, err := db.ExecContext(ctx, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)", "Taro", "Yamada")
	assert.NoError(t, err)
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.Migrate(ctx))

	countContacts := func(t *testing.T) int {
		t.Helper()
		var n int
		row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts")
		require.NoError(t, row.Scan(&n))
		return n
	}

	t.Run("正常終了でコミットする", func(t *testing.T) {
		err := db.WithinTx(ctx, func(tx *Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)", "Hanako", "Sato")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countContacts(t))
	})

	t.Run("エラー時はロールバックする", func(t *testing.T) {
		wantErr := errors.New("boom")
		err := db.WithinTx(ctx, func(tx *Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)", "Jiro", "Tanaka"); err != nil {
				return err
			}
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, 1, countContacts(t))
	})

	t.Run("panic時もロールバックする", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.WithinTx(ctx, func(tx *Tx) error {
				if _, err := tx.ExecContext(ctx, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)", "Saburo", "Suzuki"); err != nil {
					return err
				}
				panic("boom")
			})
		})
		assert.Equal(t, 1, countContacts(t))
	})
}

func TestHealth(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Health())
}
