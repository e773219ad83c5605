package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"crm-app/src/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// DriverPostgres / DriverSQLite 対応ドライバー
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB represents the database connection.
// クエリは `?` プレースホルダーで記述し、postgresの場合は実行時に `$N` へ変換する
type DB struct {
	sqlDB  *sql.DB
	driver string
	logger *logrus.Logger
}

// NewDB creates a new database connection
func NewDB(cfg *config.DatabaseConfig, logger *logrus.Logger) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		db, err = sql.Open("postgres", dsn)
	case DriverSQLite:
		// sqliteはファイルDB。ディレクトリがなければ作成する
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", mkErr)
			}
		}
		dsn := fmt.Sprintf("file:%s?_foreign_keys=on", cfg.SQLitePath)
		db, err = sql.Open("sqlite3", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続をテスト
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 接続プールの設定
	if cfg.Driver == DriverSQLite {
		// ファイルDBはライターが一つ
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	logger.WithField("driver", cfg.Driver).Info("データベースに接続しました")

	return &DB{
		sqlDB:  db,
		driver: cfg.Driver,
		logger: logger,
	}, nil
}

// Driver 使用中のドライバー名を返す
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection
func (db *DB) Close() error {
	db.logger.Info("データベース接続を閉じています")
	return db.sqlDB.Close()
}

// Health checks database health
func (db *DB) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return db.sqlDB.PingContext(ctx)
}

// QueryContext executes a query that returns rows
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, db.rebind(query), args...)
}

// QueryRowContext executes a query that returns at most one row
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, db.rebind(query), args...)
}

// ExecContext executes a query without returning rows
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, db.rebind(query), args...)
}

// Tx ドライバーに合わせたプレースホルダー変換付きトランザクション
type Tx struct {
	tx     *sql.Tx
	driver string
}

// QueryContext executes a query that returns rows within the transaction
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, rebind(t.driver, query), args...)
}

// QueryRowContext executes a query that returns at most one row within the transaction
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, rebind(t.driver, query), args...)
}

// ExecContext executes a query without returning rows within the transaction
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.driver, query), args...)
}

// WithinTx トランザクション境界を明示するヘルパー。
// fnがエラーまたはpanicを返した場合はロールバック、正常終了でコミットする。
// 接続はこの呼び出しの中でのみ使用され、全ての経路で解放される
func (db *DB) WithinTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	rawTx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = rawTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := rawTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				db.logger.WithError(rbErr).Error("トランザクションのロールバックに失敗")
			}
			return
		}
		err = rawTx.Commit()
	}()

	err = fn(&Tx{tx: rawTx, driver: db.driver})
	return err
}

func (db *DB) rebind(query string) string {
	return rebind(db.driver, query)
}

// rebind `?` プレースホルダーをpostgres用に `$N` へ書き換える。
// シングルクォート内の `?` は変換しない
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
