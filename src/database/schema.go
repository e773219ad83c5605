package database

import (
	"context"
	"fmt"
)

// エンティティ4テーブルと関連5テーブル。関連テーブルは複合主キーのみの
// 純粋なリンク集合で、重複ペアはスキーマレベルで存在できない
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id SERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id SERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT,
		due_date TIMESTAMPTZ NOT NULL,
		importance INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS note_contact_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		contact_id INTEGER NOT NULL REFERENCES contacts(id),
		PRIMARY KEY (note_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS note_organization_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		PRIMARY KEY (note_id, organization_id)
	)`,
	`CREATE TABLE IF NOT EXISTS note_task_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		PRIMARY KEY (note_id, task_id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_contact_association (
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		contact_id INTEGER NOT NULL REFERENCES contacts(id),
		PRIMARY KEY (task_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_organization_association (
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		PRIMARY KEY (task_id, organization_id)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		due_date DATETIME NOT NULL,
		importance INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS note_contact_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		contact_id INTEGER NOT NULL REFERENCES contacts(id),
		PRIMARY KEY (note_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS note_organization_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		PRIMARY KEY (note_id, organization_id)
	)`,
	`CREATE TABLE IF NOT EXISTS note_task_association (
		note_id INTEGER NOT NULL REFERENCES notes(id),
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		PRIMARY KEY (note_id, task_id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_contact_association (
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		contact_id INTEGER NOT NULL REFERENCES contacts(id),
		PRIMARY KEY (task_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_organization_association (
		task_id INTEGER NOT NULL REFERENCES tasks(id),
		organization_id INTEGER NOT NULL REFERENCES organizations(id),
		PRIMARY KEY (task_id, organization_id)
	)`,
}

// Migrate テーブルを作成（存在する場合は何もしない）
func (db *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.driver == DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	db.logger.Debug("スキーマの初期化が完了しました")
	return nil
}
