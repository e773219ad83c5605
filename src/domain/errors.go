package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// エラー分類。ローカル・リモートどちらのバックエンドでも同じ型で返す

// DuplicateEntityError 作成時の一意性違反。既存レコードのIDを保持する
type DuplicateEntityError struct {
	Kind       string // "Contact" | "Organization"
	Label      string // フルネームまたは組織名
	ExistingID int
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s '%s' already exists (ID: %d)", e.Kind, e.Label, e.ExistingID)
}

// NotFoundError 対象エンティティが存在しない
type NotFoundError struct {
	Kind string // "Contact" | "Organization" | "Note" | "Task"
	ID   int
	// Detail リモート由来で構造化できなかった404メッセージ。
	// 空でなければそのまま使う
	Detail string
}

func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Kind == "Task" {
		return fmt.Sprintf("Task with ID %d not found", e.ID)
	}
	return fmt.Sprintf("%s ID %d not found", e.Kind, e.ID)
}

// ReferenceNotFoundError タグ対象のIDが一つ以上存在しない。
// 欠落IDの完全な集合を一度にまとめて保持する
type ReferenceNotFoundError struct {
	Kind       string // 欠落した関連種別
	MissingIDs []int
}

func (e *ReferenceNotFoundError) Error() string {
	ids := make([]int, len(e.MissingIDs))
	copy(ids, e.MissingIDs)
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s IDs not found: %s", e.Kind, strings.Join(parts, ", "))
}

// ValidationError 入力値の検証エラー（重要度の範囲外など）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TaskStateError 完了・未完了の状態遷移エラー
type TaskStateError struct {
	Title     string
	Completed bool // 現在の状態
}

func (e *TaskStateError) Error() string {
	if e.Completed {
		return fmt.Sprintf("Task '%s' is already completed", e.Title)
	}
	return fmt.Sprintf("Task '%s' is already incomplete", e.Title)
}

// BackendUnavailableError リモートバックエンドへの到達失敗（タイムアウト、
// 接続エラー、5xx）。自動リトライはしない
type BackendUnavailableError struct {
	Cause error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("Request failed: %v", e.Cause)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}

// IsNotFound 対象エンティティ不在エラーかどうか
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicate 一意性違反エラーかどうか
func IsDuplicate(err error) bool {
	var d *DuplicateEntityError
	return errors.As(err, &d)
}
