package domain

import (
	"fmt"
	"time"
)

// Contact represents a person domain entity
type Contact struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName 表示用のフルネーム（タグ差分のラベルにも使用）
func (c Contact) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}

// ContactWithCount represents a contact with its note count
type ContactWithCount struct {
	Contact
	NoteCount int `json:"note_count"`
}

// Organization represents an organization domain entity
type Organization struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrganizationWithCount represents an organization with its note count
type OrganizationWithCount struct {
	Organization
	NoteCount int `json:"note_count"`
}

// Note represents a note domain entity with loaded associations
type Note struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Contacts      []Contact      `json:"contacts"`
	Organizations []Organization `json:"organizations"`
	Tasks         []Task         `json:"tasks"`
}

// Task represents a task domain entity with loaded associations
type Task struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	DueDate       time.Time      `json:"due_date"`
	Importance    int            `json:"importance"`
	Completed     bool           `json:"completed"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Contacts      []Contact      `json:"contacts"`
	Organizations []Organization `json:"organizations"`
}

// TaskSort urgent一覧のソートキー
type TaskSort string

const (
	// TaskSortUrgency 期限の昇順
	TaskSortUrgency TaskSort = "urgency"
	// TaskSortImportance 重要度の降順、期限の昇順
	TaskSortImportance TaskSort = "importance"
)

// IsValid validates if the sort key is valid
func (s TaskSort) IsValid() bool {
	switch s {
	case TaskSortUrgency, TaskSortImportance:
		return true
	default:
		return false
	}
}

// TaskFilter represents filter criteria for task queries
type TaskFilter struct {
	Limit          int
	ShowCompleted  bool
	ContactID      *int
	OrganizationID *int
}

// NoteFilter represents filter criteria for note queries
type NoteFilter struct {
	Limit          int
	ContactID      *int
	OrganizationID *int
}

// TagInstruction タグの追加・削除指示。対象エンティティがサポートしない
// 関連種別（例：タスクのタスクタグ）は呼び出し側で常にnilにする
type TagInstruction struct {
	AddContactIDs         []int
	RemoveContactIDs      []int
	AddOrganizationIDs    []int
	RemoveOrganizationIDs []int
	AddTaskIDs            []int
	RemoveTaskIDs         []int
}

// TagDiff 実際に適用された変更のみを記録する差分。
// ラベルはコンタクトのフルネーム、組織名、タスクタイトル
type TagDiff struct {
	AddedContacts        []string `json:"added_contacts"`
	RemovedContacts      []string `json:"removed_contacts"`
	AddedOrganizations   []string `json:"added_organizations"`
	RemovedOrganizations []string `json:"removed_organizations"`
	AddedTasks           []string `json:"added_tasks"`
	RemovedTasks         []string `json:"removed_tasks"`
}

// Empty 変更が一つもなかったかどうか
func (d TagDiff) Empty() bool {
	return len(d.AddedContacts) == 0 &&
		len(d.RemovedContacts) == 0 &&
		len(d.AddedOrganizations) == 0 &&
		len(d.RemovedOrganizations) == 0 &&
		len(d.AddedTasks) == 0 &&
		len(d.RemovedTasks) == 0
}

// BulkAddResult represents the outcome of a bulk contact add
type BulkAddResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}
