package domain

import (
	"context"
	"time"
)

// ローカルのRecord Storeに対する操作。リモートモードはこの層を通らず、
// usecaseのインターフェースごと差し替えられる。
// 単一取得系は不在時に (nil, nil) を返し、エラーにはしない

// ContactRepository defines the interface for contact data operations
type ContactRepository interface {
	Create(ctx context.Context, firstName, lastName string) (*Contact, error)
	FindByName(ctx context.Context, firstName, lastName string) (*Contact, error)
	List(ctx context.Context) ([]Contact, error)
	Search(ctx context.Context, query string) ([]Contact, error)
	TopByNoteCount(ctx context.Context, limit int) ([]ContactWithCount, error)
	GetWithNotes(ctx context.Context, id, noteLimit int) (*Contact, []Note, error)
}

// OrganizationRepository defines the interface for organization data operations
type OrganizationRepository interface {
	Create(ctx context.Context, name string) (*Organization, error)
	FindByName(ctx context.Context, name string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	TopByNoteCount(ctx context.Context, limit int) ([]OrganizationWithCount, error)
}

// NoteRepository defines the interface for note data operations
type NoteRepository interface {
	Create(ctx context.Context, title, content string, contactIDs, organizationIDs, taskIDs []int) (*Note, error)
	List(ctx context.Context, filter NoteFilter) ([]Note, error)
	GetByID(ctx context.Context, id int) (*Note, error)
	Reconcile(ctx context.Context, id int, instr TagInstruction) (*TagDiff, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, title string, description *string, dueDate time.Time, importance int, contactIDs, organizationIDs []int) (*Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Urgent(ctx context.Context, days int, sort TaskSort) ([]Task, error)
	GetByID(ctx context.Context, id int) (*Task, error)
	SetCompleted(ctx context.Context, id int, completed bool) (*Task, error)
	Reconcile(ctx context.Context, id int, instr TagInstruction) (*TagDiff, error)
}
