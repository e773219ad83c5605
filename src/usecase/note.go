package usecase

import (
	"context"

	"crm-app/src/domain"
)

// CreateNoteRequest represents input for creating a note
type CreateNoteRequest struct {
	Title           string
	Content         string
	ContactIDs      []int
	OrganizationIDs []int
	TaskIDs         []int
}

// NoteUsecase defines the interface for note business logic
type NoteUsecase interface {
	CreateNote(ctx context.Context, req CreateNoteRequest) (*domain.Note, error)
	ListNotes(ctx context.Context, filter domain.NoteFilter) ([]domain.Note, error)
	GetNote(ctx context.Context, id int) (*domain.Note, error)
	TagNote(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error)
}

type noteUsecase struct {
	noteRepo domain.NoteRepository
}

// NewNoteUsecase creates a new note usecase
func NewNoteUsecase(noteRepo domain.NoteRepository) NoteUsecase {
	return &noteUsecase{
		noteRepo: noteRepo,
	}
}

// CreateNote creates a new note with optional initial tags
func (u *noteUsecase) CreateNote(ctx context.Context, req CreateNoteRequest) (*domain.Note, error) {
	if req.Title == "" {
		return nil, &domain.ValidationError{Message: "Title is required"}
	}

	return u.noteRepo.Create(ctx, req.Title, req.Content, req.ContactIDs, req.OrganizationIDs, req.TaskIDs)
}

// ListNotes retrieves notes with optional filtering
func (u *noteUsecase) ListNotes(ctx context.Context, filter domain.NoteFilter) ([]domain.Note, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return u.noteRepo.List(ctx, filter)
}

// GetNote retrieves a note by ID
func (u *noteUsecase) GetNote(ctx context.Context, id int) (*domain.Note, error) {
	note, err := u.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, &domain.NotFoundError{Kind: "Note", ID: id}
	}
	return note, nil
}

// TagNote applies a tag instruction bundle to a note.
// 適用できた変更のみが差分に現れる。同じ指示の再適用は空の差分になる
func (u *noteUsecase) TagNote(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	return u.noteRepo.Reconcile(ctx, id, instr)
}
