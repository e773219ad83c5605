package usecase

import (
	"context"
	"fmt"
	"strings"

	"crm-app/src/domain"
)

// ContactUsecase defines the interface for contact business logic.
// ローカル実装とリモート実装（httpclient）の両方がこれを満たす
type ContactUsecase interface {
	AddContact(ctx context.Context, firstName, lastName string) (*domain.Contact, error)
	BulkAddContacts(ctx context.Context, names []string) (*domain.BulkAddResult, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	SearchContacts(ctx context.Context, query string) ([]domain.Contact, error)
	TopContacts(ctx context.Context, limit int) ([]domain.ContactWithCount, error)
	GetContactWithNotes(ctx context.Context, id, noteLimit int) (*domain.Contact, []domain.Note, error)
}

type contactUsecase struct {
	contactRepo domain.ContactRepository
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(contactRepo domain.ContactRepository) ContactUsecase {
	return &contactUsecase{
		contactRepo: contactRepo,
	}
}

// AddContact creates a new contact, rejecting exact name duplicates
func (u *contactUsecase) AddContact(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	existing, err := u.contactRepo.FindByName(ctx, firstName, lastName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateEntityError{
			Kind:       "Contact",
			Label:      existing.FullName(),
			ExistingID: existing.ID,
		}
	}

	return u.contactRepo.Create(ctx, firstName, lastName)
}

// BulkAddContacts creates contacts from "First Last" strings.
// 既存の名前はスキップして結果に記録する。単語一つの場合は姓を空にする
func (u *contactUsecase) BulkAddContacts(ctx context.Context, names []string) (*domain.BulkAddResult, error) {
	result := &domain.BulkAddResult{
		Added:   []string{},
		Skipped: []string{},
	}

	for _, name := range names {
		parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
		firstName := parts[0]
		lastName := ""
		if len(parts) > 1 {
			lastName = strings.TrimSpace(parts[1])
		}
		if firstName == "" {
			continue
		}

		existing, err := u.contactRepo.FindByName(ctx, firstName, lastName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (ID: %d)", existing.FullName(), existing.ID))
			continue
		}

		created, err := u.contactRepo.Create(ctx, firstName, lastName)
		if err != nil {
			return nil, err
		}
		result.Added = append(result.Added, fmt.Sprintf("%s (ID: %d)", created.FullName(), created.ID))
	}

	return result, nil
}

// ListContacts retrieves all contacts ordered by last name
func (u *contactUsecase) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return u.contactRepo.List(ctx)
}

// SearchContacts searches contacts by partial name match
func (u *contactUsecase) SearchContacts(ctx context.Context, query string) ([]domain.Contact, error) {
	return u.contactRepo.Search(ctx, query)
}

// TopContacts retrieves the most-noted contacts
func (u *contactUsecase) TopContacts(ctx context.Context, limit int) ([]domain.ContactWithCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return u.contactRepo.TopByNoteCount(ctx, limit)
}

// GetContactWithNotes retrieves a contact with their most recent notes
func (u *contactUsecase) GetContactWithNotes(ctx context.Context, id, noteLimit int) (*domain.Contact, []domain.Note, error) {
	if noteLimit <= 0 {
		noteLimit = 10
	}

	contact, notes, err := u.contactRepo.GetWithNotes(ctx, id, noteLimit)
	if err != nil {
		return nil, nil, err
	}
	if contact == nil {
		return nil, nil, &domain.NotFoundError{Kind: "Contact", ID: id}
	}
	return contact, notes, nil
}
