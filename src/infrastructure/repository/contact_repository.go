package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm-app/src/database"
	"crm-app/src/domain"

	"github.com/sirupsen/logrus"
)

// ContactRepository represents the contact repository
type ContactRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *database.DB, logger *logrus.Logger) *ContactRepository {
	return &ContactRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new contact
func (r *ContactRepository) Create(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	contact := &domain.Contact{
		FirstName: firstName,
		LastName:  lastName,
	}

	query := `
		INSERT INTO contacts (first_name, last_name)
		VALUES (?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, firstName, lastName).Scan(&contact.ID)
	if err != nil {
		r.logger.WithError(err).Error("コンタクトの作成に失敗")
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	r.logger.WithField("contact_id", contact.ID).Info("コンタクトを作成しました")
	return contact, nil
}

// FindByName retrieves a contact by exact (first, last) name, nil when absent
func (r *ContactRepository) FindByName(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	query := `
		SELECT id, first_name, last_name
		FROM contacts
		WHERE first_name = ? AND last_name = ?`

	contact := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, query, firstName, lastName).Scan(
		&contact.ID, &contact.FirstName, &contact.LastName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithError(err).Error("コンタクトの検索に失敗")
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	return contact, nil
}

// List retrieves all contacts ordered by last name
func (r *ContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	query := `
		SELECT id, first_name, last_name
		FROM contacts
		ORDER BY last_name`

	return r.scanContacts(ctx, query)
}

// Search retrieves contacts whose first or last name contains the query, case-insensitive
func (r *ContactRepository) Search(ctx context.Context, searchQuery string) ([]domain.Contact, error) {
	pattern := "%" + strings.ToLower(searchQuery) + "%"
	query := `
		SELECT id, first_name, last_name
		FROM contacts
		WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?
		ORDER BY first_name, last_name`

	return r.scanContacts(ctx, query, pattern, pattern)
}

// TopByNoteCount retrieves the top N contacts by associated note count.
// 同数の場合の並び順はストレージ任せ（未規定）
func (r *ContactRepository) TopByNoteCount(ctx context.Context, limit int) ([]domain.ContactWithCount, error) {
	query := `
		SELECT c.id, c.first_name, c.last_name, COUNT(a.note_id) AS note_count
		FROM contacts c
		LEFT JOIN note_contact_association a ON a.contact_id = c.id
		GROUP BY c.id, c.first_name, c.last_name
		ORDER BY note_count DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.WithError(err).Error("上位コンタクトの取得に失敗")
		return nil, fmt.Errorf("failed to get top contacts: %w", err)
	}
	defer rows.Close()

	results := []domain.ContactWithCount{}
	for rows.Next() {
		var c domain.ContactWithCount
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.NoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}

// GetWithNotes retrieves a contact plus its most recently created notes.
// コンタクトが存在しない場合は (nil, nil, nil)
func (r *ContactRepository) GetWithNotes(ctx context.Context, id, noteLimit int) (*domain.Contact, []domain.Note, error) {
	contact := &domain.Contact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name FROM contacts WHERE id = ?`, id,
	).Scan(&contact.ID, &contact.FirstName, &contact.LastName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get contact: %w", err)
	}

	query := `
		SELECT n.id, n.title, n.content, n.created_at, n.updated_at
		FROM notes n
		JOIN note_contact_association a ON a.note_id = n.id
		WHERE a.contact_id = ?
		ORDER BY n.created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, id, noteLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get contact notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows error: %w", err)
	}

	return contact, notes, nil
}

func (r *ContactRepository) scanContacts(ctx context.Context, query string, args ...interface{}) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("コンタクト一覧の取得に失敗")
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return contacts, nil
}
