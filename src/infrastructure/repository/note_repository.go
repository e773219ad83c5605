package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crm-app/src/database"
	"crm-app/src/domain"

	"github.com/sirupsen/logrus"
)

// NoteRepository represents the note repository
type NoteRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.DB, logger *logrus.Logger) *NoteRepository {
	return &NoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new note with optional initial tags.
// 参照IDは全種別を検証してから書き込む。一つでも未解決なら何も永続化しない
func (r *NoteRepository) Create(ctx context.Context, title, content string, contactIDs, organizationIDs, taskIDs []int) (*domain.Note, error) {
	var note *domain.Note

	err := r.db.WithinTx(ctx, func(tx *database.Tx) error {
		pairs := []kindInstruction{
			{assoc: noteContactAssoc, addIDs: contactIDs},
			{assoc: noteOrganizationAssoc, addIDs: organizationIDs},
			{assoc: noteTaskAssoc, addIDs: taskIDs},
		}
		if err := validateReferences(ctx, tx, pairs); err != nil {
			return err
		}

		now := time.Now().UTC()
		var id int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO notes (title, content, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			title, content, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		for _, pair := range pairs {
			if err := insertAssociations(ctx, tx, pair.assoc, id, pair.addIDs); err != nil {
				return err
			}
		}

		loaded, err := r.getByID(ctx, tx, id)
		if err != nil {
			return err
		}
		note = loaded
		return nil
	})
	if err != nil {
		r.logger.WithError(err).Error("ノートの作成に失敗")
		return nil, err
	}

	r.logger.WithField("note_id", note.ID).Info("ノートを作成しました")
	return note, nil
}

// List retrieves notes with optional filtering by a single related entity.
// フィルター対象のエンティティが存在しない場合はNotFoundErrorを返す
func (r *NoteRepository) List(ctx context.Context, filter domain.NoteFilter) ([]domain.Note, error) {
	var (
		query string
		args  []interface{}
	)

	switch {
	case filter.ContactID != nil:
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT id FROM contacts WHERE id = ?`, *filter.ContactID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Kind: "Contact", ID: *filter.ContactID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check contact: %w", err)
		}
		query = `
			SELECT n.id, n.title, n.content, n.created_at, n.updated_at
			FROM notes n
			JOIN note_contact_association a ON a.note_id = n.id
			WHERE a.contact_id = ?
			ORDER BY n.id
			LIMIT ?`
		args = []interface{}{*filter.ContactID, filter.Limit}

	case filter.OrganizationID != nil:
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT id FROM organizations WHERE id = ?`, *filter.OrganizationID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Kind: "Organization", ID: *filter.OrganizationID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check organization: %w", err)
		}
		query = `
			SELECT n.id, n.title, n.content, n.created_at, n.updated_at
			FROM notes n
			JOIN note_organization_association a ON a.note_id = n.id
			WHERE a.organization_id = ?
			ORDER BY n.id
			LIMIT ?`
		args = []interface{}{*filter.OrganizationID, filter.Limit}

	default:
		query = `
			SELECT id, title, content, created_at, updated_at
			FROM notes
			ORDER BY created_at DESC
			LIMIT ?`
		args = []interface{}{filter.Limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("ノート一覧の取得に失敗")
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	// 関連コレクションを読み込む
	for i := range notes {
		if err := r.loadRelations(ctx, r.db, &notes[i]); err != nil {
			return nil, err
		}
	}

	return notes, nil
}

// GetByID retrieves a single note with associations, nil when absent
func (r *NoteRepository) GetByID(ctx context.Context, id int) (*domain.Note, error) {
	note, err := r.getByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Reconcile applies a tag instruction bundle to a note and reports the diff
func (r *NoteRepository) Reconcile(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	var diff *domain.TagDiff

	err := r.db.WithinTx(ctx, func(tx *database.Tx) error {
		// 対象ノート自体の存在を先に確認する
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT id FROM notes WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return &domain.NotFoundError{Kind: "Note", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to check note: %w", err)
		}

		changes, err := reconcileKinds(ctx, tx, id, []kindInstruction{
			{assoc: noteContactAssoc, addIDs: instr.AddContactIDs, removeIDs: instr.RemoveContactIDs},
			{assoc: noteOrganizationAssoc, addIDs: instr.AddOrganizationIDs, removeIDs: instr.RemoveOrganizationIDs},
			{assoc: noteTaskAssoc, addIDs: instr.AddTaskIDs, removeIDs: instr.RemoveTaskIDs},
		})
		if err != nil {
			return err
		}

		diff = &domain.TagDiff{
			AddedContacts:        changes[0].added,
			RemovedContacts:      changes[0].removed,
			AddedOrganizations:   changes[1].added,
			RemovedOrganizations: changes[1].removed,
			AddedTasks:           changes[2].added,
			RemovedTasks:         changes[2].removed,
		}

		if !diff.Empty() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE notes SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
				return fmt.Errorf("failed to touch note: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithField("note_id", id).Info("ノートのタグを更新しました")
	return diff, nil
}

func (r *NoteRepository) getByID(ctx context.Context, ex executor, id int) (*domain.Note, error) {
	note := &domain.Note{}
	err := ex.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes WHERE id = ?`, id,
	).Scan(&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if err := r.loadRelations(ctx, ex, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (r *NoteRepository) loadRelations(ctx context.Context, ex executor, note *domain.Note) error {
	contacts, err := loadContacts(ctx, ex, noteContactAssoc, note.ID)
	if err != nil {
		return err
	}
	organizations, err := loadOrganizations(ctx, ex, noteOrganizationAssoc, note.ID)
	if err != nil {
		return err
	}
	tasks, err := loadNoteTasks(ctx, ex, note.ID)
	if err != nil {
		return err
	}

	note.Contacts = contacts
	note.Organizations = organizations
	note.Tasks = tasks
	return nil
}

// loadNoteTasks ノートに関連付いたタスク一覧（タスク側の関連は読み込まない）
func loadNoteTasks(ctx context.Context, ex executor, noteID int) ([]domain.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.due_date, t.importance, t.completed, t.created_at, t.updated_at
		FROM tasks t
		JOIN note_task_association l ON l.task_id = t.id
		WHERE l.note_id = ?
		ORDER BY t.id`

	rows, err := ex.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
