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

// TaskRepository represents the task repository
type TaskRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB, logger *logrus.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new task with optional initial tags
func (r *TaskRepository) Create(ctx context.Context, title string, description *string, dueDate time.Time, importance int, contactIDs, organizationIDs []int) (*domain.Task, error) {
	var task *domain.Task

	err := r.db.WithinTx(ctx, func(tx *database.Tx) error {
		pairs := []kindInstruction{
			{assoc: taskContactAssoc, addIDs: contactIDs},
			{assoc: taskOrganizationAssoc, addIDs: organizationIDs},
		}
		if err := validateReferences(ctx, tx, pairs); err != nil {
			return err
		}

		now := time.Now().UTC()
		var id int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tasks (title, description, due_date, importance, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?)
			RETURNING id`,
			title, description, dueDate, importance, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
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
		task = loaded
		return nil
	})
	if err != nil {
		r.logger.WithError(err).Error("タスクの作成に失敗")
		return nil, err
	}

	r.logger.WithField("task_id", task.ID).Info("タスクを作成しました")
	return task, nil
}

// List retrieves tasks ordered by due date.
// デフォルトでは未完了タスクのみ。ShowCompletedで完了済みも含める
func (r *TaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query := `
		SELECT DISTINCT t.id, t.title, t.description, t.due_date, t.importance, t.completed, t.created_at, t.updated_at
		FROM tasks t`
	args := []interface{}{}

	if filter.ContactID != nil {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT id FROM contacts WHERE id = ?`, *filter.ContactID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Kind: "Contact", ID: *filter.ContactID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check contact: %w", err)
		}
		query += ` JOIN task_contact_association ca ON ca.task_id = t.id AND ca.contact_id = ?`
		args = append(args, *filter.ContactID)
	}
	if filter.OrganizationID != nil {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT id FROM organizations WHERE id = ?`, *filter.OrganizationID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Kind: "Organization", ID: *filter.OrganizationID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check organization: %w", err)
		}
		query += ` JOIN task_organization_association oa ON oa.task_id = t.id AND oa.organization_id = ?`
		args = append(args, *filter.OrganizationID)
	}

	if !filter.ShowCompleted {
		query += ` WHERE t.completed = 0`
	}
	query += ` ORDER BY t.due_date ASC LIMIT ?`
	args = append(args, filter.Limit)

	tasks, err := r.queryTasks(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("タスク一覧の取得に失敗")
		return nil, err
	}
	return tasks, nil
}

// Urgent retrieves incomplete tasks due within the given number of days
func (r *TaskRepository) Urgent(ctx context.Context, days int, sortKey domain.TaskSort) ([]domain.Task, error) {
	order := "t.due_date ASC"
	if sortKey == domain.TaskSortImportance {
		order = "t.importance DESC, t.due_date ASC"
	}

	cutoff := time.Now().UTC().AddDate(0, 0, days)
	query := `
		SELECT t.id, t.title, t.description, t.due_date, t.importance, t.completed, t.created_at, t.updated_at
		FROM tasks t
		WHERE t.completed = 0 AND t.due_date <= ?
		ORDER BY ` + order

	tasks, err := r.queryTasks(ctx, query, cutoff)
	if err != nil {
		r.logger.WithError(err).Error("緊急タスクの取得に失敗")
		return nil, err
	}
	return tasks, nil
}

// GetByID retrieves a single task with associations, nil when absent
func (r *TaskRepository) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	return r.getByID(ctx, r.db, id)
}

// SetCompleted updates the completion flag and returns the updated task
func (r *TaskRepository) SetCompleted(ctx context.Context, id int, completed bool) (*domain.Task, error) {
	value := 0
	if completed {
		value = 1
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id)
	if err != nil {
		r.logger.WithError(err).Error("タスクの更新に失敗")
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, &domain.NotFoundError{Kind: "Task", ID: id}
	}

	return r.getByID(ctx, r.db, id)
}

// Reconcile applies a tag instruction bundle to a task and reports the diff
func (r *TaskRepository) Reconcile(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	var diff *domain.TagDiff

	err := r.db.WithinTx(ctx, func(tx *database.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT id FROM tasks WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return &domain.NotFoundError{Kind: "Task", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}

		changes, err := reconcileKinds(ctx, tx, id, []kindInstruction{
			{assoc: taskContactAssoc, addIDs: instr.AddContactIDs, removeIDs: instr.RemoveContactIDs},
			{assoc: taskOrganizationAssoc, addIDs: instr.AddOrganizationIDs, removeIDs: instr.RemoveOrganizationIDs},
		})
		if err != nil {
			return err
		}

		diff = &domain.TagDiff{
			AddedContacts:        changes[0].added,
			RemovedContacts:      changes[0].removed,
			AddedOrganizations:   changes[1].added,
			RemovedOrganizations: changes[1].removed,
		}

		if !diff.Empty() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE tasks SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
				return fmt.Errorf("failed to touch task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithField("task_id", id).Info("タスクのタグを更新しました")
	return diff, nil
}

func (r *TaskRepository) getByID(ctx context.Context, ex executor, id int) (*domain.Task, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, importance, completed, created_at, updated_at
		FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	contacts, err := loadContacts(ctx, ex, taskContactAssoc, task.ID)
	if err != nil {
		return nil, err
	}
	organizations, err := loadOrganizations(ctx, ex, taskOrganizationAssoc, task.ID)
	if err != nil {
		return nil, err
	}
	task.Contacts = contacts
	task.Organizations = organizations
	return task, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range tasks {
		contacts, err := loadContacts(ctx, r.db, taskContactAssoc, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		organizations, err := loadOrganizations(ctx, r.db, taskOrganizationAssoc, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Contacts = contacts
		tasks[i].Organizations = organizations
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask completedはドライバ差異を避けるため整数で保持している
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		completed   int
	)
	err := row.Scan(&task.ID, &task.Title, &description, &task.DueDate, &task.Importance, &completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	task.Completed = completed != 0
	return &task, nil
}
