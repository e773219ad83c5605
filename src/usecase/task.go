package usecase

import (
	"context"
	"time"

	"crm-app/src/domain"
)

// CreateTaskRequest represents input for creating a task
type CreateTaskRequest struct {
	Title           string
	Description     *string
	DueDate         time.Time
	Importance      int
	ContactIDs      []int
	OrganizationIDs []int
}

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	UrgentTasks(ctx context.Context, days int, sortKey domain.TaskSort) ([]domain.Task, error)
	GetTask(ctx context.Context, id int) (*domain.Task, error)
	CompleteTask(ctx context.Context, id int) (*domain.Task, error)
	UncompleteTask(ctx context.Context, id int) (*domain.Task, error)
	TagTask(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error)
}

type taskUsecase struct {
	taskRepo domain.TaskRepository
}

// NewTaskUsecase creates a new task usecase
func NewTaskUsecase(taskRepo domain.TaskRepository) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
	}
}

// CreateTask creates a new task.
// 重要度は永続化の前に検証する。範囲外なら行は一切作られない
func (u *taskUsecase) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	if req.Title == "" {
		return nil, &domain.ValidationError{Message: "Title is required"}
	}
	if req.Importance < 0 || req.Importance > 10 {
		return nil, &domain.ValidationError{Message: "Importance must be between 0 and 10"}
	}

	return u.taskRepo.Create(ctx, req.Title, req.Description, req.DueDate, req.Importance, req.ContactIDs, req.OrganizationIDs)
}

// ListTasks retrieves tasks with optional filtering
func (u *taskUsecase) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return u.taskRepo.List(ctx, filter)
}

// UrgentTasks retrieves incomplete tasks due within the given number of days
func (u *taskUsecase) UrgentTasks(ctx context.Context, days int, sortKey domain.TaskSort) ([]domain.Task, error) {
	if days <= 0 {
		days = 7
	}
	if sortKey == "" {
		sortKey = domain.TaskSortUrgency
	}
	if !sortKey.IsValid() {
		return nil, &domain.ValidationError{Message: "sort_by must be 'urgency' or 'importance'"}
	}

	return u.taskRepo.Urgent(ctx, days, sortKey)
}

// GetTask retrieves a task by ID
func (u *taskUsecase) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	task, err := u.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &domain.NotFoundError{Kind: "Task", ID: id}
	}
	return task, nil
}

// CompleteTask marks a task as completed
func (u *taskUsecase) CompleteTask(ctx context.Context, id int) (*domain.Task, error) {
	task, err := u.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &domain.NotFoundError{Kind: "Task", ID: id}
	}
	if task.Completed {
		return nil, &domain.TaskStateError{Title: task.Title, Completed: true}
	}

	return u.taskRepo.SetCompleted(ctx, id, true)
}

// UncompleteTask marks a task as incomplete
func (u *taskUsecase) UncompleteTask(ctx context.Context, id int) (*domain.Task, error) {
	task, err := u.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &domain.NotFoundError{Kind: "Task", ID: id}
	}
	if !task.Completed {
		return nil, &domain.TaskStateError{Title: task.Title, Completed: false}
	}

	return u.taskRepo.SetCompleted(ctx, id, false)
}

// TagTask applies a tag instruction bundle to a task
func (u *taskUsecase) TagTask(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	return u.taskRepo.Reconcile(ctx, id, instr)
}
