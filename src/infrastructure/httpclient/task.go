package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"crm-app/src/domain"
	"crm-app/src/usecase"
)

// TaskClient implements usecase.TaskUsecase against a remote backend
type TaskClient struct {
	client *Client
}

// NewTaskClient creates a new remote task client
func NewTaskClient(client *Client) *TaskClient {
	return &TaskClient{client: client}
}

type createTaskPayload struct {
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	DueDate         time.Time `json:"due_date"`
	Importance      int       `json:"importance"`
	ContactIDs      []int     `json:"contact_ids,omitempty"`
	OrganizationIDs []int     `json:"organization_ids,omitempty"`
}

// CreateTask creates a task on the remote backend
func (c *TaskClient) CreateTask(ctx context.Context, req usecase.CreateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	err := c.client.post(ctx, "/tasks", createTaskPayload{
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         req.DueDate,
		Importance:      req.Importance,
		ContactIDs:      req.ContactIDs,
		OrganizationIDs: req.OrganizationIDs,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks retrieves tasks from the remote backend
func (c *TaskClient) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(filter.Limit))
	params.Set("show_completed", strconv.FormatBool(filter.ShowCompleted))
	if filter.ContactID != nil {
		params.Set("contact_id", strconv.Itoa(*filter.ContactID))
	}
	if filter.OrganizationID != nil {
		params.Set("organization_id", strconv.Itoa(*filter.OrganizationID))
	}

	tasks := []domain.Task{}
	if err := c.client.get(ctx, "/tasks", params, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UrgentTasks retrieves urgent tasks from the remote backend
func (c *TaskClient) UrgentTasks(ctx context.Context, days int, sortKey domain.TaskSort) ([]domain.Task, error) {
	if days <= 0 {
		days = 7
	}
	if sortKey == "" {
		sortKey = domain.TaskSortUrgency
	}
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))
	params.Set("sort_by", string(sortKey))

	tasks := []domain.Task{}
	if err := c.client.get(ctx, "/tasks/urgent", params, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask retrieves a single task from the remote backend
func (c *TaskClient) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	if err := c.client.get(ctx, fmt.Sprintf("/tasks/%d", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task as completed on the remote backend
func (c *TaskClient) CompleteTask(ctx context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	if err := c.client.post(ctx, fmt.Sprintf("/tasks/%d/complete", id), struct{}{}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UncompleteTask marks a task as incomplete on the remote backend
func (c *TaskClient) UncompleteTask(ctx context.Context, id int) (*domain.Task, error) {
	var task domain.Task
	if err := c.client.post(ctx, fmt.Sprintf("/tasks/%d/uncomplete", id), struct{}{}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// TagTask applies a tag instruction bundle to a task on the remote backend
func (c *TaskClient) TagTask(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	var diff domain.TagDiff
	err := c.client.patch(ctx, fmt.Sprintf("/tasks/%d/tags", id), tagPayload{
		AddContactIDs:         instr.AddContactIDs,
		RemoveContactIDs:      instr.RemoveContactIDs,
		AddOrganizationIDs:    instr.AddOrganizationIDs,
		RemoveOrganizationIDs: instr.RemoveOrganizationIDs,
	}, &diff)
	if err != nil {
		return nil, err
	}
	return &diff, nil
}
