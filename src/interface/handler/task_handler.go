package handler

import (
	"net/http"
	"strconv"

	"crm-app/src/domain"
	"crm-app/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
	logger      *logrus.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskUsecase usecase.TaskUsecase, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		logger:      logger,
	}
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), usecase.CreateTaskRequest{
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         req.DueDate,
		Importance:      req.Importance,
		ContactIDs:      req.ContactIDs,
		OrganizationIDs: req.OrganizationIDs,
	})
	if err != nil {
		h.logger.WithError(err).Error("タスクの作成に失敗")
		respondError(c, err)
		return
	}

	h.logger.WithField("task_id", task.ID).Info("タスクを作成しました")
	c.JSON(http.StatusCreated, toTaskResponse(*task))
}

// ListTasks retrieves tasks with optional filtering
func (h *TaskHandler) ListTasks(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "limit must be a positive number"})
		return
	}
	showCompleted, err := strconv.ParseBool(c.DefaultQuery("show_completed", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "show_completed must be a boolean"})
		return
	}

	filter := domain.TaskFilter{Limit: limit, ShowCompleted: showCompleted}
	if v := c.Query("contact_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "contact_id must be a number"})
			return
		}
		filter.ContactID = &id
	}
	if v := c.Query("organization_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "organization_id must be a number"})
			return
		}
		filter.OrganizationID = &id
	}

	tasks, err := h.taskUsecase.ListTasks(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("タスク一覧の取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// UrgentTasks retrieves incomplete tasks due soon
func (h *TaskHandler) UrgentTasks(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "days must be a positive number"})
		return
	}
	sortKey := domain.TaskSort(c.DefaultQuery("sort_by", string(domain.TaskSortUrgency)))

	tasks, err := h.taskUsecase.UrgentTasks(c.Request.Context(), days, sortKey)
	if err != nil {
		h.logger.WithError(err).Error("緊急タスクの取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Task ID must be a number"})
		return
	}

	task, err := h.taskUsecase.GetTask(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("task_id", id).Error("タスクの取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// CompleteTask marks a task as completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.setCompletion(c, true)
}

// UncompleteTask marks a task as incomplete
func (h *TaskHandler) UncompleteTask(c *gin.Context) {
	h.setCompletion(c, false)
}

// 完了・未完了はどちらも「既に目標の状態なら400」の同じ流れになる
func (h *TaskHandler) setCompletion(c *gin.Context, completed bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Task ID must be a number"})
		return
	}

	var task *domain.Task
	if completed {
		task, err = h.taskUsecase.CompleteTask(c.Request.Context(), id)
	} else {
		task, err = h.taskUsecase.UncompleteTask(c.Request.Context(), id)
	}
	if err != nil {
		h.logger.WithError(err).WithField("task_id", id).Error("タスクの状態更新に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// UpdateTaskTags applies a tag instruction bundle to a task
func (h *TaskHandler) UpdateTaskTags(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Task ID must be a number"})
		return
	}

	var req TagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	instr := req.Instruction()
	// タスクはタスク同士のタグ付けをサポートしない
	instr.AddTaskIDs = nil
	instr.RemoveTaskIDs = nil

	diff, err := h.taskUsecase.TagTask(c.Request.Context(), id, instr)
	if err != nil {
		h.logger.WithError(err).WithField("task_id", id).Error("タスクのタグ更新に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTagDiffResponse(*diff))
}
