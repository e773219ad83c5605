package handler

import (
	"net/http"
	"strconv"

	"crm-app/src/domain"
	"crm-app/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NoteHandler handles HTTP requests for note operations
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	logger      *logrus.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteUsecase usecase.NoteUsecase, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
		logger:      logger,
	}
}

// CreateNote creates a new note with optional initial tags
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	note, err := h.noteUsecase.CreateNote(c.Request.Context(), usecase.CreateNoteRequest{
		Title:           req.Title,
		Content:         req.Content,
		ContactIDs:      req.ContactIDs,
		OrganizationIDs: req.OrganizationIDs,
		TaskIDs:         req.TaskIDs,
	})
	if err != nil {
		h.logger.WithError(err).Error("ノートの作成に失敗")
		respondError(c, err)
		return
	}

	h.logger.WithField("note_id", note.ID).Info("ノートを作成しました")
	c.JSON(http.StatusCreated, toNoteResponse(*note))
}

// ListNotes retrieves notes with optional filtering
func (h *NoteHandler) ListNotes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "limit must be a positive number"})
		return
	}

	filter := domain.NoteFilter{Limit: limit}
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

	notes, err := h.noteUsecase.ListNotes(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("ノート一覧の取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toNoteResponses(notes))
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Note ID must be a number"})
		return
	}

	note, err := h.noteUsecase.GetNote(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("note_id", id).Error("ノートの取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toNoteResponse(*note))
}

// UpdateNoteTags applies a tag instruction bundle to a note
func (h *NoteHandler) UpdateNoteTags(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Note ID must be a number"})
		return
	}

	var req TagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	diff, err := h.noteUsecase.TagNote(c.Request.Context(), id, req.Instruction())
	if err != nil {
		h.logger.WithError(err).WithField("note_id", id).Error("ノートのタグ更新に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTagDiffResponse(*diff))
}
