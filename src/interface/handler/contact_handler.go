package handler

import (
	"net/http"
	"strconv"

	"crm-app/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContactHandler handles HTTP requests for contact operations
type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
	logger         *logrus.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactUsecase usecase.ContactUsecase, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		logger:         logger,
	}
}

// CreateContact creates a new contact
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	contact, err := h.contactUsecase.AddContact(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		h.logger.WithError(err).Error("コンタクトの作成に失敗")
		respondError(c, err)
		return
	}

	h.logger.WithField("contact_id", contact.ID).Info("コンタクトを作成しました")
	c.JSON(http.StatusCreated, toContactResponse(*contact))
}

// BulkAddContacts creates multiple contacts from name strings
func (h *ContactHandler) BulkAddContacts(c *gin.Context) {
	var names []string
	if err := c.ShouldBindJSON(&names); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	result, err := h.contactUsecase.BulkAddContacts(c.Request.Context(), names)
	if err != nil {
		h.logger.WithError(err).Error("コンタクトの一括作成に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BulkAddResponse{
		Added:   result.Added,
		Skipped: result.Skipped,
	})
}

// ListContacts retrieves all contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contactUsecase.ListContacts(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("コンタクト一覧の取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toContactResponses(contacts))
}

// SearchContacts searches contacts by partial name match
func (h *ContactHandler) SearchContacts(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "query parameter is required"})
		return
	}

	contacts, err := h.contactUsecase.SearchContacts(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("コンタクトの検索に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toContactResponses(contacts))
}

// TopContacts retrieves the most-noted contacts
func (h *ContactHandler) TopContacts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "limit must be a positive number"})
		return
	}

	results, err := h.contactUsecase.TopContacts(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("上位コンタクトの取得に失敗")
		respondError(c, err)
		return
	}

	responses := make([]ContactWithCountResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, ContactWithCountResponse{
			ContactResponse: toContactResponse(r.Contact),
			NoteCount:       r.NoteCount,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// GetContactWithNotes retrieves a contact together with their recent notes
func (h *ContactHandler) GetContactWithNotes(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Contact ID must be a number"})
		return
	}

	noteLimit, err := strconv.Atoi(c.DefaultQuery("note_limit", "10"))
	if err != nil || noteLimit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "note_limit must be a positive number"})
		return
	}

	contact, notes, err := h.contactUsecase.GetContactWithNotes(c.Request.Context(), id, noteLimit)
	if err != nil {
		h.logger.WithError(err).WithField("contact_id", id).Error("コンタクトの取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ContactWithNotesResponse{
		Contact: toContactResponse(*contact),
		Notes:   toNoteResponses(notes),
	})
}
