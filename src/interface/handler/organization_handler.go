package handler

import (
	"net/http"
	"strconv"

	"crm-app/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OrganizationHandler handles HTTP requests for organization operations
type OrganizationHandler struct {
	organizationUsecase usecase.OrganizationUsecase
	logger              *logrus.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationUsecase usecase.OrganizationUsecase, logger *logrus.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		organizationUsecase: organizationUsecase,
		logger:              logger,
	}
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	organization, err := h.organizationUsecase.AddOrganization(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.WithError(err).Error("組織の作成に失敗")
		respondError(c, err)
		return
	}

	h.logger.WithField("organization_id", organization.ID).Info("組織を作成しました")
	c.JSON(http.StatusCreated, toOrganizationResponse(*organization))
}

// ListOrganizations retrieves all organizations
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	organizations, err := h.organizationUsecase.ListOrganizations(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("組織一覧の取得に失敗")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrganizationResponses(organizations))
}

// TopOrganizations retrieves the most-noted organizations
func (h *OrganizationHandler) TopOrganizations(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "limit must be a positive number"})
		return
	}

	results, err := h.organizationUsecase.TopOrganizations(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("上位組織の取得に失敗")
		respondError(c, err)
		return
	}

	responses := make([]OrganizationWithCountResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, OrganizationWithCountResponse{
			OrganizationResponse: toOrganizationResponse(r.Organization),
			NoteCount:            r.NoteCount,
		})
	}
	c.JSON(http.StatusOK, responses)
}
