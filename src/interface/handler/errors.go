package handler

import (
	"errors"
	"net/http"

	"crm-app/src/domain"

	"github.com/gin-gonic/gin"
)

// respondError ドメインのエラー分類をHTTPステータスへ対応させる。
// ボディは常に {"detail": "..."} の一形式
func respondError(c *gin.Context, err error) {
	var (
		notFound    *domain.NotFoundError
		duplicate   *domain.DuplicateEntityError
		reference   *domain.ReferenceNotFoundError
		validation  *domain.ValidationError
		taskState   *domain.TaskStateError
		unavailable *domain.BackendUnavailableError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
	case errors.As(err, &duplicate),
		errors.As(err, &reference),
		errors.As(err, &validation),
		errors.As(err, &taskState):
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Detail: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
	}
}
