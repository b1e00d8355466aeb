package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/services/calculator/internal/domain"
)

// ErrorResponse — формат ошибки API.
type ErrorResponse struct {
	Error               string  `json:"error"`
	Message             string  `json:"message"`
	WrongCalculationIDs []int64 `json:"wrong_calculation_ids,omitempty"`
	WrongUserIDs        []int64 `json:"wrong_user_ids,omitempty"`
}

// HandleError преобразует ошибку use case в HTTP ответ.
func HandleError(c *gin.Context, err error, method string) {
	log := logger.FromContext(c.Request.Context())

	var notFound *domain.NotFoundError
	var forbidden *domain.ForbiddenError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:               "calculations_not_found",
			Message:             err.Error(),
			WrongCalculationIDs: notFound.IDs,
		})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:        "forbidden",
			Message:      err.Error(),
			WrongUserIDs: forbidden.OwnerIDs,
		})
	default:
		log.Error().Err(err).Str("method", method).Msg("Внутренняя ошибка")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Внутренняя ошибка сервера",
		})
	}
}

// invalidRequest отвечает 400 на невалидное тело запроса.
func invalidRequest(c *gin.Context, err error, method string) {
	logger.Ctx(c.Request.Context()).Debug().Err(err).Str("method", method).Msg("Невалидный запрос")
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Невалидные данные запроса",
	})
}
