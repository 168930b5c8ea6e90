package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petatwork/service-booking/internal/pkg/domain"
)

// envelope is the common JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type paginatedBody struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// SuccessWithMessage writes a 200 with a payload and a human-readable message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 with a paginated payload.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    paginatedBody{Items: items, Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errorBody{Code: string(domain.ErrCodeValidation), Message: message},
	})
}

// Error maps an application error to its HTTP status. Unknown errors become
// opaque 500s.
func Error(c *gin.Context, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), envelope{
			Success: false,
			Error:   &errorBody{Code: string(appErr.Code), Message: appErr.Message},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errorBody{Code: string(domain.ErrCodeInternal), Message: "internal server error"},
	})
}
