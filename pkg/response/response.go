package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Success bool             `json:"success"`
	Data    interface{}      `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   *appErrors.Error `json:"error,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Success: true, Data: data})
}

// OK responds with HTTP 200 and the given payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Message sends a success response that only carries a human readable message.
func Message(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Success: true, Message: message})
}

// Error sends an error response converting the error to the common structure.
// The underlying error is attached to the gin context so the request logger can report it.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Success: false, Error: appErrors.Public(appErr)})
}

// Abort writes an error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// WithMessage sends a success response carrying both a payload and a message.
func WithMessage(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}
