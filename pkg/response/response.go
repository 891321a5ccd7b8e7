package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the error envelope.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeNotFound           = "NOT_FOUND"
	CodeServerError        = "SERVER_ERROR"
)

// SuccessResponse is the envelope for successful requests.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success sends a 200 response with a data payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Status: "success", Data: data})
}

// SuccessMessage sends a 200 response carrying only a message.
func SuccessMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Status: "success", Message: message})
}

// Created sends a 201 response with a data payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Status: "success", Data: data})
}

// Error sends an error envelope with the given status and code.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{Status: "error", Code: code, Message: message})
}

// AbortError sends an error envelope and aborts the gin chain.
func AbortError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Status: "error", Code: code, Message: message})
}

// ValidationError sends a 400 VALIDATION_ERROR response.
func ValidationError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeValidationError, message)
}

// Unauthorized sends a 401 UNAUTHORIZED response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// InvalidCredentials sends a 401 INVALID_CREDENTIALS response.
func InvalidCredentials(c *gin.Context) {
	Error(c, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
}

// NotFound sends a 404 NOT_FOUND response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// ServerError sends a 500 SERVER_ERROR response.
func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeServerError, "Internal server error")
}
