package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgTaskNotFound       = "task not found"
	msgTitleBlank         = "title must not be blank"
	msgJSONRequired       = "content type must be application/json"
)

type apiError struct {
	Code    int
	Message string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

// newStatusTextError hides the underlying cause behind the status text.
func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newUnsupportedMediaTypeError(message string) apiError {
	return newAPIError(http.StatusUnsupportedMediaType, message)
}
