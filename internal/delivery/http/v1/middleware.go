package v1

import (
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects request bodies that aren't declared as JSON.
func RequireJSON(c *gin.Context) {
	if c.ContentType() != gin.MIMEJSON {
		abort(c, newUnsupportedMediaTypeError(msgJSONRequired))
		return
	}
	c.Next()
}
