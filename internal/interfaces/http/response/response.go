package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "observer-console.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends {success:true} merged with the given fields
func OK(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error maps err onto the domain taxonomy and sends it
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	message := appErr.Message
	if appErr.Code == domainerrors.CodeInternalError {
		message = "internal server error"
	}

	c.JSON(appErr.Status, gin.H{
		"success": false,
		"code":    appErr.Code,
		"error":   message,
	})
}

// ErrorWithCode sends an error response with a specific status and code
func ErrorWithCode(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}

// AbortWithError is Error followed by Abort, for middleware
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
