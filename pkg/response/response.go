package response

import (
	"github.com/gin-gonic/gin"
)

// Every endpoint answers with a flat JSON envelope carrying a success flag,
// matching what the storefront expects:
//
//	{"success": true, "user": {...}}
//	{"success": false, "message": "..."}

// OK writes a success envelope merged with the given payload.
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Message writes a success envelope with just a message.
func Message(c *gin.Context, status int, message string) {
	OK(c, status, gin.H{"message": message})
}

// Error writes a failure envelope.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// AbortError writes a failure envelope and aborts the handler chain.
// For middleware use.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
