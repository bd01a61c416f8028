package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the API error envelope: {"error": "...", "success": false}.
type ErrorBody struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// Envelope is the generic success envelope for auxiliary endpoints
// (health, stats). The voting endpoints define their own bodies.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: err, Success: false})
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context, err string) {
	c.JSON(http.StatusTooManyRequests, ErrorBody{Error: err, Success: false})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, ErrorBody{Error: err, Success: false})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: err, Success: false})
}
