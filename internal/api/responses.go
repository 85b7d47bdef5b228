// Package api provides HTTP handlers for the REST API endpoints.
package api

import "github.com/gin-gonic/gin"

// Response is the success envelope all JSON endpoints share
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the failure envelope all JSON endpoints share
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// respondData writes a success envelope with the given payload
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondError writes a failure envelope with the given message
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Success: false, Error: message})
}
