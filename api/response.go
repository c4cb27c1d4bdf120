// Package api defines the response envelope every endpoint returns.
package api

import "github.com/gin-gonic/gin"

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: true, Message: msg})
}

func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Message: msg})
}
