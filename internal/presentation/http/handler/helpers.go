package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableorder-api/pkg/pagination"
)

// GetUserID extracts the admin user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserPermissions extracts the admin user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("user_permissions")
	if !exists {
		return nil
	}
	list, _ := permissions.([]string)
	return list
}

// TableSession is the verified diner behind a table session token
type TableSession struct {
	Phone       string
	TableNumber int
	SessionID   string
}

// GetTableSession extracts the diner's session from the Gin context
func GetTableSession(c *gin.Context) *TableSession {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		return nil
	}
	return &TableSession{
		Phone:       c.GetString("session_phone"),
		TableNumber: c.GetInt("session_table"),
		SessionID:   sessionID,
	}
}

// paramUUID parses a uuid path parameter, writing a 400 when it is malformed
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and limit query parameters
func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return &pagination.PaginationParams{Page: page, Limit: limit}
}
