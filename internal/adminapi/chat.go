package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

func registerChatRoutes() {
	webserver.ApiGET("/chat/threads", listChatThreads)
	webserver.ApiGET("/chat/:customer_id", listChatMessages)
	webserver.ApiPOST("/chat/:customer_id", postChatReply)
}

// listChatThreads returns one row per customer with unread message counts so
// the panel can show a support inbox.
func listChatThreads(c echo.Context) error {
	type thread struct {
		CustomerID int64 `json:"customer_id,string"`
		Unread     int64 `json:"unread"`
	}
	var rows []thread
	err := GetDB(c).Model(&domain.ChatMessage{}).
		Select("customer_id, COUNT(CASE WHEN read_at IS NULL AND sender = ? THEN 1 END) AS unread", domain.ChatFromCustomer).
		Group("customer_id").
		Order("MAX(created_at) DESC").
		Scan(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query chat threads", err.Error())
	}
	return ok(c, rows)
}

// listChatMessages returns a customer's thread oldest first and marks the
// customer messages read.
func listChatMessages(c echo.Context) error {
	cid, err := parseIDParam(c, "customer_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var rows []domain.ChatMessage
	if err := GetDB(c).Where("customer_id = ?", cid).Order("created_at ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query chat messages", err.Error())
	}
	now := time.Now()
	GetDB(c).Model(&domain.ChatMessage{}).
		Where("customer_id = ? AND sender = ? AND read_at IS NULL", cid, domain.ChatFromCustomer).
		Update("read_at", now)
	return ok(c, rows)
}

type chatPayload struct {
	Body string `json:"body" form:"body"`
}

func postChatReply(c echo.Context) error {
	cid, err := parseIDParam(c, "customer_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var payload chatPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message", err.Error())
	}
	payload.Body = strings.TrimSpace(payload.Body)
	if payload.Body == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Message body is required", nil)
	}

	msg := domain.ChatMessage{
		ID:         common.UUIDint64(),
		CustomerID: cid,
		Sender:     domain.ChatFromOperator,
		Body:       payload.Body,
		CreatedAt:  time.Now(),
	}
	if err := GetDB(c).Create(&msg).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store message", err.Error())
	}
	return ok(c, msg)
}
