package storeapi

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
	webserver.StoreGET("/chat", listMyChat)
	webserver.StorePOST("/chat", postChatMessage)
}

func listMyChat(c echo.Context) error {
	cid := currentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	var rows []domain.ChatMessage
	if err := GetDB(c).Where("customer_id = ?", cid).Order("created_at ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load messages")
	}
	now := time.Now()
	GetDB(c).Model(&domain.ChatMessage{}).
		Where("customer_id = ? AND sender = ? AND read_at IS NULL", cid, domain.ChatFromOperator).
		Update("read_at", now)
	return ok(c, rows)
}

type chatPayload struct {
	Body string `json:"body" form:"body"`
}

func postChatMessage(c echo.Context) error {
	cid := currentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	var payload chatPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse message")
	}
	payload.Body = strings.TrimSpace(payload.Body)
	if payload.Body == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Message body is required")
	}

	msg := domain.ChatMessage{
		ID:         common.UUIDint64(),
		CustomerID: cid,
		Sender:     domain.ChatFromCustomer,
		Body:       payload.Body,
		CreatedAt:  time.Now(),
	}
	if err := GetDB(c).Create(&msg).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store message")
	}
	return ok(c, msg)
}
