package handlers

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/realtime"
	"github.com/example/velora/internal/utils"
)

// WSHandler wires authenticated websocket connections into the hub and
// relays direct chat messages between users.
type WSHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// NewWSHandler constructs WSHandler.
func NewWSHandler(db *gorm.DB, hub *realtime.Hub) *WSHandler {
	return &WSHandler{db: db, hub: hub}
}

// Upgrade gates the websocket endpoint: only real upgrade requests from
// authenticated users pass through.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.Select("id", "role").First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals("wsUserID", userID)
	c.Locals("wsStaff", user.IsStaff())
	return c.Next()
}

// Serve registers the connection and pumps frames until disconnect.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	userID, ok := conn.Locals("wsUserID").(uuid.UUID)
	if !ok {
		conn.Close()
		return
	}
	staff, _ := conn.Locals("wsStaff").(bool)

	h.hub.Serve(conn, userID, staff, h.onMessage)
}

// onMessage persists an inbound chat message and relays it to the
// recipient's open connections.
func (h *WSHandler) onMessage(s *realtime.Session, in realtime.Inbound) {
	if in.Type != "chat" || in.Body == "" {
		return
	}

	recipientID, err := uuid.Parse(in.RecipientID)
	if err != nil {
		return
	}

	message := models.ChatMessage{
		SenderID:    s.UserID,
		RecipientID: recipientID,
		Body:        in.Body,
	}
	if err := h.db.Create(&message).Error; err != nil {
		log.Printf("[Chat] failed to persist message from %s: %v", s.UserID, err)
		return
	}

	h.hub.PushToUser(recipientID, realtime.Event{Name: realtime.EventChatMessage, Payload: message})
}

// History returns the conversation between the authenticated user and the
// given peer, oldest first.
func (h *WSHandler) History(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	peerID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.ChatMessage{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, peerID, peerID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var messages []models.ChatMessage
	if err := query.Order("created_at asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&messages).Error; err != nil {
		return err
	}

	// Opening the conversation marks the peer's messages read.
	if err := h.db.Model(&models.ChatMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", peerID, userID, false).
		Update("is_read", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    messages,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
