package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/realtime"
	"github.com/jobup-app/backend/internal/services/chat"
)

type ChatHandler struct {
	DB   *gorm.DB
	Chat *chat.Service
	Hub  *realtime.Hub
	Pub  *realtime.Publisher
}

func NewChatHandler(db *gorm.DB, chatSvc *chat.Service, hub *realtime.Hub, pub *realtime.Publisher) *ChatHandler {
	return &ChatHandler{DB: db, Chat: chatSvc, Hub: hub, Pub: pub}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	chatID := c.Params("chatId")

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Content is required"})
	}

	receiverUUID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid receiver ID"})
	}

	if chatID != models.ChatIDFor(userUUID, receiverUUID) {
		return c.Status(403).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	sender, err := partyFor(h.DB, userUUID)
	if err != nil {
		return respondErr(c, err)
	}
	receiver, err := partyFor(h.DB, receiverUUID)
	if err != nil {
		return respondErr(c, err)
	}

	msg, err := h.Chat.Append(chat.AppendParams{
		ChatID:   chatID,
		Sender:   sender,
		Receiver: receiver,
		Content:  req.Content,
		Type:     models.MessageText,
	})
	if err != nil {
		return respondErr(c, err)
	}

	h.Hub.SendToPair(sender.ID, receiver.ID, fiber.Map{
		"type":    "new_message",
		"message": msg,
	})

	// Push notification for the receiver's other devices.
	h.Pub.PublishToUser(c.Context(), receiver.ID, "notifications", fiber.Map{
		"type":        "chat_message",
		"chat_id":     chatID,
		"sender_id":   sender.ID.String(),
		"sender_name": sender.Name,
		"content":     req.Content,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "data": msg})
}

// GetMessages returns one ascending page of the conversation. Query
// params: limit (default 50, max 200) and before_seq to scroll back.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	chatID := c.Params("chatId")

	var conv models.Conversation
	if err := h.DB.First(&conv, "chat_id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Conversation not found"})
		}
		return respondErr(c, err)
	}

	if conv.ClientID != userUUID && conv.WorkerID != userUUID {
		return c.Status(403).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	beforeSeq, _ := strconv.ParseInt(c.Query("before_seq"), 10, 64)

	msgs, err := h.Chat.List(chatID, limit, beforeSeq)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": msgs})
}

// GetConversations lists the caller's conversations, most recent first.
func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var convs []models.Conversation
	if err := h.DB.
		Where("client_id = ? OR worker_id = ?", userUUID, userUUID).
		Order("last_message_at DESC").
		Find(&convs).Error; err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": convs})
}

// WebSocketHandler keeps one session per open socket. The hub owns the
// Send channel and closes it on unregister, which ends the writer.
func (h *ChatHandler) WebSocketHandler(c *websocket.Conn) {
	userID := c.Query("user_id")
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		log.Println("websocket: invalid user_id:", userID)
		c.Close()
		return
	}

	session := &realtime.Session{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Send:   make(chan []byte, 256),
	}

	h.Hub.Register(session)
	defer h.Hub.Unregister(session)

	go func() {
		for msg := range session.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("websocket write:", err)
				return
			}
		}
	}()

	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}
		// inbound frames are keepalives only; sending goes through HTTP
		if t, ok := payload["type"].(string); ok && t == "pong" {
			continue
		}
	}
}
