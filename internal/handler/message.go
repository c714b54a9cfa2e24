package handler

import (
	"encoding/json"
	"net/http"

	"chatsphere/backend/internal/pkg/auth"
	"chatsphere/backend/internal/pkg/httputils"
	"chatsphere/backend/internal/service"

	"github.com/gorilla/mux"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/message/create", h.sendMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/message/chat/{chatId}", h.getChatMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/message/{messageId}/read", h.markRead).Methods("PUT", "OPTIONS")
	router.HandleFunc("/api/message/{messageId}", h.deleteMessage).Methods("DELETE", "OPTIONS")
}

type sendMessageRequest struct {
	ChatID  uint   `json:"chat_id"`
	Content string `json:"content"`
}

// @Summary Send message
// @Description Send a message to a chat the authenticated user belongs to
// @ID send-message
// @Tags message
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param messageData body sendMessageRequest true "Message data"
// @Success 200 {object} model.Message
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/message/create [post]
func (h *MessageHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var request sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	message, err := h.messageService.SendMessage(r.Context(), service.SendMessageRequest{
		UserID:  userID,
		ChatID:  request.ChatID,
		Content: request.Content,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, message)
}

// @Summary Get chat messages
// @Description List a chat's messages in insertion order (members only)
// @ID get-chat-messages
// @Tags message
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Success 200 {object} []model.Message
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/message/chat/{chatId} [get]
func (h *MessageHandler) getChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}

	messages, err := h.messageService.GetChatsMessages(r.Context(), chatID, userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, messages)
}

// @Summary Mark message read
// @Description Mark a message as read (chat members other than the sender)
// @ID mark-message-read
// @Tags message
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param messageId path int true "Message ID"
// @Success 200
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/message/{messageId}/read [put]
func (h *MessageHandler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	messageID, ok := pathID(r, "messageId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse message ID")
		return
	}

	if err := h.messageService.MarkMessageRead(r.Context(), messageID, userID); err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// @Summary Delete message
// @Description Delete a message by id (sender only)
// @ID delete-message
// @Tags message
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param messageId path int true "Message ID"
// @Success 200
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/message/{messageId} [delete]
func (h *MessageHandler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	messageID, ok := pathID(r, "messageId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse message ID")
		return
	}

	if err := h.messageService.DeleteMessage(r.Context(), messageID, userID); err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
