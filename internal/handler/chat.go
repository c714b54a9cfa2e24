package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/pkg/auth"
	"chatsphere/backend/internal/pkg/httputils"
	"chatsphere/backend/internal/service"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/chat/single", h.createSingleChat).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/chat/group", h.createGroupChat).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/chat/summaries", h.getChatSummaries).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/chat/delete/{chatId}/{userId}", h.deleteChat).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/api/chat/{chatId}", h.getChat).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/chat/{chatId}/add/{userId}", h.addUserToGroup).Methods("PUT", "OPTIONS")
	router.HandleFunc("/api/chat/{chatId}/rename", h.renameGroup).Methods("PUT", "OPTIONS")
	router.HandleFunc("/api/chat/{chatId}/remove/{userId}", h.removeFromGroup).Methods("PUT", "OPTIONS")
}

type singleChatRequest struct {
	UserID uint `json:"user_id"`
}

type renameGroupRequest struct {
	GroupName string `json:"group_name"`
}

func pathID(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// sanitizeChat strips password hashes from the membership set before the chat
// is written out.
func sanitizeChat(chat *model.Chat) *model.Chat {
	for i := range chat.Users {
		chat.Users[i].SanitizePassword()
	}
	return chat
}

// @Summary Create single chat
// @Description Create a direct chat between the authenticated user and another user
// @ID create-single-chat
// @Tags chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatData body singleChatRequest true "Other user"
// @Success 200 {object} model.Chat
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/chat/single [post]
func (h *ChatHandler) createSingleChat(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var request singleChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), requesterID, request.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Create group chat
// @Description Create a group chat with the listed members; the authenticated user becomes admin
// @ID create-group-chat
// @Tags chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param groupData body service.GroupChatRequest true "Group data"
// @Success 200 {object} model.Chat
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/chat/group [post]
func (h *ChatHandler) createGroupChat(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var request service.GroupChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	chat, err := h.chatService.CreateGroup(r.Context(), request, requesterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Get chat
// @Description Fetch a chat by its id
// @ID get-chat
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Success 200 {object} model.Chat
// @Failure 404 {object} response.ErrorResponse
// @Router /api/chat/{chatId} [get]
func (h *ChatHandler) getChat(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.UserIDFromRequest(r); err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}

	chat, err := h.chatService.FindChatByID(r.Context(), chatID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Add user to group
// @Description Add a user to a group chat (admin only)
// @ID add-user-to-group
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Param userId path int true "User ID"
// @Success 200 {object} model.Chat
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/chat/{chatId}/add/{userId} [put]
func (h *ChatHandler) addUserToGroup(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse user ID")
		return
	}

	chat, err := h.chatService.AddUserToGroup(r.Context(), userID, chatID, requesterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Rename group
// @Description Rename a group chat (admin only)
// @ID rename-group
// @Tags chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Param renameData body renameGroupRequest true "New name"
// @Success 200 {object} model.Chat
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/chat/{chatId}/rename [put]
func (h *ChatHandler) renameGroup(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}

	var request renameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	chat, err := h.chatService.RenameGroup(r.Context(), chatID, request.GroupName, requesterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Remove user from group
// @Description Remove a user from a group chat (admin, or the user themselves)
// @ID remove-user-from-group
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Param userId path int true "User ID"
// @Success 200 {object} model.Chat
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/chat/{chatId}/remove/{userId} [put]
func (h *ChatHandler) removeFromGroup(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse user ID")
		return
	}

	chat, err := h.chatService.RemoveFromGroup(r.Context(), chatID, userID, requesterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Delete chat
// @Description Delete a chat and its messages (members only)
// @ID delete-chat
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatId path int true "Chat ID"
// @Param userId path int true "User ID"
// @Success 200 {object} model.Chat
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/chat/delete/{chatId}/{userId} [delete]
func (h *ChatHandler) deleteChat(w http.ResponseWriter, r *http.Request) {
	requesterID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	chatID, ok := pathID(r, "chatId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse chat ID")
		return
	}
	userID, ok := pathID(r, "userId")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "failed to parse user ID")
		return
	}

	chat, err := h.chatService.DeleteChat(r.Context(), chatID, userID, requesterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, sanitizeChat(chat))
}

// @Summary Get chat summaries
// @Description Paginated chat summaries for the authenticated user, most recent activity first
// @ID get-chat-summaries
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param page query int false "Page (zero-indexed)"
// @Param size query int false "Page size"
// @Success 200 {object} []model.ChatSummary
// @Failure 401 {object} response.ErrorResponse
// @Router /api/chat/summaries [get]
func (h *ChatHandler) getChatSummaries(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	page := 0
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			page = n
		}
	}
	size := 10
	if s := r.URL.Query().Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n
		}
	}

	summaries, err := h.chatService.GetChatSummaries(r.Context(), userID, page, size)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, summaries)
}
