package handler

import (
	"net/http"

	"tush00nka/chathub/internal/pkg/httputils"
	"tush00nka/chathub/internal/service"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// RegisterRoutes mounts the chat routes on an authenticated router.
func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	chats := router.PathPrefix("/chats").Subrouter()
	chats.HandleFunc("", h.listChats).Methods("GET", "OPTIONS")
	chats.HandleFunc("/users", h.searchAvailableUsers).Methods("GET", "OPTIONS")
	chats.HandleFunc("/c/{receiverId:[0-9]+}", h.createOrGetDirectChat).Methods("POST", "OPTIONS")
	chats.HandleFunc("/group", h.createGroupChat).Methods("POST", "OPTIONS")
	chats.HandleFunc("/group/{chatId:[0-9]+}", h.getGroupChatDetails).Methods("GET", "OPTIONS")
	chats.HandleFunc("/group/{chatId:[0-9]+}", h.renameGroupChat).Methods("PATCH", "OPTIONS")
	chats.HandleFunc("/group/{chatId:[0-9]+}", h.deleteGroupChat).Methods("DELETE", "OPTIONS")
	chats.HandleFunc("/group/{chatId:[0-9]+}/{participantId:[0-9]+}", h.addParticipant).Methods("POST", "OPTIONS")
	chats.HandleFunc("/group/{chatId:[0-9]+}/{participantId:[0-9]+}", h.removeParticipant).Methods("DELETE", "OPTIONS")
	chats.HandleFunc("/remove/{chatId:[0-9]+}", h.deleteDirectChat).Methods("DELETE", "OPTIONS")
	chats.HandleFunc("/leave/{chatId:[0-9]+}", h.leaveGroupChat).Methods("POST", "OPTIONS")
}

type createGroupChatRequest struct {
	Name         string `json:"name" validate:"required"`
	Participants []uint `json:"participants" validate:"required,dive,gt=0"`
}

type renameGroupChatRequest struct {
	Name string `json:"name" validate:"required"`
}

// @Summary Available users
// @Description List every user except the requester
// @Tags chats
// @Produce json
// @Security Bearer
// @Success 200 {object} response.DataResponse{data=[]model.Profile}
// @Failure 401 {object} response.ErrorResponse
// @Router /chats/users [get]
func (h *ChatHandler) searchAvailableUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := requester(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	users, err := h.chatService.SearchAvailableUsers(r.Context(), userID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, users, "Users fetched successfully")
}

// @Summary List chats
// @Description List the requester's chats, most recently updated first
// @Tags chats
// @Produce json
// @Security Bearer
// @Success 200 {object} response.DataResponse{data=[]model.ChatView}
// @Failure 401 {object} response.ErrorResponse
// @Router /chats [get]
func (h *ChatHandler) listChats(w http.ResponseWriter, r *http.Request) {
	userID, err := requester(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chats, "User chats fetched successfully!")
}

// @Summary Direct chat
// @Description Get the direct chat with a user, creating it if needed
// @Tags chats
// @Produce json
// @Security Bearer
// @Param receiverId path int true "Receiver ID"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/c/{receiverId} [post]
func (h *ChatHandler) createOrGetDirectChat(w http.ResponseWriter, r *http.Request) {
	userID, err := requester(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	receiverID, err := pathID(r, "receiverId")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.GetOrCreateDirectChat(r.Context(), userID, receiverID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Chat retrieved successfully")
}

// @Summary Create group chat
// @Tags chats
// @Accept json
// @Produce json
// @Security Bearer
// @Param groupData body createGroupChatRequest true "Group data"
// @Success 201 {object} response.DataResponse{data=model.ChatView}
// @Failure 400 {object} response.ErrorResponse
// @Router /chats/group [post]
func (h *ChatHandler) createGroupChat(w http.ResponseWriter, r *http.Request) {
	userID, err := requester(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	var request createGroupChatRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.CreateGroupChat(r.Context(), userID, request.Name, request.Participants)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusCreated, chat, "Group chat created successfully")
}

// @Summary Group chat details
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/group/{chatId} [get]
func (h *ChatHandler) getGroupChatDetails(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.GetGroupChatDetails(r.Context(), userID, chatID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Group chat fetched successfully")
}

// @Summary Rename group chat
// @Tags chats
// @Accept json
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Param renameData body renameGroupChatRequest true "New name"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/group/{chatId} [patch]
func (h *ChatHandler) renameGroupChat(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	var request renameGroupChatRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.RenameGroupChat(r.Context(), userID, chatID, request.Name)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Group chat name updated successfully")
}

// @Summary Delete group chat
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Success 200 {object} response.DataResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/group/{chatId} [delete]
func (h *ChatHandler) deleteGroupChat(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if err := h.chatService.DeleteGroupChat(r.Context(), userID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, struct{}{}, "Group chat deleted successfully")
}

// @Summary Delete direct chat
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Success 200 {object} response.DataResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/remove/{chatId} [delete]
func (h *ChatHandler) deleteDirectChat(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if err := h.chatService.DeleteDirectChat(r.Context(), userID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, struct{}{}, "Chat deleted successfully")
}

// @Summary Leave group chat
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chats/leave/{chatId} [post]
func (h *ChatHandler) leaveGroupChat(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.LeaveGroupChat(r.Context(), userID, chatID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Left a group successfully")
}

// @Summary Add participant
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Param participantId path int true "Participant ID"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /chats/group/{chatId}/{participantId} [post]
func (h *ChatHandler) addParticipant(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	participantID, err := pathID(r, "participantId")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.AddParticipant(r.Context(), userID, chatID, participantID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Participant added successfully")
}

// @Summary Remove participant
// @Tags chats
// @Produce json
// @Security Bearer
// @Param chatId path int true "Chat ID"
// @Param participantId path int true "Participant ID"
// @Success 200 {object} response.DataResponse{data=model.ChatView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /chats/group/{chatId}/{participantId} [delete]
func (h *ChatHandler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	userID, chatID, err := chatRequest(r)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	participantID, err := pathID(r, "participantId")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chatService.RemoveParticipant(r.Context(), userID, chatID, participantID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	httputils.ResponseData(w, http.StatusOK, chat, "Participant removed successfully")
}

// chatRequest extracts the requester and the chatId route variable.
func chatRequest(r *http.Request) (uint, uint, error) {
	userID, err := requester(r)
	if err != nil {
		return 0, 0, err
	}
	chatID, err := pathID(r, "chatId")
	if err != nil {
		return 0, 0, err
	}
	return userID, chatID, nil
}
