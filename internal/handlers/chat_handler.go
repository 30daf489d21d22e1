package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"apichat/internal/models"
	"apichat/internal/pagination"
	service "apichat/internal/services"
)

type ChatHandler struct {
	ChatService *service.ChatService
	PageSize    int
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.CreateChat(r.Context(), requesterID(r), req.RecipientID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSelfChat):
			http.Error(w, "Cannot open a chat with yourself", http.StatusBadRequest)
		case errors.Is(err, models.ErrRecipientNotFound):
			http.Error(w, "Recipient does not exist", http.StatusBadRequest)
		case errors.Is(err, models.ErrChatExists):
			http.Error(w, "Chat with this user already exists", http.StatusBadRequest)
		default:
			http.Error(w, "Failed to create chat", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(chat)
}

func (h *ChatHandler) GetChatByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), id, requesterID(r))
	if err != nil {
		if errors.Is(err, models.ErrChatNotFound) {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve chat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat)
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	filter := models.ChatFilter{
		Username:  r.URL.Query().Get("username"),
		FirstName: r.URL.Query().Get("first_name"),
		LastName:  r.URL.Query().Get("last_name"),
	}

	page, err := h.ChatService.ListChats(r.Context(), requesterID(r), filter, pagination.FromRequest(r, h.PageSize))
	if err != nil {
		if errors.Is(err, pagination.ErrPageNotFound) {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve chats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}
