package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"apichat/internal/models"
	"apichat/internal/pagination"
	service "apichat/internal/services"
)

// MessageNotifier pushes a notification about a freshly sent message to
// the other chat participant's devices.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, recipientID int, message models.Message)
}

// LiveFeed delivers a message to the recipient's open websocket, if any.
type LiveFeed interface {
	DeliverMessage(recipientID int, message models.Message)
}

type MessageHandler struct {
	MessageService *service.MessageService
	ChatService    *service.ChatService
	Notifier       MessageNotifier
	Live           LiveFeed
	PageSize       int
}

func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	filter := models.MessageFilter{
		Text:   r.URL.Query().Get("text"),
		Author: r.URL.Query().Get("author"),
	}

	page, err := h.MessageService.ListMessages(r.Context(), chatID, requesterID(r), filter, pagination.FromRequest(r, h.PageSize))
	if err != nil {
		h.writeError(w, err, "Failed to retrieve messages")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authorID := requesterID(r)
	message, err := h.MessageService.CreateMessage(r.Context(), chatID, authorID, req)
	if err != nil {
		h.writeError(w, err, "Failed to send message")
		return
	}

	if chat, err := h.ChatService.GetChat(r.Context(), chatID, authorID); err == nil {
		recipient := chat.OtherMember(authorID)
		if h.Live != nil {
			h.Live.DeliverMessage(recipient.ID, message)
		}
		if h.Notifier != nil {
			h.Notifier.NotifyNewMessage(r.Context(), recipient.ID, message)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

func (h *MessageHandler) GetMessageByID(w http.ResponseWriter, r *http.Request) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	messageID, ok := intParam(r, "message_id")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	message, err := h.MessageService.GetMessage(r.Context(), chatID, messageID, requesterID(r))
	if err != nil {
		h.writeError(w, err, "Failed to retrieve message")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}

func (h *MessageHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	h.updateMessage(w, r, false)
}

func (h *MessageHandler) PatchMessage(w http.ResponseWriter, r *http.Request) {
	h.updateMessage(w, r, true)
}

func (h *MessageHandler) updateMessage(w http.ResponseWriter, r *http.Request, partial bool) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	messageID, ok := intParam(r, "message_id")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	message, err := h.MessageService.UpdateMessage(r.Context(), chatID, messageID, requesterID(r), req, partial)
	if err != nil {
		h.writeError(w, err, "Failed to update message")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	messageID, ok := intParam(r, "message_id")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.MessageService.DeleteMessage(r.Context(), chatID, messageID, requesterID(r)); err != nil {
		h.writeError(w, err, "Failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggleReaction(w, r, h.MessageService.ToggleLike)
}

func (h *MessageHandler) ToggleDislike(w http.ResponseWriter, r *http.Request) {
	h.toggleReaction(w, r, h.MessageService.ToggleDislike)
}

func (h *MessageHandler) toggleReaction(w http.ResponseWriter, r *http.Request, toggle func(context.Context, int, int, int) (models.Message, error)) {
	chatID, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	messageID, ok := intParam(r, "message_id")
	if !ok {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	message, err := toggle(r.Context(), chatID, messageID, requesterID(r))
	if err != nil {
		h.writeError(w, err, "Failed to toggle reaction")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}

func (h *MessageHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrChatNotFound):
		http.Error(w, "Chat not found", http.StatusNotFound)
	case errors.Is(err, models.ErrMessageNotFound):
		http.Error(w, "Message not found", http.StatusNotFound)
	case errors.Is(err, pagination.ErrPageNotFound):
		http.Error(w, "Page not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotChatMember):
		http.Error(w, "Not a member of this chat", http.StatusForbidden)
	case errors.Is(err, models.ErrNotMessageAuthor):
		http.Error(w, "Only the author can modify this message", http.StatusForbidden)
	case errors.Is(err, models.ErrEmptyMessageText):
		http.Error(w, "Message text cannot be empty", http.StatusBadRequest)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
