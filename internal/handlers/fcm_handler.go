package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"firebase.google.com/go/messaging"

	"apichat/internal/models"
	"apichat/internal/repositories"
)

// FCMHandler pushes new-message notifications over Firebase Cloud
// Messaging and manages device token registration.
type FCMHandler struct {
	Client *messaging.Client
	Tokens *repositories.NotifyTokenRepository
}

func NewFCMHandler(client *messaging.Client, tokens *repositories.NotifyTokenRepository) *FCMHandler {
	return &FCMHandler{Client: client, Tokens: tokens}
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *FCMHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	if err := h.Tokens.SaveToken(r.Context(), requesterID(r), req.Token); err != nil {
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *FCMHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := getParam(r, "token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	if err := h.Tokens.DeleteToken(r.Context(), requesterID(r), token); err != nil {
		http.Error(w, "Failed to delete token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NotifyNewMessage fans the message out to every registered device of the
// recipient. Delivery failures are logged and never surfaced to the sender.
func (h *FCMHandler) NotifyNewMessage(ctx context.Context, recipientID int, message models.Message) {
	if h.Client == nil {
		return
	}

	tokens, err := h.Tokens.GetTokensByUserID(ctx, recipientID)
	if err != nil {
		log.Printf("fetching notify tokens for user %d: %v", recipientID, err)
		return
	}

	for _, token := range tokens {
		if err := h.send(ctx, token, message); err != nil {
			log.Printf("sending push to token %s: %v", token, err)
		}
	}
}

func (h *FCMHandler) send(ctx context.Context, token string, message models.Message) error {
	push := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: message.Author.Username,
			Body:  message.Text,
		},
		Data: map[string]string{
			"chat_id": strconv.Itoa(message.ChatID),
			"type":    "new_message",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: message.Author.Username,
						Body:  message.Text,
					},
					Sound: "default",
				},
			},
		},
	}

	_, err := h.Client.Send(ctx, push)
	return err
}
