package services

import (
	"context"
	"errors"

	"apichat/internal/models"
	"apichat/internal/pagination"
)

// ChatStore is the chat persistence surface the service needs.
type ChatStore interface {
	CreateChat(ctx context.Context, senderID, recipientID int) (int, error)
	GetChatByID(ctx context.Context, id int) (models.Chat, error)
	ListChatsByUser(ctx context.Context, userID int, filter models.ChatFilter, limit, offset int) ([]models.Chat, error)
	CountChatsByUser(ctx context.Context, userID int, filter models.ChatFilter) (int, error)
}

// UserDirectory resolves user ids; the identity provider's lookup surface.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

type ChatService struct {
	ChatRepo ChatStore
	UserRepo UserDirectory
}

// CreateChat opens a conversation between the requester and recipientID.
// A user cannot chat with themselves, the recipient must exist, and the
// unordered pair must not already have a chat.
func (s *ChatService) CreateChat(ctx context.Context, requesterID, recipientID int) (models.Chat, error) {
	if recipientID == requesterID {
		return models.Chat{}, models.ErrSelfChat
	}

	if _, err := s.UserRepo.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.Chat{}, models.ErrRecipientNotFound
		}
		return models.Chat{}, err
	}

	chatID, err := s.ChatRepo.CreateChat(ctx, requesterID, recipientID)
	if err != nil {
		return models.Chat{}, err
	}
	return s.ChatRepo.GetChatByID(ctx, chatID)
}

// GetChat returns the chat only to its participants. Non-members get the
// same not-found error as a missing chat so existence is not leaked.
func (s *ChatService) GetChat(ctx context.Context, chatID, requesterID int) (models.Chat, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if !chat.HasMember(requesterID) {
		return models.Chat{}, models.ErrChatNotFound
	}
	return chat, nil
}

// ListChats returns the requester's chats newest-created-first.
func (s *ChatService) ListChats(ctx context.Context, requesterID int, filter models.ChatFilter, params pagination.Params) (pagination.Page[models.Chat], error) {
	total, err := s.ChatRepo.CountChatsByUser(ctx, requesterID, filter)
	if err != nil {
		return pagination.Page[models.Chat]{}, err
	}

	chats, err := s.ChatRepo.ListChatsByUser(ctx, requesterID, filter, params.Size, params.Offset())
	if err != nil {
		return pagination.Page[models.Chat]{}, err
	}
	return pagination.NewPage(chats, total, params)
}
