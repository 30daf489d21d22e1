package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"apichat/internal/models"
	"apichat/internal/pagination"
	"apichat/utils"
)

// MessageStore is the message persistence surface the service needs.
type MessageStore interface {
	CreateMessage(ctx context.Context, message models.Message, imagePaths []string) (models.Message, error)
	GetMessageByID(ctx context.Context, chatID, messageID int) (models.Message, error)
	ListMessages(ctx context.Context, chatID int, filter models.MessageFilter, limit, offset int) ([]models.Message, error)
	CountMessages(ctx context.Context, chatID int, filter models.MessageFilter) (int, error)
	UpdateMessageText(ctx context.Context, messageID int, text string) error
	DeleteMessage(ctx context.Context, messageID int) error
	GetImagePaths(ctx context.Context, messageID int) ([]string, error)
}

type ReactionStore interface {
	ToggleLike(ctx context.Context, messageID, userID int) error
	ToggleDislike(ctx context.Context, messageID, userID int) error
}

type ChatGetter interface {
	GetChatByID(ctx context.Context, id int) (models.Chat, error)
}

// ImageStore is the blob store for message attachments and avatars.
type ImageStore interface {
	Upload(data []byte, fileName, folder string) (string, error)
	Delete(path string) error
}

type MessageService struct {
	MessageRepo MessageStore
	ChatRepo    ChatGetter
	Reactions   ReactionStore
	Images      ImageStore
}

// memberChat loads the chat and enforces membership. Reads hide the
// chat's existence from outsiders (not found); writes against a chat the
// user can see exists but does not belong to are forbidden.
func (s *MessageService) memberChat(ctx context.Context, chatID, userID int, write bool) (models.Chat, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if !chat.HasMember(userID) {
		if write {
			return models.Chat{}, models.ErrNotChatMember
		}
		return models.Chat{}, models.ErrChatNotFound
	}
	return chat, nil
}

// ListMessages returns the chat's messages newest-first, optionally
// narrowed by text substring and author username.
func (s *MessageService) ListMessages(ctx context.Context, chatID, requesterID int, filter models.MessageFilter, params pagination.Params) (pagination.Page[models.Message], error) {
	if _, err := s.memberChat(ctx, chatID, requesterID, false); err != nil {
		return pagination.Page[models.Message]{}, err
	}

	total, err := s.MessageRepo.CountMessages(ctx, chatID, filter)
	if err != nil {
		return pagination.Page[models.Message]{}, err
	}

	messages, err := s.MessageRepo.ListMessages(ctx, chatID, filter, params.Size, params.Offset())
	if err != nil {
		return pagination.Page[models.Message]{}, err
	}
	return pagination.NewPage(messages, total, params)
}

// CreateMessage persists a message with its attachments as one unit.
// Images are uploaded to the blob store first; if the database insert
// fails afterwards, the uploaded objects are removed again.
func (s *MessageService) CreateMessage(ctx context.Context, chatID, authorID int, req models.CreateMessageRequest) (models.Message, error) {
	chat, err := s.memberChat(ctx, chatID, authorID, true)
	if err != nil {
		return models.Message{}, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return models.Message{}, models.ErrEmptyMessageText
	}

	var imagePaths []string
	for _, payload := range req.Images {
		data, err := utils.DecodeBase64Image(payload)
		if err != nil {
			s.removeImages(imagePaths)
			return models.Message{}, err
		}
		path, err := s.Images.Upload(data, uuid.New().String()+".jpg", "messages")
		if err != nil {
			s.removeImages(imagePaths)
			return models.Message{}, err
		}
		imagePaths = append(imagePaths, path)
	}

	author := chat.Sender
	if chat.Recipient.ID == authorID {
		author = chat.Recipient
	}

	message := models.Message{
		ChatID: chatID,
		Author: author,
		Text:   text,
	}
	created, err := s.MessageRepo.CreateMessage(ctx, message, imagePaths)
	if err != nil {
		s.removeImages(imagePaths)
		return models.Message{}, err
	}
	return created, nil
}

func (s *MessageService) GetMessage(ctx context.Context, chatID, messageID, requesterID int) (models.Message, error) {
	if _, err := s.memberChat(ctx, chatID, requesterID, false); err != nil {
		return models.Message{}, err
	}
	return s.MessageRepo.GetMessageByID(ctx, chatID, messageID)
}

// UpdateMessage replaces the text of the requester's own message. With
// partial set, an omitted text leaves the message unchanged; a provided
// empty text is rejected either way. Author and date_sent never change.
func (s *MessageService) UpdateMessage(ctx context.Context, chatID, messageID, requesterID int, req models.UpdateMessageRequest, partial bool) (models.Message, error) {
	if _, err := s.memberChat(ctx, chatID, requesterID, true); err != nil {
		return models.Message{}, err
	}

	message, err := s.MessageRepo.GetMessageByID(ctx, chatID, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if message.Author.ID != requesterID {
		return models.Message{}, models.ErrNotMessageAuthor
	}

	if req.Text == nil {
		if partial {
			return message, nil
		}
		return models.Message{}, models.ErrEmptyMessageText
	}

	text := strings.TrimSpace(*req.Text)
	if text == "" {
		return models.Message{}, models.ErrEmptyMessageText
	}

	if err := s.MessageRepo.UpdateMessageText(ctx, messageID, text); err != nil {
		return models.Message{}, err
	}
	message.Text = text
	return message, nil
}

// DeleteMessage removes the requester's own message together with its
// attachments, in the database and in the blob store.
func (s *MessageService) DeleteMessage(ctx context.Context, chatID, messageID, requesterID int) error {
	if _, err := s.memberChat(ctx, chatID, requesterID, true); err != nil {
		return err
	}

	message, err := s.MessageRepo.GetMessageByID(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	if message.Author.ID != requesterID {
		return models.ErrNotMessageAuthor
	}

	paths, err := s.MessageRepo.GetImagePaths(ctx, messageID)
	if err != nil {
		return err
	}

	if err := s.MessageRepo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.removeImages(paths)
	return nil
}

// ToggleLike flips the requester's like on a message and returns the
// updated message. Toggling twice restores the previous state.
func (s *MessageService) ToggleLike(ctx context.Context, chatID, messageID, requesterID int) (models.Message, error) {
	return s.toggleReaction(ctx, chatID, messageID, requesterID, s.Reactions.ToggleLike)
}

func (s *MessageService) ToggleDislike(ctx context.Context, chatID, messageID, requesterID int) (models.Message, error) {
	return s.toggleReaction(ctx, chatID, messageID, requesterID, s.Reactions.ToggleDislike)
}

func (s *MessageService) toggleReaction(ctx context.Context, chatID, messageID, requesterID int, toggle func(context.Context, int, int) error) (models.Message, error) {
	if _, err := s.memberChat(ctx, chatID, requesterID, true); err != nil {
		return models.Message{}, err
	}

	if _, err := s.MessageRepo.GetMessageByID(ctx, chatID, messageID); err != nil {
		return models.Message{}, err
	}

	if err := toggle(ctx, messageID, requesterID); err != nil {
		return models.Message{}, err
	}
	return s.MessageRepo.GetMessageByID(ctx, chatID, messageID)
}

func (s *MessageService) removeImages(paths []string) {
	if s.Images == nil {
		return
	}
	for _, path := range paths {
		if err := s.Images.Delete(path); err != nil {
			log.Printf("failed to delete image %s: %v", path, err)
		}
	}
}
