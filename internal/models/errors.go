package models

import (
	"errors"
)

var (
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicateUsername  = errors.New("models: duplicate username")

	ErrSelfChat          = errors.New("models: cannot chat with self")
	ErrRecipientNotFound = errors.New("models: recipient not found")
	ErrChatExists        = errors.New("models: chat already exists")
	ErrChatNotFound      = errors.New("models: chat not found")

	ErrMessageNotFound  = errors.New("models: message not found")
	ErrEmptyMessageText = errors.New("models: message text is empty")
	ErrNotChatMember    = errors.New("models: user is not a chat member")
	ErrNotMessageAuthor = errors.New("models: user is not the message author")
)
