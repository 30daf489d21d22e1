package models

import "time"

// Chat is a two-party conversation. Sender is the user who opened it;
// the pair is unique regardless of direction.
type Chat struct {
	ID            int       `json:"id"`
	Sender        ChatUser  `json:"sender"`
	Recipient     ChatUser  `json:"recipient"`
	CreatedAt     time.Time `json:"created_at"`
	MessagesCount int       `json:"messages_count"`
}

// ChatUser is the participant summary embedded in chat payloads.
type ChatUser struct {
	ID         int     `json:"id"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	AvatarPath *string `json:"avatar,omitempty"`
}

// HasMember reports whether userID is one of the chat's two participants.
// Every chat and message operation checks this first.
func (c Chat) HasMember(userID int) bool {
	return c.Sender.ID == userID || c.Recipient.ID == userID
}

// OtherMember returns the participant opposite to userID.
func (c Chat) OtherMember(userID int) ChatUser {
	if c.Sender.ID == userID {
		return c.Recipient
	}
	return c.Sender
}

type CreateChatRequest struct {
	RecipientID int `json:"recipient"`
}

// ChatFilter narrows chat listings by participant names, matching either
// side of the conversation case-insensitively.
type ChatFilter struct {
	Username  string
	FirstName string
	LastName  string
}
