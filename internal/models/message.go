package models

import "time"

// Message belongs to exactly one chat. Likes and dislikes hold user ids;
// a user never appears in both sets at once.
type Message struct {
	ID       int       `json:"id"`
	ChatID   int       `json:"chat"`
	Author   ChatUser  `json:"author"`
	Text     string    `json:"text"`
	DateSent time.Time `json:"date_sent"`
	IsRead   bool      `json:"is_read"`
	Likes    []int     `json:"likes"`
	Dislikes []int     `json:"dislikes"`
	Images   []Image   `json:"images"`
}

type CreateMessageRequest struct {
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"` // base64 payloads
}

type UpdateMessageRequest struct {
	Text *string `json:"text"`
}

// MessageFilter narrows message listings within a chat. Text and author
// username are matched as case-insensitive substrings.
type MessageFilter struct {
	Text   string
	Author string
}
