package handlers

import (
	"net/http/httptest"
	"testing"

	"apichat/internal/models"
	"apichat/internal/pagination"
)

func TestGetParam(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want string
	}{
		{"colon prefixed", "/chats?:id=7", "id", "7"},
		{"plain query", "/chats?id=7", "id", "7"},
		{"missing", "/chats", "id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := getParam(r, tt.key); got != tt.want {
				t.Errorf("getParam(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestIntParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/chats?:id=12", nil)
	id, ok := intParam(r, "id")
	if !ok || id != 12 {
		t.Fatalf("intParam = (%d, %v), want (12, true)", id, ok)
	}

	for _, bad := range []string{"/chats?:id=abc", "/chats?:id=0", "/chats?:id=-3", "/chats"} {
		r := httptest.NewRequest("GET", bad, nil)
		if _, ok := intParam(r, "id"); ok {
			t.Errorf("intParam accepted %q", bad)
		}
	}
}

func TestMessageWriteErrorStatus(t *testing.T) {
	h := &MessageHandler{}
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrChatNotFound, 404},
		{models.ErrMessageNotFound, 404},
		{pagination.ErrPageNotFound, 404},
		{models.ErrNotChatMember, 403},
		{models.ErrNotMessageAuthor, 403},
		{models.ErrEmptyMessageText, 400},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.writeError(w, tt.err, "fallback")
		if w.Code != tt.want {
			t.Errorf("writeError(%v) = %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}
