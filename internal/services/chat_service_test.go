package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"apichat/internal/models"
	"apichat/internal/pagination"
)

type fakeChatStore struct {
	chats  map[int]models.Chat
	nextID int
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[int]models.Chat), nextID: 1}
}

func (f *fakeChatStore) CreateChat(ctx context.Context, senderID, recipientID int) (int, error) {
	for _, c := range f.chats {
		same := c.Sender.ID == senderID && c.Recipient.ID == recipientID
		reversed := c.Sender.ID == recipientID && c.Recipient.ID == senderID
		if same || reversed {
			return 0, models.ErrChatExists
		}
	}
	id := f.nextID
	f.nextID++
	f.chats[id] = models.Chat{
		ID:        id,
		Sender:    models.ChatUser{ID: senderID},
		Recipient: models.ChatUser{ID: recipientID},
	}
	return id, nil
}

func (f *fakeChatStore) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	chat, ok := f.chats[id]
	if !ok {
		return models.Chat{}, models.ErrChatNotFound
	}
	return chat, nil
}

func eitherContains(a, b, needle string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(a), needle) ||
		strings.Contains(strings.ToLower(b), needle)
}

func chatMatches(c models.Chat, filter models.ChatFilter) bool {
	return eitherContains(c.Sender.Username, c.Recipient.Username, filter.Username) &&
		eitherContains(c.Sender.FirstName, c.Recipient.FirstName, filter.FirstName) &&
		eitherContains(c.Sender.LastName, c.Recipient.LastName, filter.LastName)
}

func (f *fakeChatStore) ListChatsByUser(ctx context.Context, userID int, filter models.ChatFilter, limit, offset int) ([]models.Chat, error) {
	var chats []models.Chat
	for _, c := range f.chats {
		if c.HasMember(userID) && chatMatches(c, filter) {
			chats = append(chats, c)
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID > chats[j].ID })
	if offset > len(chats) {
		offset = len(chats)
	}
	end := offset + limit
	if end > len(chats) {
		end = len(chats)
	}
	return chats[offset:end], nil
}

func (f *fakeChatStore) CountChatsByUser(ctx context.Context, userID int, filter models.ChatFilter) (int, error) {
	count := 0
	for _, c := range f.chats {
		if c.HasMember(userID) && chatMatches(c, filter) {
			count++
		}
	}
	return count, nil
}

type fakeUserDirectory struct {
	users map[int]models.User
}

func (f *fakeUserDirectory) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

func newChatService(userIDs ...int) (*ChatService, *fakeChatStore) {
	users := make(map[int]models.User)
	for _, id := range userIDs {
		users[id] = models.User{ID: id}
	}
	store := newFakeChatStore()
	return &ChatService{ChatRepo: store, UserRepo: &fakeUserDirectory{users: users}}, store
}

func TestCreateChatWithSelf(t *testing.T) {
	svc, _ := newChatService(1)
	_, err := svc.CreateChat(context.Background(), 1, 1)
	if !errors.Is(err, models.ErrSelfChat) {
		t.Fatalf("expected ErrSelfChat, got %v", err)
	}
}

func TestCreateChatUnknownRecipient(t *testing.T) {
	svc, _ := newChatService(1)
	_, err := svc.CreateChat(context.Background(), 1, 99)
	if !errors.Is(err, models.ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestCreateChatDuplicatePairEitherOrder(t *testing.T) {
	svc, _ := newChatService(1, 2, 3)
	ctx := context.Background()

	if _, err := svc.CreateChat(ctx, 2, 1); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateChat(ctx, 2, 2); !errors.Is(err, models.ErrSelfChat) {
		t.Fatalf("expected ErrSelfChat, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, 2, 1); !errors.Is(err, models.ErrChatExists) {
		t.Fatalf("expected ErrChatExists for repeat, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, 1, 2); !errors.Is(err, models.ErrChatExists) {
		t.Fatalf("expected ErrChatExists for reversed pair, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, 1, 3); err != nil {
		t.Fatalf("distinct pair should succeed, got %v", err)
	}
}

func TestGetChatHiddenFromNonMember(t *testing.T) {
	svc, _ := newChatService(1, 2, 3)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetChat(ctx, chat.ID, 3); !errors.Is(err, models.ErrChatNotFound) {
		t.Fatalf("non-member should see not-found, got %v", err)
	}
	for _, member := range []int{1, 2} {
		got, err := svc.GetChat(ctx, chat.ID, member)
		if err != nil {
			t.Fatalf("member %d: %v", member, err)
		}
		if got.ID != chat.ID {
			t.Fatalf("member %d got chat %d, want %d", member, got.ID, chat.ID)
		}
	}
}

func TestGetChatMissing(t *testing.T) {
	svc, _ := newChatService(1)
	if _, err := svc.GetChat(context.Background(), 42, 1); !errors.Is(err, models.ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
}

func TestListChatsOnlyOwn(t *testing.T) {
	svc, _ := newChatService(1, 2, 3, 4)
	ctx := context.Background()

	if _, err := svc.CreateChat(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateChat(ctx, 1, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateChat(ctx, 3, 4); err != nil {
		t.Fatal(err)
	}

	page, err := svc.ListChats(ctx, 1, models.ChatFilter{}, pagination.Params{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 2 {
		t.Fatalf("expected 2 chats for user 1, got %d", page.Count)
	}
	for _, c := range page.Results {
		if !c.HasMember(1) {
			t.Fatalf("chat %d does not involve user 1", c.ID)
		}
	}
}

func TestListChatsFilterByParticipantName(t *testing.T) {
	svc, store := newChatService(1, 2, 3)
	ctx := context.Background()

	first, err := svc.CreateChat(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateChat(ctx, 1, 3)
	if err != nil {
		t.Fatal(err)
	}

	c := store.chats[first.ID]
	c.Sender.Username = "anna"
	c.Recipient.Username = "Bekzhan"
	c.Recipient.FirstName = "Bek"
	store.chats[first.ID] = c

	c = store.chats[second.ID]
	c.Sender.Username = "anna"
	c.Recipient.Username = "carol"
	c.Recipient.FirstName = "Carina"
	store.chats[second.ID] = c

	page, err := svc.ListChats(ctx, 1, models.ChatFilter{Username: "BEKZ"}, pagination.Params{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 || page.Results[0].ID != first.ID {
		t.Fatalf("username fragment should match only the first chat, got %+v", page)
	}

	page, err = svc.ListChats(ctx, 1, models.ChatFilter{FirstName: "arin"}, pagination.Params{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 || page.Results[0].ID != second.ID {
		t.Fatalf("first_name fragment should match only the second chat, got %+v", page)
	}

	// the requester's own side counts too
	page, err = svc.ListChats(ctx, 1, models.ChatFilter{Username: "anna"}, pagination.Params{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 2 {
		t.Fatalf("sender-side username should match both chats, got %d", page.Count)
	}

	page, err = svc.ListChats(ctx, 1, models.ChatFilter{Username: "zzz"}, pagination.Params{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 0 || len(page.Results) != 0 {
		t.Fatalf("unmatched fragment should yield an empty page, got %+v", page)
	}
}

func TestListChatsPagePastEnd(t *testing.T) {
	svc, _ := newChatService(1, 2)
	ctx := context.Background()
	if _, err := svc.CreateChat(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	_, err := svc.ListChats(ctx, 1, models.ChatFilter{}, pagination.Params{Number: 5, Size: 10})
	if !errors.Is(err, pagination.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}
