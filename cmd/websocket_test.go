package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"apichat/internal/models"
)

type presenceLog struct {
	mu      sync.Mutex
	online  map[int]int
	offline map[int]int
}

func newPresenceLog() *presenceLog {
	return &presenceLog{online: make(map[int]int), offline: make(map[int]int)}
}

func (p *presenceLog) MarkOnline(_ context.Context, userID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID]++
	return nil
}

func (p *presenceLog) MarkOffline(_ context.Context, userID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline[userID]++
	return nil
}

func (p *presenceLog) offlineCount(userID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offline[userID]
}

func (p *presenceLog) onlineCount(userID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

// newSocketPair upgrades one connection and hands back both ends.
func newSocketPair(t *testing.T) (*websocket.Conn, *wsConn) {
	t.Helper()

	serverSide := make(chan *wsConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- &wsConn{conn: conn}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case s := <-serverSide:
		return client, s
	case <-time.After(2 * time.Second):
		t.Fatal("server side of socket never arrived")
		return nil, nil
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStaleSocketUnregisterKeepsUserOnline(t *testing.T) {
	pl := newPresenceLog()
	ws := NewWebSocketManager(pl)
	go ws.Run()

	_, first := newSocketPair(t)
	_, second := newSocketPair(t)

	const userID = 7
	ws.register <- Client{ID: userID, Socket: first}
	ws.register <- Client{ID: userID, Socket: second}
	waitFor(t, func() bool { return pl.onlineCount(userID) == 2 }, "user never marked online")

	// the teardown of the replaced socket races its replacement in
	// production; here the stale unregister clearly arrives after
	ws.unregister <- unreg{userID: userID, conn: first}
	// a no-op delivery flushes the loop past the unregister above
	ws.direct <- directMsg{userID: -1}
	if got := pl.offlineCount(userID); got != 0 {
		t.Fatalf("stale unregister marked user offline %d times, want 0", got)
	}

	ws.unregister <- unreg{userID: userID, conn: second}
	waitFor(t, func() bool { return pl.offlineCount(userID) == 1 }, "user never marked offline")
	if got := pl.offlineCount(userID); got != 1 {
		t.Fatalf("offline marks = %d, want 1", got)
	}
}

func TestConcurrentPingAndDeliver(t *testing.T) {
	pl := newPresenceLog()
	ws := NewWebSocketManager(pl)
	go ws.Run()

	client, server := newSocketPair(t)
	const userID = 3
	ws.register <- Client{ID: userID, Socket: server}

	const sends = 8
	var wg sync.WaitGroup
	for i := 0; i < sends; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := server.ping(); err != nil {
				t.Errorf("ping: %v", err)
			}
		}()
		go func(n int) {
			defer wg.Done()
			ws.DeliverMessage(userID, models.Message{ID: n, ChatID: 1, Text: "hi"})
		}(i)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < sends; i++ {
		var got models.Message
		if err := client.ReadJSON(&got); err != nil {
			t.Fatalf("read message %d: %v", i, err)
		}
		if got.ChatID != 1 {
			t.Errorf("message %d: chat = %d, want 1", i, got.ChatID)
		}
	}
	wg.Wait()
}
