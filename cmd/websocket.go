package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"apichat/internal/models"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

// presenceMarker is the slice of the presence tracker the manager needs.
type presenceMarker interface {
	MarkOnline(ctx context.Context, userID int) error
	MarkOffline(ctx context.Context, userID int) error
}

// wsConn serializes writes. gorilla/websocket allows one concurrent
// writer per connection, and both the manager and the ping loop write.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// writeClose needs no lock; WriteControl is safe to call concurrently
// with other write methods.
func (c *wsConn) writeClose(code int, reason string) error {
	return c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}

func (c *wsConn) close() error {
	return c.conn.Close()
}

type directMsg struct {
	userID int
	msg    models.Message
}

type unreg struct {
	userID int
	conn   *wsConn
}

type Client struct {
	ID     int
	Socket *wsConn
}

type WebSocketManager struct {
	presence   presenceMarker
	clients    map[int]*wsConn
	broadcast  chan models.Message
	direct     chan directMsg
	register   chan Client
	unregister chan unreg
}

func NewWebSocketManager(presence presenceMarker) *WebSocketManager {
	return &WebSocketManager{
		presence:   presence,
		clients:    make(map[int]*wsConn),
		broadcast:  make(chan models.Message),
		direct:     make(chan directMsg),
		register:   make(chan Client),
		unregister: make(chan unreg),
	}
}

// DeliverMessage pushes a message to the user's open socket, if any.
// Safe to call from any goroutine.
func (ws *WebSocketManager) DeliverMessage(userID int, msg models.Message) {
	ws.direct <- directMsg{userID: userID, msg: msg}
}

// Run owns the clients map and the users' presence marks; all map access
// happens on this goroutine.
func (ws *WebSocketManager) Run() {
	for {
		select {
		case client := <-ws.register:
			// a newer socket replaces any previous one for the same user
			if old, ok := ws.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.close()
			}
			ws.clients[client.ID] = client.Socket
			ws.markOnline(client.ID)
			log.Printf("WS register user=%d", client.ID)

		case u := <-ws.unregister:
			// a stale socket that was already replaced must not flip
			// the still-connected user offline
			if cur, ok := ws.clients[u.userID]; ok && cur == u.conn {
				_ = cur.close()
				delete(ws.clients, u.userID)
				ws.markOffline(u.userID)
				log.Printf("WS unregister user=%d", u.userID)
			}

		case msg := <-ws.broadcast:
			for id, conn := range ws.clients {
				if err := conn.writeJSON(msg); err != nil {
					log.Printf("broadcast error to=%d: %v", id, err)
					_ = conn.close()
					delete(ws.clients, id)
					ws.markOffline(id)
				}
			}

		case dm := <-ws.direct:
			if conn, ok := ws.clients[dm.userID]; ok {
				if err := conn.writeJSON(dm.msg); err != nil {
					log.Printf("direct send error to=%d: %v", dm.userID, err)
					_ = conn.close()
					delete(ws.clients, dm.userID)
					ws.markOffline(dm.userID)
				}
			}
		}
	}
}

func (ws *WebSocketManager) markOnline(userID int) {
	if ws.presence == nil {
		return
	}
	if err := ws.presence.MarkOnline(context.Background(), userID); err != nil {
		log.Printf("presence mark online user=%d: %v", userID, err)
	}
}

func (ws *WebSocketManager) markOffline(userID int) {
	if ws.presence == nil {
		return
	}
	if err := ws.presence.MarkOffline(context.Background(), userID); err != nil {
		log.Printf("presence mark offline user=%d: %v", userID, err)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// WebSocketHandler upgrades an authenticated request; the user identity
// comes from the access token, not from the client payload.
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(int)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	c := &wsConn{conn: conn}
	app.wsManager.register <- Client{ID: userID, Socket: c}

	go app.pingLoop(c, userID)
	go app.readMessages(c, userID)
}

func (app *application) pingLoop(c *wsConn, userID int) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		if err := c.ping(); err != nil {
			_ = c.writeClose(websocket.CloseGoingAway, "ping error")
			app.wsManager.unregister <- unreg{userID: userID, conn: c}
			return
		}
		if err := app.presence.MarkOnline(context.Background(), userID); err != nil {
			app.errorLog.Printf("presence refresh user=%d: %v", userID, err)
		}
	}
}

type wsFrame struct {
	ChatID int      `json:"chat_id"`
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

func (app *application) readMessages(c *wsConn, userID int) {
	defer func() {
		app.wsManager.unregister <- unreg{userID: userID, conn: c}
		_ = c.close()
	}()

	for {
		var frame wsFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			_ = c.writeClose(websocket.CloseNormalClosure, "read error")
			return
		}

		if frame.ChatID == 0 || strings.TrimSpace(frame.Text) == "" {
			log.Println("reject: empty chat or text")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		message, err := app.messageService.CreateMessage(ctx, frame.ChatID, userID, models.CreateMessageRequest{
			Text:   frame.Text,
			Images: frame.Images,
		})
		if err != nil {
			cancel()
			log.Println("save message error:", err)
			continue
		}

		chat, err := app.chatService.GetChat(ctx, frame.ChatID, userID)
		cancel()
		if err != nil {
			log.Println("resolve chat error:", err)
			continue
		}

		recipient := chat.OtherMember(userID)
		app.wsManager.DeliverMessage(recipient.ID, message)
		app.wsManager.DeliverMessage(userID, message)
		app.fcmHandler.NotifyNewMessage(context.Background(), recipient.ID, message)
	}
}
