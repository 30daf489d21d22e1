package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) jwtMiddleware(next http.Handler) http.Handler {
	return app.JWTMiddleware(next)
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.jwtMiddleware)

	mux := pat.New()

	// Users
	mux.Post("/users/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/users/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/users", authMiddleware.ThenFunc(app.userHandler.ListUsers))
	mux.Get("/users/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))

	// Chats
	mux.Post("/chats", authMiddleware.ThenFunc(app.chatHandler.CreateChat))
	mux.Get("/chats", authMiddleware.ThenFunc(app.chatHandler.ListChats))
	mux.Get("/chats/:id", authMiddleware.ThenFunc(app.chatHandler.GetChatByID))

	// Messages
	mux.Post("/chats/:id/messages", authMiddleware.ThenFunc(app.messageHandler.CreateMessage))
	mux.Get("/chats/:id/messages", authMiddleware.ThenFunc(app.messageHandler.ListMessages))
	mux.Get("/chats/:id/messages/:message_id", authMiddleware.ThenFunc(app.messageHandler.GetMessageByID))
	mux.Put("/chats/:id/messages/:message_id", authMiddleware.ThenFunc(app.messageHandler.UpdateMessage))
	mux.Add("PATCH", "/chats/:id/messages/:message_id", authMiddleware.ThenFunc(app.messageHandler.PatchMessage))
	mux.Del("/chats/:id/messages/:message_id", authMiddleware.ThenFunc(app.messageHandler.DeleteMessage))

	// Reactions
	mux.Post("/chats/:id/messages/:message_id/like", authMiddleware.ThenFunc(app.messageHandler.ToggleLike))
	mux.Post("/chats/:id/messages/:message_id/dislike", authMiddleware.ThenFunc(app.messageHandler.ToggleDislike))

	// Live updates
	mux.Get("/ws", authMiddleware.ThenFunc(app.WebSocketHandler))

	// Push tokens
	mux.Post("/notify_tokens", authMiddleware.ThenFunc(app.fcmHandler.CreateToken))
	mux.Del("/notify_tokens/:token", authMiddleware.ThenFunc(app.fcmHandler.DeleteToken))

	return standardMiddleware.Then(mux)
}
