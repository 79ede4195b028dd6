package handler

import (
	"net/http"

	"groundchat/internal/pkg/resp"
)

// HandleIndex renders the anonymous landing page.
func HandleIndex(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Pages.Render(w, r, http.StatusOK, "index.html", PageData{Title: "groundchat"})
	}
}

// HandleChatPage renders the chat shell for the signed-in user.
func HandleChatPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		deps.Pages.Render(w, r, http.StatusOK, "chat.html", PageData{Title: "Chat", Username: u.Username})
	}
}

// HandleChat answers one chat message as JSON.
func HandleChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, customErr := deps.Chat.Handle(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		resp.RespondSuccess(w, r, reply)
	}
}
