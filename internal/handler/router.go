/*
Package handler provides the HTTP handlers and routing setup for the groundchat server.

This file defines the main Router, applying logging, CORS and recovery middleware before
delegating to the page handlers, the chat API and the operational endpoints.
*/
package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"groundchat/internal/pkg/logx"
	"groundchat/internal/pkg/metrics"
	"groundchat/internal/pkg/resp"
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "groundchat",
		}
		resp.RespondSuccess(w, r, data)
	})
	r.Handle("/metrics", metrics.Handler())

	static, _ := fs.Sub(assetsFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", HandleIndex(deps))

	r.Get("/register", HandleRegisterPage(deps))
	r.Post("/register", HandleRegister(deps))
	r.Get("/login", HandleLoginPage(deps))
	r.Post("/login", HandleLogin(deps))

	r.Group(func(authed chi.Router) {
		authed.Use(RequireSession(deps))

		authed.Get("/logout", HandleLogout(deps))
		authed.Get("/chat", HandleChatPage(deps))
	})

	r.Post("/api/chat", HandleChat(deps))

	return r
}
