package handler

import (
	"groundchat/internal/app/chat"
	"groundchat/internal/app/session"
	"groundchat/internal/app/user"
	"groundchat/internal/configs"
)

type AppDeps struct {
	Config      *configs.AppConfig
	Credentials *user.Credentials
	Guard       *session.Guard
	Chat        *chat.Service
	Pages       *Pages
}
