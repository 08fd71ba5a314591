package handler

import (
	"chatty/internal/app/chat"
	"chatty/internal/app/message"
	"chatty/internal/app/request"
	"chatty/internal/app/storage"
	"chatty/internal/app/user"
	"chatty/internal/configs"
)

type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *chat.Hub
	Users    user.Store
	Requests *request.Service
	Messages *message.Service
	Media    storage.MediaService
}
