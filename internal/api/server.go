package api

import (
	"wymiana-plikow/internal/config"
	"wymiana-plikow/internal/database"
	"wymiana-plikow/internal/mailer"
	"wymiana-plikow/internal/storage"
	"wymiana-plikow/internal/websocket"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	storage storage.BlobStorage
	mailer  mailer.Mailer
	wsHub   *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, blobs storage.BlobStorage, mail mailer.Mailer, wsHub *websocket.Hub) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		storage: blobs,
		mailer:  mail,
		wsHub:   wsHub,
	}
}
