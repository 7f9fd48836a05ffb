// @title           Wymiana Plikow API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"
	"wymiana-plikow/internal/api"
	"wymiana-plikow/internal/config"
	"wymiana-plikow/internal/database"
	"wymiana-plikow/internal/mailer"
	"wymiana-plikow/internal/storage"
	"wymiana-plikow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "wymiana-plikow/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	blobStorage, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("Nie można zainicjować storage: %v", err)
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.Mail)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, blobStorage, smtpMailer, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Serwer wymiany plików działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Post("/api/v1/auth/signup", server.SignupHandler)
	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)
	r.Get("/api/v1/auth/verify-email", server.VerifyEmailHandler)
	r.Post("/api/v1/auth/forgot-password", server.ForgotPasswordHandler)
	r.Get("/api/v1/auth/reset-password/{token}", server.ResetPasswordFormHandler)
	r.Post("/api/v1/auth/reset-password/{token}", server.UpdatePasswordHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/me", server.GetCurrentUserHandler)
		r.Post("/auth/logout", server.LogoutHandler)
		r.Get("/auth/sessions", server.ListSessionsHandler)
		r.Get("/files", server.ListFilesHandler)
		r.Get("/files/search", server.SearchFilesHandler)
		r.Get("/files/{fileId}/download", server.DownloadFileHandler)
		r.Post("/files/{fileId}/share", server.ShareFileHandler)
		r.Get("/events", server.GetEventsHandler)

		r.Group(func(r chi.Router) {
			r.Use(server.AdminMiddleware)
			r.Post("/files", server.UploadFileHandler)
			r.Delete("/files/{fileId}", server.DeleteFileHandler)
		})
	})

	log.Println("Uruchamianie serwera na porcie :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}

func buildStorage(cfg *config.Config) (storage.BlobStorage, error) {
	switch cfg.Storage.Backend {
	case "minio":
		client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Pliki będą przechowywane w MinIO: %s/%s", cfg.Storage.Endpoint, cfg.Storage.Bucket)
		return storage.NewMinIOStorage(context.Background(), client, cfg.Storage.Bucket)
	default:
		log.Printf("Pliki będą przechowywane w: %s", cfg.Storage.Path)
		return storage.NewLocalStorage(cfg.Storage.Path)
	}
}
